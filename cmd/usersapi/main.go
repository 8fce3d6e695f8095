package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/Aidin1998/usersapi/api"
	"github.com/Aidin1998/usersapi/internal/config"
	"github.com/Aidin1998/usersapi/internal/telemetry"
	"github.com/Aidin1998/usersapi/internal/users"
	"github.com/Aidin1998/usersapi/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	configPath string
	port       int
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "usersapi",
		Short:         "In-memory users CRUD service",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, &f)
		},
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().IntVar(&f.port, "port", 0, "listen port, overrides PORT")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, &f)
		},
	}
	routes := &cobra.Command{
		Use:   "routes",
		Short: "Print the registered route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &f)
			if err != nil {
				return err
			}
			printRoutes(cmd.OutOrStdout(), newServer(zap.NewNop(), cfg))
			return nil
		},
	}
	root.AddCommand(serve, routes)
	return root
}

// loadConfig loads .env, the config file and the environment, then applies flag overrides
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = f.port
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newServer(zapLogger *zap.Logger, cfg *config.Config) *api.Server {
	gin.SetMode(cfg.GinMode)

	opts := []api.Option{
		api.WithBodyTimeout(cfg.BodyTimeout),
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithShutdownTimeout(cfg.ShutdownTimeout),
		api.WithReadHeaderTimeout(cfg.ReadHeaderTimeout),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, api.WithMetrics(cfg.Metrics.Path))
	}
	if cfg.Tracing.Enabled {
		opts = append(opts, api.WithTracing(cfg.Tracing.ServiceName))
	}
	return api.NewServer(zapLogger, users.NewStore(zapLogger), opts...)
}

func runServe(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	zapLogger, err := logger.NewLogger(cfg.LogLevel, logger.WithService(cfg.Tracing.ServiceName))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := telemetry.Setup(ctx, telemetry.Config{Tracing: &telemetry.TracingOpts{}})
		if err != nil {
			zapLogger.Error("Failed to set up tracing", zap.Error(err))
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				zapLogger.Error("Failed to flush traces", zap.Error(err))
			}
		}()
	}

	srv := newServer(zapLogger, cfg)
	zapLogger.Info("Starting API server",
		zap.String("addr", cfg.Addr()),
		zap.Bool("metrics", cfg.Metrics.Enabled),
		zap.Bool("tracing", cfg.Tracing.Enabled))

	if err := srv.Run(ctx, cfg.Addr()); err != nil {
		zapLogger.Error("API server failed", zap.Error(err))
		return err
	}
	zapLogger.Info("Server exited properly")
	return nil
}

func printRoutes(w io.Writer, srv *api.Server) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH")
	for _, r := range srv.Routes() {
		fmt.Fprintf(tw, "%s\t%s\n", r.Method, r.Path)
	}
	tw.Flush()
}
