package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Aidin1998/usersapi/common/apiutil"
	"github.com/Aidin1998/usersapi/internal/users"
	"github.com/Aidin1998/usersapi/pkg/errors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	allowMethods = "GET, POST, PUT, DELETE, PATCH"
	allowHeaders = "Content-Type"
	jsonMIME     = "application/json"
)

// Server represents the users API server
type Server struct {
	router *gin.Engine
	logger *zap.Logger
	store  *users.Store
	body   bodyReader

	requestHook       apiutil.RequestHook
	metricsPath       string
	tracingService    string
	shutdownTimeout   time.Duration
	readHeaderTimeout time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithRequestHook registers a callback receiving the method and path of every request
func WithRequestHook(hook apiutil.RequestHook) Option {
	return func(s *Server) { s.requestHook = hook }
}

// WithBodyTimeout bounds how long a request body read may take
func WithBodyTimeout(d time.Duration) Option {
	return func(s *Server) { s.body.timeout = d }
}

// WithMaxBodyBytes caps the accepted request body size
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.body.maxBytes = n }
}

// WithMetrics exposes Prometheus metrics at path
func WithMetrics(path string) Option {
	return func(s *Server) { s.metricsPath = path }
}

// WithTracing instruments requests with OpenTelemetry spans
func WithTracing(serviceName string) Option {
	return func(s *Server) { s.tracingService = serviceName }
}

// WithShutdownTimeout bounds graceful shutdown in Run and Serve
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithReadHeaderTimeout sets the http.Server header read timeout
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(s *Server) { s.readHeaderTimeout = d }
}

// NewServer creates a new API server over store
func NewServer(logger *zap.Logger, store *users.Store, opts ...Option) *Server {
	server := &Server{
		logger:            logger,
		store:             store,
		body:              bodyReader{timeout: 5 * time.Second, maxBytes: 1 << 20},
		shutdownTimeout:   10 * time.Second,
		readHeaderTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(server)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.RedirectTrailingSlash = false

	router.Use(apiutil.RequestID())
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.CustomRecoveryWithZap(logger, true, server.recoverPanic))
	if server.tracingService != "" {
		router.Use(otelgin.Middleware(server.tracingService))
	}
	if server.metricsPath != "" {
		router.Use(apiutil.MetricsMiddleware())
	}
	if server.requestHook != nil {
		router.Use(apiutil.HookMiddleware(server.requestHook))
	}
	router.Use(defaultHeaders(), requireJSONBody())

	server.router = router
	server.registerRoutes()
	return server
}

// Router returns the internal Gin engine for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Routes returns the registered route table
func (s *Server) Routes() gin.RoutesInfo {
	return s.router.Routes()
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.Any("/", s.docs)
	s.router.GET("/health", s.healthCheck)
	if s.metricsPath != "" {
		s.router.GET(s.metricsPath, gin.WrapH(promhttp.Handler()))
	}

	// "/users/" carries an empty id segment and segments after the id are
	// ignored, so each handler is bound to both spellings of its path.
	records := s.router.Group("/users")
	collection := func(method string, h gin.HandlerFunc) {
		records.Handle(method, "", h)
		records.Handle(method, "/", h)
	}
	member := func(method string, h gin.HandlerFunc) {
		records.Handle(method, "/:id", h)
		records.Handle(method, "/:id/*rest", h)
	}
	collection(http.MethodGet, s.listUsers)
	collection(http.MethodPost, s.createUser)
	collection(http.MethodPut, s.userIDRequired)
	collection(http.MethodPatch, s.userIDRequired)
	collection(http.MethodDelete, s.userIDRequired)
	member(http.MethodGet, s.getUser)
	member(http.MethodPost, s.invalidEndpoint)
	member(http.MethodPut, s.replaceUser)
	member(http.MethodPatch, s.patchUser)
	member(http.MethodDelete, s.deleteUser)

	s.router.NoRoute(func(c *gin.Context) {
		apiutil.WriteError(c, errors.Unroutable.Explain("Not found"))
	})
	s.router.NoMethod(func(c *gin.Context) {
		apiutil.WriteError(c, errors.MethodNotAllowed.Explain("Method not allowed"))
	})
}

// defaultHeaders sets the CORS and content type headers on every response
// and answers preflight requests.
func defaultHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		setDefaultHeaders(c)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func setDefaultHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", allowMethods)
	c.Header("Access-Control-Allow-Headers", allowHeaders)
	c.Header("Content-Type", jsonMIME)
}

// requireJSONBody rejects body-bearing requests that are not declared as JSON
func requireJSONBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if !strings.Contains(c.GetHeader("Content-Type"), jsonMIME) {
				apiutil.WriteError(c, errors.Invalid.Explain("Content-Type must be application/json"))
				return
			}
		}
		c.Next()
	}
}

// recoverPanic turns a handler panic into a 500 response
func (s *Server) recoverPanic(c *gin.Context, recovered any) {
	setDefaultHeaders(c)
	apiutil.WriteError(c, errors.New(fmt.Sprint(recovered)))
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"users":  s.store.Len(),
		"time":   time.Now().UTC(),
	})
}

// Run listens on addr and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ln.Addr().String()
		_, port, _ := net.SplitHostPort(addr)
		s.logger.Info("Server is running on port "+port, zap.String("addr", addr))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
