package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	out     io.Writer
	service string
}

// Option customises NewLogger
type Option func(*options)

// WithWriter sends log entries to w instead of stdout
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithService stamps every entry with a "service" field
func WithService(name string) Option {
	return func(o *options) { o.service = name }
}

// NewLogger builds a JSON logger at the named level. Unknown levels log at info.
func NewLogger(level string, opts ...Option) (*zap.Logger, error) {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(o.out)),
		zapLevel,
	)

	log := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if o.service != "" {
		log = log.With(zap.String("service", o.service))
	}
	return log, nil
}
