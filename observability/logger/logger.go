package logger

import (
	"context"
	"errors"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filemanager/meta"
	"go.uber.org/zap"
)

// Logger is the logging interface shared by all packages of the service.
type Logger interface {
	Debug(msg any)
	Info(msg any)
	Warn(msg any)
	Error(msg any)
	Fatal(msg any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// Warnx logs err at warn level, expanding errx.ErrorX code, type, trace and details into fields.
	Warnx(err error)
	// Errorx logs err at error level, expanding errx.ErrorX code, type, trace and details into fields.
	Errorx(err error)
	// Fatalx logs err like Errorx and exits the process.
	Fatalx(err error)

	// With returns a child logger that adds the key-value pairs to every entry.
	With(keysAndValues ...any) Logger
	// WithContext returns a child logger enriched with the request metadata stored in ctx.
	WithContext(ctx context.Context) Logger
	// Named adds a sub-scope to the logger's name.
	Named(name string) Logger

	// Sync flushes buffered entries. Call it on shutdown.
	Sync() error
}

type logger struct {
	*zap.SugaredLogger
}

// New builds a Logger from cfg.
func New(cfg Config) (Logger, error) {
	if cfg.Disable {
		return NewNop(), nil
	}

	zapConfig, err := cfg.getZapConfig()
	if err != nil {
		return nil, errx.Wrap(err)
	}

	zl, err := zapConfig.Build()
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &logger{zl.Sugar()}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &logger{zap.NewNop().Sugar()}
}

// FromZap adapts an existing zap logger, e.g. one built on zaptest/observer in tests.
func FromZap(zl *zap.Logger) Logger {
	return &logger{zl.Sugar()}
}

func (l *logger) errxFields(err error) (Logger, bool) {
	var e errx.ErrorX
	if !errors.As(err, &e) {
		return l, false
	}
	return l.With(
		"error_code", e.Code(),
		"error_type", e.Type().String(),
		"error_trace", e.Trace(),
		"error_fields", e.Fields(),
		"error_details", e.Details(),
	), true
}

func (l *logger) Warnx(err error) {
	withFields, _ := l.errxFields(err)
	withFields.Warn(err.Error())
}

func (l *logger) Errorx(err error) {
	withFields, _ := l.errxFields(err)
	withFields.Error(err.Error())
}

func (l *logger) Fatalx(err error) {
	withFields, _ := l.errxFields(err)
	withFields.Fatal(err.Error())
}

func (l *logger) With(keysAndValues ...any) Logger {
	return &logger{l.SugaredLogger.With(keysAndValues...)}
}

func (l *logger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}

	var fields []any
	for k, v := range meta.ExtractMetaFromContext(ctx) {
		// zap rejects non-string keys
		fields = append(fields, string(k), v)
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

func (l *logger) Named(name string) Logger {
	return &logger{l.SugaredLogger.Named(name)}
}

func (l *logger) Debug(msg any) { l.SugaredLogger.Debug(msg) }

func (l *logger) Info(msg any) { l.SugaredLogger.Info(msg) }

func (l *logger) Warn(msg any) { l.SugaredLogger.Warn(msg) }

func (l *logger) Error(msg any) { l.SugaredLogger.Error(msg) }

func (l *logger) Fatal(msg any) { l.SugaredLogger.Fatal(msg) }
