package logger

import (
	"context"
	"sync"
	"sync/atomic"
)

//nolint:gochecknoglobals // global logger singleton
var (
	global   atomic.Value // stores Logger
	setOnce  sync.Once
	initOnce sync.Once
)

// SetGlobal configures the process-wide logger. It must be called once, at startup,
// before anything logs; a second call panics.
func SetGlobal(cfg Config) {
	called := false
	setOnce.Do(func() {
		initOnce.Do(func() {})

		l, err := New(cfg)
		if err != nil {
			panic("[logger]: failed to initialize global logger: " + err.Error())
		}
		global.Store(l)
		called = true
	})
	if !called {
		panic("[logger]: SetGlobal can only be called once")
	}
}

// Debug logs at debug level on the global logger.
func Debug(msg any) { getGlobal().Debug(msg) }

// Info logs at info level on the global logger.
func Info(msg any) { getGlobal().Info(msg) }

// Warn logs at warn level on the global logger.
func Warn(msg any) { getGlobal().Warn(msg) }

// Error logs at error level on the global logger.
func Error(msg any) { getGlobal().Error(msg) }

// Infof logs a formatted message at info level on the global logger.
func Infof(format string, args ...any) { getGlobal().Infof(format, args...) }

// Errorx logs an errx error on the global logger.
func Errorx(err error) { getGlobal().Errorx(err) }

// Fatalx logs an errx error on the global logger and exits.
func Fatalx(err error) { getGlobal().Fatalx(err) }

// With returns a child of the global logger.
func With(keysAndValues ...any) Logger { return getGlobal().With(keysAndValues...) }

// WithContext returns a child of the global logger enriched from ctx.
func WithContext(ctx context.Context) Logger { return getGlobal().WithContext(ctx) }

// Named returns a named child of the global logger.
func Named(name string) Logger { return getGlobal().Named(name) }

// Sync flushes the global logger.
func Sync() error { return getGlobal().Sync() }

func initDefault() {
	initOnce.Do(func() {
		l, err := New(Config{Level: levelDebug, Encoding: encPretty})
		if err != nil {
			panic("[logger]: failed to initialize default logger: " + err.Error())
		}
		global.Store(l)
	})
}

func getGlobal() Logger {
	if l, ok := global.Load().(Logger); ok {
		return l
	}
	initDefault()
	l, ok := global.Load().(Logger)
	if !ok {
		panic("[logger]: global contains invalid type after initialization")
	}
	return l
}
