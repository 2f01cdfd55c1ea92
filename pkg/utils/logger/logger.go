package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap sugared logger with named sub-logger support.
type Logger struct {
	*zap.SugaredLogger
}

var (
	root *Logger
	once sync.Once
)

// Init configures the process-wide logger. level is one of debug, info,
// warn, error; env selects JSON output for "production" and console output
// otherwise. Subsequent calls are no-ops.
func Init(level string, env string) {
	once.Do(func() {
		encCfg := zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}

		var enc zapcore.Encoder
		if env == "production" {
			enc = zapcore.NewJSONEncoder(encCfg)
		} else {
			enc = zapcore.NewConsoleEncoder(encCfg)
		}

		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			lvl = zapcore.InfoLevel
		}

		core := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), zap.NewAtomicLevelAt(lvl))
		zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
		root = &Logger{zl.Sugar()}
	})
}

// GetLogger returns a named logger derived from the process-wide logger,
// initializing it with defaults if Init has not been called.
func GetLogger(name string) *Logger {
	if root == nil {
		Init("info", "development")
	}
	return &Logger{root.Named(name)}
}

// With returns a logger with additional structured context.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{l.SugaredLogger.With(args...)}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.SugaredLogger.Sync()
}
