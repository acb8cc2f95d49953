package logger

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var (
	// Global logger instance
	logger *zap.Logger
	// Global sugared logger instance
	sugar *zap.SugaredLogger
	// Ensure initialization happens only once
	once sync.Once
)

type ctxKey struct{}

// Init initializes the logger with the given log level and output format.
// Valid levels: debug, info, warn, error, dpanic, panic, fatal
// Valid formats: json, console
func Init(level, format string) {
	once.Do(func() {
		var zapLevel zapcore.Level
		if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
			zapLevel = zap.InfoLevel
		}

		encoderConfig := zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}

		encoder := zapcore.NewJSONEncoder(encoderConfig)
		if format == FormatConsole {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			encoder = zapcore.NewConsoleEncoder(encoderConfig)
		}

		// stderr keeps stdout clean for the generate command output
		core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), zapLevel)

		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
		sugar = logger.Sugar()
	})
}

// Replace swaps the global logger, typically with an observer in tests.
// The returned function restores the previous logger.
func Replace(l *zap.Logger) func() {
	GetLogger()
	prevLogger, prevSugar := logger, sugar
	logger = l.WithOptions(zap.AddCallerSkip(1))
	sugar = logger.Sugar()
	return func() {
		logger, sugar = prevLogger, prevSugar
	}
}

// Sugar returns the global sugared logger
func Sugar() *zap.SugaredLogger {
	if sugar == nil {
		Init("info", FormatJSON)
	}
	return sugar
}

// GetLogger returns the global zap logger
func GetLogger() *zap.Logger {
	if logger == nil {
		Init("info", FormatJSON)
	}
	return logger
}

// With returns a child logger carrying the given key/value pairs
func With(args ...interface{}) *zap.SugaredLogger {
	// undo the skip used by the package-level helpers
	return Sugar().WithOptions(zap.AddCallerSkip(-1)).With(args...)
}

// NewContext attaches a request-scoped logger to ctx
func NewContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or a child of the global one
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.SugaredLogger); ok && l != nil {
			return l
		}
	}
	return With()
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}

// Debug logs a message at debug level
func Debug(args ...interface{}) {
	Sugar().Debug(args...)
}

// Info logs a message at info level
func Info(args ...interface{}) {
	Sugar().Info(args...)
}

// Warn logs a message at warn level
func Warn(args ...interface{}) {
	Sugar().Warn(args...)
}

// Error logs a message at error level
func Error(args ...interface{}) {
	Sugar().Error(args...)
}

// Debugf logs a formatted message at debug level
func Debugf(template string, args ...interface{}) {
	Sugar().Debugf(template, args...)
}

// Infof logs a formatted message at info level
func Infof(template string, args ...interface{}) {
	Sugar().Infof(template, args...)
}

// Warnf logs a formatted message at warn level
func Warnf(template string, args ...interface{}) {
	Sugar().Warnf(template, args...)
}

// Errorf logs a formatted message at error level
func Errorf(template string, args ...interface{}) {
	Sugar().Errorf(template, args...)
}

// Fatalf logs a formatted message at fatal level and then calls os.Exit(1)
func Fatalf(template string, args ...interface{}) {
	Sugar().Fatalf(template, args...)
}
