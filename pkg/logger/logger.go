// Package logger provides the printf-style application logger used across the service.
// Output always goes to stdout and, when a file path is configured, to that file as well.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin printf-style facade over zap.SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
	file  *os.File
}

// New creates a logger writing to stdout and, if filePath is not empty, to filePath.
// level is one of debug, info, warn, error.
func New(filePath string, level string) (*Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl),
	}

	var file *os.File
	if filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
			return nil, fmt.Errorf("logger: create log dir: %w", err)
		}
		file, err = os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logger: open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(file), lvl))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))

	return &Logger{sugar: z.Sugar(), file: file}, nil
}

// NewNop returns a logger that discards everything. Handy in tests.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("logger: unknown level %q", level)
	}
}

func (l *Logger) Debug(format string, v ...interface{}) { l.sugar.Debugf(format, v...) }
func (l *Logger) Info(format string, v ...interface{})  { l.sugar.Infof(format, v...) }
func (l *Logger) Warn(format string, v ...interface{})  { l.sugar.Warnf(format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.sugar.Errorf(format, v...) }

// Fatal logs the message and exits the process.
func (l *Logger) Fatal(format string, v ...interface{}) { l.sugar.Fatalf(format, v...) }

// Sugar exposes the underlying zap logger to libraries that accept
// Debug/Info/Warn/Error/Fatal(args ...interface{}) loggers (asynq).
func (l *Logger) Sugar() *zap.SugaredLogger { return l.sugar }

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	_ = l.sugar.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
