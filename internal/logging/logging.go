// Package logging owns the process-wide structured logger. Library code logs
// through L(); nothing is written until a caller installs a real logger with
// SetLogger, so embedding applications stay quiet by default.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// L returns the global logger
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the global logger and returns a function restoring the previous one
func SetLogger(l *zap.Logger) func() {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	prev := logger
	logger = l
	mu.Unlock()
	return func() {
		mu.Lock()
		logger = prev
		mu.Unlock()
	}
}

// ParseLevel converts a level name (debug, info, warn, error) to a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// New builds a console logger writing to stderr at the given level
func New(level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Development = false
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// OperationLogger logs the outcome of a single operation with its duration
type OperationLogger struct {
	logger    *zap.Logger
	operation string
	startTime time.Time
}

// WithOperation starts timing an operation on the global logger
func WithOperation(operation string, fields ...zap.Field) *OperationLogger {
	return &OperationLogger{
		logger:    L().With(append([]zap.Field{zap.String("operation", operation)}, fields...)...),
		operation: operation,
		startTime: time.Now(),
	}
}

// Done logs completion at debug level, or the error at warn level
func (ol *OperationLogger) Done(err error, fields ...zap.Field) {
	fields = append(fields, zap.Duration("duration", time.Since(ol.startTime)))
	if err != nil {
		ol.logger.Warn(ol.operation+" failed", append(fields, zap.Error(err))...)
		return
	}
	ol.logger.Debug(ol.operation+" completed", fields...)
}
