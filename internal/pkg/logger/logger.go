// Package logger provides structured JSON logging with optional PII redaction.
//
// The package-level helpers take a message followed by alternating key/value
// pairs, so call sites read the same whether or not a *zap.Logger is at hand:
//
//	logger.Info("subscriber added", "request_id", id, "email", email)
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var zapLevels = map[Level]zapcore.Level{
	DEBUG: zapcore.DebugLevel,
	INFO:  zapcore.InfoLevel,
	WARN:  zapcore.WarnLevel,
	ERROR: zapcore.ErrorLevel,
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a
// Level. Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger emits structured entries through zap, redacting PII when enabled.
type Logger struct {
	zl        *zap.Logger
	level     zap.AtomicLevel
	redactPII bool
}

// New builds a Logger that writes JSON lines to out.
func New(out zapcore.WriteSyncer, level Level, redactPII bool) *Logger {
	atom := zap.NewAtomicLevelAt(zapLevels[level])
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(out), atom)
	return &Logger{
		zl:        zap.New(core),
		level:     atom,
		redactPII: redactPII,
	}
}

var defaultLogger = New(zapcore.AddSync(os.Stderr), INFO, true)

// Default returns the process-wide logger.
func Default() *Logger { return defaultLogger }

// SetDefault replaces the process-wide logger. Intended for main and tests.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Zap exposes the underlying zap logger for code that needs a *zap.Logger,
// such as zap.RedirectStdLog. Entries written through it are not redacted.
func (l *Logger) Zap() *zap.Logger { return l.zl }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.zl.Sync() }

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...interface{}) { defaultLogger.Debug(msg, fields...) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...interface{}) { defaultLogger.Info(msg, fields...) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...interface{}) { defaultLogger.Warn(msg, fields...) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...interface{}) { defaultLogger.Error(msg, fields...) }

func (l *Logger) Debug(msg string, fields ...interface{}) { l.log(DEBUG, msg, fields...) }
func (l *Logger) Info(msg string, fields ...interface{})  { l.log(INFO, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...interface{})  { l.log(WARN, msg, fields...) }
func (l *Logger) Error(msg string, fields ...interface{}) { l.log(ERROR, msg, fields...) }

func (l *Logger) log(level Level, msg string, fields ...interface{}) {
	ce := l.zl.Check(zapLevels[level], msg)
	if ce == nil {
		return
	}

	zfields := make([]zap.Field, 0, len(fields)/2)
	for i := 0; i < len(fields)-1; i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		val := fmt.Sprintf("%v", fields[i+1])
		if l.redactPII {
			val = redactPIIValue(key, val)
		}
		zfields = append(zfields, zap.String(key, val))
	}
	ce.Write(zfields...)
}
