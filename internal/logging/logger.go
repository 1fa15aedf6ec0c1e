// Package logging provides structured logging for ADB-aware tooling,
// built on go.uber.org/zap.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the interface for structured logging. The method set is
// kept from the teacher's logging.Logger so callers (cmd/adbinfo and
// its sibling applets) see the same shape; the implementation is now a
// thin wrapper over zap's SugaredLogger instead of a hand-rolled
// encoder.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	// WithRequestID returns a new logger tagging every entry with id -
	// ADB tooling uses it to correlate log lines with one applet
	// invocation rather than one LDAP connection.
	WithRequestID(id string) Logger
	WithFields(keysAndValues ...interface{}) Logger
}

// Config holds the logger configuration.
type Config struct {
	Level  string
	Format string
	Output string
}

type logger struct {
	sugar *zap.SugaredLogger
}

// New creates a new Logger with the given configuration.
func New(cfg Config) Logger {
	var ws zapcore.WriteSyncer
	switch cfg.Output {
	case "", "stderr":
		ws = zapcore.AddSync(os.Stderr)
	case "stdout":
		ws = zapcore.AddSync(os.Stdout)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			ws = zapcore.AddSync(os.Stderr)
		} else {
			ws = zapcore.AddSync(f)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, ws, parseLevel(cfg.Level))
	return &logger{sugar: zap.New(core).Sugar()}
}

// NewDefault creates a new Logger with default settings (info level,
// console format, stderr output).
func NewDefault() Logger {
	return New(Config{Level: "info", Format: "console", Output: "stderr"})
}

// NewNop creates a no-op logger that discards all output.
func NewNop() Logger {
	return &logger{sugar: zap.NewNop().Sugar()}
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *logger) Debug(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *logger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *logger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *logger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }

func (l *logger) WithRequestID(id string) Logger {
	return &logger{sugar: l.sugar.With("request_id", id)}
}

func (l *logger) WithFields(kv ...interface{}) Logger {
	return &logger{sugar: l.sugar.With(kv...)}
}
