package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"research-agent/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

type Config struct {
	// Name becomes the logger name and, with ToFile, part of the file name.
	Name   string
	Level  string
	ToFile bool
	// Dir is where log files go when ToFile is set. Defaults to "log".
	Dir string
}

// LoggerAdapter implements output.LoggerPort on top of a zap sugared logger.
type LoggerAdapter struct {
	sugar *zap.SugaredLogger
	file  *os.File
	owner bool
}

func NewLoggerAdapter(cfg Config) (*LoggerAdapter, error) {
	sink := zapcore.Lock(os.Stderr)

	var file *os.File
	if cfg.ToFile {
		dir := cfg.Dir
		if dir == "" {
			dir = "log"
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}

		filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02_15-04-05"), sanitize(cfg.Name))
		f, err := os.Create(filepath.Join(dir, filename))
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		file = f
		sink = zapcore.Lock(f)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), sink, zap.NewAtomicLevelAt(ParseLevel(cfg.Level)))
	adapter := NewFromCore(core, cfg.Name)
	adapter.file = file
	return adapter, nil
}

// NewFromCore wraps an existing zap core, used by tests with an observer core.
func NewFromCore(core zapcore.Core, name string) *LoggerAdapter {
	l := zap.New(core)
	if name != "" {
		l = l.Named(name)
	}
	return &LoggerAdapter{sugar: l.Sugar(), owner: true}
}

func NewNop() *LoggerAdapter {
	return &LoggerAdapter{sugar: zap.NewNop().Sugar(), owner: true}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	return cfg
}

// ParseLevel maps debug/info/warn/error to a zap level; unknown values mean info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{sugar: l.sugar.With(key, value)}
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &LoggerAdapter{sugar: l.sugar.With(args...)}
}

// Close flushes the logger. Derived loggers share the root sink and do nothing.
func (l *LoggerAdapter) Close() error {
	if !l.owner {
		return nil
	}
	_ = l.sugar.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func sanitize(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	s = strings.Trim(string(result), "_")
	if s == "" {
		return "research"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
