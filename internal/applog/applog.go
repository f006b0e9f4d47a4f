package applog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	fileName    = "tabsalvage.log"
	maxFileSize = 5 << 20 // 5 MB
	maxValueLen = 200
	truncSuffix = "…"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
	file   *os.File
)

// Init opens the log file for appending at info level. Call once at startup.
// If the file exceeds 5 MB, it is rotated (renamed to .log.1) before opening.
// Safe to skip: all log calls are no-ops if not initialized.
func Init(dir string) error {
	return InitLevel(dir, "info")
}

// InitLevel is Init with an explicit level ("debug", "info", "warn", "error").
func InitLevel(dir, level string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	path := filepath.Join(dir, fileName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if info, err := os.Stat(path); err == nil && info.Size() > maxFileSize {
		os.Rename(path, path+".1")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "event",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), lvl)

	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	file = f
	logger = zap.New(core)
	return nil
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	logger.Sync()
	logger = zap.NewNop()
	if file != nil {
		file.Close()
		file = nil
	}
}

// Debug logs a verbose event line.
func Debug(event string, kv ...any) {
	current().Debug(event, fields(kv)...)
}

// Info logs a structured event line.
//
//	applog.Info("pipeline.stage", "record", id, "stage", "parsed")
//	applog.Info("export.saved", "path", path, "bytes", 2048)
func Info(event string, kv ...any) {
	current().Info(event, fields(kv)...)
}

// Error logs an event with an error.
//
//	applog.Error("export.write", err, "path", path)
func Error(event string, err error, kv ...any) {
	fs := fields(kv)
	if err != nil {
		fs = append(fs, zap.String("err", truncate(err.Error())))
	}
	current().Error(event, fs...)
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func fields(kv []any) []zap.Field {
	out := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		switch v := kv[i+1].(type) {
		case int:
			out = append(out, zap.Int(key, v))
		case int64:
			out = append(out, zap.Int64(key, v))
		case bool:
			out = append(out, zap.Bool(key, v))
		case error:
			out = append(out, zap.String(key, truncate(v.Error())))
		default:
			out = append(out, zap.String(key, truncate(fmt.Sprint(v))))
		}
	}
	return out
}

// truncate shortens s to at most maxValueLen bytes on a rune boundary.
func truncate(s string) string {
	if len(s) <= maxValueLen {
		return s
	}
	cut := maxValueLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncSuffix
}
