package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the structured logger
type Options struct {
	Level   string // debug, info, warn, error
	LogDir  string // when set, records are also appended to a dated file here
	Symbol  string // used in the log file name
	Console bool   // human-readable console encoder instead of JSON
}

// New builds a zap logger writing to stderr and, optionally, a file under LogDir
func New(opts Options) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if opts.Console {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level),
	}

	if opts.LogDir != "" {
		path, err := filePath(opts.LogDir, opts.Symbol, time.Now())
		if err != nil {
			return nil, err
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(file), level))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// filePath returns logs/<symbol>_<date>.log, creating the directory if needed
func filePath(dir, symbol string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	if symbol == "" {
		symbol = "indicator"
	}
	filename := fmt.Sprintf("%s_%s.log", strings.ToUpper(symbol), now.Format("2006-01-02"))
	return filepath.Join(dir, filename), nil
}
