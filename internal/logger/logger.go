// Package logger is a printf-style wrapper around zap with optional
// lumberjack file rotation.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process logger.
type Options struct {
	Level string // debug, info, warn, error
	File  string // rotate into this file when set, stderr otherwise

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu      sync.RWMutex
	current = mustDefault()
)

func mustDefault() *zap.SugaredLogger {
	l, err := build(Options{Level: "info"})
	if err != nil {
		panic(fmt.Sprintf("init logger: %v", err))
	}
	return l
}

// Init replaces the process logger.
func Init(opts Options) error {
	l, err := build(opts)
	if err != nil {
		return err
	}
	mu.Lock()
	old := current
	current = l
	mu.Unlock()
	_ = old.Sync()
	return nil
}

func build(opts Options) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		if opts.Level != "" {
			return nil, fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05"))
	}
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encCfg.MessageKey = "message"

	var (
		sink    zapcore.WriteSyncer
		encoder zapcore.Encoder
	)
	if opts.File != "" {
		if opts.MaxSizeMB == 0 {
			opts.MaxSizeMB = 100
		}
		if opts.MaxBackups == 0 {
			opts.MaxBackups = 3
		}
		if opts.MaxAgeDays == 0 {
			opts.MaxAgeDays = 28
		}
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		})
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		sink = zapcore.Lock(os.Stderr)
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, sink, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar(), nil
}

func get() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Debug(format string, args ...interface{}) { get().Debugf(format, args...) }
func Info(format string, args ...interface{})  { get().Infof(format, args...) }
func Warn(format string, args ...interface{})  { get().Warnf(format, args...) }
func Error(format string, args ...interface{}) { get().Errorf(format, args...) }
func Fatal(format string, args ...interface{}) { get().Fatalf(format, args...) }

// Sync flushes buffered entries.
func Sync() { _ = get().Sync() }
