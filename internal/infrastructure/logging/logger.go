package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/juju/lumberjack/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the process logger
type Options struct {
	// File is the rotated JSON log file; empty disables file logging
	File string
	// FileLevel is the minimum level written to File
	FileLevel string
	// Console receives human readable entries, stderr when nil
	Console io.Writer
	// Debug lowers the console level from warn to debug
	Debug bool

	MaxSizeMB  int
	MaxBackups int
}

// New builds a logger writing JSON to a rotated file and short entries to
// the console. The returned close function flushes and closes the file.
func New(opts Options) (*zap.Logger, func() error, error) {
	fileLevel := zapcore.InfoLevel
	if opts.FileLevel != "" {
		lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(opts.FileLevel)))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.FileLevel, err)
		}
		fileLevel = lvl
	}
	consoleLevel := zapcore.WarnLevel
	if opts.Debug {
		consoleLevel = zapcore.DebugLevel
		fileLevel = zapcore.DebugLevel
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleEnc := zap.NewDevelopmentEncoderConfig()
	consoleEnc.TimeKey = ""
	consoleEnc.CallerKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.AddSync(console), consoleLevel),
	}

	closeFn := func() error { return nil }
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    orDefault(opts.MaxSizeMB, 5),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			Compress:   true,
		}
		fileEnc := zap.NewProductionEncoderConfig()
		fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(rotator), fileLevel))
		closeFn = rotator.Close
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return logger, func() error {
		_ = logger.Sync()
		return closeFn()
	}, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
