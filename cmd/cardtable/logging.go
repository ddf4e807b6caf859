package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lixenwraith/tabletop/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logDir        = "logs"
	logFileName   = "cardtable.log"
	maxLogSizeMB  = 10
	maxLogBackups = 3
)

// setupLogger builds the JSON file logger
// The terminal owns stdout and stderr, so without -debug or a configured file logging is discarded
func setupLogger(cfg config.Log, debug bool, dir string) (*zap.Logger, error) {
	path := cfg.File
	if path == "" && debug {
		path = filepath.Join(dir, logFileName)
	}
	if path == "" {
		return zap.NewNop(), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if debug {
		level = zapcore.DebugLevel
	}

	// Oversized logs are moved aside as name-timestamp.log on the next write
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
	})

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), sink, level)
	return zap.New(core, zap.ErrorOutput(sink)), nil
}
