// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package xlog is the dispatcher's ambient logging facility: a thin,
// swappable wrapper over *zap.Logger. The dispatcher core never fails or
// changes behavior based on logging; this package exists only so a trapped
// listener/filter panic or a lazily-created key list leaves a structured
// trace behind instead of vanishing silently.
package xlog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level = zap.NewAtomicLevelAt(zap.WarnLevel)

	mu     sync.RWMutex
	logger = newDefault()
)

func newDefault() *zap.Logger {
	config := zapcore.EncoderConfig{
		LevelKey:   "level",
		MessageKey: "message",
		TimeKey:    "time",
		LineEnding: zapcore.DefaultLineEnding,
		EncodeTime: zapcore.ISO8601TimeEncoder,
		EncodeLevel: func(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(lvl.CapitalString())
		},
		ConsoleSeparator: " ",
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(config), zapcore.Lock(zapcore.AddSync(os.Stderr)), level)
	return zap.New(core)
}

// SetLevel adjusts the minimum level the default logger emits at. It is
// safe to call concurrently with logging calls.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// SetLogger replaces the logger used by L. Passing nil restores the
// package default (a console logger at the configured level).
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		logger = newDefault()
		return
	}
	logger = l
}

// L returns the currently configured logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
