// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package dispatchcfg loads the dispatcher's optional runtime tuning —
// log level, panic-stacktrace verbosity, and a listener-list length warning
// threshold — from an optional YAML file and DISPATCH_*-prefixed
// environment variables. The dispatcher core imports it only for the
// Tuning type accepted by eventpp.Configure, which applies a loaded Tuning
// to internal/xlog's level and the core's logging knobs.
package dispatchcfg

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Tuning holds the dispatcher's optional runtime knobs. Every field has a
// working default; Load does not error when its default search finds no
// config file.
type Tuning struct {
	LogLevel              string `mapstructure:"log_level"`
	LogPanicStacktrace    bool   `mapstructure:"log_panic_stacktrace"`
	ListenerWarnThreshold int    `mapstructure:"listener_warn_threshold"`
}

// Level parses LogLevel into a zapcore.Level, falling back to WarnLevel for
// an empty or unrecognized value.
func (t Tuning) Level() zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(t.LogLevel)); err != nil {
		return zapcore.WarnLevel
	}
	return lvl
}

// Load reads Tuning from an optional config file plus DISPATCH_*-prefixed
// environment variables. configPath, if non-empty, names an explicit config
// file; otherwise Load searches for "dispatcher.yaml" in the current
// directory and /etc/eventpp. Finding no file in that search is not an
// error — defaults and environment variables still apply — but an explicit
// configPath that cannot be read is.
func Load(configPath string) (Tuning, error) {
	v := viper.New()

	v.SetDefault("log_level", "warn")
	v.SetDefault("log_panic_stacktrace", false)
	v.SetDefault("listener_warn_threshold", 0)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("dispatcher")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/eventpp")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Tuning{}, fmt.Errorf("dispatchcfg: reading config: %w", err)
		}
	}

	v.SetEnvPrefix("dispatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var tuning Tuning
	if err := v.Unmarshal(&tuning); err != nil {
		return Tuning{}, fmt.Errorf("dispatchcfg: unmarshaling config: %w", err)
	}
	return tuning, nil
}
