// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logutil

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matrixorigin/refmap/pkg/common/moerr"
)

// LogConfig is the configuration of the global logger.
type LogConfig struct {
	// Level is the minimum enabled logging level, one of zapcore's level
	// strings. Default: info.
	Level string `toml:"level"`
	// Format is the encoder format, console or json. Default: console.
	Format string `toml:"format"`
	// Filename, when set, appends a rotated file sink next to the console
	// sink.
	Filename string `toml:"filename"`
	// MaxSize is the maximum size in MB of a log file before rotation.
	MaxSize int `toml:"max-size"`
	// MaxDays is the maximum days of log file to be kept.
	MaxDays int `toml:"max-days"`
	// MaxBackups is the maximum numbers of log file to be retained.
	MaxBackups int `toml:"max-backups"`
	// StacktraceLevel is the level at and above which stacktraces are
	// captured. Default: fatal.
	StacktraceLevel string `toml:"stacktrace-level"`
}

// ZapSink is one encoder/syncer pair of the logger core.
type ZapSink struct {
	enc zapcore.Encoder
	out zapcore.WriteSyncer
}

// SetupLogger initializes the global zap logger from cfg and installs it
// via zap.ReplaceGlobals. It panics on an unsupported format or a
// directory filename, mirroring boot-time config validation.
func SetupLogger(cfg *LogConfig) {
	var cores []zapcore.Core
	level := cfg.getLevel()
	for _, sink := range cfg.getSinks() {
		cores = append(cores, zapcore.NewCore(sink.enc, sink.out, level))
	}
	logger := zap.New(zapcore.NewTee(cores...), cfg.getOptions()...)
	replaceGlobalLogger(logger)
}

func (cfg *LogConfig) getLevel() zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	l := cfg.Level
	if l == "" {
		l = "info"
	}
	if err := level.UnmarshalText([]byte(l)); err != nil {
		panic(moerr.NewBadConfig("unsupported log level: %s", cfg.Level))
	}
	return level
}

func (cfg *LogConfig) getStacktraceLevel() zapcore.Level {
	var level zapcore.Level
	l := cfg.StacktraceLevel
	if l == "" {
		l = "fatal"
	}
	if err := level.UnmarshalText([]byte(l)); err != nil {
		panic(moerr.NewBadConfig("unsupported stacktrace level: %s", cfg.StacktraceLevel))
	}
	return level
}

func (cfg *LogConfig) getOptions() []zap.Option {
	return []zap.Option{zap.AddStacktrace(cfg.getStacktraceLevel()), zap.AddCaller()}
}

func (cfg *LogConfig) getSyncer() zapcore.WriteSyncer {
	if cfg.Filename != "" {
		if fi, err := os.Stat(cfg.Filename); err == nil && fi.IsDir() {
			panic("log file can't be a directory")
		}
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxDays,
			MaxBackups: cfg.MaxBackups,
		})
	}
	return getConsoleSyncer()
}

func (cfg *LogConfig) getEncoder() zapcore.Encoder {
	format := cfg.Format
	if format == "" {
		format = "console"
	}
	return getLoggerEncoder(format)
}

func (cfg *LogConfig) getSinks() []ZapSink {
	sinks := []ZapSink{{getLoggerEncoder("console"), getConsoleSyncer()}}
	if cfg.Filename != "" {
		sinks = append(sinks, ZapSink{cfg.getEncoder(), cfg.getSyncer()})
	}
	return sinks
}

func getConsoleSyncer() zapcore.WriteSyncer {
	return zapcore.Lock(os.Stderr)
}

func getLoggerEncoder(format string) zapcore.Encoder {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "name",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000 -0700"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	switch format {
	case "json":
		return zapcore.NewJSONEncoder(encoderCfg)
	case "console":
		return zapcore.NewConsoleEncoder(encoderCfg)
	default:
		panic(moerr.NewInternalError("unsupported log format: %s", format))
	}
}
