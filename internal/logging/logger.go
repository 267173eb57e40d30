// Copyright (c) 2025 Kenes
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is a zap level name; empty means info.
	Level string
	// Dir is where kenes.log is rotated. Empty disables the file core.
	Dir string
	// Verbose adds a human-readable console core at debug level.
	Verbose bool
	// Console receives verbose output. Defaults to stderr.
	Console io.Writer
}

// New builds the CLI logger: JSON lines rotated by lumberjack in Dir, plus a
// console core when Verbose. Every message and string field is masked.
// The returned func flushes buffered entries.
func New(opts Options) (*zap.Logger, func() error, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		l, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, err
		}
		level = l
	}

	var cores []zapcore.Core
	if opts.Dir != "" {
		rotator := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, "kenes.log"),
			MaxSize:    5, // Megabytes
			MaxBackups: 3,
			MaxAge:     14, // Days
			Compress:   true,
		}
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(rotator),
			level,
		))
	}
	if opts.Verbose {
		w := opts.Console
		if w == nil {
			w = os.Stderr
		}
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(zapcore.AddSync(w)),
			zapcore.DebugLevel,
		))
	}
	if len(cores) == 0 {
		return zap.NewNop(), func() error { return nil }, nil
	}

	l := zap.New(maskCore{zapcore.NewTee(cores...)})
	return l, l.Sync, nil
}

// maskCore runs Mask over the message and string fields of every entry.
type maskCore struct {
	zapcore.Core
}

func (c maskCore) With(fields []zapcore.Field) zapcore.Core {
	return maskCore{c.Core.With(maskFields(fields))}
}

func (c maskCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c maskCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = Mask(ent.Message)
	return c.Core.Write(ent, maskFields(fields))
}

func maskFields(fields []zapcore.Field) []zapcore.Field {
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		if f.Type == zapcore.StringType {
			f.String = Mask(f.String)
		}
		out[i] = f
	}
	return out
}
