// elBWA: in-process BWA-MEM alignment for SAM/BAM pipelines.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elbwa/blob/master/LICENSE.txt>.

package bwa

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with field names for alignment operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler, or a text
// handler on stderr if handler is nil.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that writes human-readable text to
// stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithReference adds the reference id field to the logger.
func (l *Logger) WithReference(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("reference", id),
	}
}

// LogReferenceLoad logs the outcome of loading an index.
func (l *Logger) LogReferenceLoad(path, id string, contigs int, err error) {
	if err != nil {
		l.Error("reference load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.Info("reference loaded",
			"path", path,
			"reference", id,
			"contigs", contigs,
		)
	}
}

// LogAlignment logs the outcome of aligning a read pair.
func (l *Logger) LogAlignment(name string, records1, records2 int, err error) {
	if err != nil {
		l.Error("alignment failed",
			"read", name,
			"error", err,
		)
	} else {
		l.Debug("alignment completed",
			"read", name,
			"records1", records1,
			"records2", records2,
		)
	}
}

// LogDecodeFailure logs a SAM line of the given read (1 or 2) that
// could not be decoded.
func (l *Logger) LogDecodeFailure(name string, read int, err error) {
	l.Warn("decode failed",
		"read", name,
		"mate", read,
		"error", err,
	)
}
