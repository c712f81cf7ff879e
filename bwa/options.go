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

import "github.com/exascience/elbwa/native"

type options struct {
	engine  native.Engine
	logger  *Logger
	metrics MetricsRecorder
}

// Option configures a Reference or an Aligner.
type Option func(*options)

// WithEngine sets the native engine. The default is native.Default().
func WithEngine(engine native.Engine) Option {
	return func(o *options) {
		o.engine = engine
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

func (o *options) apply(opts []Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	if o.engine == nil {
		o.engine = native.Default()
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsRecorder{}
	}
	return o
}
