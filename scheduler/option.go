/*
 * MIT License
 *
 * Copyright (c) 2022-2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package scheduler

import (
	"github.com/tochemey/cartograph/log"
	"github.com/tochemey/cartograph/telemetry"
)

// PanicHandler receives the error recovered from a panicking task.
type PanicHandler func(err error)

type options struct {
	name         string
	workers      int
	logger       log.Logger
	panicHandler PanicHandler
	metrics      *telemetry.Metrics
}

func defaultOptions() *options {
	return &options{
		name:    "scheduler",
		workers: 4,
		logger:  log.DiscardLogger,
	}
}

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*options)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*options)

// Apply applies the option
func (f OptionFunc) Apply(o *options) {
	f(o)
}

// WithName sets the name used in logs and metrics
func WithName(name string) Option {
	return OptionFunc(func(o *options) {
		o.name = name
	})
}

// WithWorkers sets the number of goroutines of a ThreadedScheduler.
// Values lower than one are ignored.
func WithWorkers(workers int) Option {
	return OptionFunc(func(o *options) {
		if workers > 0 {
			o.workers = workers
		}
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(o *options) {
		o.logger = logger
	})
}

// WithPanicHandler installs a handler for panicking tasks.
// Without a handler a ThreadedScheduler worker dies with the panic and the
// error is returned by Stop, while a RunLoop lets the panic propagate to the
// goroutine driving it.
func WithPanicHandler(handler PanicHandler) Option {
	return OptionFunc(func(o *options) {
		o.panicHandler = handler
	})
}

// WithMetrics sets the instruments tasks are recorded on
func WithMetrics(metrics *telemetry.Metrics) Option {
	return OptionFunc(func(o *options) {
		o.metrics = metrics
	})
}
