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

package actor

import (
	"github.com/google/uuid"

	"github.com/tochemey/cartograph/log"
)

// PanicHandler receives panics recovered from the actor's message handlers.
type PanicHandler func(err error)

type config struct {
	name         string
	logger       log.Logger
	panicHandler PanicHandler
}

func newConfig(opts ...Option) *config {
	cfg := &config{logger: log.DiscardLogger}
	for _, opt := range opts {
		opt.Apply(cfg)
	}
	if cfg.name == "" {
		cfg.name = uuid.NewString()
	}
	return cfg
}

// Option is the interface that applies an actor option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*config)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*config)

// Apply applies the option
func (f OptionFunc) Apply(c *config) {
	f(c)
}

// WithName sets the actor name used in logs. Defaults to a random uuid.
func WithName(name string) Option {
	return OptionFunc(func(c *config) {
		c.name = name
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(c *config) {
		c.logger = logger
	})
}

// WithPanicHandler sets the handler of panicking messages.
// Without a handler the panic is logged at error level.
func WithPanicHandler(handler PanicHandler) Option {
	return OptionFunc(func(c *config) {
		c.panicHandler = handler
	})
}
