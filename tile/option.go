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

package tile

import (
	"github.com/tochemey/cartograph/log"
	"github.com/tochemey/cartograph/telemetry"
)

type options struct {
	config   Config
	decoder  Decoder
	glyphs   GlyphSource
	images   ImageSource
	observer Observer
	logger   log.Logger
	metrics  *telemetry.Metrics
}

func newOptions(opts ...Option) *options {
	o := &options{
		config:   DefaultConfig(),
		decoder:  MVTDecoder{},
		observer: noopObserver{},
		logger:   log.DiscardLogger,
	}
	for _, opt := range opts {
		opt.Apply(o)
	}
	return o
}

// Option configures a tile
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*options)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*options)

// Apply applies the options
func (f OptionFunc) Apply(o *options) {
	f(o)
}

// WithConfig sets the tile Config
func WithConfig(config Config) Option {
	return OptionFunc(func(o *options) {
		o.config = config
	})
}

// WithDecoder sets the decoder of raw tile data
func WithDecoder(decoder Decoder) Option {
	return OptionFunc(func(o *options) {
		o.decoder = decoder
	})
}

// WithGlyphSource sets where glyphs are requested from. Without one, labels
// resolve with every glyph missing.
func WithGlyphSource(source GlyphSource) Option {
	return OptionFunc(func(o *options) {
		o.glyphs = source
	})
}

// WithImageSource sets where icons are requested from
func WithImageSource(source ImageSource) Option {
	return OptionFunc(func(o *options) {
		o.images = source
	})
}

// WithObserver sets the observer told about tile changes
func WithObserver(observer Observer) Option {
	return OptionFunc(func(o *options) {
		o.observer = observer
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(o *options) {
		o.logger = logger
	})
}

// WithMetrics sets the metrics tiles record to
func WithMetrics(metrics *telemetry.Metrics) Option {
	return OptionFunc(func(o *options) {
		o.metrics = metrics
	})
}
