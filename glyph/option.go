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

package glyph

import "github.com/tochemey/cartograph/log"

type options struct {
	library *Library
	loader  Loader
	logger  log.Logger
}

// Option configures a Manager
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

// WithLibrary sets the fonts used for loading and shaping
func WithLibrary(library *Library) Option {
	return OptionFunc(func(o *options) {
		o.library = library
	})
}

// WithLoader replaces the glyph loader. Shaping still uses the library.
func WithLoader(loader Loader) Option {
	return OptionFunc(func(o *options) {
		o.loader = loader
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(o *options) {
		o.logger = logger
	})
}
