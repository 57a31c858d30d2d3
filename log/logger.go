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

// Package log defines the leveled logger handed to schedulers, actors
// and tile workers, together with its zap implementation.
package log

import "io"

// Logger writes leveled entries. The f variants format their arguments
// the way fmt.Sprintf does. Implementations must be safe for concurrent use.
//
// There is no fatal or panic level: nothing in the pipeline is allowed to
// stop the process from a log call.
type Logger interface {
	Debug(...any)
	Debugf(string, ...any)
	Info(...any)
	Infof(string, ...any)
	Warn(...any)
	Warnf(string, ...any)
	Error(...any)
	Errorf(string, ...any)

	// With returns a child logger adding the key-value pairs to every entry.
	// Workers use it to tag entries with their tile id and source.
	With(keyValues ...any) Logger
	// Enabled reports whether entries at level are written.
	// Callers check it before building expensive debug arguments.
	Enabled(level Level) bool
	LogLevel() Level
	LogOutput() []io.Writer
	// Flush syncs buffered entries to file outputs.
	Flush() error
}
