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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrActorGone is returned by asks whose target actor has been closed
	// or was never established.
	ErrActorGone = errors.New("actor is gone")

	// ErrWaitOnWorker is returned when WaitForEmpty is called from one of the
	// scheduler's own worker goroutines. Waiting there would deadlock.
	ErrWaitOnWorker = errors.New("cannot wait for empty from a worker of the same scheduler")

	// ErrSchedulerStopped indicates that the scheduler no longer accepts work.
	ErrSchedulerStopped = errors.New("scheduler is stopped")

	// ErrMailboxAlreadyOpen is raised when a mailbox is bound to a second scheduler.
	ErrMailboxAlreadyOpen = errors.New("mailbox is already open")

	// ErrRequestCanceled indicates that an async request was canceled before completion.
	ErrRequestCanceled = errors.New("request canceled")

	// ErrInvalidTileID is returned for tile identifiers outside of the tile pyramid.
	ErrInvalidTileID = errors.New("invalid tile id")

	// ErrDecodeFailed wraps every failure to decode tile, glyph or image bytes.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrInvalidConfig is returned when a configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAtlasFull is returned when images do not fit in the maximum atlas size.
	ErrAtlasFull = errors.New("atlas is full")

	// ErrNotFound is returned by file sources for resources that do not exist.
	// Loaders do not retry it.
	ErrNotFound = errors.New("resource not found")
)

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// ParseError is reported by a tile worker when a parse cycle fails.
// It carries the correlation id of the cycle that produced it.
type ParseError struct {
	CorrelationID uint64
	Err           error
}

var _ error = (*ParseError)(nil)

// NewParseError creates an instance of ParseError
func NewParseError(correlationID uint64, err error) *ParseError {
	return &ParseError{CorrelationID: correlationID, Err: err}
}

// Error implements the standard error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %d: %v", e.CorrelationID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Recovered converts a value returned by recover into an error.
// Errors are wrapped as is; any other value is formatted.
func Recovered(r any) *PanicError {
	if err, ok := r.(error); ok {
		return NewPanicError(err)
	}
	return NewPanicError(fmt.Errorf("%v", r))
}
