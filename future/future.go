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

package future

import (
	"context"
	"sync"
)

// Future is a value of type T that becomes available at some point, or an
// error if the value could not be produced.
//
// Example usage:
//
//	fut := future.New(func() (*tile.LayoutResult, error) {
//	    return parse(data)
//	})
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
//	defer cancel()
//
//	result, err := fut.Await(ctx)
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// New runs task on its own goroutine and returns the Future of its result.
func New[T any](task func() (T, error)) *Future[T] {
	promise := NewPromise[T]()
	go func() {
		value, err := task()
		if err != nil {
			promise.Failure(err)
			return
		}
		promise.Success(value)
	}()
	return promise.Future()
}

// Completed returns a Future that is already completed.
func Completed[T any](value T, err error) *Future[T] {
	promise := NewPromise[T]()
	if err != nil {
		promise.Failure(err)
	} else {
		promise.Success(value)
	}
	return promise.Future()
}

// Await blocks until the Future is completed or ctx is done. A canceled
// Await does not affect later calls.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the Future is completed
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Promise is the single assignment writer of a Future
type Promise[T any] struct {
	once   sync.Once
	future *Future[T]
}

// NewPromise creates a Promise with a pending Future
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{future: &Future[T]{done: make(chan struct{})}}
}

// Success completes the Future with value. Only the first completion counts.
func (p *Promise[T]) Success(value T) {
	p.once.Do(func() {
		p.future.value = value
		close(p.future.done)
	})
}

// Failure fails the Future with err. Only the first completion counts.
func (p *Promise[T]) Failure(err error) {
	p.once.Do(func() {
		p.future.err = err
		close(p.future.done)
	})
}

// Future returns the Future written by p
func (p *Promise[T]) Future() *Future[T] {
	return p.future
}
