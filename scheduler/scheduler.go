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

// Package scheduler provides the execution contexts mailboxes are bound to.
//
// Two flavours are provided. ThreadedScheduler is a goroutine pool with one
// FIFO queue per Tag; workers visit tags round-robin and take at most one task
// per tag per visit. RunLoop is a cooperative single goroutine loop with a high
// and a default priority queue, meant to be driven by its owner or embedded in
// a foreign event loop.
//
// Mailboxes only ever hold a Weak handle to their scheduler. Once a scheduler
// is stopped the handle is revoked and scheduling through it becomes a no-op.
package scheduler

import (
	"sync"

	"go.uber.org/atomic"
)

// Tag groups tasks of a ThreadedScheduler into one FIFO queue.
type Tag uint64

var tagSequence = atomic.NewUint64(0)

// NewTag returns a process wide unique Tag.
func NewTag() Tag {
	return Tag(tagSequence.Inc())
}

// Scheduler executes tasks.
type Scheduler interface {
	// Schedule enqueues task under the scheduler's own Tag.
	Schedule(task func())
	// ScheduleTag enqueues task under the given tag.
	ScheduleTag(tag Tag, task func())
	// WaitForEmpty blocks until no task of tag is queued or running.
	// It must not be called from a goroutine of the same scheduler.
	WaitForEmpty(tag Tag) error
	// Weak returns the revocable handle of the scheduler.
	Weak() *Weak
	// Tag returns the default tag of the scheduler.
	Tag() Tag
}

// Weak is a non owning, revocable handle to a Scheduler.
// The zero value and a nil *Weak are both dead handles.
type Weak struct {
	mu     sync.RWMutex
	target Scheduler
	parent *Weak
}

// NewWeak returns a live handle to s.
func NewWeak(s Scheduler) *Weak {
	return &Weak{target: s}
}

// newWeakView returns a handle that dies with its parent or when revoked itself.
func newWeakView(parent *Weak, s Scheduler) *Weak {
	return &Weak{target: s, parent: parent}
}

// Do runs fn with the scheduler while it is pinned and reports whether the
// scheduler was still alive. Revoke waits for in-flight calls to return.
func (w *Weak) Do(fn func(Scheduler)) bool {
	if w == nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.target == nil {
		return false
	}
	if w.parent != nil {
		target := w.target
		return w.parent.Do(func(Scheduler) { fn(target) })
	}
	fn(w.target)
	return true
}

// Alive reports whether the handle has not been revoked.
func (w *Weak) Alive() bool {
	return w.Do(func(Scheduler) {})
}

// Revoke kills the handle.
func (w *Weak) Revoke() {
	if w == nil {
		return
	}
	w.mu.Lock()
	w.target = nil
	w.mu.Unlock()
}
