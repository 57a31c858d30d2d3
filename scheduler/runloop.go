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
	"context"
	"sync"

	"github.com/Workiva/go-datastructures/queue"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/cartograph/errors"
	"github.com/tochemey/cartograph/internal/goid"
	"github.com/tochemey/cartograph/internal/reentrant"
	"github.com/tochemey/cartograph/log"
	"github.com/tochemey/cartograph/telemetry"
)

// Priority selects the RunLoop queue a task goes to
type Priority int

const (
	// PriorityDefault is the queue of ordinary tasks
	PriorityDefault Priority = iota
	// PriorityHigh tasks run before any default task of the same pass
	PriorityHigh
)

const queueHint = 64

// RunLoop is a cooperative, single goroutine scheduler.
//
// Work is executed by Process, either from Run or from a foreign event loop
// that calls RunOnce whenever the platform callback fires. One pass drains the
// high priority queue and then the default queue, each up to the number of
// tasks present when the drain started.
type RunLoop struct {
	name             string
	logger           log.Logger
	panicHandler     PanicHandler
	metrics          *telemetry.Metrics
	high             *queue.Queue
	normal           *queue.Queue
	wake             chan struct{}
	done             chan struct{}
	owner            *atomic.Uint64
	stopped          *atomic.Bool
	platformCallback *atomic.Value

	mu      sync.Mutex
	drained *sync.Cond
	pending int

	weak *Weak
	tag  Tag
}

var _ Scheduler = (*RunLoop)(nil)

// NewRunLoop creates a RunLoop. The loop does nothing until Run or RunOnce is called.
func NewRunLoop(opts ...Option) *RunLoop {
	config := defaultOptions()
	config.name = "runloop"
	for _, opt := range opts {
		opt.Apply(config)
	}

	l := &RunLoop{
		name:             config.name,
		logger:           config.logger.With("scheduler", config.name),
		panicHandler:     config.panicHandler,
		metrics:          config.metrics,
		high:             queue.New(queueHint),
		normal:           queue.New(queueHint),
		wake:             make(chan struct{}, 1),
		done:             make(chan struct{}),
		owner:            atomic.NewUint64(0),
		stopped:          atomic.NewBool(false),
		platformCallback: new(atomic.Value),
		tag:              NewTag(),
	}
	l.drained = sync.NewCond(&l.mu)
	l.weak = NewWeak(l)
	return l
}

// Push enqueues task with the given priority and wakes the loop.
func (l *RunLoop) Push(priority Priority, task func()) {
	if task == nil {
		return
	}
	if l.stopped.Load() {
		l.logger.Warn("task dropped: run loop is stopped")
		return
	}

	target := l.normal
	if priority == PriorityHigh {
		target = l.high
	}

	l.mu.Lock()
	l.pending++
	l.mu.Unlock()

	if err := target.Put(task); err != nil {
		// the queue is disposed once the loop is stopped
		l.finish()
		l.logger.Warnf("task dropped: %v", err)
		return
	}

	select {
	case l.wake <- struct{}{}:
	default:
	}
	if callback, ok := l.platformCallback.Load().(func()); ok && callback != nil {
		callback()
	}
}

// Schedule pushes task with the default priority
func (l *RunLoop) Schedule(task func()) {
	l.Push(PriorityDefault, task)
}

// ScheduleTag pushes task with the default priority. A RunLoop has a single
// execution order so tags only matter to WaitForEmpty.
func (l *RunLoop) ScheduleTag(_ Tag, task func()) {
	l.Push(PriorityDefault, task)
}

// Invoke runs fn on the loop
func (l *RunLoop) Invoke(fn func()) {
	l.Push(PriorityDefault, fn)
}

// InvokeCancellable runs fn on the loop unless the returned request is
// canceled first.
func (l *RunLoop) InvokeCancellable(fn func()) *AsyncRequest {
	request := &AsyncRequest{canceled: atomic.NewBool(false)}
	l.Push(PriorityDefault, func() {
		request.mu.Lock()
		defer request.mu.Unlock()
		if request.canceled.Load() {
			return
		}
		fn()
	})
	return request
}

// SetPlatformCallback sets the function called every time a task is pushed.
// Foreign event loops use it to schedule a RunOnce on their own thread.
// The callback runs on the pushing goroutine and should only post a wake-up;
// calling RunOnce from it runs the loop inside the caller of Push.
func (l *RunLoop) SetPlatformCallback(callback func()) {
	l.platformCallback.Store(callback)
}

// Process runs one pass over the queues.
func (l *RunLoop) Process() {
	previous := l.owner.Swap(goid.Current())
	defer l.owner.Store(previous)

	l.drain(l.high)
	l.drain(l.normal)
}

// RunOnce runs one pass. It is the entry point for foreign event loops.
func (l *RunLoop) RunOnce() {
	l.Process()
}

// Run processes tasks on the calling goroutine until Stop is called or ctx is done.
func (l *RunLoop) Run(ctx context.Context) error {
	l.Process()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
			l.Process()
		}
	}
}

// Stop makes Run return, drops queued tasks and revokes the weak handle.
func (l *RunLoop) Stop() {
	if !l.stopped.CompareAndSwap(false, true) {
		return
	}
	close(l.done)
	l.weak.Revoke()

	dropped := len(l.high.Dispose()) + len(l.normal.Dispose())
	l.mu.Lock()
	l.pending -= dropped
	l.mu.Unlock()
	l.drained.Broadcast()
	if dropped > 0 {
		l.logger.Warnf("run loop stopped with %d unprocessed tasks", dropped)
	}
}

// WaitForEmpty blocks until every pushed task has run. Calling it from inside
// a task of this loop returns ErrWaitOnWorker.
func (l *RunLoop) WaitForEmpty(Tag) error {
	if l.owner.Load() == goid.Current() {
		return gerrors.ErrWaitOnWorker
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.pending > 0 {
		l.drained.Wait()
	}
	return nil
}

// Len returns the number of queued tasks
func (l *RunLoop) Len() int {
	return int(l.high.Len() + l.normal.Len())
}

// Weak returns the revocable handle of the loop
func (l *RunLoop) Weak() *Weak {
	return l.weak
}

// Tag returns the default tag
func (l *RunLoop) Tag() Tag {
	return l.tag
}

// drain runs the tasks present in q when it is called. Tasks are taken one at
// a time so that a task panicking without a handler leaves the rest queued.
func (l *RunLoop) drain(q *queue.Queue) {
	for n := q.Len(); n > 0; n-- {
		items, err := q.Get(1)
		if err != nil || len(items) == 0 {
			return
		}
		l.execute(items[0].(func()))
	}
}

func (l *RunLoop) execute(task func()) {
	defer l.finish()
	if l.panicHandler == nil {
		task()
		l.metrics.TaskExecuted(context.Background(), l.name)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			l.metrics.TaskPanicked(context.Background(), l.name)
			l.panicHandler(gerrors.Recovered(r))
		}
	}()
	task()
	l.metrics.TaskExecuted(context.Background(), l.name)
}

func (l *RunLoop) finish() {
	l.mu.Lock()
	l.pending--
	if l.pending <= 0 {
		l.pending = 0
		l.drained.Broadcast()
	}
	l.mu.Unlock()
}

// AsyncRequest is the handle of a cancellable invocation
type AsyncRequest struct {
	mu       reentrant.Mutex
	canceled *atomic.Bool
}

// Cancel prevents the invocation from running. When it returns the
// invocation is either finished or will never start. Cancel may be called
// from inside the invocation itself.
func (r *AsyncRequest) Cancel() {
	r.mu.Lock()
	r.canceled.Store(true)
	r.mu.Unlock()
}

// Canceled reports whether Cancel was called
func (r *AsyncRequest) Canceled() bool {
	return r.canceled.Load()
}
