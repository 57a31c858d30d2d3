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

	"github.com/edwingeng/deque"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/cartograph/errors"
	"github.com/tochemey/cartograph/internal/goid"
	"github.com/tochemey/cartograph/log"
	"github.com/tochemey/cartograph/telemetry"
)

// tagQueue is the FIFO of one tag. All fields are guarded by the
// scheduler's mutex.
type tagQueue struct {
	tasks   deque.Deque
	running int
	waiters int
	ready   bool
	drained *sync.Cond
}

func (q *tagQueue) idle() bool {
	return q.running == 0 && q.tasks.Empty()
}

// ThreadedScheduler is a pool of goroutines executing tasks from per-tag
// FIFO queues.
//
// Tags holding queued tasks sit in a ready ring. A worker pops the tag at the
// front of the ring, takes its oldest task and puts the tag back at the end
// of the ring when it still has work, so every tag gets at most one task per
// round and a busy tag cannot starve the others. Tasks of one tag are started
// in FIFO order; two workers may run tasks of the same tag at the same time,
// callers needing strict serialization use a mailbox or a Sequenced view.
type ThreadedScheduler struct {
	name         string
	logger       log.Logger
	panicHandler PanicHandler
	metrics      *telemetry.Metrics

	mu         sync.Mutex
	available  *sync.Cond
	queues     map[Tag]*tagQueue
	ready      deque.Deque
	workerIDs  map[uint64]struct{}
	terminated bool
	closed     bool
	failures   error

	group   errgroup.Group
	weak    *Weak
	tag     Tag
	stopped *atomic.Bool
}

var _ Scheduler = (*ThreadedScheduler)(nil)

// NewThreaded creates a ThreadedScheduler and starts its workers.
func NewThreaded(opts ...Option) *ThreadedScheduler {
	config := defaultOptions()
	for _, opt := range opts {
		opt.Apply(config)
	}

	s := &ThreadedScheduler{
		name:         config.name,
		logger:       config.logger.With("scheduler", config.name),
		panicHandler: config.panicHandler,
		metrics:      config.metrics,
		queues:       make(map[Tag]*tagQueue),
		ready:        deque.NewDeque(),
		workerIDs:    make(map[uint64]struct{}, config.workers),
		tag:          NewTag(),
		stopped:      atomic.NewBool(false),
	}
	s.available = sync.NewCond(&s.mu)
	s.weak = NewWeak(s)

	for range config.workers {
		s.group.Go(s.work)
	}
	s.logger.Debugf("scheduler started with %d workers", config.workers)
	return s
}

// Schedule enqueues task under the scheduler's own tag, which gives a global
// FIFO for callers that do not care about tags.
func (s *ThreadedScheduler) Schedule(task func()) {
	s.ScheduleTag(s.tag, task)
}

// ScheduleTag enqueues task at the back of the tag's queue.
// Tasks scheduled after Stop has returned are dropped.
func (s *ThreadedScheduler) ScheduleTag(tag Tag, task func()) {
	if task == nil {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("task dropped: scheduler is stopped")
		return
	}
	q := s.queue(tag)
	q.tasks.PushBack(task)
	if !q.ready {
		q.ready = true
		s.ready.PushBack(tag)
	}
	s.mu.Unlock()
	s.available.Signal()
}

// WaitForEmpty blocks until the tag's queue is empty and none of its tasks is
// running. It returns ErrWaitOnWorker when called from a worker of this pool.
func (s *ThreadedScheduler) WaitForEmpty(tag Tag) error {
	id := goid.Current()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workerIDs[id]; ok {
		return gerrors.ErrWaitOnWorker
	}

	q, ok := s.queues[tag]
	if !ok {
		return nil
	}
	q.waiters++
	for !q.idle() {
		q.drained.Wait()
	}
	q.waiters--
	s.release(tag, q)
	return nil
}

// Weak returns the revocable handle of the scheduler
func (s *ThreadedScheduler) Weak() *Weak {
	return s.weak
}

// Tag returns the default tag
func (s *ThreadedScheduler) Tag() Tag {
	return s.tag
}

// Name returns the scheduler name
func (s *ThreadedScheduler) Name() string {
	return s.name
}

// Len returns the number of queued tasks of tag.
func (s *ThreadedScheduler) Len(tag Tag) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.queues[tag]; ok {
		return q.tasks.Len()
	}
	return 0
}

// Stop lets the workers drain every queued task, including tasks scheduled by
// the tasks being drained, then joins them and revokes the weak handle.
// It returns the panics that killed workers when no panic handler is installed,
// and ErrWaitOnWorker when called from a worker of this pool.
func (s *ThreadedScheduler) Stop() error {
	id := goid.Current()
	s.mu.Lock()
	_, onWorker := s.workerIDs[id]
	s.mu.Unlock()
	if onWorker {
		return gerrors.ErrWaitOnWorker
	}

	if !s.stopped.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	s.terminated = true
	s.mu.Unlock()
	s.available.Broadcast()

	// the first failure is also recorded in s.failures
	_ = s.group.Wait()

	s.mu.Lock()
	s.closed = true
	dropped := 0
	for _, q := range s.queues {
		dropped += q.tasks.Len()
	}
	err := s.failures
	s.failures = nil
	s.mu.Unlock()

	s.weak.Revoke()
	if dropped > 0 {
		s.logger.Warnf("scheduler stopped with %d undrained tasks", dropped)
	}
	s.logger.Debug("scheduler stopped")
	return err
}

func (s *ThreadedScheduler) work() error {
	id := goid.Current()
	s.mu.Lock()
	s.workerIDs[id] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.workerIDs, id)
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		for s.ready.Empty() && !s.terminated {
			s.available.Wait()
		}
		if s.ready.Empty() {
			s.mu.Unlock()
			return nil
		}

		tag := s.ready.PopFront().(Tag)
		q := s.queues[tag]
		task := q.tasks.PopFront().(func())
		q.running++
		requeued := !q.tasks.Empty()
		if requeued {
			s.ready.PushBack(tag)
		} else {
			q.ready = false
		}
		s.mu.Unlock()
		if requeued {
			s.available.Signal()
		}

		err := s.execute(task)

		s.mu.Lock()
		q.running--
		if q.idle() {
			q.drained.Broadcast()
			s.release(tag, q)
		}
		if err != nil && s.panicHandler == nil {
			s.failures = multierr.Append(s.failures, err)
		}
		s.mu.Unlock()

		if err != nil {
			if s.panicHandler == nil {
				s.logger.Errorf("worker terminated by panicking task: %v", err)
				return err
			}
			s.panicHandler(err)
		}
	}
}

func (s *ThreadedScheduler) execute(task func()) (err error) {
	ctx := context.Background()
	defer func() {
		if r := recover(); r != nil {
			err = gerrors.Recovered(r)
			s.metrics.TaskPanicked(ctx, s.name)
		}
	}()
	task()
	s.metrics.TaskExecuted(ctx, s.name)
	return nil
}

// queue returns the queue of tag, creating it. Callers hold s.mu.
func (s *ThreadedScheduler) queue(tag Tag) *tagQueue {
	q, ok := s.queues[tag]
	if !ok {
		q = &tagQueue{tasks: deque.NewDeque(), drained: sync.NewCond(&s.mu)}
		s.queues[tag] = q
	}
	return q
}

// release forgets an idle queue nobody waits on. Callers hold s.mu.
func (s *ThreadedScheduler) release(tag Tag, q *tagQueue) {
	if q.idle() && q.waiters == 0 && !q.ready {
		delete(s.queues, tag)
	}
}
