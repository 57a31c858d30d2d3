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
	"sync"

	"github.com/edwingeng/deque"
)

// Sequenced runs tasks one at a time, in submission order, on a shared
// ThreadedScheduler. Unrelated Sequenced views of the same pool run in
// parallel with each other.
type Sequenced struct {
	pool *ThreadedScheduler
	tag  Tag
	weak *Weak

	mu      sync.Mutex
	tasks   deque.Deque
	running bool
}

var _ Scheduler = (*Sequenced)(nil)

// NewSequenced creates a serial view over pool with a fresh tag.
func NewSequenced(pool *ThreadedScheduler) *Sequenced {
	s := &Sequenced{
		pool:  pool,
		tag:   NewTag(),
		tasks: deque.NewDeque(),
	}
	s.weak = newWeakView(pool.Weak(), s)
	return s
}

// Schedule appends task to the sequence
func (s *Sequenced) Schedule(task func()) {
	if task == nil {
		return
	}
	s.mu.Lock()
	s.tasks.PushBack(task)
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()
	s.pool.ScheduleTag(s.tag, s.next)
}

// ScheduleTag ignores tag: every task of a Sequenced view shares its tag.
func (s *Sequenced) ScheduleTag(_ Tag, task func()) {
	s.Schedule(task)
}

// WaitForEmpty waits for the whole sequence to drain
func (s *Sequenced) WaitForEmpty(Tag) error {
	return s.pool.WaitForEmpty(s.tag)
}

// Weak returns a handle that dies with the underlying pool
func (s *Sequenced) Weak() *Weak {
	return s.weak
}

// Tag returns the tag of the sequence
func (s *Sequenced) Tag() Tag {
	return s.tag
}

// next runs the oldest task and hands the sequence back to the pool while
// tasks remain. The hand-off happens before next returns so that the pool
// never sees the tag idle in between.
func (s *Sequenced) next() {
	s.mu.Lock()
	task := s.tasks.PopFront().(func())
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.tasks.Empty() {
			s.running = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		s.pool.ScheduleTag(s.tag, s.next)
	}()
	task()
}
