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

// Package mailbox implements the closeable FIFO that backs every actor.
package mailbox

import (
	"runtime"
	"sync"
	"weak"

	"github.com/edwingeng/deque"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/cartograph/errors"
	"github.com/tochemey/cartograph/internal/goid"
	"github.com/tochemey/cartograph/internal/reentrant"
	"github.com/tochemey/cartograph/scheduler"
)

// Message is a type erased unit of work executed by the mailbox owner
type Message func()

// State of a mailbox
type State int32

const (
	// Idle means no push or receive is in progress
	Idle State = iota
	// Processing means a push or a receive holds the mailbox
	Processing
	// Abandoned is terminal. Every push and receive is dropped.
	Abandoned
)

// Mailbox is an unbounded FIFO of messages bound to at most one scheduler.
//
// Push and Receive claim the mailbox by moving its state from Idle to
// Processing. They spin while another caller holds the claim and give up
// once the mailbox is Abandoned. The claim is released before a message
// runs and before a drain is scheduled, so a handler can push to its own
// mailbox and a scheduler may run the drain from inside Push.
//
// Receive executes one message per call under the receiving lock and
// schedules another drain when more messages remain, so a busy mailbox
// yields between messages. Locks are always taken in the order receiving
// then pushing. The receiving lock is re-entrant so that a handler may close
// its own mailbox.
type Mailbox struct {
	state *atomic.Int32

	receiving reentrant.Mutex
	pushing   sync.Mutex
	queueMu   sync.Mutex
	queue     deque.Deque
	closed    bool

	scheduler *scheduler.Weak
	opened    *atomic.Bool
	tag       scheduler.Tag
}

// New creates an unbound mailbox. Messages pushed before Open are queued.
func New() *Mailbox {
	return &Mailbox{
		state:  atomic.NewInt32(int32(Idle)),
		queue:  deque.NewDeque(),
		opened: atomic.NewBool(false),
		tag:    scheduler.NewTag(),
	}
}

// NewWithScheduler creates a mailbox bound to s.
func NewWithScheduler(s scheduler.Scheduler) *Mailbox {
	m := New()
	m.Open(s)
	return m
}

// Open binds the mailbox to s and schedules a drain for messages queued
// before. It panics when the mailbox is already open.
func (m *Mailbox) Open(s scheduler.Scheduler) {
	if !m.opened.CompareAndSwap(false, true) {
		panic(gerrors.ErrMailboxAlreadyOpen)
	}

	m.receiving.Lock()
	defer m.receiving.Unlock()
	m.pushing.Lock()
	defer m.pushing.Unlock()

	m.scheduler = s.Weak()
	if m.closed {
		return
	}
	if m.Len() > 0 {
		m.schedule(m.scheduler)
	}
}

// Push appends message. It is dropped silently once the mailbox is closed.
func (m *Mailbox) Push(message Message) {
	m.TryPush(message)
}

// TryPush appends message and reports whether it was queued.
func (m *Mailbox) TryPush(message Message) bool {
	if message == nil || !m.claim() {
		return false
	}

	m.pushing.Lock()
	if m.closed {
		m.state.Store(int32(Abandoned))
		m.pushing.Unlock()
		return false
	}

	m.queueMu.Lock()
	wasEmpty := m.queue.Empty()
	m.queue.PushBack(message)
	m.queueMu.Unlock()

	bound := m.scheduler
	m.state.Store(int32(Idle))
	m.pushing.Unlock()

	// the scheduler may run the drain synchronously
	if wasEmpty && bound != nil {
		m.schedule(bound)
	}
	return true
}

// Receive executes the oldest message. When more messages remain another
// drain is scheduled on the bound scheduler.
func (m *Mailbox) Receive() {
	id := goid.Current()
	m.receiving.LockAs(id)
	defer m.receiving.UnlockAs(id)

	if !m.claim() {
		return
	}
	if m.closed {
		m.state.Store(int32(Abandoned))
		return
	}

	m.queueMu.Lock()
	if m.queue.Empty() {
		m.queueMu.Unlock()
		m.state.Store(int32(Idle))
		return
	}
	message := m.queue.PopFront().(Message)
	m.queueMu.Unlock()

	// the message may push to or close this mailbox
	m.state.Store(int32(Idle))

	// a panicking message must not strand the ones queued behind it
	defer func() {
		if !m.closed && m.Len() > 0 {
			m.schedule(m.scheduler)
		}
	}()
	message()
}

// Close abandons the mailbox and waits for an in-flight push or receive to
// finish. It is idempotent and may be called from a message of the same
// mailbox.
func (m *Mailbox) Close() {
	m.Abandon()

	m.receiving.Lock()
	defer m.receiving.Unlock()
	m.pushing.Lock()
	defer m.pushing.Unlock()

	m.closed = true
	m.state.Store(int32(Abandoned))
	m.queueMu.Lock()
	m.queue = deque.NewDeque()
	m.queueMu.Unlock()
}

// Abandon moves an Idle mailbox to Abandoned. A mailbox held by a push or a
// receive is left alone.
func (m *Mailbox) Abandon() {
	m.state.CompareAndSwap(int32(Idle), int32(Abandoned))
}

// IsOpen reports whether the mailbox is bound and not closed
func (m *Mailbox) IsOpen() bool {
	m.pushing.Lock()
	defer m.pushing.Unlock()
	return m.opened.Load() && !m.closed
}

// IsClosed reports whether Close was called
func (m *Mailbox) IsClosed() bool {
	m.pushing.Lock()
	defer m.pushing.Unlock()
	return m.closed
}

// State returns the current state
func (m *Mailbox) State() State {
	return State(m.state.Load())
}

// Len returns the number of queued messages
func (m *Mailbox) Len() int {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	return m.queue.Len()
}

// Tag returns the scheduler tag drains of this mailbox are scheduled under
func (m *Mailbox) Tag() scheduler.Tag {
	return m.tag
}

// MaybeReceive receives on the mailbox when it is still reachable.
func MaybeReceive(ref weak.Pointer[Mailbox]) {
	if m := ref.Value(); m != nil {
		m.Receive()
	}
}

// claim moves the state from Idle to Processing. It returns false once the
// mailbox is Abandoned.
func (m *Mailbox) claim() bool {
	for {
		if m.state.CompareAndSwap(int32(Idle), int32(Processing)) {
			return true
		}
		if State(m.state.Load()) == Abandoned {
			return false
		}
		runtime.Gosched()
	}
}

// schedule asks the bound scheduler for a drain. The drain only holds a weak
// reference so a queued drain never keeps a dropped mailbox alive.
func (m *Mailbox) schedule(bound *scheduler.Weak) {
	ref := weak.Make(m)
	bound.Do(func(s scheduler.Scheduler) {
		s.ScheduleTag(m.tag, func() { MaybeReceive(ref) })
	})
}
