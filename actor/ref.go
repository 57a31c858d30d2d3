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

package actor

import (
	"weak"

	"github.com/tochemey/cartograph/mailbox"
)

// ActorRef is a copyable capability to send messages to an actor.
// It does not keep the actor alive.
type ActorRef[O any] struct {
	mailbox weak.Pointer[mailbox.Mailbox]
	cell    *cell[O]
}

func newActorRef[O any](m *mailbox.Mailbox, c *cell[O]) ActorRef[O] {
	return ActorRef[O]{mailbox: weak.Make(m), cell: c}
}

// Invoke sends fn to the actor. It reports whether the message was queued;
// false means the actor is gone.
func (x ActorRef[O]) Invoke(fn func(*O)) bool {
	return x.invoke(fn, nil)
}

func (x ActorRef[O]) invoke(fn func(*O), gone func()) bool {
	if x.cell == nil {
		return false
	}
	m := x.mailbox.Value()
	if m == nil {
		return false
	}
	c := x.cell
	return m.TryPush(func() { c.deliver(fn, gone) })
}

// Alive reports whether the actor's mailbox still accepts messages
func (x ActorRef[O]) Alive() bool {
	if x.cell == nil {
		return false
	}
	m := x.mailbox.Value()
	return m != nil && !m.IsClosed()
}

// Name returns the name of the actor
func (x ActorRef[O]) Name() string {
	if x.cell == nil {
		return ""
	}
	return x.cell.name
}

// OptionalActorRef is an ActorRef that may be empty
type OptionalActorRef[O any] struct {
	ref   ActorRef[O]
	valid bool
}

// Some wraps ref
func Some[O any](ref ActorRef[O]) OptionalActorRef[O] {
	return OptionalActorRef[O]{ref: ref, valid: true}
}

// None returns an empty reference
func None[O any]() OptionalActorRef[O] {
	return OptionalActorRef[O]{}
}

// Invoke sends fn when the reference is set. It reports whether fn was queued.
func (x OptionalActorRef[O]) Invoke(fn func(*O)) bool {
	if !x.valid {
		return false
	}
	return x.ref.Invoke(fn)
}

// Get returns the wrapped reference and whether it is set
func (x OptionalActorRef[O]) Get() (ActorRef[O], bool) {
	return x.ref, x.valid
}

// IsSet reports whether the reference is set
func (x OptionalActorRef[O]) IsSet() bool {
	return x.valid
}
