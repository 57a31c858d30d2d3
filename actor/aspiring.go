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
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/cartograph/errors"
	"github.com/tochemey/cartograph/log"
	"github.com/tochemey/cartograph/mailbox"
)

// Closer is implemented by actor objects that release resources when their
// actor is closed. Close runs after the mailbox is closed.
type Closer interface {
	Close()
}

// cell is the storage of an actor object. It exists before the object does
// so that references can be handed out during construction.
type cell[O any] struct {
	object       *atomic.Pointer[O]
	name         string
	logger       log.Logger
	panicHandler PanicHandler
}

// deliver runs fn against the object on the actor's own goroutine, or gone
// when the object was already released. Panics stop at this boundary.
func (x *cell[O]) deliver(fn func(*O), gone func()) {
	object := x.object.Load()
	if object == nil {
		if gone != nil {
			gone()
		}
		return
	}

	defer func() {
		if r := recover(); r != nil {
			err := gerrors.Recovered(r)
			if x.panicHandler != nil {
				x.panicHandler(err)
				return
			}
			x.logger.Errorf("actor=(%s) message panicked: %v", x.name, err)
		}
	}()
	fn(object)
}

// AspiringActor is the half of an actor that exists before its object.
// It owns an unopened mailbox and the object storage; references obtained
// from Self queue their messages until the actor is established.
type AspiringActor[O any] struct {
	mailbox *mailbox.Mailbox
	cell    *cell[O]
}

// NewAspiring creates the aspiring half of an actor
func NewAspiring[O any](opts ...Option) *AspiringActor[O] {
	cfg := newConfig(opts...)
	return &AspiringActor[O]{
		mailbox: mailbox.New(),
		cell: &cell[O]{
			object:       atomic.NewPointer[O](nil),
			name:         cfg.name,
			logger:       cfg.logger.With("actor", cfg.name),
			panicHandler: cfg.panicHandler,
		},
	}
}

// Self returns a reference to the actor being built
func (x *AspiringActor[O]) Self() ActorRef[O] {
	return newActorRef(x.mailbox, x.cell)
}

// Mailbox returns the mailbox of the actor
func (x *AspiringActor[O]) Mailbox() *mailbox.Mailbox {
	return x.mailbox
}

// Name returns the actor name
func (x *AspiringActor[O]) Name() string {
	return x.cell.name
}

// Object returns the object once established. It must only be used from
// the actor's own messages or once the scheduler is drained.
func (x *AspiringActor[O]) Object() *O {
	return x.cell.object.Load()
}
