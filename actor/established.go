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

	"github.com/tochemey/cartograph/scheduler"
)

// EstablishedActor is the half of an actor that constructs and owns its object.
type EstablishedActor[O any] struct {
	parent *AspiringActor[O]
	closed *atomic.Bool
}

// Establish builds the object of parent with factory and opens the mailbox on s.
// The factory runs on the calling goroutine and receives a reference to the
// actor itself; messages sent through it are delivered once the object exists.
func Establish[O any](s scheduler.Scheduler, parent *AspiringActor[O], factory func(self ActorRef[O]) *O) *EstablishedActor[O] {
	object := factory(parent.Self())
	parent.cell.object.Store(object)
	parent.mailbox.Open(s)
	parent.cell.logger.Debug("actor established")
	return &EstablishedActor[O]{parent: parent, closed: atomic.NewBool(false)}
}

// Close closes the mailbox, waiting for a message in flight, then lets the
// object release its resources and finally empties the storage.
// It is idempotent.
func (x *EstablishedActor[O]) Close() {
	if !x.closed.CompareAndSwap(false, true) {
		return
	}

	x.parent.mailbox.Close()
	if object := x.parent.cell.object.Load(); object != nil {
		if closer, ok := any(object).(Closer); ok {
			closer.Close()
		}
	}
	x.parent.cell.object.Store(nil)
	x.parent.cell.logger.Debug("actor closed")
}
