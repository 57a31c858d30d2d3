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

// Package actor implements typed actors on top of mailboxes.
//
// An actor is split in two halves. The AspiringActor owns the mailbox and
// the storage of the object and can hand out references before the object
// exists. The EstablishedActor constructs the object, opens the mailbox on a
// scheduler and tears both down in order: mailbox first, object second.
//
// Messages are plain closures over the object:
//
//	tile := actor.New(pool, func(self actor.ActorRef[Worker]) *Worker {
//	    return NewWorker(self)
//	})
//	tile.Self().Invoke(func(w *Worker) { w.SetData(raw, 1) })
//
// Sending to an actor that is gone is a no-op.
package actor

import (
	"github.com/tochemey/cartograph/scheduler"
)

// Actor is an AspiringActor and its EstablishedActor in one value
type Actor[O any] struct {
	aspiring    *AspiringActor[O]
	established *EstablishedActor[O]
}

// New creates an actor whose object is built by factory and whose messages
// run on s.
func New[O any](s scheduler.Scheduler, factory func(self ActorRef[O]) *O, opts ...Option) *Actor[O] {
	aspiring := NewAspiring[O](opts...)
	return &Actor[O]{
		aspiring:    aspiring,
		established: Establish(s, aspiring, factory),
	}
}

// Self returns a reference to the actor
func (x *Actor[O]) Self() ActorRef[O] {
	return x.aspiring.Self()
}

// Name returns the actor name
func (x *Actor[O]) Name() string {
	return x.aspiring.Name()
}

// Tag returns the scheduler tag the actor's messages run under
func (x *Actor[O]) Tag() scheduler.Tag {
	return x.aspiring.mailbox.Tag()
}

// Close tears the actor down. See EstablishedActor.Close.
func (x *Actor[O]) Close() {
	x.established.Close()
}
