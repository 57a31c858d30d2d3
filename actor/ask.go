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
	"fmt"

	gerrors "github.com/tochemey/cartograph/errors"
	"github.com/tochemey/cartograph/future"
)

// Ask sends fn to the actor and returns the future of its result.
// The future fails with ErrActorGone when the actor cannot take the message
// and with a PanicError when fn panics. A message discarded by a concurrent
// Close never completes, so callers should await with a deadline.
func Ask[O, R any](ref ActorRef[O], fn func(*O) R) *future.Future[R] {
	promise := future.NewPromise[R]()
	gone := func() {
		promise.Failure(fmt.Errorf("actor=(%s): %w", ref.Name(), gerrors.ErrActorGone))
	}

	queued := ref.invoke(func(object *O) {
		defer func() {
			if r := recover(); r != nil {
				promise.Failure(gerrors.Recovered(r))
			}
		}()
		promise.Success(fn(object))
	}, gone)
	if !queued {
		gone()
	}
	return promise.Future()
}
