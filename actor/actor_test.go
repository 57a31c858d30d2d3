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
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/cartograph/errors"
	"github.com/tochemey/cartograph/scheduler"
)

type recorder struct {
	self        ActorRef[recorder]
	mu          sync.Mutex
	values      []int
	closed      *atomic.Bool
	aliveAtStop *atomic.Bool
}

func (r *recorder) add(v int) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.values...)
}

func (r *recorder) Close() {
	r.aliveAtStop.Store(r.self.Alive())
	r.closed.Store(true)
}

func newRecorder(self ActorRef[recorder]) *recorder {
	return &recorder{self: self, closed: atomic.NewBool(false), aliveAtStop: atomic.NewBool(true)}
}

func TestActor(t *testing.T) {
	t.Run("With messages delivered in order", func(t *testing.T) {
		pool := scheduler.NewThreaded(scheduler.WithWorkers(4))
		act := New(pool, newRecorder)

		for i := range 100 {
			require.True(t, act.Self().Invoke(func(r *recorder) { r.add(i) }))
		}
		require.NoError(t, pool.WaitForEmpty(act.Tag()))

		values, err := Ask(act.Self(), func(r *recorder) []int { return r.snapshot() }).Await(context.Background())
		require.NoError(t, err)
		require.Len(t, values, 100)
		for i, v := range values {
			assert.Equal(t, i, v)
		}

		act.Close()
		require.NoError(t, pool.Stop())
	})
	t.Run("With self messages sent during construction", func(t *testing.T) {
		loop := scheduler.NewRunLoop()
		act := New(loop, func(self ActorRef[recorder]) *recorder {
			self.Invoke(func(r *recorder) { r.add(1) })
			return newRecorder(self)
		})
		loop.RunOnce()

		fut := Ask(act.Self(), func(r *recorder) []int { return r.snapshot() })
		loop.RunOnce()
		values, err := fut.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []int{1}, values)
		act.Close()
	})
	t.Run("With an aspiring actor receiving before establishment", func(t *testing.T) {
		loop := scheduler.NewRunLoop()
		aspiring := NewAspiring[recorder](WithName("early"))
		assert.Equal(t, "early", aspiring.Name())
		assert.Nil(t, aspiring.Object())

		aspiring.Self().Invoke(func(r *recorder) { r.add(7) })
		assert.Equal(t, 1, aspiring.Mailbox().Len())

		established := Establish(loop, aspiring, newRecorder)
		loop.RunOnce()
		assert.Equal(t, []int{7}, aspiring.Object().snapshot())
		established.Close()
	})
	t.Run("With close closing the mailbox before the object", func(t *testing.T) {
		loop := scheduler.NewRunLoop()
		act := New(loop, newRecorder)
		ref := act.Self()
		var object *recorder
		ref.Invoke(func(r *recorder) { object = r })
		loop.RunOnce()
		require.NotNil(t, object)

		act.Close()
		act.Close()
		assert.True(t, object.closed.Load())
		assert.False(t, object.aliveAtStop.Load())

		executed := atomic.NewBool(false)
		assert.False(t, ref.Invoke(func(*recorder) { executed.Store(true) }))
		loop.RunOnce()
		assert.False(t, executed.Load())
		assert.False(t, ref.Alive())
	})
	t.Run("With Ask on a closed actor", func(t *testing.T) {
		loop := scheduler.NewRunLoop()
		act := New(loop, newRecorder, WithName("gone"))
		act.Close()

		_, err := Ask(act.Self(), func(*recorder) int { return 1 }).Await(context.Background())
		assert.ErrorIs(t, err, gerrors.ErrActorGone)
		assert.ErrorContains(t, err, "gone")
	})
	t.Run("With Ask whose function panics", func(t *testing.T) {
		pool := scheduler.NewThreaded(scheduler.WithWorkers(1))
		act := New(pool, newRecorder)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, err := Ask(act.Self(), func(*recorder) int { panic("boom") }).Await(ctx)
		var panicErr *gerrors.PanicError
		assert.ErrorAs(t, err, &panicErr)

		act.Close()
		require.NoError(t, pool.Stop())
	})
	t.Run("With a panic handler", func(t *testing.T) {
		pool := scheduler.NewThreaded(scheduler.WithWorkers(1))
		handled := make(chan error, 1)
		act := New(pool, newRecorder, WithPanicHandler(func(err error) { handled <- err }))

		act.Self().Invoke(func(*recorder) { panic("boom") })
		assert.ErrorContains(t, <-handled, "boom")

		// the actor keeps working
		value, err := Ask(act.Self(), func(*recorder) int { return 3 }).Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, value)

		act.Close()
		require.NoError(t, pool.Stop())
	})
	t.Run("With a reference outliving a dropped actor", func(t *testing.T) {
		ref := func() ActorRef[recorder] {
			aspiring := NewAspiring[recorder]()
			return aspiring.Self()
		}()
		runtime.GC()
		assert.NotPanics(t, func() {
			ref.Invoke(func(*recorder) {})
		})
	})
}

func TestOptionalActorRef(t *testing.T) {
	t.Run("With no reference", func(t *testing.T) {
		ref := None[recorder]()
		assert.False(t, ref.IsSet())
		assert.False(t, ref.Invoke(func(*recorder) { t.Fail() }))
		var zero ActorRef[recorder]
		assert.False(t, zero.Invoke(func(*recorder) {}))
		assert.False(t, zero.Alive())
		assert.Empty(t, zero.Name())
	})
	t.Run("With a reference", func(t *testing.T) {
		loop := scheduler.NewRunLoop()
		act := New(loop, newRecorder)
		ref := Some(act.Self())
		assert.True(t, ref.IsSet())
		got, ok := ref.Get()
		assert.True(t, ok)
		assert.Equal(t, act.Name(), got.Name())

		executed := atomic.NewBool(false)
		assert.True(t, ref.Invoke(func(*recorder) { executed.Store(true) }))
		loop.RunOnce()
		assert.True(t, executed.Load())
		act.Close()
	})
}
