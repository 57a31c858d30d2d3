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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/cartograph/errors"
)

func TestRunLoop(t *testing.T) {
	t.Run("With high priority drained first", func(t *testing.T) {
		loop := NewRunLoop()
		var order []string
		loop.Push(PriorityDefault, func() { order = append(order, "default-1") })
		loop.Push(PriorityHigh, func() { order = append(order, "high-1") })
		loop.Push(PriorityDefault, func() { order = append(order, "default-2") })
		loop.Push(PriorityHigh, func() { order = append(order, "high-2") })

		loop.RunOnce()
		assert.Equal(t, []string{"high-1", "high-2", "default-1", "default-2"}, order)
		assert.Zero(t, loop.Len())
	})
	t.Run("With no high priority recheck during a default drain", func(t *testing.T) {
		loop := NewRunLoop()
		var order []string
		loop.Push(PriorityDefault, func() {
			order = append(order, "default-1")
			loop.Push(PriorityHigh, func() { order = append(order, "high-late") })
		})
		loop.Push(PriorityDefault, func() { order = append(order, "default-2") })

		loop.Process()
		assert.Equal(t, []string{"default-1", "default-2"}, order)
		assert.Equal(t, 1, loop.Len())

		loop.Process()
		assert.Equal(t, []string{"default-1", "default-2", "high-late"}, order)
	})
	t.Run("With the platform callback", func(t *testing.T) {
		loop := NewRunLoop()
		woken := atomic.NewInt32(0)
		loop.SetPlatformCallback(func() { woken.Inc() })
		loop.Invoke(func() {})
		loop.Invoke(func() {})
		assert.EqualValues(t, 2, woken.Load())
		loop.RunOnce()
	})
	t.Run("With a canceled invocation", func(t *testing.T) {
		loop := NewRunLoop()
		executed := atomic.NewBool(false)
		request := loop.InvokeCancellable(func() { executed.Store(true) })
		request.Cancel()
		loop.RunOnce()
		assert.True(t, request.Canceled())
		assert.False(t, executed.Load())
	})
	t.Run("With an invocation canceling itself", func(t *testing.T) {
		loop := NewRunLoop()
		var request *AsyncRequest
		executed := atomic.NewBool(false)
		request = loop.InvokeCancellable(func() {
			request.Cancel()
			executed.Store(true)
		})
		loop.RunOnce()
		assert.True(t, executed.Load())
		assert.True(t, request.Canceled())
	})
	t.Run("With Run and WaitForEmpty", func(t *testing.T) {
		loop := NewRunLoop()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errc := make(chan error, 1)
		go func() { errc <- loop.Run(ctx) }()

		executed := atomic.NewInt32(0)
		for range 20 {
			loop.Schedule(func() { executed.Inc() })
		}
		require.NoError(t, loop.WaitForEmpty(loop.Tag()))
		assert.EqualValues(t, 20, executed.Load())

		loop.Stop()
		require.NoError(t, <-errc)
		assert.False(t, loop.Weak().Alive())
	})
	t.Run("With Run returning on context cancellation", func(t *testing.T) {
		loop := NewRunLoop()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, loop.Run(ctx), context.DeadlineExceeded)
		loop.Stop()
	})
	t.Run("With WaitForEmpty from inside the loop", func(t *testing.T) {
		loop := NewRunLoop()
		var err error
		loop.Schedule(func() { err = loop.WaitForEmpty(loop.Tag()) })
		loop.RunOnce()
		assert.ErrorIs(t, err, gerrors.ErrWaitOnWorker)
	})
	t.Run("With a panic handler", func(t *testing.T) {
		var handled error
		loop := NewRunLoop(WithPanicHandler(func(err error) { handled = err }))
		executed := atomic.NewBool(false)
		loop.Schedule(func() { panic("boom") })
		loop.Schedule(func() { executed.Store(true) })
		loop.RunOnce()
		assert.ErrorContains(t, handled, "boom")
		assert.True(t, executed.Load())
	})
	t.Run("Without a panic handler the tasks after the panic stay queued", func(t *testing.T) {
		loop := NewRunLoop()
		var order []string
		loop.Schedule(func() { panic("boom") })
		loop.Schedule(func() { order = append(order, "a") })
		loop.Schedule(func() { order = append(order, "b") })

		assert.PanicsWithValue(t, "boom", loop.RunOnce)
		assert.Empty(t, order)
		assert.Equal(t, 2, loop.Len())

		loop.RunOnce()
		assert.Equal(t, []string{"a", "b"}, order)
		assert.Zero(t, loop.Len())

		done := make(chan error, 1)
		go func() { done <- loop.WaitForEmpty(loop.Tag()) }()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("WaitForEmpty did not return")
		}
	})
	t.Run("With tasks pushed after Stop", func(t *testing.T) {
		loop := NewRunLoop()
		loop.Schedule(func() {})
		loop.Stop()
		executed := atomic.NewBool(false)
		loop.Schedule(func() { executed.Store(true) })
		loop.RunOnce()
		assert.False(t, executed.Load())
		require.NoError(t, loop.WaitForEmpty(loop.Tag()))
	})
}
