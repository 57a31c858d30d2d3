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

package reentrant

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/tochemey/cartograph/internal/goid"
)

func TestMutex(t *testing.T) {
	t.Run("With nested locks from the owner", func(t *testing.T) {
		var m Mutex
		m.Lock()
		m.Lock()
		assert.True(t, m.HeldByCaller())
		m.Unlock()
		assert.True(t, m.HeldByCaller())
		m.Unlock()
		assert.False(t, m.HeldByCaller())
	})
	t.Run("With another goroutine waiting", func(t *testing.T) {
		var m Mutex
		acquired := atomic.NewBool(false)
		m.Lock()

		done := make(chan struct{})
		go func() {
			m.Lock()
			acquired.Store(true)
			m.Unlock()
			close(done)
		}()

		time.Sleep(20 * time.Millisecond)
		require.False(t, acquired.Load())
		m.Unlock()
		<-done
		assert.True(t, acquired.Load())
	})
	t.Run("With a known goroutine id", func(t *testing.T) {
		var m Mutex
		id := goid.Current()
		m.LockAs(id)
		m.Lock()
		assert.True(t, m.HeldByCaller())
		m.Unlock()
		m.UnlockAs(id)
		assert.False(t, m.HeldByCaller())
		assert.Panics(t, func() { m.UnlockAs(id) })
	})
	t.Run("With unlock from a non owner", func(t *testing.T) {
		var m Mutex
		assert.Panics(t, m.Unlock)
	})
	t.Run("With contention", func(t *testing.T) {
		var m Mutex
		var wg sync.WaitGroup
		counter := 0
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 100 {
					m.Lock()
					m.Lock()
					counter++
					m.Unlock()
					m.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 800, counter)
	})
}
