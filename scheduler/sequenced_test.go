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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestSequenced(t *testing.T) {
	t.Run("With tasks running one at a time in order", func(t *testing.T) {
		pool := NewThreaded(WithWorkers(4))
		seq := NewSequenced(pool)

		concurrent := atomic.NewInt32(0)
		overlap := atomic.NewBool(false)
		var mu sync.Mutex
		var order []int
		for i := range 200 {
			seq.Schedule(func() {
				if concurrent.Inc() > 1 {
					overlap.Store(true)
				}
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				concurrent.Dec()
			})
		}
		require.NoError(t, seq.WaitForEmpty(seq.Tag()))
		require.NoError(t, pool.Stop())

		assert.False(t, overlap.Load())
		require.Len(t, order, 200)
		for i, v := range order {
			assert.Equal(t, i, v)
		}
	})
	t.Run("With the weak handle tied to the pool", func(t *testing.T) {
		pool := NewThreaded(WithWorkers(1))
		seq := NewSequenced(pool)
		var got Scheduler
		assert.True(t, seq.Weak().Do(func(s Scheduler) { got = s }))
		assert.Same(t, seq, got)
		require.NoError(t, pool.Stop())
		assert.False(t, seq.Weak().Alive())
	})
}
