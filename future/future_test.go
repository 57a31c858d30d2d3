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

package future

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture(t *testing.T) {
	t.Run("With a successful task", func(t *testing.T) {
		fut := New(func() (int, error) { return 42, nil })
		value, err := fut.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 42, value)
	})
	t.Run("With a failing task", func(t *testing.T) {
		boom := errors.New("boom")
		fut := New(func() (string, error) { return "", boom })
		_, err := fut.Await(context.Background())
		assert.ErrorIs(t, err, boom)
	})
	t.Run("With a canceled await", func(t *testing.T) {
		promise := NewPromise[int]()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := promise.Future().Await(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		promise.Success(7)
		value, err := promise.Future().Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 7, value)
	})
	t.Run("With only the first completion counted", func(t *testing.T) {
		promise := NewPromise[int]()
		promise.Success(1)
		promise.Failure(errors.New("late"))
		promise.Success(2)
		value, err := promise.Future().Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, value)
		<-promise.Future().Done()
	})
	t.Run("With a completed future", func(t *testing.T) {
		_, err := Completed(0, context.Canceled).Await(context.Background())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
