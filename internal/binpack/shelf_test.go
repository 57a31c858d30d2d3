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

package binpack

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShelf(t *testing.T) {
	t.Run("With rectangles sharing a shelf", func(t *testing.T) {
		packer := NewShelf(100, 100)
		first, ok := packer.Pack(40, 20)
		require.True(t, ok)
		second, ok := packer.Pack(40, 10)
		require.True(t, ok)

		assert.Equal(t, image.Rect(0, 0, 40, 20), first)
		assert.Equal(t, image.Rect(40, 0, 80, 10), second)
		assert.Equal(t, image.Pt(80, 20), packer.Size())
	})
	t.Run("With a new shelf when the row is full", func(t *testing.T) {
		packer := NewShelf(50, 100)
		_, ok := packer.Pack(40, 20)
		require.True(t, ok)
		rect, ok := packer.Pack(20, 20)
		require.True(t, ok)
		assert.Equal(t, image.Rect(0, 20, 20, 40), rect)
	})
	t.Run("With rectangles never overlapping", func(t *testing.T) {
		packer := NewShelf(64, 1024)
		var rects []image.Rectangle
		for i := range 60 {
			rect, ok := packer.Pack(5+i%17, 3+i%11)
			require.True(t, ok)
			rects = append(rects, rect)
		}
		for i := range rects {
			for j := i + 1; j < len(rects); j++ {
				assert.False(t, rects[i].Overlaps(rects[j]), "%v overlaps %v", rects[i], rects[j])
			}
		}
	})
	t.Run("With no room left", func(t *testing.T) {
		packer := NewShelf(10, 10)
		_, ok := packer.Pack(11, 1)
		assert.False(t, ok)
		_, ok = packer.Pack(10, 10)
		require.True(t, ok)
		_, ok = packer.Pack(1, 1)
		assert.False(t, ok)
	})
	t.Run("With an empty rectangle", func(t *testing.T) {
		packer := NewShelf(10, 10)
		rect, ok := packer.Pack(0, 4)
		assert.True(t, ok)
		assert.True(t, rect.Empty())
	})
}
