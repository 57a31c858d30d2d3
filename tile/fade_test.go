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

package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFade(t *testing.T) {
	t.Run("With a superseded tile fading out", func(t *testing.T) {
		f := &fade{mode: Continuous}
		f.performedFadePlacement()
		assert.Equal(t, Loaded, f.state)
		assert.False(t, f.holdForFade())

		f.markRenderedPreviously()
		assert.Equal(t, NeedsFirstPlacement, f.state)
		assert.True(t, f.holdForFade())

		f.markRenderedPreviously()
		assert.Equal(t, NeedsFirstPlacement, f.state)

		f.performedFadePlacement()
		assert.Equal(t, NeedsSecondPlacement, f.state)
		assert.True(t, f.holdForFade())

		f.performedFadePlacement()
		assert.Equal(t, CanRemove, f.state)
		assert.False(t, f.holdForFade())
		assert.Equal(t, "can-remove", f.state.String())
	})
	t.Run("With a tile becoming ideal again", func(t *testing.T) {
		f := &fade{mode: Continuous}
		f.markRenderedPreviously()
		f.performedFadePlacement()
		f.markRenderedIdeal()
		assert.Equal(t, Loaded, f.state)
	})
	t.Run("With static mode", func(t *testing.T) {
		f := &fade{mode: Static}
		f.markRenderedPreviously()
		assert.False(t, f.holdForFade())
	})
}
