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

package glyph

import (
	"image"
	"slices"

	"golang.org/x/image/draw"

	gerrors "github.com/tochemey/cartograph/errors"
	"github.com/tochemey/cartograph/internal/binpack"
)

// atlasPadding keeps neighbouring glyphs from bleeding into each other
const atlasPadding = 1

// Position locates a glyph in an Atlas
type Position struct {
	Rect    image.Rectangle
	Metrics Metrics
}

// Atlas packs glyph bitmaps into a single alpha texture
type Atlas struct {
	Image     *image.Alpha
	Positions map[FontStack]map[rune]Position
}

// NewAtlas packs every non-empty glyph of glyphs. maxSize bounds both sides
// of the texture.
func NewAtlas(glyphs GlyphMap, maxSize int) (*Atlas, error) {
	type entry struct {
		stack FontStack
		glyph *Glyph
	}

	entries := make([]entry, 0)
	for stack, set := range glyphs {
		for _, g := range set {
			if g != nil {
				entries = append(entries, entry{stack: stack, glyph: g})
			}
		}
	}
	// tallest first keeps shelves dense, ties broken for a stable layout
	slices.SortFunc(entries, func(a, b entry) int {
		if d := b.glyph.Metrics.Height - a.glyph.Metrics.Height; d != 0 {
			return d
		}
		if a.stack != b.stack {
			if a.stack < b.stack {
				return -1
			}
			return 1
		}
		return int(a.glyph.ID - b.glyph.ID)
	})

	packer := binpack.NewShelf(maxSize, maxSize)
	atlas := &Atlas{Positions: make(map[FontStack]map[rune]Position)}
	rects := make([]image.Rectangle, len(entries))
	for i, e := range entries {
		bounds := e.glyph.Bitmap.Bounds()
		rect, ok := packer.Pack(bounds.Dx()+2*atlasPadding, bounds.Dy()+2*atlasPadding)
		if !ok {
			return nil, gerrors.ErrAtlasFull
		}
		rects[i] = rect.Inset(atlasPadding)
	}

	size := packer.Size()
	atlas.Image = image.NewAlpha(image.Rect(0, 0, max(size.X, 1), max(size.Y, 1)))
	for i, e := range entries {
		rect := rects[i]
		if !rect.Empty() {
			draw.Draw(atlas.Image, rect, e.glyph.Bitmap, e.glyph.Bitmap.Bounds().Min, draw.Src)
		}
		positions, ok := atlas.Positions[e.stack]
		if !ok {
			positions = make(map[rune]Position)
			atlas.Positions[e.stack] = positions
		}
		positions[e.glyph.ID] = Position{Rect: rect, Metrics: e.glyph.Metrics}
	}
	return atlas, nil
}

// Lookup returns the position of r for stack
func (a *Atlas) Lookup(stack FontStack, r rune) (Position, bool) {
	if a == nil {
		return Position{}, false
	}
	pos, ok := a.Positions[stack][r]
	return pos, ok
}
