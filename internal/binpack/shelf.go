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

// Package binpack packs rectangles into a growing shelf layout.
package binpack

import "image"

type shelf struct {
	y, height, used int
}

// Shelf packs rectangles row by row. Each shelf has the height of the first
// rectangle that opened it; later rectangles go to the shelf wasting the
// least height. The bin grows downwards up to maxHeight.
type Shelf struct {
	width     int
	maxHeight int
	height    int
	shelves   []shelf
}

// NewShelf creates a packer of the given width and maximum height
func NewShelf(width, maxHeight int) *Shelf {
	return &Shelf{width: width, maxHeight: maxHeight}
}

// Pack reserves a w×h rectangle and reports whether it fit.
func (s *Shelf) Pack(w, h int) (image.Rectangle, bool) {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, true
	}
	if w > s.width {
		return image.Rectangle{}, false
	}

	best := -1
	for i, sh := range s.shelves {
		if sh.height < h || s.width-sh.used < w {
			continue
		}
		if best < 0 || sh.height < s.shelves[best].height {
			best = i
		}
	}
	if best >= 0 {
		sh := &s.shelves[best]
		rect := image.Rect(sh.used, sh.y, sh.used+w, sh.y+h)
		sh.used += w
		return rect, true
	}

	if s.height+h > s.maxHeight {
		return image.Rectangle{}, false
	}
	s.shelves = append(s.shelves, shelf{y: s.height, height: h, used: w})
	rect := image.Rect(0, s.height, w, s.height+h)
	s.height += h
	return rect, true
}

// Size returns the bounding size of everything packed so far
func (s *Shelf) Size() image.Point {
	width := 0
	for _, sh := range s.shelves {
		width = max(width, sh.used)
	}
	return image.Pt(width, s.height)
}
