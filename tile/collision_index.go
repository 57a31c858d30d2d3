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

import "github.com/paulmach/orb"

const collisionCellSize = 64

type cell struct {
	x, y int
}

// CollisionIndex answers whether a screen box overlaps a box placed before.
// Boxes are in pixels.
type CollisionIndex struct {
	cells map[cell][]orb.Bound
}

// NewCollisionIndex creates an empty CollisionIndex
func NewCollisionIndex() *CollisionIndex {
	return &CollisionIndex{cells: make(map[cell][]orb.Bound)}
}

// Collides reports whether b overlaps any inserted box. Touching edges do
// not collide.
func (c *CollisionIndex) Collides(b orb.Bound) bool {
	collides := false
	c.each(b, func(key cell) bool {
		for _, other := range c.cells[key] {
			if overlaps(b, other) {
				collides = true
				return true
			}
		}
		return false
	})
	return collides
}

// Insert adds b to the index
func (c *CollisionIndex) Insert(b orb.Bound) {
	c.each(b, func(key cell) bool {
		c.cells[key] = append(c.cells[key], b)
		return false
	})
}

func (c *CollisionIndex) each(b orb.Bound, fn func(cell) bool) {
	minX, minY := cellOf(b.Min[0]), cellOf(b.Min[1])
	maxX, maxY := cellOf(b.Max[0]), cellOf(b.Max[1])
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if fn(cell{x: x, y: y}) {
				return
			}
		}
	}
}

func cellOf(v float64) int {
	c := int(v / collisionCellSize)
	if v < 0 && float64(c)*collisionCellSize != v {
		c--
	}
	return c
}

func overlaps(a, b orb.Bound) bool {
	return a.Min[0] < b.Max[0] && b.Min[0] < a.Max[0] && a.Min[1] < b.Max[1] && b.Min[1] < a.Max[1]
}
