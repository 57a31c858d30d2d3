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

package sprite

import (
	"image"
	"slices"

	"golang.org/x/image/draw"

	gerrors "github.com/tochemey/cartograph/errors"
	"github.com/tochemey/cartograph/internal/binpack"
)

const atlasPadding = 1

// Position locates an image in an Atlas
type Position struct {
	Rect       image.Rectangle
	PixelRatio float64
	SDF        bool
	Version    uint32
}

// Atlas packs images into a single RGBA texture
type Atlas struct {
	Image     *image.RGBA
	Positions map[string]Position
}

// NewAtlas packs images. maxSize bounds both sides of the texture.
func NewAtlas(images ImageMap, maxSize int) (*Atlas, error) {
	ids := make([]string, 0, len(images))
	for id := range images {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		if d := images[b].Size().Y - images[a].Size().Y; d != 0 {
			return d
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})

	packer := binpack.NewShelf(maxSize, maxSize)
	rects := make(map[string]image.Rectangle, len(ids))
	for _, id := range ids {
		size := images[id].Size()
		rect, ok := packer.Pack(size.X+2*atlasPadding, size.Y+2*atlasPadding)
		if !ok {
			return nil, gerrors.ErrAtlasFull
		}
		rects[id] = rect.Inset(atlasPadding)
	}

	size := packer.Size()
	atlas := &Atlas{
		Image:     image.NewRGBA(image.Rect(0, 0, max(size.X, 1), max(size.Y, 1))),
		Positions: make(map[string]Position, len(ids)),
	}
	for _, id := range ids {
		img := images[id]
		rect := rects[id]
		draw.Copy(atlas.Image, rect.Min, img.Pixels, img.Pixels.Bounds(), draw.Src, nil)
		atlas.Positions[id] = Position{
			Rect:       rect,
			PixelRatio: img.PixelRatio,
			SDF:        img.SDF,
			Version:    img.Version,
		}
	}
	return atlas, nil
}

// Lookup returns the position of an image
func (a *Atlas) Lookup(id string) (Position, bool) {
	if a == nil {
		return Position{}, false
	}
	pos, ok := a.Positions[id]
	return pos, ok
}
