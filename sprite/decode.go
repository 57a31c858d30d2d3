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
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg" // jpeg icons
	_ "image/png"  // png icons
	"slices"

	_ "golang.org/x/image/webp" // webp icons

	gerrors "github.com/tochemey/cartograph/errors"
)

// Decode decodes PNG, JPEG and WebP data
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gerrors.ErrDecodeFailed, err)
	}
	return img, nil
}

type indexEntry struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	PixelRatio float64 `json:"pixelRatio"`
	SDF        bool    `json:"sdf"`
}

// ParseSheet cuts a sprite sheet into images using its JSON index, which maps
// image IDs to their rectangle in the sheet.
func ParseSheet(sheet []byte, index []byte) ([]*Image, error) {
	img, err := Decode(sheet)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]indexEntry)
	if err := json.Unmarshal(index, &entries); err != nil {
		return nil, fmt.Errorf("sprite index: %w: %w", gerrors.ErrDecodeFailed, err)
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	bounds := img.Bounds()
	images := make([]*Image, 0, len(ids))
	for _, id := range ids {
		e := entries[id]
		rect := image.Rect(e.X, e.Y, e.X+e.Width, e.Y+e.Height).Add(bounds.Min)
		if e.Width <= 0 || e.Height <= 0 || !rect.In(bounds) {
			return nil, fmt.Errorf("sprite %q: %w: rectangle %v outside of sheet %v", id, gerrors.ErrDecodeFailed, rect, bounds)
		}
		images = append(images, NewImage(id, subImage(img, rect), e.PixelRatio, e.SDF))
	}
	return images, nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func subImage(img image.Image, rect image.Rectangle) image.Image {
	if s, ok := img.(subImager); ok {
		return s.SubImage(rect)
	}
	return &cropped{Image: img, rect: rect}
}

type cropped struct {
	image.Image
	rect image.Rectangle
}

func (c *cropped) Bounds() image.Rectangle {
	return c.rect
}
