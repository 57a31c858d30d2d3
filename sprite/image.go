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

// Package sprite stores the icon images symbol layers reference and
// packs them into atlases.
package sprite

import (
	"image"

	"golang.org/x/image/draw"
)

// Image is a named icon
type Image struct {
	ID         string
	Pixels     *image.RGBA
	PixelRatio float64
	SDF        bool
	Version    uint32
}

// NewImage converts img to RGBA and wraps it as an Image
func NewImage(id string, img image.Image, pixelRatio float64, sdf bool) *Image {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Min != (image.Point{}) {
		bounds := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Copy(rgba, image.Point{}, img, bounds, draw.Src, nil)
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	return &Image{ID: id, Pixels: rgba, PixelRatio: pixelRatio, SDF: sdf}
}

// Size returns the pixel size of the image
func (i *Image) Size() image.Point {
	return i.Pixels.Bounds().Size()
}

// ImageMap holds images by ID
type ImageMap map[string]*Image

// Requestor receives the images it asked for. The correlation ID passed to
// GetImages is echoed back unchanged.
type Requestor interface {
	OnImagesAvailable(images ImageMap, correlationID uint64)
}

// Observer is told about images a requestor asked for that the manager
// does not hold. Calling done resolves the request, whether or not the image
// got added in between.
type Observer interface {
	OnImageMissing(id string, done func())
}
