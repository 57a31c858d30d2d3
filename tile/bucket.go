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
	"image"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/planar"
	"go.uber.org/atomic"
)

// Uploader receives buckets on their way to the GPU. Implementations live
// with the renderer.
type Uploader interface {
	UploadFill(*FillBucket) error
	UploadLine(*LineBucket) error
	UploadCircle(*CircleBucket) error
	UploadSymbol(*SymbolBucket) error
	UploadRaster(*RasterBucket) error
}

// Bucket holds the render-ready data of one layer group for one tile.
// Buckets are immutable once they leave the worker.
type Bucket interface {
	// Layers returns the IDs of the style layers rendering this bucket
	Layers() []string
	Type() LayerType
	Empty() bool
	// Upload hands the bucket to u the first time it is called
	Upload(u Uploader) error
	IsUploaded() bool
}

type bucket struct {
	layers   []string
	uploaded *atomic.Bool
}

func newBucket(layers []string) bucket {
	return bucket{layers: layers, uploaded: atomic.NewBool(false)}
}

func (b *bucket) Layers() []string {
	return b.layers
}

func (b *bucket) IsUploaded() bool {
	return b.uploaded.Load()
}

func (b *bucket) upload(fn func() error) error {
	if b.uploaded.Load() {
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	b.uploaded.Store(true)
	return nil
}

// FillBucket holds polygons
type FillBucket struct {
	bucket
	Polygons []orb.Polygon
	// Area is the total area in square tile units
	Area float64
}

func (b *FillBucket) add(geometry orb.Geometry) {
	switch g := geometry.(type) {
	case orb.Polygon:
		b.Polygons = append(b.Polygons, g)
		b.Area += planar.Area(g)
	case orb.MultiPolygon:
		for _, p := range g {
			b.add(p)
		}
	}
}

func (b *FillBucket) Type() LayerType { return FillLayer }
func (b *FillBucket) Empty() bool     { return len(b.Polygons) == 0 }
func (b *FillBucket) Upload(u Uploader) error {
	return b.upload(func() error { return u.UploadFill(b) })
}

// LineBucket holds line strings. Polygon rings are added as lines.
type LineBucket struct {
	bucket
	Lines []orb.LineString
	// Length is the total length in tile units
	Length float64
}

func (b *LineBucket) add(geometry orb.Geometry) {
	switch g := geometry.(type) {
	case orb.LineString:
		b.Lines = append(b.Lines, g)
		b.Length += planar.Length(g)
	case orb.MultiLineString:
		for _, l := range g {
			b.add(l)
		}
	case orb.Polygon:
		for _, ring := range g {
			b.add(orb.LineString(ring))
		}
	case orb.MultiPolygon:
		for _, p := range g {
			b.add(p)
		}
	}
}

func (b *LineBucket) Type() LayerType { return LineLayer }
func (b *LineBucket) Empty() bool     { return len(b.Lines) == 0 }
func (b *LineBucket) Upload(u Uploader) error {
	return b.upload(func() error { return u.UploadLine(b) })
}

// CircleBucket holds points
type CircleBucket struct {
	bucket
	Points []orb.Point
}

func (b *CircleBucket) add(geometry orb.Geometry) {
	switch g := geometry.(type) {
	case orb.Point:
		b.Points = append(b.Points, g)
	case orb.MultiPoint:
		b.Points = append(b.Points, g...)
	}
}

func (b *CircleBucket) Type() LayerType { return CircleLayer }
func (b *CircleBucket) Empty() bool     { return len(b.Points) == 0 }
func (b *CircleBucket) Upload(u Uploader) error {
	return b.upload(func() error { return u.UploadCircle(b) })
}

// GlyphQuad is one glyph of a label, positioned in pixels relative to the
// symbol anchor.
type GlyphQuad struct {
	Rune   rune
	Offset orb.Point
	// Tex is the glyph's rectangle in the glyph atlas
	Tex image.Rectangle
}

// SymbolInstance is a label and/or icon anchored at one point. Boxes are in
// pixels relative to the anchor.
type SymbolInstance struct {
	FeatureIndex     int
	Anchor           orb.Point
	Text             string
	Icon             string
	Glyphs           []GlyphQuad
	IconTex          image.Rectangle
	TextBox          orb.Bound
	IconBox          orb.Bound
	TextAllowOverlap bool
	IconAllowOverlap bool
}

// HasText reports whether the instance renders a label
func (s SymbolInstance) HasText() bool {
	return len(s.Glyphs) > 0
}

// HasIcon reports whether the instance renders an icon
func (s SymbolInstance) HasIcon() bool {
	return s.Icon != "" && !s.IconTex.Empty()
}

// SymbolBucket holds the symbol instances of a layer group
type SymbolBucket struct {
	bucket
	Instances []SymbolInstance
	// CollisionBoxes is only filled when collision boxes are shown
	CollisionBoxes []orb.Bound
	tileExtent     float64
}

func (b *SymbolBucket) extent() float64 {
	if b.tileExtent <= 0 {
		return mvt.DefaultExtent
	}
	return b.tileExtent
}

func (b *SymbolBucket) Type() LayerType { return SymbolLayer }
func (b *SymbolBucket) Empty() bool     { return len(b.Instances) == 0 }
func (b *SymbolBucket) Upload(u Uploader) error {
	return b.upload(func() error { return u.UploadSymbol(b) })
}

// RasterBucket holds a decoded raster image
type RasterBucket struct {
	bucket
	Image *image.RGBA
}

func (b *RasterBucket) Type() LayerType { return RasterLayer }
func (b *RasterBucket) Empty() bool     { return b.Image == nil }
func (b *RasterBucket) Upload(u Uploader) error {
	return b.upload(func() error { return u.UploadRaster(b) })
}
