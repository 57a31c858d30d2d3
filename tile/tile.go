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

// Package tile turns raw tile data into render-ready buckets.
//
// A GeometryTile lives on the owning scheduler and delegates parsing to a
// Worker actor on a background scheduler. Every input bumps the tile's
// correlation ID; results carry the ID of the input they answer, so stale
// work is recognised on both sides without locking shared state.
package tile

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/cartograph/glyph"
	"github.com/tochemey/cartograph/sprite"
)

// Tile is what a Pyramid manages: geometry and raster tiles alike
type Tile interface {
	ID() ID
	SetData(data []byte)
	SetError(err error)
	// Bucket returns the bucket a layer renders from
	Bucket(layerID string) (Bucket, bool)
	IsRenderable() bool
	IsLoaded() bool
	IsComplete() bool

	FadeState() FadeState
	MarkRenderedIdeal()
	MarkRenderedPreviously()
	PerformedFadePlacement()
	HoldForFade() bool

	Cancel()
	Close()
}

// Observer is told when a tile produced new render data or failed
type Observer interface {
	OnTileChanged(t Tile)
	OnTileError(t Tile, err error)
}

type noopObserver struct{}

func (noopObserver) OnTileChanged(Tile)      {}
func (noopObserver) OnTileError(Tile, error) {}

// GlyphSource serves glyph requests; glyph.Manager implements it
type GlyphSource interface {
	GetGlyphs(requestor glyph.Requestor, deps glyph.Dependencies, correlationID uint64)
	RemoveRequestor(requestor glyph.Requestor)
}

// ImageSource serves icon requests; sprite.Manager implements it
type ImageSource interface {
	GetImages(requestor sprite.Requestor, deps mapset.Set[string], correlationID uint64)
	RemoveRequestor(requestor sprite.Requestor)
	AvailableImages() []string
}

var (
	_ GlyphSource = (*glyph.Manager)(nil)
	_ ImageSource = (*sprite.Manager)(nil)
)
