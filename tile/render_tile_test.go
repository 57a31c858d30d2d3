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
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingUploader counts uploads per bucket kind
type countingUploader struct {
	fills, lines, circles, symbols, rasters int
	err                                     error
}

func (u *countingUploader) UploadFill(*FillBucket) error {
	u.fills++
	return u.err
}

func (u *countingUploader) UploadLine(*LineBucket) error {
	u.lines++
	return u.err
}

func (u *countingUploader) UploadCircle(*CircleBucket) error {
	u.circles++
	return u.err
}

func (u *countingUploader) UploadSymbol(*SymbolBucket) error {
	u.symbols++
	return u.err
}

func (u *countingUploader) UploadRaster(*RasterBucket) error {
	u.rasters++
	return u.err
}

func TestBuckets(t *testing.T) {
	t.Run("With fill geometry", func(t *testing.T) {
		b := &FillBucket{bucket: newBucket([]string{"water"})}
		assert.True(t, b.Empty())
		b.add(orb.MultiPolygon{
			{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}},
			{{{20, 20}, {30, 20}, {30, 30}, {20, 30}, {20, 20}}},
		})
		b.add(orb.Point{1, 1})
		assert.Len(t, b.Polygons, 2)
		assert.InDelta(t, 200, b.Area, 1e-9)
		assert.Equal(t, []string{"water"}, b.Layers())
	})
	t.Run("With polygon outlines as lines", func(t *testing.T) {
		b := &LineBucket{bucket: newBucket([]string{"outline"})}
		b.add(orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}})
		b.add(orb.MultiLineString{{{0, 0}, {0, 5}}})
		assert.Len(t, b.Lines, 2)
		assert.InDelta(t, 45, b.Length, 1e-9)
	})
	t.Run("With points", func(t *testing.T) {
		b := &CircleBucket{bucket: newBucket(nil)}
		b.add(orb.MultiPoint{{1, 1}, {2, 2}})
		b.add(orb.LineString{{0, 0}, {1, 1}})
		assert.Equal(t, []orb.Point{{1, 1}, {2, 2}}, b.Points)
	})
}

func TestRenderTile(t *testing.T) {
	t.Run("With shared buckets uploaded once", func(t *testing.T) {
		tile := newFakeTile(MustID(0, 0, 0))
		roads := &LineBucket{bucket: newBucket([]string{"roads", "casing"})}
		tile.buckets["roads"] = roads
		tile.buckets["casing"] = roads
		tile.buckets["water"] = &FillBucket{bucket: newBucket([]string{"water"})}
		rt := &RenderTile{ID: tile.ID(), Tile: tile, Ideal: true}

		u := &countingUploader{}
		require.NoError(t, rt.Upload(u, "roads", "casing", "water", "absent"))
		assert.Equal(t, 1, u.lines)
		assert.Equal(t, 1, u.fills)
		assert.True(t, roads.IsUploaded())

		require.NoError(t, rt.Upload(u, "roads"))
		assert.Equal(t, 1, u.lines)

		b, ok := rt.Bucket("casing")
		require.True(t, ok)
		assert.Same(t, roads, b)
	})
	t.Run("With upload failures retried", func(t *testing.T) {
		tile := newFakeTile(MustID(0, 0, 0))
		tile.buckets["pois"] = &CircleBucket{bucket: newBucket([]string{"pois"})}
		tile.buckets["labels"] = &SymbolBucket{bucket: newBucket([]string{"labels"})}
		rt := &RenderTile{ID: tile.ID(), Tile: tile}

		boom := errors.New("out of memory")
		u := &countingUploader{err: boom}
		err := rt.Upload(u, "pois", "labels")
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, u.circles)
		assert.Equal(t, 1, u.symbols)

		u.err = nil
		require.NoError(t, rt.Upload(u, "pois", "labels"))
		assert.Equal(t, 2, u.circles)
		b, _ := rt.Bucket("pois")
		assert.True(t, b.IsUploaded())
	})
}
