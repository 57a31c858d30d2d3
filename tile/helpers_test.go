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
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/tochemey/cartograph/glyph"
	"github.com/tochemey/cartograph/scheduler"
)

const streets = "streets"

// harness drives an owning and a background run loop from the test goroutine
type harness struct {
	owner      *scheduler.RunLoop
	background *scheduler.RunLoop
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		owner:      scheduler.NewRunLoop(scheduler.WithName("owner")),
		background: scheduler.NewRunLoop(scheduler.WithName("background")),
	}
	t.Cleanup(func() {
		h.owner.Stop()
		h.background.Stop()
	})
	return h
}

// settle runs both loops until neither has work left
func (h *harness) settle(t *testing.T) {
	t.Helper()
	for range 10_000 {
		if h.owner.Len() == 0 && h.background.Len() == 0 {
			return
		}
		h.background.RunOnce()
		h.owner.RunOnce()
	}
	t.Fatal("loops did not settle")
}

type recorder struct {
	mu      sync.Mutex
	results []uint64
	errs    []error
}

func (r *recorder) OnTileChanged(t Tile) {
	var id uint64
	if gt, ok := t.(*GeometryTile); ok {
		id = gt.Result().CorrelationID
	}
	r.mu.Lock()
	r.results = append(r.results, id)
	r.mu.Unlock()
}

func (r *recorder) OnTileError(_ Tile, err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *recorder) resultIDs() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint64(nil), r.results...)
}

func (r *recorder) errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

type glyphRequest struct {
	requestor     glyph.Requestor
	deps          glyph.Dependencies
	correlationID uint64
}

// glyphSource records requests; tests answer them by hand
type glyphSource struct {
	mu       sync.Mutex
	requests []glyphRequest
	removed  int
}

func (s *glyphSource) GetGlyphs(requestor glyph.Requestor, deps glyph.Dependencies, correlationID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, glyphRequest{requestor: requestor, deps: deps, correlationID: correlationID})
}

func (s *glyphSource) RemoveRequestor(glyph.Requestor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed++
}

func (s *glyphSource) last(t *testing.T) glyphRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

func (s *glyphSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// answer replies to req with a glyph for every requested codepoint keep accepts
func answer(req glyphRequest, keep func(rune) bool) {
	glyphs := make(glyph.GlyphMap)
	for stack, runes := range req.deps.Glyphs {
		set := make(glyph.Glyphs)
		runes.Each(func(r rune) bool {
			if keep == nil || keep(r) {
				set[r] = fakeGlyph(r)
			}
			return false
		})
		glyphs[stack] = set
	}
	req.requestor.OnGlyphsAvailable(glyphs, nil, req.correlationID)
}

func fakeGlyph(r rune) *glyph.Glyph {
	return &glyph.Glyph{
		ID:      r,
		Bitmap:  image.NewAlpha(image.Rect(0, 0, 8, 10)),
		Metrics: glyph.Metrics{Width: 8, Height: 10, Top: 10, Advance: 9},
	}
}

// countingDecoder counts decodes and remembers the last payload
type countingDecoder struct {
	decodes *atomic.Int32
	mu      sync.Mutex
	last    []byte
}

func newCountingDecoder() *countingDecoder {
	return &countingDecoder{decodes: atomic.NewInt32(0)}
}

func (d *countingDecoder) Decode(data []byte, id ID) (mvt.Layers, error) {
	d.decodes.Inc()
	d.mu.Lock()
	d.last = data
	d.mu.Unlock()
	return MVTDecoder{}.Decode(data, id)
}

func (d *countingDecoder) lastData() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// vectorTile encodes a tile with water polygons, roads and named points
func vectorTile(t *testing.T, names ...string) []byte {
	t.Helper()

	water := geojson.NewFeatureCollection()
	water.Append(geojson.NewFeature(orb.Polygon{{{0, 0}, {1024, 0}, {1024, 1024}, {0, 1024}, {0, 0}}}))

	roads := geojson.NewFeatureCollection()
	road := geojson.NewFeature(orb.LineString{{0, 2048}, {4096, 2048}})
	road.Properties["class"] = "primary"
	roads.Append(road)
	path := geojson.NewFeature(orb.LineString{{2048, 0}, {2048, 4096}})
	path.Properties["class"] = "path"
	roads.Append(path)

	pois := geojson.NewFeatureCollection()
	for i, name := range names {
		poi := geojson.NewFeature(orb.Point{float64(500 + i*1000), 3000})
		poi.Properties["name"] = name
		poi.Properties["icon"] = "bus"
		pois.Append(poi)
	}

	data, err := mvt.Marshal(mvt.NewLayers(map[string]*geojson.FeatureCollection{
		"water": water,
		"roads": roads,
		"pois":  pois,
	}))
	require.NoError(t, err)
	return data
}

func styleLayers() []Layer {
	water := NewLayer("water", FillLayer, streets, "water")
	roads := NewLayer("roads", LineLayer, streets, "roads")
	primary := NewLayer("primary", LineLayer, streets, "roads")
	primary.Filter = PropertyFilter{"class": "primary"}
	circles := NewLayer("poi-circles", CircleLayer, streets, "pois")
	labels := NewLayer("poi-labels", SymbolLayer, streets, "pois")
	labels.Layout = Layout{TextField: "{name}"}
	return []Layer{water, roads, primary, circles, labels}
}

func geometryLayers() []Layer {
	return styleLayers()[:4]
}
