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
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"go.uber.org/atomic"

	"github.com/tochemey/cartograph/actor"
	"github.com/tochemey/cartograph/glyph"
	"github.com/tochemey/cartograph/log"
	"github.com/tochemey/cartograph/scheduler"
	"github.com/tochemey/cartograph/sprite"
	"github.com/tochemey/cartograph/telemetry"
)

// GeometryTile coordinates the parsing of one vector tile. Its replies land
// on the owning scheduler; the parsing itself happens in a Worker on the
// background scheduler.
//
// GeometryTile is safe for concurrent use. Observer callbacks are invoked
// without holding any tile lock.
type GeometryTile struct {
	id       ID
	sourceID string
	config   Config
	observer Observer
	glyphs   GlyphSource
	images   ImageSource
	logger   log.Logger
	metrics  *telemetry.Metrics
	obsolete *atomic.Bool

	coordinator *actor.Actor[coordinator]
	worker      *actor.Actor[Worker]

	mu                 sync.Mutex
	correlationID      uint64
	pending            bool
	loaded             bool
	renderable         bool
	err                error
	result             *LayoutResult
	showCollisionBoxes bool
	fade               fade
	closed             bool
}

var (
	_ Tile             = (*GeometryTile)(nil)
	_ glyph.Requestor  = (*GeometryTile)(nil)
	_ sprite.Requestor = (*GeometryTile)(nil)
)

// coordinator is the mailbox-facing side of a GeometryTile
type coordinator struct {
	tile *GeometryTile
}

// NewGeometryTile creates the tile id of the source sourceID
func NewGeometryTile(id ID, sourceID string, owner, background scheduler.Scheduler, opts ...Option) (*GeometryTile, error) {
	o := newOptions(opts...)
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	o.logger = o.logger.With("tile", id.String(), "source", sourceID, "instance", uuid.NewString())

	t := &GeometryTile{
		id:       id,
		sourceID: sourceID,
		config:   o.config,
		observer: o.observer,
		glyphs:   o.glyphs,
		images:   o.images,
		logger:   o.logger,
		metrics:  o.metrics,
		obsolete: atomic.NewBool(false),
		fade:     fade{state: Loaded, mode: o.config.Mode},
	}

	t.coordinator = actor.New(owner, func(actor.ActorRef[coordinator]) *coordinator {
		return &coordinator{tile: t}
	}, actor.WithName(fmt.Sprintf("tile-%s", id)), actor.WithLogger(o.logger))
	parent := t.coordinator.Self()
	t.worker = actor.New(background, func(self actor.ActorRef[Worker]) *Worker {
		return newWorker(self, parent, id, t.obsolete, o)
	}, actor.WithName(fmt.Sprintf("tile-worker-%s", id)), actor.WithLogger(o.logger))
	return t, nil
}

// ID implements Tile
func (t *GeometryTile) ID() ID {
	return t.id
}

// SourceID returns the ID of the source the tile belongs to
func (t *GeometryTile) SourceID() string {
	return t.sourceID
}

// SetData hands new raw data to the worker
func (t *GeometryTile) SetData(data []byte) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.pending = true
	t.correlationID++
	id := t.correlationID
	t.mu.Unlock()

	available := t.availableImages()
	t.worker.Self().Invoke(func(w *Worker) {
		w.SetData(data, available, id)
	})
}

// SetError marks the tile as loaded with err, keeping any previous result
func (t *GeometryTile) SetError(err error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.loaded = true
	t.err = err
	t.mu.Unlock()

	t.logger.Warnf("tile failed to load: %v", err)
	t.observer.OnTileError(t, err)
}

// SetLayers hands the style layers to the worker. Only visible layers of the
// tile's source that cover the tile's zoom are kept.
func (t *GeometryTile) SetLayers(layers []Layer) {
	zoom := t.id.Zoom()
	kept := make([]Layer, 0, len(layers))
	for _, layer := range layers {
		if layer.Source == t.sourceID && layer.VisibleAt(zoom) && layer.Type != RasterLayer {
			kept = append(kept, layer)
		}
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.correlationID++
	id := t.correlationID
	t.mu.Unlock()

	available := t.availableImages()
	t.worker.Self().Invoke(func(w *Worker) {
		w.SetLayers(kept, available, id)
	})
}

// SetShowCollisionBoxes toggles collision box output
func (t *GeometryTile) SetShowCollisionBoxes(show bool) {
	t.mu.Lock()
	if t.closed || t.showCollisionBoxes == show {
		t.mu.Unlock()
		return
	}
	t.showCollisionBoxes = show
	t.correlationID++
	id := t.correlationID
	t.mu.Unlock()

	t.worker.Self().Invoke(func(w *Worker) {
		w.SetShowCollisionBoxes(show, id)
	})
}

// Reset discards the tile data so the tile can be reloaded. Layers are kept.
func (t *GeometryTile) Reset() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.pending = false
	t.correlationID++
	id := t.correlationID
	t.mu.Unlock()

	t.worker.Self().Invoke(func(w *Worker) {
		w.Reset(id)
	})
}

// Cancel asks the worker to abandon any work. It is cooperative and returns
// at once.
func (t *GeometryTile) Cancel() {
	t.obsolete.Store(true)
}

// Close cancels the tile and tears down both actors. It blocks until a
// message running in the worker completes.
func (t *GeometryTile) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	t.Cancel()
	if t.glyphs != nil {
		t.glyphs.RemoveRequestor(t)
	}
	if t.images != nil {
		t.images.RemoveRequestor(t)
	}
	t.worker.Close()
	t.coordinator.Close()
	t.logger.Debug("tile closed")
}

// CorrelationID returns the ID of the latest input
func (t *GeometryTile) CorrelationID() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.correlationID
}

// IsPending reports whether the latest data has not been laid out yet
func (t *GeometryTile) IsPending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// IsLoaded reports whether the tile got a result or an error
func (t *GeometryTile) IsLoaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// IsRenderable reports whether the tile has a layout to render
func (t *GeometryTile) IsRenderable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.renderable
}

// IsComplete reports whether the tile is loaded with its latest data laid out
func (t *GeometryTile) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded && !t.pending
}

// Err returns the latest error
func (t *GeometryTile) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Result returns the latest layout result. It survives later errors.
func (t *GeometryTile) Result() *LayoutResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Bucket implements Tile
func (t *GeometryTile) Bucket(layerID string) (Bucket, bool) {
	result := t.Result()
	if result == nil {
		return nil, false
	}
	b, ok := result.Buckets[layerID]
	return b, ok
}

// QueryRenderedFeatures returns the rendered features intersecting bound,
// given in longitude and latitude
func (t *GeometryTile) QueryRenderedFeatures(bound orb.Bound, layerIDs ...string) []IndexedFeature {
	result := t.Result()
	if result == nil {
		return nil
	}

	z := t.id.Canonical.Z
	extent := float64(t.config.Extent)
	toTile := func(p orb.Point) orb.Point {
		f := maptile.Fraction(p, z)
		return orb.Point{
			(f[0] - float64(t.id.Canonical.X)) * extent,
			(f[1] - float64(t.id.Canonical.Y)) * extent,
		}
	}
	// latitude grows northwards while tile y grows southwards
	a, b := toTile(bound.Min), toTile(bound.Max)
	query := orb.Bound{Min: a, Max: a}.Extend(b)
	return result.FeatureIndex.Query(query, layerIDs...)
}

// FadeState implements Tile
func (t *GeometryTile) FadeState() FadeState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fade.state
}

// MarkRenderedIdeal implements Tile
func (t *GeometryTile) MarkRenderedIdeal() {
	t.mu.Lock()
	t.fade.markRenderedIdeal()
	t.mu.Unlock()
}

// MarkRenderedPreviously implements Tile
func (t *GeometryTile) MarkRenderedPreviously() {
	t.mu.Lock()
	t.fade.markRenderedPreviously()
	t.mu.Unlock()
}

// PerformedFadePlacement implements Tile
func (t *GeometryTile) PerformedFadePlacement() {
	t.mu.Lock()
	t.fade.performedFadePlacement()
	t.mu.Unlock()
}

// HoldForFade implements Tile
func (t *GeometryTile) HoldForFade() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fade.holdForFade()
}

// OnGlyphsAvailable forwards glyphs to the worker
func (t *GeometryTile) OnGlyphsAvailable(glyphs glyph.GlyphMap, shapes glyph.ShapeResults, correlationID uint64) {
	t.worker.Self().Invoke(func(w *Worker) {
		w.OnGlyphsAvailable(glyphs, shapes, correlationID)
	})
}

// OnGlyphsError fails the tile
func (t *GeometryTile) OnGlyphsError(err error, correlationID uint64) {
	t.coordinator.Self().Invoke(func(c *coordinator) {
		c.onError(err, correlationID)
	})
}

// OnImagesAvailable forwards images to the worker
func (t *GeometryTile) OnImagesAvailable(images sprite.ImageMap, correlationID uint64) {
	t.worker.Self().Invoke(func(w *Worker) {
		w.OnImagesAvailable(images, correlationID)
	})
}

func (t *GeometryTile) availableImages() []string {
	if t.images == nil {
		return nil
	}
	return t.images.AvailableImages()
}

func (c *coordinator) onLayout(result *LayoutResult) {
	t := c.tile
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.loaded = true
	t.renderable = true
	if result.CorrelationID == t.correlationID {
		t.pending = false
	}
	t.result = result
	t.err = nil
	t.mu.Unlock()

	t.observer.OnTileChanged(t)
}

func (c *coordinator) onError(err error, correlationID uint64) {
	t := c.tile
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.loaded = true
	if correlationID == t.correlationID {
		t.pending = false
	}
	t.err = err
	t.mu.Unlock()

	t.observer.OnTileError(t, err)
}

func (c *coordinator) getGlyphs(deps glyph.Dependencies, correlationID uint64) {
	t := c.tile
	if t.glyphs == nil {
		t.OnGlyphsAvailable(glyph.Missing(deps), nil, correlationID)
		return
	}
	t.glyphs.GetGlyphs(t, deps, correlationID)
}

func (c *coordinator) getImages(deps mapset.Set[string], correlationID uint64) {
	t := c.tile
	if t.images == nil {
		t.OnImagesAvailable(sprite.ImageMap{}, correlationID)
		return
	}
	t.images.GetImages(t, deps, correlationID)
}
