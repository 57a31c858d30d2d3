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
	"context"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/paulmach/orb/encoding/mvt"
	"go.uber.org/atomic"

	"github.com/tochemey/cartograph/actor"
	gerrors "github.com/tochemey/cartograph/errors"
	"github.com/tochemey/cartograph/glyph"
	"github.com/tochemey/cartograph/log"
	"github.com/tochemey/cartograph/sprite"
	"github.com/tochemey/cartograph/telemetry"
)

// WorkerState is the parse state of a Worker
type WorkerState int

const (
	// Idle waits for input
	Idle WorkerState = iota
	// Coalescing collects input until the next tick
	Coalescing
	// NeedsParse has input that arrived after the last parse
	NeedsParse
	// NeedsSymbolLayout has parsed and must (re)do symbol layout, possibly
	// after dependencies arrive
	NeedsSymbolLayout
)

func (s WorkerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Coalescing:
		return "coalescing"
	case NeedsParse:
		return "needs-parse"
	case NeedsSymbolLayout:
		return "needs-symbol-layout"
	default:
		return "unknown"
	}
}

// LayoutResult is the output of one layout generation
type LayoutResult struct {
	CorrelationID uint64
	// Buckets are keyed by layer ID. Layers of one group share a bucket.
	Buckets      map[string]Bucket
	FeatureIndex *FeatureIndex
	GlyphAtlas   *glyph.Atlas
	IconAtlas    *sprite.Atlas
}

type glyphKey struct {
	stack glyph.FontStack
	r     rune
}

type shapeKey struct {
	stack glyph.FontStack
	text  string
}

// Worker parses a tile's data off the owning scheduler. It lives in its own
// actor on the background scheduler and reports to its tile through the
// tile's mailbox.
//
// Every reply from a dependency source carries the correlation ID it was
// requested under. Replies for an older dependency generation, or for data
// older than the latest input, are dropped.
type Worker struct {
	self     actor.ActorRef[Worker]
	parent   actor.ActorRef[coordinator]
	id       ID
	obsolete *atomic.Bool
	config   Config
	decoder  Decoder
	logger   log.Logger
	metrics  *telemetry.Metrics

	state         WorkerState
	tickScheduled bool

	correlationID        uint64
	dataGeneration       uint64
	dependencyGeneration uint64

	data               []byte
	hasData            bool
	layers             []Layer
	hasLayers          bool
	availableImages    mapset.Set[string]
	showCollisionBoxes bool

	parsed        bool
	buckets       map[string]Bucket
	featureIndex  *FeatureIndex
	symbolLayouts []*symbolLayout

	pendingGlyphs  mapset.Set[glyphKey]
	pendingShaping mapset.Set[shapeKey]
	pendingImages  mapset.Set[string]

	glyphs glyph.GlyphMap
	shapes glyph.ShapeResults
	images sprite.ImageMap
}

func newWorker(self actor.ActorRef[Worker], parent actor.ActorRef[coordinator], id ID, obsolete *atomic.Bool, o *options) *Worker {
	return &Worker{
		self:            self,
		parent:          parent,
		id:              id,
		obsolete:        obsolete,
		config:          o.config,
		decoder:         o.decoder,
		logger:          o.logger,
		metrics:         o.metrics,
		availableImages: mapset.NewThreadUnsafeSet[string](),
		pendingGlyphs:   mapset.NewThreadUnsafeSet[glyphKey](),
		pendingShaping:  mapset.NewThreadUnsafeSet[shapeKey](),
		pendingImages:   mapset.NewThreadUnsafeSet[string](),
		glyphs:          make(glyph.GlyphMap),
		shapes:          make(glyph.ShapeResults),
		images:          make(sprite.ImageMap),
	}
}

// State returns the current parse state
func (w *Worker) State() WorkerState {
	return w.state
}

// SetData replaces the raw tile data
func (w *Worker) SetData(data []byte, availableImages []string, correlationID uint64) {
	if w.obsolete.Load() {
		return
	}
	w.data = data
	w.hasData = true
	w.availableImages = mapset.NewThreadUnsafeSet(availableImages...)
	w.correlationID = correlationID
	w.dataGeneration = correlationID
	w.onInput()
}

// SetLayers replaces the style layers of the tile
func (w *Worker) SetLayers(layers []Layer, availableImages []string, correlationID uint64) {
	if w.obsolete.Load() {
		return
	}
	w.layers = layers
	w.hasLayers = true
	w.availableImages = mapset.NewThreadUnsafeSet(availableImages...)
	w.correlationID = correlationID
	w.dataGeneration = correlationID
	w.onInput()
}

// Reset discards the data and the parse state so the tile can be reused.
// Layers are kept.
func (w *Worker) Reset(correlationID uint64) {
	if w.obsolete.Load() {
		return
	}
	w.data = nil
	w.hasData = false
	w.correlationID = correlationID
	w.dataGeneration = correlationID
	w.clearParse()
	w.glyphs = make(glyph.GlyphMap)
	w.shapes = make(glyph.ShapeResults)
	w.images = make(sprite.ImageMap)

	switch w.state {
	case Idle, Coalescing, NeedsParse:
	case NeedsSymbolLayout:
		w.state = NeedsParse
		w.scheduleTick()
	}
}

// SetShowCollisionBoxes toggles collision box output. Only symbol layout is
// redone.
func (w *Worker) SetShowCollisionBoxes(show bool, correlationID uint64) {
	if w.obsolete.Load() {
		return
	}
	w.showCollisionBoxes = show
	w.correlationID = correlationID

	switch w.state {
	case Idle:
		if w.parsed && len(w.symbolLayouts) > 0 {
			w.state = NeedsSymbolLayout
			w.scheduleTick()
		}
	case Coalescing, NeedsParse, NeedsSymbolLayout:
	}
}

// OnGlyphsAvailable receives glyphs and shaping results requested under correlationID
func (w *Worker) OnGlyphsAvailable(glyphs glyph.GlyphMap, shapes glyph.ShapeResults, correlationID uint64) {
	if w.obsolete.Load() || !w.acceptReply("glyphs", correlationID) {
		return
	}

	for stack, set := range glyphs {
		held, ok := w.glyphs[stack]
		if !ok {
			held = make(glyph.Glyphs, len(set))
			w.glyphs[stack] = held
		}
		for r, g := range set {
			held[r] = g
			w.pendingGlyphs.Remove(glyphKey{stack: stack, r: r})
		}
	}
	for stack, texts := range shapes {
		held, ok := w.shapes[stack]
		if !ok {
			held = make(map[string]glyph.ShapedText, len(texts))
			w.shapes[stack] = held
		}
		for text, shaped := range texts {
			held[text] = shaped
		}
	}
	// shaping is answered together with the glyphs of the request
	w.pendingShaping.Each(func(key shapeKey) bool {
		if _, ok := glyphs[key.stack]; ok {
			w.pendingShaping.Remove(key)
		}
		return false
	})
	w.dependenciesChanged()
}

// OnImagesAvailable receives images requested under correlationID
func (w *Worker) OnImagesAvailable(images sprite.ImageMap, correlationID uint64) {
	if w.obsolete.Load() || !w.acceptReply("images", correlationID) {
		return
	}
	for id, img := range images {
		w.images[id] = img
	}
	// images the source does not have are answered by their absence
	w.pendingImages.Clear()
	w.dependenciesChanged()
}

func (w *Worker) acceptReply(kind string, correlationID uint64) bool {
	if correlationID == w.dependencyGeneration && correlationID >= w.dataGeneration {
		return true
	}
	w.logger.Debugf("dropping stale %s reply=(%d) generation=(%d) data=(%d)", kind, correlationID, w.dependencyGeneration, w.dataGeneration)
	w.metrics.StaleReply(context.Background(), kind)
	return false
}

func (w *Worker) dependenciesChanged() {
	if w.state == NeedsSymbolLayout && !w.tickScheduled && !w.hasPendingDependencies() {
		w.guard(w.finalizeLayout)
	}
}

func (w *Worker) onInput() {
	switch w.state {
	case Idle:
		w.state = Coalescing
		w.scheduleTick()
	case Coalescing, NeedsParse:
		// the outstanding tick picks the input up
	case NeedsSymbolLayout:
		w.state = NeedsParse
		w.scheduleTick()
	}
}

// scheduleTick sends the coalescing tick unless one is outstanding
func (w *Worker) scheduleTick() {
	if w.tickScheduled {
		return
	}
	w.tickScheduled = true

	self := w.self
	if w.config.CoalesceWindow > 0 {
		time.AfterFunc(w.config.CoalesceWindow, func() {
			self.Invoke((*Worker).tick)
		})
		return
	}
	self.Invoke((*Worker).tick)
}

func (w *Worker) tick() {
	w.tickScheduled = false
	if w.obsolete.Load() {
		w.state = Idle
		return
	}

	switch w.state {
	case Idle:
	case Coalescing:
		w.state = NeedsParse
		w.guard(w.parse)
	case NeedsParse:
		w.guard(w.parse)
	case NeedsSymbolLayout:
		w.guard(w.finalizeLayout)
	}
}

// guard turns a panic of step into an error reply
func (w *Worker) guard(step func()) {
	defer func() {
		if r := recover(); r != nil {
			w.state = Idle
			w.clearParse()
			w.fail(gerrors.Recovered(r))
		}
	}()
	step()
}

func (w *Worker) fail(err error) {
	id := w.correlationID
	err = gerrors.NewParseError(id, err)
	w.logger.Warn(err)
	w.metrics.ParseFailed(context.Background())
	w.parent.Invoke(func(c *coordinator) {
		c.onError(err, id)
	})
}

func (w *Worker) clearParse() {
	w.parsed = false
	w.buckets = nil
	w.featureIndex = nil
	w.symbolLayouts = nil
	w.pendingGlyphs.Clear()
	w.pendingShaping.Clear()
	w.pendingImages.Clear()
}

func (w *Worker) hasPendingDependencies() bool {
	return w.pendingGlyphs.Cardinality() > 0 ||
		w.pendingShaping.Cardinality() > 0 ||
		w.pendingImages.Cardinality() > 0
}

func (w *Worker) parse() {
	w.clearParse()
	if w.obsolete.Load() || !w.hasData || !w.hasLayers {
		w.state = Idle
		return
	}

	start := time.Now()
	// empty data is a tile the source has nothing for
	var sources mvt.Layers
	if len(w.data) > 0 {
		decoded, err := w.decoder.Decode(w.data, w.id)
		if err != nil {
			w.state = Idle
			w.fail(err)
			return
		}
		sources = decoded
	}

	byName := make(map[string]*mvt.Layer, len(sources))
	for _, source := range sources {
		byName[source.Name] = source
	}

	zoom := w.id.Zoom()
	index := NewFeatureIndex(w.config.Extent, w.config.IndexCells)
	buckets := make(map[string]Bucket)
	var layouts []*symbolLayout
	for _, group := range groupLayers(w.layers) {
		if w.obsolete.Load() {
			w.state = Idle
			return
		}

		leader := group.leader()
		source, ok := byName[leader.SourceLayer]
		if !ok || !leader.VisibleAt(zoom) {
			continue
		}

		if leader.Type == SymbolLayer {
			layout := newSymbolLayout(group, source, zoom, w.config.Extent, w.availableImages, index)
			if len(layout.features) > 0 {
				layouts = append(layouts, layout)
			}
			continue
		}

		b := w.buildBucket(group, source, zoom, index)
		if b == nil || b.Empty() {
			continue
		}
		for _, layer := range group {
			buckets[layer.ID] = b
		}
	}

	w.parsed = true
	w.buckets = buckets
	w.featureIndex = index
	w.symbolLayouts = layouts
	w.metrics.ParseDuration(context.Background(), time.Since(start))

	w.requestDependencies()
	w.state = NeedsSymbolLayout
	w.finalizeLayout()
}

func (w *Worker) buildBucket(group layerGroup, source *mvt.Layer, zoom float64, index *FeatureIndex) Bucket {
	leader := group.leader()
	var add func(f int)
	var b Bucket
	switch leader.Type {
	case FillLayer:
		fill := &FillBucket{bucket: newBucket(group.ids())}
		add = func(f int) { fill.add(source.Features[f].Geometry) }
		b = fill
	case LineLayer:
		line := &LineBucket{bucket: newBucket(group.ids())}
		add = func(f int) { line.add(source.Features[f].Geometry) }
		b = line
	case CircleLayer:
		circle := &CircleBucket{bucket: newBucket(group.ids())}
		add = func(f int) { circle.add(source.Features[f].Geometry) }
		b = circle
	default:
		w.logger.Debugf("layer=(%s) of type %s has no vector bucket", leader.ID, leader.Type)
		return nil
	}

	ids := group.ids()
	for i, feature := range source.Features {
		if feature.Geometry == nil {
			continue
		}
		if leader.Filter != nil && !leader.Filter.Match(zoom, feature) {
			continue
		}
		add(i)
		index.Insert(source.Name, ids, i, feature)
	}
	return b
}

// requestDependencies asks the tile for the glyphs and images the symbol
// layouts need and does not hold yet
func (w *Worker) requestDependencies() {
	w.dependencyGeneration = w.correlationID

	glyphDeps := glyph.NewDependencies()
	imageDeps := mapset.NewThreadUnsafeSet[string]()
	for _, layout := range w.symbolLayouts {
		for stack, runes := range layout.glyphDeps.Glyphs {
			held := w.glyphs[stack]
			runes.Each(func(r rune) bool {
				if _, ok := held[r]; ok {
					return false
				}
				if _, ok := glyphDeps.Glyphs[stack]; !ok {
					glyphDeps.Glyphs[stack] = mapset.NewThreadUnsafeSet[rune]()
				}
				glyphDeps.Glyphs[stack].Add(r)
				w.pendingGlyphs.Add(glyphKey{stack: stack, r: r})
				return false
			})
		}
		for stack, texts := range layout.glyphDeps.Shaping {
			held := w.shapes[stack]
			texts.Each(func(text string) bool {
				if _, ok := held[text]; ok {
					return false
				}
				if _, ok := glyphDeps.Shaping[stack]; !ok {
					glyphDeps.Shaping[stack] = mapset.NewThreadUnsafeSet[string]()
				}
				glyphDeps.Shaping[stack].Add(text)
				w.pendingShaping.Add(shapeKey{stack: stack, text: text})
				return false
			})
		}
		layout.imageDeps.Each(func(id string) bool {
			if _, ok := w.images[id]; !ok {
				imageDeps.Add(id)
			}
			return false
		})
	}

	// shaping requests ride on a glyph request for the same stack
	for stack := range glyphDeps.Shaping {
		if _, ok := glyphDeps.Glyphs[stack]; !ok {
			glyphDeps.Glyphs[stack] = mapset.NewThreadUnsafeSet[rune]()
		}
	}

	id := w.dependencyGeneration
	if !glyphDeps.Empty() {
		w.parent.Invoke(func(c *coordinator) {
			c.getGlyphs(glyphDeps, id)
		})
	}
	if imageDeps.Cardinality() > 0 {
		w.pendingImages.Append(imageDeps.ToSlice()...)
		w.parent.Invoke(func(c *coordinator) {
			c.getImages(imageDeps, id)
		})
	}
}

// finalizeLayout creates the symbol buckets and emits the result once no
// dependency is pending
func (w *Worker) finalizeLayout() {
	if w.obsolete.Load() || !w.parsed {
		w.state = Idle
		return
	}
	if w.hasPendingDependencies() {
		w.state = NeedsSymbolLayout
		return
	}

	glyphAtlas, err := glyph.NewAtlas(w.glyphs, w.config.MaxAtlasSize)
	if err != nil {
		w.state = Idle
		w.fail(fmt.Errorf("glyph atlas: %w", err))
		return
	}
	iconAtlas, err := sprite.NewAtlas(w.images, w.config.MaxAtlasSize)
	if err != nil {
		w.state = Idle
		w.fail(fmt.Errorf("icon atlas: %w", err))
		return
	}

	buckets := make(map[string]Bucket, len(w.buckets))
	for id, b := range w.buckets {
		buckets[id] = b
	}
	deps := dependencies{glyphs: w.glyphs, shapes: w.shapes, glyphAtlas: glyphAtlas, iconAtlas: iconAtlas}
	for _, layout := range w.symbolLayouts {
		if w.obsolete.Load() {
			w.state = Idle
			return
		}
		b := layout.createBucket(deps, w.showCollisionBoxes)
		if b.Empty() {
			continue
		}
		for _, layer := range layout.group {
			buckets[layer.ID] = b
		}
	}

	w.state = Idle
	result := &LayoutResult{
		CorrelationID: w.correlationID,
		Buckets:       buckets,
		FeatureIndex:  w.featureIndex,
		GlyphAtlas:    glyphAtlas,
		IconAtlas:     iconAtlas,
	}
	w.metrics.LayoutEmitted(context.Background())
	w.parent.Invoke(func(c *coordinator) {
		c.onLayout(result)
	})
}
