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
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/cartograph/actor"
	"github.com/tochemey/cartograph/log"
	"github.com/tochemey/cartograph/scheduler"
	"github.com/tochemey/cartograph/sprite"
	"github.com/tochemey/cartograph/telemetry"
)

// RasterTile is a tile of a raster source. Like GeometryTile it decodes its
// data in a worker actor on the background scheduler.
type RasterTile struct {
	id       ID
	observer Observer
	logger   log.Logger
	obsolete *atomic.Bool

	coordinator *actor.Actor[rasterCoordinator]
	worker      *actor.Actor[RasterTileWorker]

	mu            sync.Mutex
	correlationID uint64
	pending       bool
	loaded        bool
	renderable    bool
	err           error
	bucket        *RasterBucket
	fade          fade
	closed        bool
}

var _ Tile = (*RasterTile)(nil)

type rasterCoordinator struct {
	tile *RasterTile
}

// RasterTileWorker decodes raster images
type RasterTileWorker struct {
	parent   actor.ActorRef[rasterCoordinator]
	obsolete *atomic.Bool
	logger   log.Logger
	metrics  *telemetry.Metrics
}

// NewRasterTile creates the raster tile id
func NewRasterTile(id ID, owner, background scheduler.Scheduler, opts ...Option) (*RasterTile, error) {
	o := newOptions(opts...)
	if err := o.config.Validate(); err != nil {
		return nil, err
	}
	o.logger = o.logger.With("tile", id.String(), "kind", "raster")

	t := &RasterTile{
		id:       id,
		observer: o.observer,
		logger:   o.logger,
		obsolete: atomic.NewBool(false),
		fade:     fade{state: Loaded, mode: o.config.Mode},
	}
	t.coordinator = actor.New(owner, func(actor.ActorRef[rasterCoordinator]) *rasterCoordinator {
		return &rasterCoordinator{tile: t}
	}, actor.WithName(fmt.Sprintf("raster-%s", id)), actor.WithLogger(o.logger))
	parent := t.coordinator.Self()
	t.worker = actor.New(background, func(actor.ActorRef[RasterTileWorker]) *RasterTileWorker {
		return &RasterTileWorker{parent: parent, obsolete: t.obsolete, logger: o.logger, metrics: o.metrics}
	}, actor.WithName(fmt.Sprintf("raster-worker-%s", id)), actor.WithLogger(o.logger))
	return t, nil
}

// Parse decodes data and reports the bucket to the tile
func (w *RasterTileWorker) Parse(data []byte, correlationID uint64) {
	if w.obsolete.Load() {
		return
	}

	if len(data) == 0 {
		w.parent.Invoke(func(c *rasterCoordinator) {
			c.onParsed(nil, correlationID)
		})
		return
	}

	start := time.Now()
	img, err := sprite.Decode(data)
	if err != nil {
		w.metrics.ParseFailed(context.Background())
		w.parent.Invoke(func(c *rasterCoordinator) {
			c.onError(err, correlationID)
		})
		return
	}
	b := &RasterBucket{bucket: newBucket(nil), Image: sprite.NewImage("", img, 1, false).Pixels}
	w.metrics.ParseDuration(context.Background(), time.Since(start))
	w.parent.Invoke(func(c *rasterCoordinator) {
		c.onParsed(b, correlationID)
	})
}

// ID implements Tile
func (t *RasterTile) ID() ID {
	return t.id
}

// SetData implements Tile
func (t *RasterTile) SetData(data []byte) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.pending = true
	t.correlationID++
	id := t.correlationID
	t.mu.Unlock()

	t.worker.Self().Invoke(func(w *RasterTileWorker) {
		w.Parse(data, id)
	})
}

// SetError implements Tile
func (t *RasterTile) SetError(err error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.loaded = true
	t.err = err
	t.mu.Unlock()
	t.observer.OnTileError(t, err)
}

// Bucket returns the raster bucket for any layer
func (t *RasterTile) Bucket(string) (Bucket, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bucket == nil {
		return nil, false
	}
	return t.bucket, true
}

// Err returns the latest error
func (t *RasterTile) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// IsRenderable implements Tile
func (t *RasterTile) IsRenderable() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.renderable
}

// IsLoaded implements Tile
func (t *RasterTile) IsLoaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// IsComplete implements Tile
func (t *RasterTile) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded && !t.pending
}

// FadeState implements Tile
func (t *RasterTile) FadeState() FadeState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fade.state
}

// MarkRenderedIdeal implements Tile
func (t *RasterTile) MarkRenderedIdeal() {
	t.mu.Lock()
	t.fade.markRenderedIdeal()
	t.mu.Unlock()
}

// MarkRenderedPreviously implements Tile
func (t *RasterTile) MarkRenderedPreviously() {
	t.mu.Lock()
	t.fade.markRenderedPreviously()
	t.mu.Unlock()
}

// PerformedFadePlacement implements Tile
func (t *RasterTile) PerformedFadePlacement() {
	t.mu.Lock()
	t.fade.performedFadePlacement()
	t.mu.Unlock()
}

// HoldForFade implements Tile
func (t *RasterTile) HoldForFade() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fade.holdForFade()
}

// Cancel implements Tile
func (t *RasterTile) Cancel() {
	t.obsolete.Store(true)
}

// Close implements Tile
func (t *RasterTile) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	t.Cancel()
	t.worker.Close()
	t.coordinator.Close()
}

func (c *rasterCoordinator) onParsed(b *RasterBucket, correlationID uint64) {
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
	t.bucket = b
	t.renderable = b != nil
	t.err = nil
	t.mu.Unlock()
	t.observer.OnTileChanged(t)
}

func (c *rasterCoordinator) onError(err error, correlationID uint64) {
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
	t.logger.Warnf("raster tile failed to decode: %v", err)
	t.observer.OnTileError(t, err)
}
