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
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/multierr"

	"github.com/tochemey/cartograph/log"
)

// Factory creates the tile of id. The factory is responsible for starting
// the tile's load.
type Factory func(id ID) (Tile, error)

// Pyramid keeps the tiles of one source across frames. Each Update renders
// the ideal tiles, stands in loaded parents or children for ideal tiles
// still loading, and keeps superseded tiles while they fade out.
//
// A Pyramid is not safe for concurrent use.
type Pyramid struct {
	factory     Factory
	logger      log.Logger
	tiles       map[ID]Tile
	renderTiles []*RenderTile
}

// NewPyramid creates an empty Pyramid
func NewPyramid(factory Factory, logger log.Logger) *Pyramid {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Pyramid{
		factory: factory,
		logger:  logger.With("component", "pyramid"),
		tiles:   make(map[ID]Tile),
	}
}

// Update moves the pyramid to a new ideal tile set and returns the tiles to
// render, ordered by ID. Tiles the factory fails to create are reported in
// the error; the rest of the frame is still computed.
func (p *Pyramid) Update(ideal []ID) ([]*RenderTile, error) {
	var errs error
	idealSet := mapset.NewThreadUnsafeSet(ideal...)
	render := make(map[ID]*RenderTile)
	use := func(id ID, t Tile, isIdeal bool) {
		if existing, ok := render[id]; ok {
			existing.Ideal = existing.Ideal || isIdeal
			return
		}
		render[id] = &RenderTile{ID: id, Tile: t, Ideal: isIdeal}
		if isIdeal {
			t.MarkRenderedIdeal()
		} else {
			t.MarkRenderedPreviously()
		}
	}

	for _, id := range ideal {
		t, ok := p.tiles[id]
		if !ok {
			created, err := p.factory(id)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			t = created
			p.tiles[id] = t
		}

		if t.IsRenderable() {
			use(id, t, true)
			continue
		}
		if !p.coverWithParent(id, use) {
			p.coverWithChildren(id, use)
		}
	}

	for id, t := range p.tiles {
		if idealSet.Contains(id) {
			continue
		}
		if _, ok := render[id]; ok {
			continue
		}
		if t.IsRenderable() {
			t.MarkRenderedPreviously()
			if t.HoldForFade() {
				render[id] = &RenderTile{ID: id, Tile: t}
				continue
			}
		}
		p.logger.Debugf("removing tile %s", id)
		t.Cancel()
		t.Close()
		delete(p.tiles, id)
	}

	p.renderTiles = make([]*RenderTile, 0, len(render))
	for _, rt := range render {
		p.renderTiles = append(p.renderTiles, rt)
	}
	slices.SortFunc(p.renderTiles, func(a, b *RenderTile) int {
		switch {
		case a.ID.Less(b.ID):
			return -1
		case b.ID.Less(a.ID):
			return 1
		default:
			return 0
		}
	})
	return p.renderTiles, errs
}

func (p *Pyramid) coverWithParent(id ID, use func(ID, Tile, bool)) bool {
	for parent, ok := id.Parent(); ok; parent, ok = parent.Parent() {
		if t, exists := p.tiles[parent]; exists && t.IsRenderable() {
			use(parent, t, false)
			return true
		}
	}
	return false
}

func (p *Pyramid) coverWithChildren(id ID, use func(ID, Tile, bool)) {
	for childID, t := range p.tiles {
		if childID.IsChildOf(id) && t.IsRenderable() {
			use(childID, t, false)
		}
	}
}

// RenderTiles returns the tiles of the last Update
func (p *Pyramid) RenderTiles() []*RenderTile {
	return p.renderTiles
}

// Tile returns a tile held by the pyramid
func (p *Pyramid) Tile(id ID) (Tile, bool) {
	t, ok := p.tiles[id]
	return t, ok
}

// Len returns the number of tiles held
func (p *Pyramid) Len() int {
	return len(p.tiles)
}

// Close closes every tile
func (p *Pyramid) Close() {
	for id, t := range p.tiles {
		t.Close()
		delete(p.tiles, id)
	}
	p.renderTiles = nil
}
