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
	"math"
	"slices"

	"github.com/paulmach/orb"
)

// SymbolKey identifies a symbol instance across frames
type SymbolKey struct {
	Tile     ID
	LayerID  string
	Instance int
}

// SymbolPlacement tells which parts of a symbol instance are shown
type SymbolPlacement struct {
	Text bool
	Icon bool
}

// Placement greedily places the symbols of a frame, layer by layer top
// down, hiding those that collide with symbols placed before them.
type Placement struct {
	zoom   float64
	index  *CollisionIndex
	placed map[SymbolKey]SymbolPlacement
}

// NewPlacement creates a placement for a frame displayed at zoom
func NewPlacement(zoom float64) *Placement {
	return &Placement{
		zoom:   zoom,
		index:  NewCollisionIndex(),
		placed: make(map[SymbolKey]SymbolPlacement),
	}
}

// Place places the symbols of tiles. layerIDs lists the symbol layers
// top-most first. Every tile then advances its fade state.
func (p *Placement) Place(tiles []*RenderTile, layerIDs []string) map[SymbolKey]SymbolPlacement {
	ordered := slices.Clone(tiles)
	// ideal tiles win over the tiles they replace
	slices.SortStableFunc(ordered, func(a, b *RenderTile) int {
		if a.Ideal != b.Ideal {
			if a.Ideal {
				return -1
			}
			return 1
		}
		if a.ID.Less(b.ID) {
			return -1
		}
		if b.ID.Less(a.ID) {
			return 1
		}
		return 0
	})

	for _, layerID := range layerIDs {
		for _, rt := range ordered {
			b, ok := rt.Bucket(layerID)
			if !ok {
				continue
			}
			symbols, ok := b.(*SymbolBucket)
			if !ok {
				continue
			}
			p.placeBucket(rt.ID, layerID, symbols)
		}
	}

	for _, rt := range tiles {
		rt.Tile.PerformedFadePlacement()
	}
	return p.placed
}

// Placed returns the placement of a symbol instance
func (p *Placement) Placed(key SymbolKey) (SymbolPlacement, bool) {
	placed, ok := p.placed[key]
	return placed, ok
}

func (p *Placement) placeBucket(id ID, layerID string, b *SymbolBucket) {
	// pixels of the frame per tile unit, anchored at the tile's world origin
	scale := math.Pow(2, p.zoom-id.Zoom())
	tileSize := float64(Size) * float64(id.OverscaleFactor())
	origin := orb.Point{
		float64(id.Canonical.X) * tileSize,
		float64(id.Canonical.Y) * tileSize,
	}
	wrapOffset := float64(id.Wrap) * tileSize * float64(uint32(1)<<id.Canonical.Z)

	for i, instance := range b.Instances {
		key := SymbolKey{Tile: id, LayerID: layerID, Instance: i}
		if _, done := p.placed[key]; done {
			continue
		}

		unit := tileSize / b.extent()
		anchor := orb.Point{
			(origin[0] + wrapOffset + instance.Anchor[0]*unit) * scale,
			(origin[1] + instance.Anchor[1]*unit) * scale,
		}
		textBox := translate(instance.TextBox, anchor)
		iconBox := translate(instance.IconBox, anchor)

		textOK := !instance.HasText() || instance.TextAllowOverlap || !p.index.Collides(textBox)
		iconOK := !instance.HasIcon() || instance.IconAllowOverlap || !p.index.Collides(iconBox)
		show := textOK && iconOK

		if show {
			if instance.HasText() {
				p.index.Insert(textBox)
			}
			if instance.HasIcon() {
				p.index.Insert(iconBox)
			}
		}
		p.placed[key] = SymbolPlacement{Text: show && instance.HasText(), Icon: show && instance.HasIcon()}
	}
}
