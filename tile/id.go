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

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	gerrors "github.com/tochemey/cartograph/errors"
)

// MaxZoom is the deepest canonical zoom level
const MaxZoom = 25

// ID identifies a tile in the pyramid. OverscaledZ is the zoom the tile is
// displayed at; it is larger than the canonical zoom when a tile is
// overscaled past the source's maximum zoom. Wrap counts world copies
// east (positive) or west (negative) of the primary world.
type ID struct {
	OverscaledZ uint8
	Wrap        int16
	Canonical   maptile.Tile
}

// NewID creates the ID of a canonical, non-overscaled tile of the primary world
func NewID(z uint8, x, y uint32) (ID, error) {
	return NewOverscaledID(z, 0, maptile.New(x, y, maptile.Zoom(z)))
}

// NewOverscaledID creates an ID
func NewOverscaledID(overscaledZ uint8, wrap int16, canonical maptile.Tile) (ID, error) {
	if canonical.Z > MaxZoom {
		return ID{}, fmt.Errorf("%w: zoom %d beyond %d", gerrors.ErrInvalidTileID, canonical.Z, MaxZoom)
	}
	dim := uint32(1) << canonical.Z
	if canonical.X >= dim || canonical.Y >= dim {
		return ID{}, fmt.Errorf("%w: %d/%d/%d outside of the pyramid", gerrors.ErrInvalidTileID, canonical.Z, canonical.X, canonical.Y)
	}
	if uint32(overscaledZ) < uint32(canonical.Z) {
		return ID{}, fmt.Errorf("%w: overscaled zoom %d below canonical zoom %d", gerrors.ErrInvalidTileID, overscaledZ, canonical.Z)
	}
	return ID{OverscaledZ: overscaledZ, Wrap: wrap, Canonical: canonical}, nil
}

// MustID is NewID that panics on invalid input
func MustID(z uint8, x, y uint32) ID {
	id, err := NewID(z, x, y)
	if err != nil {
		panic(err)
	}
	return id
}

// Zoom returns the display zoom
func (id ID) Zoom() float64 {
	return float64(id.OverscaledZ)
}

// OverscaleFactor returns 2^(OverscaledZ - canonical zoom)
func (id ID) OverscaleFactor() uint32 {
	return uint32(1) << (uint32(id.OverscaledZ) - uint32(id.Canonical.Z))
}

// IsOverscaled reports whether the tile is displayed past its canonical zoom
func (id ID) IsOverscaled() bool {
	return uint32(id.OverscaledZ) > uint32(id.Canonical.Z)
}

// Parent returns the tile one zoom level up. The root tile has no parent.
func (id ID) Parent() (ID, bool) {
	if id.OverscaledZ == 0 {
		return ID{}, false
	}
	if id.IsOverscaled() {
		return ID{OverscaledZ: id.OverscaledZ - 1, Wrap: id.Wrap, Canonical: id.Canonical}, true
	}
	return ID{OverscaledZ: id.OverscaledZ - 1, Wrap: id.Wrap, Canonical: id.Canonical.Parent()}, true
}

// Children returns the four tiles one zoom level down. Tiles at the source's
// maximum zoom have a single overscaled child.
func (id ID) Children(sourceMaxZoom uint8) []ID {
	if id.OverscaledZ >= sourceMaxZoom || uint32(id.Canonical.Z) >= MaxZoom {
		return []ID{{OverscaledZ: id.OverscaledZ + 1, Wrap: id.Wrap, Canonical: id.Canonical}}
	}
	children := id.Canonical.Children()
	ids := make([]ID, 0, len(children))
	for _, child := range children {
		ids = append(ids, ID{OverscaledZ: id.OverscaledZ + 1, Wrap: id.Wrap, Canonical: child})
	}
	return ids
}

// IsChildOf reports whether id lies strictly below parent in the same world copy
func (id ID) IsChildOf(parent ID) bool {
	if id.Wrap != parent.Wrap || id.OverscaledZ <= parent.OverscaledZ {
		return false
	}
	if parent.Canonical.Z > id.Canonical.Z {
		return false
	}
	shift := uint32(id.Canonical.Z - parent.Canonical.Z)
	return id.Canonical.X>>shift == parent.Canonical.X && id.Canonical.Y>>shift == parent.Canonical.Y
}

// Bound returns the geographic bound of the canonical tile
func (id ID) Bound() orb.Bound {
	return id.Canonical.Bound()
}

// Less orders IDs by wrap, zoom, then canonical position
func (id ID) Less(other ID) bool {
	if id.Wrap != other.Wrap {
		return id.Wrap < other.Wrap
	}
	if id.OverscaledZ != other.OverscaledZ {
		return id.OverscaledZ < other.OverscaledZ
	}
	if id.Canonical.Z != other.Canonical.Z {
		return id.Canonical.Z < other.Canonical.Z
	}
	if id.Canonical.X != other.Canonical.X {
		return id.Canonical.X < other.Canonical.X
	}
	return id.Canonical.Y < other.Canonical.Y
}

func (id ID) String() string {
	if !id.IsOverscaled() && id.Wrap == 0 {
		return fmt.Sprintf("%d/%d/%d", id.Canonical.Z, id.Canonical.X, id.Canonical.Y)
	}
	return fmt.Sprintf("%d/%d/%d/%d/%d", id.OverscaledZ, id.Wrap, id.Canonical.Z, id.Canonical.X, id.Canonical.Y)
}
