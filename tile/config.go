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
	"time"

	"github.com/paulmach/orb/encoding/mvt"

	gerrors "github.com/tochemey/cartograph/errors"
	"github.com/tochemey/cartograph/internal/validation"
)

// Mode selects how tiles are rendered
type Mode int

const (
	// Continuous renders frame after frame; superseded tiles are held while
	// their symbols fade out.
	Continuous Mode = iota
	// Static renders single still images; nothing is held for fading.
	Static
)

// Size is the pixel size of a tile on screen
const Size = 512

// Config tunes tile parsing and layout
type Config struct {
	Mode Mode
	// CoalesceWindow delays parsing after new input so bursts of updates
	// parse once. Zero parses on the next mailbox turn.
	CoalesceWindow time.Duration
	// Extent is the tile coordinate range expected from decoders
	Extent uint32
	// IndexCells is the number of feature index cells per tile side
	IndexCells int
	// MaxAtlasSize bounds the side of glyph and icon atlases
	MaxAtlasSize int
	// SourceMaxZoom is the deepest zoom the source has data for
	SourceMaxZoom uint8
}

// DefaultConfig returns the default Config
func DefaultConfig() Config {
	return Config{
		Mode:          Continuous,
		Extent:        mvt.DefaultExtent,
		IndexCells:    16,
		MaxAtlasSize:  2048,
		SourceMaxZoom: 14,
	}
}

// Validate checks the Config
func (c Config) Validate() error {
	err := validation.New().
		AddAssertion(c.Mode == Continuous || c.Mode == Static, "mode is invalid").
		AddAssertion(c.CoalesceWindow >= 0, "coalesce window must not be negative").
		AddValidator(validation.NewPositiveValidator("extent", c.Extent)).
		AddValidator(validation.NewRangeValidator("index cells", c.IndexCells, 1, 1024)).
		AddValidator(validation.NewRangeValidator("max atlas size", c.MaxAtlasSize, 64, 16384)).
		AddValidator(validation.NewRangeValidator("source max zoom", c.SourceMaxZoom, 0, MaxZoom)).
		Validate()
	if err != nil {
		return fmt.Errorf("%w: %w", gerrors.ErrInvalidConfig, err)
	}
	return nil
}
