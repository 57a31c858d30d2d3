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

// Package glyph loads, rasterizes and shapes the glyphs that symbol layers
// need, and hands them to tiles through an actor-style Manager.
package glyph

import (
	"image"
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-text/typesetting/language"
)

// BaseSize is the pixel size glyphs are rasterized and shaped at.
// Layouts scale glyph metrics from this size.
const BaseSize = 24

// RangeSize is the number of codepoints per glyph range.
const RangeSize = 256

// FontStack is a comma separated list of font names, tried in order.
type FontStack string

// NewFontStack joins font names into a FontStack
func NewFontStack(fonts ...string) FontStack {
	return FontStack(strings.Join(fonts, ","))
}

// Fonts returns the font names of the stack
func (s FontStack) Fonts() []string {
	if s == "" {
		return nil
	}
	fonts := strings.Split(string(s), ",")
	for i := range fonts {
		fonts[i] = strings.TrimSpace(fonts[i])
	}
	return fonts
}

// Range is a block of RangeSize codepoints. Glyphs are loaded one range at a time.
type Range struct {
	First rune
	Last  rune
}

// RangeOf returns the range holding r
func RangeOf(r rune) Range {
	first := r - r%RangeSize
	return Range{First: first, Last: first + RangeSize - 1}
}

// Contains reports whether r falls in the range
func (r Range) Contains(c rune) bool {
	return c >= r.First && c <= r.Last
}

// Metrics describes the placement of a glyph bitmap relative to the pen
// position at BaseSize. Top is measured upwards from the baseline.
type Metrics struct {
	Width   int
	Height  int
	Left    int
	Top     int
	Advance float64
}

// Glyph is a rasterized codepoint
type Glyph struct {
	ID      rune
	Bitmap  *image.Alpha
	Metrics Metrics
}

// Glyphs maps codepoints to glyphs. A nil entry records a codepoint that
// was requested but that none of the fonts of the stack provide.
type Glyphs map[rune]*Glyph

// GlyphMap holds glyphs per font stack
type GlyphMap map[FontStack]Glyphs

// Dependencies lists the codepoints a layout needs per font stack, and the
// texts that must go through the shaper before layout.
type Dependencies struct {
	Glyphs  map[FontStack]mapset.Set[rune]
	Shaping map[FontStack]mapset.Set[string]
}

// NewDependencies creates an empty Dependencies
func NewDependencies() Dependencies {
	return Dependencies{
		Glyphs:  make(map[FontStack]mapset.Set[rune]),
		Shaping: make(map[FontStack]mapset.Set[string]),
	}
}

// AddText records every codepoint of text under stack. Texts that need
// complex shaping are recorded for the shaper as well.
func (d Dependencies) AddText(stack FontStack, text string) {
	runes, ok := d.Glyphs[stack]
	if !ok {
		runes = mapset.NewThreadUnsafeSet[rune]()
		d.Glyphs[stack] = runes
	}
	for _, r := range text {
		runes.Add(r)
	}

	if NeedsShaping(text) {
		texts, ok := d.Shaping[stack]
		if !ok {
			texts = mapset.NewThreadUnsafeSet[string]()
			d.Shaping[stack] = texts
		}
		texts.Add(text)
	}
}

// Merge adds other into d
func (d Dependencies) Merge(other Dependencies) {
	for stack, runes := range other.Glyphs {
		if existing, ok := d.Glyphs[stack]; ok {
			existing.Append(runes.ToSlice()...)
			continue
		}
		d.Glyphs[stack] = runes.Clone()
	}
	for stack, texts := range other.Shaping {
		if existing, ok := d.Shaping[stack]; ok {
			existing.Append(texts.ToSlice()...)
			continue
		}
		d.Shaping[stack] = texts.Clone()
	}
}

// Empty reports whether there is nothing to load
func (d Dependencies) Empty() bool {
	for _, runes := range d.Glyphs {
		if runes.Cardinality() > 0 {
			return false
		}
	}
	for _, texts := range d.Shaping {
		if texts.Cardinality() > 0 {
			return false
		}
	}
	return true
}

// Ranges returns the glyph ranges the dependencies touch per font stack
func (d Dependencies) Ranges() map[FontStack]mapset.Set[Range] {
	ranges := make(map[FontStack]mapset.Set[Range], len(d.Glyphs))
	for stack, runes := range d.Glyphs {
		set := mapset.NewThreadUnsafeSet[Range]()
		runes.Each(func(r rune) bool {
			set.Add(RangeOf(r))
			return false
		})
		ranges[stack] = set
	}
	return ranges
}

// Missing builds a GlyphMap answering every dependency with a missing glyph.
// It lets layouts finish when no glyph source is configured.
func Missing(deps Dependencies) GlyphMap {
	glyphs := make(GlyphMap, len(deps.Glyphs))
	for stack, runes := range deps.Glyphs {
		entry := make(Glyphs, runes.Cardinality())
		runes.Each(func(r rune) bool {
			entry[r] = nil
			return false
		})
		glyphs[stack] = entry
	}
	return glyphs
}

// Requestor receives the glyphs it asked for. The correlation ID passed to
// GetGlyphs is echoed back unchanged.
type Requestor interface {
	OnGlyphsAvailable(glyphs GlyphMap, shapes ShapeResults, correlationID uint64)
	OnGlyphsError(err error, correlationID uint64)
}

// NeedsShaping reports whether text holds codepoints from scripts that
// cannot be laid out glyph by glyph.
func NeedsShaping(text string) bool {
	for _, r := range text {
		if r < unicode.MaxLatin1 {
			continue
		}
		switch language.LookupScript(r) {
		case language.Latin, language.Common, language.Inherited, language.Greek, language.Cyrillic:
			continue
		default:
			return true
		}
	}
	return false
}
