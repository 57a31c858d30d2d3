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

package glyph

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	gerrors "github.com/tochemey/cartograph/errors"
)

// ShapedGlyph is one positioned glyph of a shaped text, at BaseSize.
// Rune is the codepoint that starts the glyph's cluster.
type ShapedGlyph struct {
	ID       uint16
	Rune     rune
	X        float64
	Y        float64
	XAdvance float64
}

// ShapedText is the shaper output for one text
type ShapedText struct {
	Glyphs []ShapedGlyph
	Width  float64
}

// ShapeResults holds shaped texts per font stack
type ShapeResults map[FontStack]map[string]ShapedText

// Shaper runs complex-script texts through a HarfBuzz shaper
type Shaper struct {
	library *Library
	mu      sync.Mutex
	fonts   map[string]*font.Font
	pool    sync.Pool
}

// NewShaper creates a Shaper reading fonts from library
func NewShaper(library *Library) *Shaper {
	return &Shaper{
		library: library,
		fonts:   make(map[string]*font.Font),
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Shape lays text out left to right with the font of stack
func (s *Shaper) Shape(stack FontStack, text string) (ShapedText, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return ShapedText{}, nil
	}

	parsed, err := s.font(stack)
	if err != nil {
		return ShapedText{}, err
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(parsed),
		Size:      fixed.Int26_6(BaseSize * 64),
		Script:    scriptOf(runes),
		Language:  language.NewLanguage("en"),
	}

	shaper := s.pool.Get().(*shaping.HarfbuzzShaper)
	output := shaper.Shape(input)
	s.pool.Put(shaper)

	shaped := ShapedText{Glyphs: make([]ShapedGlyph, 0, len(output.Glyphs))}
	var x float64
	for _, g := range output.Glyphs {
		advance := float64(g.Advance) / 64
		cluster := min(max(g.TextIndex(), 0), len(runes)-1)
		shaped.Glyphs = append(shaped.Glyphs, ShapedGlyph{
			ID:       uint16(g.GlyphID), //nolint:gosec
			Rune:     runes[cluster],
			X:        x + float64(g.XOffset)/64,
			Y:        float64(g.YOffset) / 64,
			XAdvance: advance,
		})
		x += advance
	}
	shaped.Width = x
	return shaped, nil
}

func (s *Shaper) font(stack FontStack) (*font.Font, error) {
	name, data := s.library.Lookup(stack)

	s.mu.Lock()
	defer s.mu.Unlock()
	if parsed, ok := s.fonts[name]; ok {
		return parsed, nil
	}

	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("font %q: %w: %w", name, gerrors.ErrDecodeFailed, err)
	}
	s.fonts[name] = face.Font
	return face.Font, nil
}

func scriptOf(runes []rune) language.Script {
	for _, r := range runes {
		switch script := language.LookupScript(r); script {
		case language.Common, language.Inherited:
			continue
		default:
			return script
		}
	}
	return language.Latin
}
