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
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Loader produces the glyphs of one range for a font stack.
// Implementations are called from background goroutines.
type Loader interface {
	Load(stack FontStack, r Range) (Glyphs, error)
}

// FontLoader rasterizes glyph masks out of the fonts of a Library
type FontLoader struct {
	library *Library
}

var _ Loader = (*FontLoader)(nil)

// NewFontLoader creates a FontLoader
func NewFontLoader(library *Library) *FontLoader {
	return &FontLoader{library: library}
}

// Load rasterizes every codepoint of r the font provides. Codepoints without
// a glyph are left out.
func (l *FontLoader) Load(stack FontStack, r Range) (Glyphs, error) {
	parsed, err := l.library.font(stack)
	if err != nil {
		return nil, err
	}

	// faces cache rasterization state and are not safe to share
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    BaseSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	defer face.Close()

	var buf sfnt.Buffer
	glyphs := make(Glyphs)
	for c := r.First; c <= r.Last; c++ {
		index, err := parsed.GlyphIndex(&buf, c)
		if err != nil || index == 0 {
			continue
		}

		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), c)
		if !ok {
			continue
		}

		bitmap := image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
		if mask != nil && !dr.Empty() {
			draw.Draw(bitmap, bitmap.Bounds(), mask, maskp, draw.Src)
		}

		glyphs[c] = &Glyph{
			ID:     c,
			Bitmap: bitmap,
			Metrics: Metrics{
				Width:   dr.Dx(),
				Height:  dr.Dy(),
				Left:    dr.Min.X,
				Top:     -dr.Min.Y,
				Advance: float64(advance) / 64,
			},
		}
	}
	return glyphs, nil
}
