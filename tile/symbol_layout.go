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
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/tochemey/cartograph/glyph"
	"github.com/tochemey/cartograph/sprite"
)

const (
	defaultTextSize = 16
	lineHeight      = 1.2
)

type symbolFeature struct {
	index   int
	feature *geojson.Feature
	text    string
	icon    string
	anchor  orb.Point
}

// symbolLayout is the parse-time half of a symbol layer group. It resolves
// labels and icons and records what they depend on; the bucket is created
// once the dependencies arrived.
type symbolLayout struct {
	group       layerGroup
	sourceLayer string
	layout      Layout
	extent      float64
	features    []symbolFeature
	glyphDeps   glyph.Dependencies
	imageDeps   mapset.Set[string]
}

func newSymbolLayout(group layerGroup, layer *mvt.Layer, zoom float64, extent uint32, availableImages mapset.Set[string], index *FeatureIndex) *symbolLayout {
	leader := group.leader()
	l := &symbolLayout{
		group:       group,
		sourceLayer: layer.Name,
		layout:      leader.Layout,
		extent:      float64(extent),
		glyphDeps:   glyph.NewDependencies(),
		imageDeps:   mapset.NewThreadUnsafeSet[string](),
	}
	if l.layout.TextSize <= 0 {
		l.layout.TextSize = defaultTextSize
	}
	if l.layout.IconSize <= 0 {
		l.layout.IconSize = 1
	}

	ids := group.ids()
	for i, feature := range layer.Features {
		if feature.Geometry == nil {
			continue
		}
		if leader.Filter != nil && !leader.Filter.Match(zoom, feature) {
			continue
		}

		text := resolveTemplate(l.layout.TextField, feature.Properties)
		icon := resolveTemplate(l.layout.IconImage, feature.Properties)
		if icon != "" && !availableImages.Contains(icon) {
			icon = ""
		}
		if text == "" && icon == "" {
			continue
		}

		anchor, ok := anchorOf(feature.Geometry)
		if !ok || anchor[0] < 0 || anchor[1] < 0 || anchor[0] >= l.extent || anchor[1] >= l.extent {
			continue
		}

		if text != "" {
			l.glyphDeps.AddText(l.layout.TextFont, text)
		}
		if icon != "" {
			l.imageDeps.Add(icon)
		}
		l.features = append(l.features, symbolFeature{index: i, feature: feature, text: text, icon: icon, anchor: anchor})
		index.Insert(layer.Name, ids, i, feature)
	}
	return l
}

// dependencies are resolved when a layout is finalized
type dependencies struct {
	glyphs     glyph.GlyphMap
	shapes     glyph.ShapeResults
	glyphAtlas *glyph.Atlas
	iconAtlas  *sprite.Atlas
}

func (l *symbolLayout) createBucket(deps dependencies, showCollisionBoxes bool) *SymbolBucket {
	b := &SymbolBucket{bucket: newBucket(l.group.ids()), tileExtent: l.extent}
	pxPerUnit := Size / l.extent

	for _, f := range l.features {
		instance := SymbolInstance{
			FeatureIndex:     f.index,
			Anchor:           f.anchor,
			Text:             f.text,
			TextAllowOverlap: l.layout.TextAllowOverlap,
			IconAllowOverlap: l.layout.IconAllowOverlap,
		}
		if f.text != "" {
			instance.Glyphs, instance.TextBox = l.shapeText(f.text, deps)
		}
		if f.icon != "" {
			if pos, ok := deps.iconAtlas.Lookup(f.icon); ok {
				size := pos.Rect.Size()
				w := float64(size.X) / pos.PixelRatio * l.layout.IconSize
				h := float64(size.Y) / pos.PixelRatio * l.layout.IconSize
				instance.Icon = f.icon
				instance.IconTex = pos.Rect
				instance.IconBox = orb.Bound{Min: orb.Point{-w / 2, -h / 2}, Max: orb.Point{w / 2, h / 2}}
			}
		}
		if !instance.HasText() && !instance.HasIcon() {
			continue
		}
		b.Instances = append(b.Instances, instance)

		if showCollisionBoxes {
			origin := orb.Point{f.anchor[0] * pxPerUnit, f.anchor[1] * pxPerUnit}
			if instance.HasText() {
				b.CollisionBoxes = append(b.CollisionBoxes, translate(instance.TextBox, origin))
			}
			if instance.HasIcon() {
				b.CollisionBoxes = append(b.CollisionBoxes, translate(instance.IconBox, origin))
			}
		}
	}
	return b
}

// shapeText positions the glyphs of text centered on the anchor
func (l *symbolLayout) shapeText(text string, deps dependencies) ([]GlyphQuad, orb.Bound) {
	stack := l.layout.TextFont
	scale := l.layout.TextSize / glyph.BaseSize

	type pen struct {
		r rune
		x float64
	}
	var pens []pen
	var width float64
	if shaped, ok := deps.shapes[stack][text]; ok {
		for _, g := range shaped.Glyphs {
			pens = append(pens, pen{r: g.Rune, x: g.X})
		}
		width = shaped.Width
	} else {
		for _, r := range text {
			pens = append(pens, pen{r: r, x: width})
			if g := deps.glyphs[stack][r]; g != nil {
				width += g.Metrics.Advance
			}
		}
	}

	half := width * scale / 2
	quads := make([]GlyphQuad, 0, len(pens))
	for _, p := range pens {
		pos, ok := deps.glyphAtlas.Lookup(stack, p.r)
		if !ok || pos.Rect.Empty() {
			continue
		}
		quads = append(quads, GlyphQuad{
			Rune: p.r,
			Offset: orb.Point{
				(p.x+float64(pos.Metrics.Left))*scale - half,
				(float64(glyph.BaseSize)/2-float64(pos.Metrics.Top))*scale - l.layout.TextSize/4,
			},
			Tex: pos.Rect,
		})
	}
	if len(quads) == 0 {
		return nil, orb.Bound{}
	}

	h := l.layout.TextSize * lineHeight / 2
	return quads, orb.Bound{Min: orb.Point{-half, -h}, Max: orb.Point{half, h}}
}

func translate(b orb.Bound, by orb.Point) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min[0] + by[0], b.Min[1] + by[1]},
		Max: orb.Point{b.Max[0] + by[0], b.Max[1] + by[1]},
	}
}

// anchorOf picks the point a symbol is placed at
func anchorOf(geometry orb.Geometry) (orb.Point, bool) {
	switch g := geometry.(type) {
	case orb.Point:
		return g, true
	case orb.MultiPoint:
		if len(g) == 0 {
			return orb.Point{}, false
		}
		return g[0], true
	case orb.LineString:
		return midpoint(g)
	case orb.MultiLineString:
		if len(g) == 0 {
			return orb.Point{}, false
		}
		return midpoint(g[0])
	case orb.Polygon, orb.MultiPolygon:
		centroid, area := planar.CentroidArea(g)
		if area == 0 {
			return orb.Point{}, false
		}
		return centroid, true
	default:
		return orb.Point{}, false
	}
}

// midpoint walks half of the line's length
func midpoint(line orb.LineString) (orb.Point, bool) {
	if len(line) == 0 {
		return orb.Point{}, false
	}
	remaining := planar.Length(line) / 2
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		segment := planar.Distance(a, b)
		if segment >= remaining && segment > 0 {
			t := remaining / segment
			return orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}, true
		}
		remaining -= segment
	}
	return line[len(line)-1], true
}

// resolveTemplate replaces {key} tokens with feature properties. Unknown
// keys resolve to the empty string.
func resolveTemplate(template string, properties geojson.Properties) string {
	if !strings.Contains(template, "{") {
		return template
	}

	var sb strings.Builder
	for {
		start := strings.IndexByte(template, '{')
		if start < 0 {
			sb.WriteString(template)
			break
		}
		end := strings.IndexByte(template[start:], '}')
		if end < 0 {
			sb.WriteString(template)
			break
		}
		sb.WriteString(template[:start])
		if value, ok := properties[template[start+1:start+end]]; ok && value != nil {
			sb.WriteString(fmt.Sprint(value))
		}
		template = template[start+end+1:]
	}
	return strings.TrimSpace(sb.String())
}
