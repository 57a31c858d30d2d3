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
	"slices"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/zeebo/xxh3"

	"github.com/tochemey/cartograph/glyph"
)

// LayerType is the kind of bucket a layer renders into
type LayerType int

const (
	FillLayer LayerType = iota
	LineLayer
	CircleLayer
	SymbolLayer
	RasterLayer
)

func (t LayerType) String() string {
	switch t {
	case FillLayer:
		return "fill"
	case LineLayer:
		return "line"
	case CircleLayer:
		return "circle"
	case SymbolLayer:
		return "symbol"
	case RasterLayer:
		return "raster"
	default:
		return "unknown"
	}
}

// FeatureFilter selects the features a layer renders. Key identifies the
// filter for layer grouping; equal keys must select equal features.
type FeatureFilter interface {
	Match(zoom float64, feature *geojson.Feature) bool
	Key() string
}

// PropertyFilter matches features whose properties hold all the given values
type PropertyFilter map[string]any

var _ FeatureFilter = PropertyFilter(nil)

// Match implements FeatureFilter
func (f PropertyFilter) Match(_ float64, feature *geojson.Feature) bool {
	for key, want := range f {
		got, ok := feature.Properties[key]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// Key implements FeatureFilter
func (f PropertyFilter) Key() string {
	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	var sb strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&sb, "%s=%v;", key, f[key])
	}
	return sb.String()
}

// Layout holds the layout properties of a layer. Layers with equal layouts
// over the same source layer share one layout pass.
type Layout struct {
	// TextField is a template; {name} is replaced by the feature property.
	TextField        string
	TextFont         glyph.FontStack
	TextSize         float64
	TextAllowOverlap bool
	IconImage        string
	IconAllowOverlap bool
	IconSize         float64
	SymbolSpacing    float64
}

// Layer is a style layer as seen by a tile
type Layer struct {
	ID          string
	Type        LayerType
	Source      string
	SourceLayer string
	MinZoom     float64
	MaxZoom     float64
	Visible     bool
	Filter      FeatureFilter
	Layout      Layout
}

// NewLayer creates a visible layer covering every zoom
func NewLayer(id string, layerType LayerType, source, sourceLayer string) Layer {
	return Layer{
		ID:          id,
		Type:        layerType,
		Source:      source,
		SourceLayer: sourceLayer,
		MaxZoom:     MaxZoom + 1,
		Visible:     true,
	}
}

// VisibleAt reports whether the layer renders at zoom
func (l Layer) VisibleAt(zoom float64) bool {
	return l.Visible && zoom >= l.MinZoom && zoom < l.MaxZoom
}

// LayoutKey fingerprints what the layout pass of a layer depends on
func (l Layer) LayoutKey() uint64 {
	var sb strings.Builder
	sb.WriteString(l.Type.String())
	sb.WriteString("\x00" + l.Source)
	sb.WriteString("\x00" + l.SourceLayer)
	sb.WriteString("\x00" + strconv.FormatFloat(l.MinZoom, 'g', -1, 64))
	sb.WriteString("\x00" + strconv.FormatFloat(l.MaxZoom, 'g', -1, 64))
	if l.Filter != nil {
		sb.WriteString("\x00" + l.Filter.Key())
	}
	fmt.Fprintf(&sb, "\x00%+v", l.Layout)
	return xxh3.HashString(sb.String())
}

// layerGroup is a run of layers sharing a layout key. The first layer leads.
type layerGroup []Layer

func groupLayers(layers []Layer) []layerGroup {
	index := make(map[uint64]int)
	var groups []layerGroup
	for _, layer := range layers {
		key := layer.LayoutKey()
		if i, ok := index[key]; ok {
			groups[i] = append(groups[i], layer)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, layerGroup{layer})
	}
	return groups
}

func (g layerGroup) leader() Layer {
	return g[0]
}

func (g layerGroup) ids() []string {
	ids := make([]string, len(g))
	for i, layer := range g {
		ids[i] = layer.ID
	}
	return ids
}
