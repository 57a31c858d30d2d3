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
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayer(t *testing.T) {
	t.Run("With zoom ranges", func(t *testing.T) {
		layer := NewLayer("water", FillLayer, streets, "water")
		assert.True(t, layer.VisibleAt(0))
		assert.True(t, layer.VisibleAt(MaxZoom))

		layer.MinZoom, layer.MaxZoom = 4, 10
		assert.False(t, layer.VisibleAt(3))
		assert.True(t, layer.VisibleAt(4))
		assert.False(t, layer.VisibleAt(10))

		layer.Visible = false
		assert.False(t, layer.VisibleAt(5))
	})
	t.Run("With property filters", func(t *testing.T) {
		feature := geojson.NewFeature(orb.Point{1, 1})
		feature.Properties["class"] = "primary"
		feature.Properties["lanes"] = 2

		assert.True(t, PropertyFilter{"class": "primary"}.Match(0, feature))
		assert.True(t, PropertyFilter{"lanes": "2"}.Match(0, feature))
		assert.False(t, PropertyFilter{"class": "path"}.Match(0, feature))
		assert.False(t, PropertyFilter{"bridge": true}.Match(0, feature))
		assert.Equal(t, PropertyFilter{"b": 2, "a": 1}.Key(), PropertyFilter{"a": 1, "b": 2}.Key())
	})
	t.Run("With layers grouped by layout", func(t *testing.T) {
		fill := NewLayer("fill", FillLayer, streets, "water")
		outline := NewLayer("outline", LineLayer, streets, "water")
		casing := NewLayer("casing", LineLayer, streets, "water")
		filtered := NewLayer("filtered", LineLayer, streets, "water")
		filtered.Filter = PropertyFilter{"class": "sea"}

		groups := groupLayers([]Layer{fill, outline, filtered, casing})
		require.Len(t, groups, 3)
		assert.Equal(t, []string{"fill"}, groups[0].ids())
		assert.Equal(t, []string{"outline", "casing"}, groups[1].ids())
		assert.Equal(t, "outline", groups[1].leader().ID)
		assert.Equal(t, []string{"filtered"}, groups[2].ids())
	})
	t.Run("With layout keys", func(t *testing.T) {
		a := NewLayer("a", SymbolLayer, streets, "pois")
		b := NewLayer("b", SymbolLayer, streets, "pois")
		assert.Equal(t, a.LayoutKey(), b.LayoutKey())

		b.Layout.TextField = "{name}"
		assert.NotEqual(t, a.LayoutKey(), b.LayoutKey())
	})
}
