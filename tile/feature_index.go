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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/zeebo/xxh3"
)

// IndexedFeature is a feature found by a rendered-feature query
type IndexedFeature struct {
	SourceLayer string
	LayerIDs    []string
	Index       int
	Feature     *geojson.Feature
}

type indexEntry struct {
	bound   orb.Bound
	feature IndexedFeature
}

// FeatureIndex is a uniform grid over the tile extent answering which
// rendered features intersect a bound. It is built by the worker and read
// only afterwards.
type FeatureIndex struct {
	extent  float64
	cells   int
	grid    map[int][]int
	entries []indexEntry
	keys    map[uint64]int
}

// NewFeatureIndex creates an index of cells×cells cells over extent tile units
func NewFeatureIndex(extent uint32, cells int) *FeatureIndex {
	return &FeatureIndex{
		extent: float64(extent),
		cells:  max(cells, 1),
		grid:   make(map[int][]int),
		keys:   make(map[uint64]int),
	}
}

// Insert indexes a feature rendered by layerIDs. A feature inserted again by
// another layer group only gains the new layer IDs.
func (fi *FeatureIndex) Insert(sourceLayer string, layerIDs []string, index int, feature *geojson.Feature) {
	key := xxh3.HashString(fmt.Sprintf("%s\x00%d", sourceLayer, index))
	if at, ok := fi.keys[key]; ok {
		entry := &fi.entries[at]
		for _, id := range layerIDs {
			if !slices.Contains(entry.feature.LayerIDs, id) {
				entry.feature.LayerIDs = append(entry.feature.LayerIDs, id)
			}
		}
		return
	}

	bound := feature.Geometry.Bound()
	at := len(fi.entries)
	fi.entries = append(fi.entries, indexEntry{
		bound: bound,
		feature: IndexedFeature{
			SourceLayer: sourceLayer,
			LayerIDs:    slices.Clone(layerIDs),
			Index:       index,
			Feature:     feature,
		},
	})
	fi.keys[key] = at

	minX, minY, maxX, maxY := fi.span(bound)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			cell := y*fi.cells + x
			fi.grid[cell] = append(fi.grid[cell], at)
		}
	}
}

// Query returns the features whose bound intersects bound, in insertion
// order. With layerIDs only features rendered by one of them are returned.
func (fi *FeatureIndex) Query(bound orb.Bound, layerIDs ...string) []IndexedFeature {
	if fi == nil {
		return nil
	}

	seen := mapset.NewThreadUnsafeSet[int]()
	minX, minY, maxX, maxY := fi.span(bound)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			for _, at := range fi.grid[y*fi.cells+x] {
				if !seen.Contains(at) && fi.entries[at].bound.Intersects(bound) {
					seen.Add(at)
				}
			}
		}
	}

	matches := seen.ToSlice()
	slices.Sort(matches)
	features := make([]IndexedFeature, 0, len(matches))
	for _, at := range matches {
		feature := fi.entries[at].feature
		if len(layerIDs) > 0 && !slices.ContainsFunc(feature.LayerIDs, func(id string) bool {
			return slices.Contains(layerIDs, id)
		}) {
			continue
		}
		features = append(features, feature)
	}
	return features
}

// Len returns the number of indexed features
func (fi *FeatureIndex) Len() int {
	if fi == nil {
		return 0
	}
	return len(fi.entries)
}

func (fi *FeatureIndex) span(bound orb.Bound) (int, int, int, int) {
	return fi.cell(bound.Min[0]), fi.cell(bound.Min[1]), fi.cell(bound.Max[0]), fi.cell(bound.Max[1])
}

func (fi *FeatureIndex) cell(v float64) int {
	c := int(v / fi.extent * float64(fi.cells))
	return min(max(c, 0), fi.cells-1)
}
