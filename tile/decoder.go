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
	"bytes"
	"fmt"

	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"

	gerrors "github.com/tochemey/cartograph/errors"
)

// Decoder turns the raw bytes of a tile into source layers whose geometry is
// in tile coordinates (0..extent). Decoders are called from background
// goroutines and must not keep references to data.
type Decoder interface {
	Decode(data []byte, id ID) (mvt.Layers, error)
}

var gzipMagic = []byte{0x1f, 0x8b}

// MVTDecoder decodes Mapbox Vector Tiles, gzipped or not
type MVTDecoder struct{}

var _ Decoder = MVTDecoder{}

// Decode implements Decoder
func (MVTDecoder) Decode(data []byte, _ ID) (mvt.Layers, error) {
	var (
		layers mvt.Layers
		err    error
	)
	if bytes.HasPrefix(data, gzipMagic) {
		layers, err = mvt.UnmarshalGzipped(data)
	} else {
		layers, err = mvt.Unmarshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("vector tile: %w: %w", gerrors.ErrDecodeFailed, err)
	}
	return layers, nil
}

// GeoJSONDecoder decodes a GeoJSON feature collection in WGS84 into a single
// source layer, projected onto the tile.
type GeoJSONDecoder struct {
	// LayerName names the produced source layer. Defaults to "geojson".
	LayerName string
}

var _ Decoder = GeoJSONDecoder{}

// Decode implements Decoder
func (d GeoJSONDecoder) Decode(data []byte, id ID) (mvt.Layers, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("geojson: %w: %w", gerrors.ErrDecodeFailed, err)
	}

	name := d.LayerName
	if name == "" {
		name = "geojson"
	}
	layers := mvt.NewLayers(map[string]*geojson.FeatureCollection{name: fc})
	layers.ProjectToTile(id.Canonical)
	return layers, nil
}
