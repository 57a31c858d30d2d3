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
	"go.uber.org/multierr"
)

// RenderTile binds a tile to one frame. It is created by the Pyramid for
// every tile drawn in the frame.
type RenderTile struct {
	ID   ID
	Tile Tile
	// Ideal is false for tiles standing in for an ideal tile still loading,
	// and for tiles held while fading out
	Ideal bool
}

// Bucket returns the bucket layerID renders from
func (r *RenderTile) Bucket(layerID string) (Bucket, bool) {
	return r.Tile.Bucket(layerID)
}

// Upload uploads the buckets of layerIDs that are not uploaded yet
func (r *RenderTile) Upload(u Uploader, layerIDs ...string) error {
	var err error
	seen := make(map[Bucket]struct{}, len(layerIDs))
	for _, id := range layerIDs {
		b, ok := r.Tile.Bucket(id)
		if !ok {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		err = multierr.Append(err, b.Upload(u))
	}
	return err
}
