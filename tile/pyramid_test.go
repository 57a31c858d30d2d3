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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTile is a Tile whose readiness the test sets directly
type fakeTile struct {
	id         ID
	renderable bool
	buckets    map[string]Bucket
	fade       fade
	canceled   bool
	closed     bool
}

var _ Tile = (*fakeTile)(nil)

func newFakeTile(id ID) *fakeTile {
	return &fakeTile{id: id, buckets: make(map[string]Bucket), fade: fade{mode: Continuous}}
}

func (f *fakeTile) ID() ID             { return f.id }
func (f *fakeTile) SetData([]byte)     { f.renderable = true }
func (f *fakeTile) SetError(error)     {}
func (f *fakeTile) IsRenderable() bool { return f.renderable }
func (f *fakeTile) IsLoaded() bool     { return f.renderable }
func (f *fakeTile) IsComplete() bool   { return f.renderable }
func (f *fakeTile) Cancel()            { f.canceled = true }
func (f *fakeTile) Close()             { f.closed = true }

func (f *fakeTile) Bucket(layerID string) (Bucket, bool) {
	b, ok := f.buckets[layerID]
	return b, ok
}

func (f *fakeTile) FadeState() FadeState    { return f.fade.state }
func (f *fakeTile) MarkRenderedIdeal()      { f.fade.markRenderedIdeal() }
func (f *fakeTile) MarkRenderedPreviously() { f.fade.markRenderedPreviously() }
func (f *fakeTile) PerformedFadePlacement() { f.fade.performedFadePlacement() }
func (f *fakeTile) HoldForFade() bool       { return f.fade.holdForFade() }

// fakeFactory creates fake tiles and remembers them
type fakeFactory struct {
	tiles map[ID]*fakeTile
	fail  map[ID]error
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{tiles: make(map[ID]*fakeTile), fail: make(map[ID]error)}
}

func (f *fakeFactory) create(id ID) (Tile, error) {
	if err, ok := f.fail[id]; ok {
		return nil, err
	}
	t := newFakeTile(id)
	f.tiles[id] = t
	return t, nil
}

func renderIDs(tiles []*RenderTile) []ID {
	ids := make([]ID, len(tiles))
	for i, rt := range tiles {
		ids[i] = rt.ID
	}
	return ids
}

func TestPyramid(t *testing.T) {
	t.Run("With ideal tiles loading", func(t *testing.T) {
		factory := newFakeFactory()
		pyramid := NewPyramid(factory.create, nil)
		ideal := MustID(1, 0, 0)

		render, err := pyramid.Update([]ID{ideal})
		require.NoError(t, err)
		assert.Empty(t, render)
		assert.Equal(t, 1, pyramid.Len())

		factory.tiles[ideal].SetData(nil)
		render, err = pyramid.Update([]ID{ideal})
		require.NoError(t, err)
		require.Len(t, render, 1)
		assert.True(t, render[0].Ideal)
		assert.Equal(t, Loaded, factory.tiles[ideal].FadeState())
		assert.Equal(t, render, pyramid.RenderTiles())
	})
	t.Run("With a parent standing in", func(t *testing.T) {
		factory := newFakeFactory()
		pyramid := NewPyramid(factory.create, nil)
		parent := MustID(1, 0, 0)
		_, _ = pyramid.Update([]ID{parent})
		factory.tiles[parent].SetData(nil)

		children := parent.Children(14)
		render, err := pyramid.Update(children)
		require.NoError(t, err)
		require.Len(t, render, 1)
		assert.Equal(t, parent, render[0].ID)
		assert.False(t, render[0].Ideal)
		assert.Equal(t, NeedsFirstPlacement, factory.tiles[parent].FadeState())
		assert.Equal(t, 5, pyramid.Len())

		for _, child := range children {
			factory.tiles[child].SetData(nil)
		}
		render, err = pyramid.Update(children)
		require.NoError(t, err)
		assert.Len(t, render, 5)

		factory.tiles[parent].PerformedFadePlacement()
		factory.tiles[parent].PerformedFadePlacement()
		render, err = pyramid.Update(children)
		require.NoError(t, err)
		assert.ElementsMatch(t, children, renderIDs(render))
		assert.True(t, factory.tiles[parent].closed)
		assert.True(t, factory.tiles[parent].canceled)
		_, held := pyramid.Tile(parent)
		assert.False(t, held)
	})
	t.Run("With children standing in", func(t *testing.T) {
		factory := newFakeFactory()
		pyramid := NewPyramid(factory.create, nil)
		parent := MustID(1, 0, 0)
		children := parent.Children(14)
		_, _ = pyramid.Update(children)
		factory.tiles[children[0]].SetData(nil)
		factory.tiles[children[2]].SetData(nil)

		render, err := pyramid.Update([]ID{parent})
		require.NoError(t, err)
		ids := renderIDs(render)
		assert.ElementsMatch(t, []ID{children[0], children[2]}, ids)
		for _, rt := range render {
			assert.False(t, rt.Ideal)
		}
		assert.True(t, factory.tiles[children[1]].closed)
	})
	t.Run("With tiles removed at once in static mode", func(t *testing.T) {
		factory := newFakeFactory()
		pyramid := NewPyramid(factory.create, nil)
		first := MustID(2, 0, 0)
		_, _ = pyramid.Update([]ID{first})
		factory.tiles[first].SetData(nil)
		factory.tiles[first].fade.mode = Static
		_, _ = pyramid.Update([]ID{first})

		render, err := pyramid.Update([]ID{MustID(2, 3, 3)})
		require.NoError(t, err)
		assert.Empty(t, render)
		assert.True(t, factory.tiles[first].closed)
	})
	t.Run("With factory failures", func(t *testing.T) {
		factory := newFakeFactory()
		boom := errors.New("boom")
		broken := MustID(3, 1, 1)
		factory.fail[broken] = boom
		pyramid := NewPyramid(factory.create, nil)

		_, err := pyramid.Update([]ID{MustID(3, 0, 0), broken})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, pyramid.Len())
	})
	t.Run("With close", func(t *testing.T) {
		factory := newFakeFactory()
		pyramid := NewPyramid(factory.create, nil)
		id := MustID(0, 0, 0)
		_, _ = pyramid.Update([]ID{id})
		pyramid.Close()
		assert.Zero(t, pyramid.Len())
		assert.Empty(t, pyramid.RenderTiles())
		assert.True(t, factory.tiles[id].closed)
	})
}
