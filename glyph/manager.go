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
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/cartograph/actor"
	"github.com/tochemey/cartograph/log"
	"github.com/tochemey/cartograph/scheduler"
)

type rangeKey struct {
	stack FontStack
	r     Range
}

type rangeState struct {
	loaded    bool
	requested bool
}

type request struct {
	deps          Dependencies
	correlationID uint64
	waiting       mapset.Set[rangeKey]
}

// Manager serves glyph requests. Ranges are loaded once per font stack on the
// background scheduler; requestors waiting on the same range share the load.
type Manager struct {
	actor *actor.Actor[manager]
}

// manager is the state owned by the Manager's actor
type manager struct {
	self       actor.ActorRef[manager]
	background scheduler.Scheduler
	loader     Loader
	shaper     *Shaper
	logger     log.Logger

	glyphs   map[FontStack]Glyphs
	ranges   map[rangeKey]*rangeState
	requests map[Requestor]*request
}

// NewManager creates a Manager whose state lives on owner. Glyph loading runs
// on background.
func NewManager(owner, background scheduler.Scheduler, opts ...Option) *Manager {
	o := &options{logger: log.DiscardLogger}
	for _, opt := range opts {
		opt.Apply(o)
	}
	if o.library == nil {
		o.library = DefaultLibrary()
	}
	if o.loader == nil {
		o.loader = NewFontLoader(o.library)
	}

	logger := o.logger.With("component", "glyph-manager")
	return &Manager{
		actor: actor.New(owner, func(self actor.ActorRef[manager]) *manager {
			return &manager{
				self:       self,
				background: background,
				loader:     o.loader,
				shaper:     NewShaper(o.library),
				logger:     logger,
				glyphs:     make(map[FontStack]Glyphs),
				ranges:     make(map[rangeKey]*rangeState),
				requests:   make(map[Requestor]*request),
			}
		}, actor.WithName("glyph-manager"), actor.WithLogger(logger)),
	}
}

// GetGlyphs asks for deps on behalf of requestor. The requestor is answered
// once every range is loaded. A newer request from the same requestor
// replaces the older one.
func (m *Manager) GetGlyphs(requestor Requestor, deps Dependencies, correlationID uint64) {
	m.actor.Self().Invoke(func(x *manager) {
		x.getGlyphs(requestor, deps, correlationID)
	})
}

// RemoveRequestor drops any request pending for requestor
func (m *Manager) RemoveRequestor(requestor Requestor) {
	m.actor.Self().Invoke(func(x *manager) {
		delete(x.requests, requestor)
	})
}

// Close stops the manager. Pending requests are never answered.
func (m *Manager) Close() {
	m.actor.Close()
}

func (x *manager) getGlyphs(requestor Requestor, deps Dependencies, correlationID uint64) {
	req := &request{
		deps:          deps,
		correlationID: correlationID,
		waiting:       mapset.NewThreadUnsafeSet[rangeKey](),
	}

	for stack, ranges := range deps.Ranges() {
		ranges.Each(func(r Range) bool {
			key := rangeKey{stack: stack, r: r}
			state, ok := x.ranges[key]
			if !ok {
				state = &rangeState{}
				x.ranges[key] = state
			}
			if state.loaded {
				return false
			}
			req.waiting.Add(key)
			if !state.requested {
				state.requested = true
				x.load(key)
			}
			return false
		})
	}

	if req.waiting.Cardinality() == 0 {
		delete(x.requests, requestor)
		x.notify(requestor, req)
		return
	}
	x.requests[requestor] = req
}

func (x *manager) load(key rangeKey) {
	loader := x.loader
	self := x.self
	x.logger.Debugf("loading glyph range %d-%d for %q", key.r.First, key.r.Last, key.stack)
	x.background.Schedule(func() {
		glyphs, err := loader.Load(key.stack, key.r)
		self.Invoke(func(x *manager) {
			x.onRangeLoaded(key, glyphs, err)
		})
	})
}

func (x *manager) onRangeLoaded(key rangeKey, glyphs Glyphs, err error) {
	state := x.ranges[key]
	state.requested = false

	if err != nil {
		err = fmt.Errorf("glyph range %d-%d for %q: %w", key.r.First, key.r.Last, key.stack, err)
		x.logger.Warn(err)
		for requestor, req := range x.requests {
			if req.waiting.Contains(key) {
				delete(x.requests, requestor)
				requestor.OnGlyphsError(err, req.correlationID)
			}
		}
		return
	}

	state.loaded = true
	stored, ok := x.glyphs[key.stack]
	if !ok {
		stored = make(Glyphs)
		x.glyphs[key.stack] = stored
	}
	for r, g := range glyphs {
		stored[r] = g
	}

	for requestor, req := range x.requests {
		req.waiting.Remove(key)
		if req.waiting.Cardinality() == 0 {
			delete(x.requests, requestor)
			x.notify(requestor, req)
		}
	}
}

func (x *manager) notify(requestor Requestor, req *request) {
	glyphs := make(GlyphMap, len(req.deps.Glyphs))
	for stack, runes := range req.deps.Glyphs {
		stored := x.glyphs[stack]
		reply := make(Glyphs, runes.Cardinality())
		runes.Each(func(r rune) bool {
			reply[r] = stored[r]
			return false
		})
		glyphs[stack] = reply
	}

	shapes := make(ShapeResults, len(req.deps.Shaping))
	for stack, texts := range req.deps.Shaping {
		shaped := make(map[string]ShapedText, texts.Cardinality())
		texts.Each(func(text string) bool {
			result, err := x.shaper.Shape(stack, text)
			if err != nil {
				x.logger.Warnf("shaping %q with %q failed: %v", text, stack, err)
				return false
			}
			shaped[text] = result
			return false
		})
		shapes[stack] = shaped
	}

	requestor.OnGlyphsAvailable(glyphs, shapes, req.correlationID)
}
