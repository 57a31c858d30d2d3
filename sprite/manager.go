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

package sprite

import (
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/cartograph/log"
)

type request struct {
	deps          mapset.Set[string]
	correlationID uint64
	missing       int
}

// Manager holds the images of a style. Requests made before the sprite sheet
// is loaded are queued until SetLoaded(true). Manager is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	images   ImageMap
	loaded   bool
	observer Observer
	logger   log.Logger

	queued  map[Requestor]*request
	missing map[Requestor]*request
}

// NewManager creates an empty Manager. observer may be nil.
func NewManager(observer Observer, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Manager{
		images:   make(ImageMap),
		observer: observer,
		logger:   logger.With("component", "image-manager"),
		queued:   make(map[Requestor]*request),
		missing:  make(map[Requestor]*request),
	}
}

// AddImage stores img. It returns false when an image with the same ID exists.
func (m *Manager) AddImage(img *Image) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.images[img.ID]; ok {
		m.logger.Warnf("image %q already exists", img.ID)
		return false
	}
	m.images[img.ID] = img
	return true
}

// UpdateImage replaces an image and bumps its version. Unknown images are added.
func (m *Manager) UpdateImage(img *Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.images[img.ID]; ok {
		img.Version = existing.Version + 1
	}
	m.images[img.ID] = img
}

// RemoveImage deletes an image
func (m *Manager) RemoveImage(id string) {
	m.mu.Lock()
	delete(m.images, id)
	m.mu.Unlock()
}

// Image returns an image by ID
func (m *Manager) Image(id string) (*Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[id]
	return img, ok
}

// AvailableImages returns the sorted IDs of the stored images
func (m *Manager) AvailableImages() []string {
	m.mu.Lock()
	ids := make([]string, 0, len(m.images))
	for id := range m.images {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	slices.Sort(ids)
	return ids
}

// IsLoaded reports whether the sprite sheet has been loaded
func (m *Manager) IsLoaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// SetLoaded marks the sprite sheet as loaded, answering queued requests
func (m *Manager) SetLoaded(loaded bool) {
	m.mu.Lock()
	if m.loaded == loaded {
		m.mu.Unlock()
		return
	}
	m.loaded = loaded
	if !loaded {
		m.mu.Unlock()
		return
	}
	queued := m.queued
	m.queued = make(map[Requestor]*request)
	m.mu.Unlock()

	for requestor, req := range queued {
		m.resolve(requestor, req)
	}
}

// GetImages asks for deps on behalf of requestor. Images the manager does not
// hold are reported to the observer first; the requestor is answered with the
// images present once the observer is done.
func (m *Manager) GetImages(requestor Requestor, deps mapset.Set[string], correlationID uint64) {
	req := &request{deps: deps.Clone(), correlationID: correlationID}

	m.mu.Lock()
	if !m.loaded {
		m.queued[requestor] = req
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.resolve(requestor, req)
}

// RemoveRequestor drops every request of requestor
func (m *Manager) RemoveRequestor(requestor Requestor) {
	m.mu.Lock()
	delete(m.queued, requestor)
	delete(m.missing, requestor)
	m.mu.Unlock()
}

func (m *Manager) resolve(requestor Requestor, req *request) {
	m.mu.Lock()
	var missing []string
	req.deps.Each(func(id string) bool {
		if _, ok := m.images[id]; !ok {
			missing = append(missing, id)
		}
		return false
	})
	if len(missing) == 0 || m.observer == nil {
		m.mu.Unlock()
		m.notify(requestor, req)
		return
	}
	req.missing = len(missing)
	m.missing[requestor] = req
	m.mu.Unlock()

	slices.Sort(missing)
	for _, id := range missing {
		m.logger.Debugf("image %q is missing", id)
		var once sync.Once
		m.observer.OnImageMissing(id, func() {
			once.Do(func() { m.missingDone(requestor, req) })
		})
	}
}

func (m *Manager) missingDone(requestor Requestor, req *request) {
	m.mu.Lock()
	if current, ok := m.missing[requestor]; !ok || current != req {
		m.mu.Unlock()
		return
	}
	req.missing--
	if req.missing > 0 {
		m.mu.Unlock()
		return
	}
	delete(m.missing, requestor)
	m.mu.Unlock()
	m.notify(requestor, req)
}

func (m *Manager) notify(requestor Requestor, req *request) {
	m.mu.Lock()
	images := make(ImageMap, req.deps.Cardinality())
	req.deps.Each(func(id string) bool {
		if img, ok := m.images[id]; ok {
			images[id] = img
		}
		return false
	})
	m.mu.Unlock()
	requestor.OnImagesAvailable(images, req.correlationID)
}
