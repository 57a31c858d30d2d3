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

// Package reentrant provides a mutex that the owning goroutine may lock again.
package reentrant

import (
	"sync"

	"github.com/tochemey/cartograph/internal/goid"
)

// Mutex is a re-entrant mutual exclusion lock.
// The zero value is an unlocked mutex. Each Lock must be paired with an Unlock
// from the same goroutine.
type Mutex struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner uint64
	depth int
}

// Lock acquires the mutex, or increments the hold count when the calling
// goroutine already owns it.
func (m *Mutex) Lock() {
	m.LockAs(goid.Current())
}

// LockAs is Lock for a caller that already knows its goroutine id.
// Reading the id parses the goroutine stack header, so hot paths read it
// once and pass it to both LockAs and UnlockAs.
func (m *Mutex) LockAs(id uint64) {
	m.mu.Lock()
	if m.cond == nil {
		m.cond = sync.NewCond(&m.mu)
	}
	for m.depth > 0 && m.owner != id {
		m.cond.Wait()
	}
	m.owner = id
	m.depth++
	m.mu.Unlock()
}

// Unlock releases one hold. It panics when the caller is not the owner.
func (m *Mutex) Unlock() {
	m.UnlockAs(goid.Current())
}

// UnlockAs is Unlock for a caller that already knows its goroutine id.
func (m *Mutex) UnlockAs(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.depth == 0 || m.owner != id {
		panic("reentrant: unlock of mutex not held by caller")
	}
	m.depth--
	if m.depth == 0 {
		m.owner = 0
		m.cond.Signal()
	}
}

// HeldByCaller reports whether the calling goroutine holds the mutex.
func (m *Mutex) HeldByCaller() bool {
	id := goid.Current()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depth > 0 && m.owner == id
}
