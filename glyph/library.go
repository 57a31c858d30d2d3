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
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	gerrors "github.com/tochemey/cartograph/errors"
)

// DefaultFont is the name the fallback font is registered under
const DefaultFont = "Go Regular"

// Library holds the raw TrueType data of the known fonts. The first font of
// a stack the library knows wins; unknown stacks use the fallback.
type Library struct {
	mu       sync.RWMutex
	fonts    map[string][]byte
	parsed   map[string]*opentype.Font
	fallback string
}

// NewLibrary creates a Library whose fallback font is the given TrueType data
func NewLibrary(name string, fallback []byte) *Library {
	return &Library{
		fonts:    map[string][]byte{name: fallback},
		parsed:   make(map[string]*opentype.Font),
		fallback: name,
	}
}

// DefaultLibrary creates a Library backed by the Go Regular font
func DefaultLibrary() *Library {
	return NewLibrary(DefaultFont, goregular.TTF)
}

// Register adds a font under name. Registering a name again replaces it.
func (l *Library) Register(name string, ttf []byte) {
	l.mu.Lock()
	l.fonts[name] = ttf
	delete(l.parsed, name)
	l.mu.Unlock()
}

// Lookup resolves the font used for stack
func (l *Library) Lookup(stack FontStack) (string, []byte) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, name := range stack.Fonts() {
		if data, ok := l.fonts[name]; ok {
			return name, data
		}
	}
	return l.fallback, l.fonts[l.fallback]
}

// font returns the parsed font used for stack. Parsed fonts are cached and
// safe for concurrent use.
func (l *Library) font(stack FontStack) (*opentype.Font, error) {
	name, data := l.Lookup(stack)

	l.mu.RLock()
	parsed, ok := l.parsed[name]
	l.mu.RUnlock()
	if ok {
		return parsed, nil
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font %q: %w: %w", name, gerrors.ErrDecodeFailed, err)
	}

	l.mu.Lock()
	l.parsed[name] = parsed
	l.mu.Unlock()
	return parsed, nil
}
