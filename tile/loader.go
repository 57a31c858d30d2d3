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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"

	gerrors "github.com/tochemey/cartograph/errors"
	"github.com/tochemey/cartograph/log"
	"github.com/tochemey/cartograph/scheduler"
)

// FileSource fetches the raw bytes of a tile. It returns an error wrapping
// errors.ErrNotFound for tiles the source has no data for.
type FileSource interface {
	Fetch(ctx context.Context, id ID) ([]byte, error)
}

// Loader fetches tile data from a FileSource and feeds it to tiles,
// retrying failed fetches with exponential backoff.
type Loader struct {
	source       FileSource
	background   scheduler.Scheduler
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
	logger       log.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithRetries sets the fetch retry policy. A fetch is tried at most
// maxRetries+1 times.
func WithRetries(maxRetries int, initialDelay, maxDelay time.Duration) LoaderOption {
	return func(l *Loader) {
		l.maxRetries = maxRetries
		l.initialDelay = initialDelay
		l.maxDelay = maxDelay
	}
}

// WithLoaderLogger sets the logger of a Loader
func WithLoaderLogger(logger log.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader fetching on background
func NewLoader(source FileSource, background scheduler.Scheduler, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:       source,
		background:   background,
		maxRetries:   3,
		initialDelay: 100 * time.Millisecond,
		maxDelay:     2 * time.Second,
		logger:       log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches t's data and hands it to t. Tiles the source has no data for
// get empty data; other failures become the tile's error.
func (l *Loader) Load(ctx context.Context, t Tile) error {
	data, err := l.fetch(ctx, t.ID())
	switch {
	case err == nil:
		t.SetData(data)
		return nil
	case errors.Is(err, gerrors.ErrNotFound):
		l.logger.Debugf("tile %s not found", t.ID())
		t.SetData(nil)
		return nil
	default:
		t.SetError(err)
		return err
	}
}

// LoadAsync runs Load on the background scheduler
func (l *Loader) LoadAsync(ctx context.Context, t Tile) {
	l.background.Schedule(func() {
		_ = l.Load(ctx, t)
	})
}

func (l *Loader) fetch(ctx context.Context, id ID) ([]byte, error) {
	var (
		data     []byte
		notFound error
	)
	// the retrier counts tries, the first one included
	retrier := retry.NewRetrier(l.maxRetries+1, l.initialDelay, l.maxDelay)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		fetched, err := l.source.Fetch(ctx, id)
		if err != nil {
			if errors.Is(err, gerrors.ErrNotFound) {
				notFound = err
				return nil
			}
			l.logger.Debugf("fetching tile %s failed: %v", id, err)
			return err
		}
		data = fetched
		return nil
	})
	if notFound != nil {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching tile %s: %w", id, err)
	}
	return data, nil
}
