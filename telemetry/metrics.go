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

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	tasksCounterName        = "cartograph_scheduler_tasks_count"
	panicsCounterName       = "cartograph_scheduler_panics_count"
	parseDurationName       = "cartograph_tile_parse_duration"
	layoutsCounterName      = "cartograph_tile_layouts_count"
	staleRepliesCounterName = "cartograph_tile_stale_replies_count"
	parseErrorsCounterName  = "cartograph_tile_parse_errors_count"
)

// Metrics is the set of instruments recorded by the pipeline.
// A nil *Metrics records nothing.
type Metrics struct {
	tasks         metric.Int64Counter
	panics        metric.Int64Counter
	parseDuration metric.Float64Histogram
	layouts       metric.Int64Counter
	staleReplies  metric.Int64Counter
	parseErrors   metric.Int64Counter
}

// NewMetrics creates the pipeline instruments on the given meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	metrics := new(Metrics)
	var err error

	if metrics.tasks, err = meter.Int64Counter(
		tasksCounterName,
		metric.WithDescription("The total number of tasks executed by a scheduler"),
	); err != nil {
		return nil, fmt.Errorf("failed to create tasks count instrument, %v", err)
	}

	if metrics.panics, err = meter.Int64Counter(
		panicsCounterName,
		metric.WithDescription("The total number of tasks that panicked"),
	); err != nil {
		return nil, fmt.Errorf("failed to create panics count instrument, %v", err)
	}

	if metrics.parseDuration, err = meter.Float64Histogram(
		parseDurationName,
		metric.WithDescription("The time spent parsing a tile in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("failed to create parse duration instrument, %v", err)
	}

	if metrics.layouts, err = meter.Int64Counter(
		layoutsCounterName,
		metric.WithDescription("The total number of layout results emitted by tile workers"),
	); err != nil {
		return nil, fmt.Errorf("failed to create layouts count instrument, %v", err)
	}

	if metrics.staleReplies, err = meter.Int64Counter(
		staleRepliesCounterName,
		metric.WithDescription("The total number of dependency replies dropped as stale"),
	); err != nil {
		return nil, fmt.Errorf("failed to create stale replies count instrument, %v", err)
	}

	if metrics.parseErrors, err = meter.Int64Counter(
		parseErrorsCounterName,
		metric.WithDescription("The total number of failed parse cycles"),
	); err != nil {
		return nil, fmt.Errorf("failed to create parse errors count instrument, %v", err)
	}

	return metrics, nil
}

// TaskExecuted records one task run by the named scheduler
func (m *Metrics) TaskExecuted(ctx context.Context, scheduler string) {
	if m == nil {
		return
	}
	m.tasks.Add(ctx, 1, metric.WithAttributes(attribute.String("scheduler", scheduler)))
}

// TaskPanicked records one panicking task of the named scheduler
func (m *Metrics) TaskPanicked(ctx context.Context, scheduler string) {
	if m == nil {
		return
	}
	m.panics.Add(ctx, 1, metric.WithAttributes(attribute.String("scheduler", scheduler)))
}

// ParseDuration records the duration of one parse cycle
func (m *Metrics) ParseDuration(ctx context.Context, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.parseDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond))
}

// LayoutEmitted records one layout result
func (m *Metrics) LayoutEmitted(ctx context.Context) {
	if m == nil {
		return
	}
	m.layouts.Add(ctx, 1)
}

// StaleReply records one dropped dependency reply
func (m *Metrics) StaleReply(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.staleReplies.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// ParseFailed records one failed parse cycle
func (m *Metrics) ParseFailed(ctx context.Context) {
	if m == nil {
		return
	}
	m.parseErrors.Add(ctx, 1)
}
