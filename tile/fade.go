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

// FadeState tracks a tile through the placements that fade its symbols in
// or out
type FadeState int

const (
	// Loaded is the state of a tile rendered as part of the ideal set
	Loaded FadeState = iota
	// NeedsFirstPlacement is a superseded tile waiting for a placement
	NeedsFirstPlacement
	// NeedsSecondPlacement has been placed once after being superseded
	NeedsSecondPlacement
	// CanRemove has faded out
	CanRemove
)

func (s FadeState) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case NeedsFirstPlacement:
		return "needs-first-placement"
	case NeedsSecondPlacement:
		return "needs-second-placement"
	case CanRemove:
		return "can-remove"
	default:
		return "unknown"
	}
}

type fade struct {
	state FadeState
	mode  Mode
}

func (f *fade) markRenderedIdeal() {
	f.state = Loaded
}

func (f *fade) markRenderedPreviously() {
	if f.state == Loaded {
		f.state = NeedsFirstPlacement
	}
}

func (f *fade) performedFadePlacement() {
	switch f.state {
	case NeedsFirstPlacement:
		f.state = NeedsSecondPlacement
	case NeedsSecondPlacement:
		f.state = CanRemove
	case Loaded, CanRemove:
	}
}

func (f *fade) holdForFade() bool {
	return f.mode == Continuous && (f.state == NeedsFirstPlacement || f.state == NeedsSecondPlacement)
}
