/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package bulk implements alignment, distribution and same-size operations over
// a set of element boxes. All functions are pure: they return new boxes and
// leave their input untouched.
package bulk

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"venueplan/internal/domain"
)

// ErrTooFewElements is wrapped by ValidationError when an operation needs more
// elements than were given.
var ErrTooFewElements = errors.New("too few elements")

// ValidationError reports a rejected bulk operation.
type ValidationError struct {
	Op   string
	Need int
	Got  int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s needs at least %d elements, got %d", e.Op, e.Need, e.Got)
}

func (e *ValidationError) Unwrap() error { return ErrTooFewElements }

// Box is the geometry a bulk operation works on.
type Box struct {
	ID         string
	X, Y, W, H float64
}

// BoxOf extracts the box of an element.
func BoxOf(e domain.Element) Box {
	return Box{ID: e.ID, X: e.X, Y: e.Y, W: e.Width, H: e.Height}
}

// Alignment selects the edge or center to align on.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
	AlignCenter Alignment = "center"
	AlignTop    Alignment = "top"
	AlignBottom Alignment = "bottom"
	AlignMiddle Alignment = "middle"
)

// Axis selects the distribution direction.
type Axis string

const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

// Size is an explicit target for MatchSize.
type Size struct{ W, H float64 }

func need(op string, n int, boxes []Box) error {
	if len(boxes) < n {
		return &ValidationError{Op: op, Need: n, Got: len(boxes)}
	}
	return nil
}

// Align moves every box so the chosen edge or center matches the extreme (or
// the mean of centers) of the set. The other axis is unchanged.
func Align(boxes []Box, a Alignment) ([]Box, error) {
	if err := need("align", 2, boxes); err != nil {
		return nil, err
	}
	out := append([]Box(nil), boxes...)
	switch a {
	case AlignLeft:
		m := math.Inf(1)
		for _, b := range out {
			m = math.Min(m, b.X)
		}
		for i := range out {
			out[i].X = m
		}
	case AlignRight:
		m := math.Inf(-1)
		for _, b := range out {
			m = math.Max(m, b.X+b.W)
		}
		for i := range out {
			out[i].X = m - out[i].W
		}
	case AlignCenter:
		var sum float64
		for _, b := range out {
			sum += b.X + b.W/2
		}
		c := sum / float64(len(out))
		for i := range out {
			out[i].X = c - out[i].W/2
		}
	case AlignTop:
		m := math.Inf(1)
		for _, b := range out {
			m = math.Min(m, b.Y)
		}
		for i := range out {
			out[i].Y = m
		}
	case AlignBottom:
		m := math.Inf(-1)
		for _, b := range out {
			m = math.Max(m, b.Y+b.H)
		}
		for i := range out {
			out[i].Y = m - out[i].H
		}
	case AlignMiddle:
		var sum float64
		for _, b := range out {
			sum += b.Y + b.H/2
		}
		c := sum / float64(len(out))
		for i := range out {
			out[i].Y = c - out[i].H/2
		}
	default:
		return nil, fmt.Errorf("unknown alignment %q", a)
	}
	return out, nil
}

// Distribute sorts boxes by position along axis, keeps the first and last in
// place and spaces all centers evenly between theirs. The result keeps the
// input order.
func Distribute(boxes []Box, axis Axis) ([]Box, error) {
	if err := need("distribute", 3, boxes); err != nil {
		return nil, err
	}
	if axis != Horizontal && axis != Vertical {
		return nil, fmt.Errorf("unknown axis %q", axis)
	}
	out := append([]Box(nil), boxes...)
	center := func(b Box) float64 {
		if axis == Horizontal {
			return b.X + b.W/2
		}
		return b.Y + b.H/2
	}
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := out[order[a]].Y, out[order[b]].Y
		if axis == Horizontal {
			pa, pb = out[order[a]].X, out[order[b]].X
		}
		return pa < pb
	})
	first, last := center(out[order[0]]), center(out[order[len(order)-1]])
	step := (last - first) / float64(len(order)-1)
	for k := 1; k < len(order)-1; k++ {
		i := order[k]
		c := first + step*float64(k)
		if axis == Horizontal {
			out[i].X = c - out[i].W/2
		} else {
			out[i].Y = c - out[i].H/2
		}
	}
	return out, nil
}

// MatchSize gives every box the first box's size, or target when non-nil.
// Positions are unchanged.
func MatchSize(boxes []Box, target *Size) ([]Box, error) {
	if err := need("match size", 2, boxes); err != nil {
		return nil, err
	}
	w, h := boxes[0].W, boxes[0].H
	if target != nil {
		w, h = target.W, target.H
	}
	if !(w > 0 && h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return nil, fmt.Errorf("invalid target size %vx%v", w, h)
	}
	w, h = math.Max(w, domain.MinSize), math.Max(h, domain.MinSize)
	out := append([]Box(nil), boxes...)
	for i := range out {
		out[i].W, out[i].H = w, h
	}
	return out, nil
}

// Apply writes box geometry back into the matching elements of c in place and
// returns the ids that changed.
func Apply(c domain.Collection, boxes []Box) []string {
	var changed []string
	for _, b := range boxes {
		i := c.Index(b.ID)
		if i < 0 {
			continue
		}
		e := &c[i]
		if e.X == b.X && e.Y == b.Y && e.Width == b.W && e.Height == b.H {
			continue
		}
		e.X, e.Y, e.Width, e.Height = b.X, b.Y, b.W, b.H
		*e = e.Normalize()
		changed = append(changed, b.ID)
	}
	return changed
}
