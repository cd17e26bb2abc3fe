/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"math"
	"reflect"
	"sort"

	"github.com/jinzhu/copier"
)

const (
	// MinSize is the smallest width/height an element may have.
	MinSize = 20
	// MinPolygonPoints and MaxPolygonPoints bound polygon vertex counts.
	MinPolygonPoints = 3
	MaxPolygonPoints = 20
)

// Collection is an ordered sequence of elements with unique ids.
type Collection []Element

// Clone returns a deep copy; slices inside elements are never shared.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, 0, len(c))
	if err := copier.CopyWithOption(&out, &c, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched types; fall back to a manual copy
		out = out[:0]
		for _, e := range c {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	cp := e
	if e.Points != nil {
		cp.Points = append([]Point(nil), e.Points...)
	}
	return cp
}

// Index returns the position of id or -1.
func (c Collection) Index(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// ByID returns the element with id.
func (c Collection) ByID(id string) (Element, bool) {
	if i := c.Index(id); i >= 0 {
		return c[i], true
	}
	return Element{}, false
}

// IDs returns element ids in collection order.
func (c Collection) IDs() []string {
	out := make([]string, len(c))
	for i, e := range c {
		out[i] = e.ID
	}
	return out
}

// Without returns a copy of c excluding the given ids.
func (c Collection) Without(ids []string) Collection {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make(Collection, 0, len(c))
	for _, e := range c {
		if _, ok := drop[e.ID]; !ok {
			out = append(out, e)
		}
	}
	return out
}

// RenderOrder returns indexes in paint order: zones first, then everything else,
// keeping collection order within each group.
func (c Collection) RenderOrder() []int {
	idx := make([]int, len(c))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		za := c[idx[a]].Kind == KindZone
		zb := c[idx[b]].Kind == KindZone
		return za && !zb
	})
	return idx
}

// Equal reports whether both collections hold identical elements in the same order.
func (c Collection) Equal(o Collection) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if !c[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Equal compares two elements field by field; nil and empty point lists are equal.
func (e Element) Equal(o Element) bool {
	if len(e.Points) == 0 && len(o.Points) == 0 {
		e.Points, o.Points = nil, nil
	}
	return reflect.DeepEqual(e, o)
}

// NormalizeDegrees wraps an angle into [0,360). Non-finite input yields 0.
func NormalizeDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// Normalize enforces the element invariants: finite geometry, minimum size,
// rotation in [0,360), a valid polygon (or a rectangle fallback) and square
// shapes with equal sides.
func (e Element) Normalize() Element {
	if !finite(e.X) {
		e.X = 0
	}
	if !finite(e.Y) {
		e.Y = 0
	}
	if !finite(e.Width) || e.Width < MinSize {
		e.Width = MinSize
	}
	if !finite(e.Height) || e.Height < MinSize {
		e.Height = MinSize
	}
	e.Rotation = NormalizeDegrees(e.Rotation)
	switch e.Shape {
	case ShapeRectangle, ShapeCircle, ShapeTriangle:
	case ShapeSquare:
		side := math.Max(e.Width, e.Height)
		e.Width, e.Height = side, side
	case ShapePolygon:
		if len(e.Points) < MinPolygonPoints {
			e.Shape = ShapeRectangle
			e.Points = nil
			break
		}
		if len(e.Points) > MaxPolygonPoints {
			e.Points = e.Points[:MaxPolygonPoints]
		}
		pts := make([]Point, len(e.Points))
		for i, p := range e.Points {
			pts[i] = Point{X: clampPercent(p.X), Y: clampPercent(p.Y)}
		}
		e.Points = pts
	default:
		e.Shape = ShapeRectangle
	}
	if e.Shape != ShapePolygon {
		e.Points = nil
	}
	return e
}

func clampPercent(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
