/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package vector

// Element outlines, hit testing and zone containment. Every element is a box
// (x, y, w, h) rotated around its center; shapes live in the box's local frame
// where (0,0) is the unrotated top-left corner.

import (
	"math"

	"venueplan/internal/domain"
)

// circleSegments is the polygon approximation used for circle outlines.
const circleSegments = 48

// ElementRect returns the unrotated box of e.
func ElementRect(e domain.Element) Rect { return Rect{X: e.X, Y: e.Y, W: e.Width, H: e.Height} }

// ElementTransform maps the element's local frame into canvas coordinates.
func ElementTransform(e domain.Element) Affine2D {
	cx, cy := e.Center()
	return Translate(cx, cy).Mul(Rotate(Deg2Rad(e.Rotation))).Mul(Translate(-e.Width/2, -e.Height/2))
}

// ToLocal maps a canvas point into the element's unrotated local frame.
func ToLocal(e domain.Element, p Pt) Pt {
	inv, ok := ElementTransform(e).Invert()
	if !ok {
		return Pt{p.X - e.X, p.Y - e.Y}
	}
	return inv.Apply(p)
}

// LocalOutline returns the element outline in its local frame.
func LocalOutline(e domain.Element) []Pt {
	w, h := e.Width, e.Height
	switch e.Shape {
	case domain.ShapeCircle:
		out := make([]Pt, circleSegments)
		for i := range out {
			a := 2 * math.Pi * float64(i) / circleSegments
			out[i] = Pt{w/2 + w/2*math.Cos(a), h/2 + h/2*math.Sin(a)}
		}
		return out
	case domain.ShapeTriangle:
		return []Pt{{w / 2, 0}, {w, h}, {0, h}}
	case domain.ShapePolygon:
		if len(e.Points) >= domain.MinPolygonPoints {
			out := make([]Pt, len(e.Points))
			for i, p := range e.Points {
				out[i] = Pt{p.X / 100 * w, p.Y / 100 * h}
			}
			return out
		}
	}
	return []Pt{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

// Outline returns the element outline in canvas coordinates.
func Outline(e domain.Element) []Pt {
	m := ElementTransform(e)
	pts := LocalOutline(e)
	for i := range pts {
		pts[i] = m.Apply(pts[i])
	}
	return pts
}

// BoundingBox returns the axis-aligned bounds of the rotated element box.
func BoundingBox(e domain.Element) Rect {
	m := ElementTransform(e)
	corners := []Pt{{0, 0}, {e.Width, 0}, {e.Width, e.Height}, {0, e.Height}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := m.Apply(c)
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Bounds returns the union of all element bounding boxes.
func Bounds(elems []domain.Element) Rect {
	var r Rect
	for _, e := range elems {
		r = r.Union(BoundingBox(e))
	}
	return r
}

// HitTest reports whether the canvas point p lies on the element's shape.
func HitTest(e domain.Element, p Pt) bool {
	if !Finite(p.X, p.Y) {
		return false
	}
	q := ToLocal(e, p)
	w, h := e.Width, e.Height
	switch e.Shape {
	case domain.ShapeCircle:
		if w <= 0 || h <= 0 {
			return false
		}
		dx := (q.X - w/2) / (w / 2)
		dy := (q.Y - h/2) / (h / 2)
		return dx*dx+dy*dy <= 1
	case domain.ShapeTriangle, domain.ShapePolygon:
		return pointInPolygon(q, LocalOutline(e))
	}
	return Rect{W: w, H: h}.Contains(q)
}

// pointInPolygon uses the even-odd rule and treats points on an edge as inside.
func pointInPolygon(p Pt, poly []Pt) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if onSegment(p, a, b) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(p, a, b Pt) bool {
	const eps = 1e-9
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if math.Abs(cross) > eps {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-eps && p.X <= math.Max(a.X, b.X)+eps &&
		p.Y >= math.Min(a.Y, b.Y)-eps && p.Y <= math.Max(a.Y, b.Y)+eps
}

// ZoneContains reports whether e's center lies within zone's box, taking the
// zone's rotation into account. Only zoneable kinds can be contained and zones
// never contain zones.
func ZoneContains(zone, e domain.Element) bool {
	if zone.Kind != domain.KindZone || !e.Kind.Zoneable() {
		return false
	}
	cx, cy := e.Center()
	if !Finite(cx, cy) {
		return false
	}
	q := ToLocal(zone, Pt{cx, cy})
	return Rect{W: zone.Width, H: zone.Height}.Contains(q)
}

// ContainingZone returns the id of the first zone in collection order that
// contains e, or "" when none does.
func ContainingZone(elems []domain.Element, e domain.Element) string {
	if !e.Kind.Zoneable() {
		return ""
	}
	for _, z := range elems {
		if z.ID != e.ID && ZoneContains(z, e) {
			return z.ID
		}
	}
	return ""
}

// AttachZones recomputes ZoneID in place for the elements with the given ids
// (all zoneable elements when ids is nil). It returns the number of changes.
func AttachZones(elems []domain.Element, ids []string) int {
	var only map[string]struct{}
	if ids != nil {
		only = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			only[id] = struct{}{}
		}
	}
	changed := 0
	for i := range elems {
		if !elems[i].Kind.Zoneable() {
			continue
		}
		if only != nil {
			if _, ok := only[elems[i].ID]; !ok {
				continue
			}
		}
		z := ContainingZone(elems, elems[i])
		if elems[i].ZoneID != z {
			elems[i].ZoneID = z
			changed++
		}
	}
	return changed
}
