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

import (
	"math"
	"testing"

	"venueplan/internal/domain"
)

func el(id string, kind domain.Kind, shape domain.Shape, x, y, w, h, rot float64) domain.Element {
	return domain.Element{ID: id, Kind: kind, Shape: shape, X: x, Y: y, Width: w, Height: h, Rotation: rot}
}

func TestHitTestShapes(t *testing.T) {
	rect := el("r", domain.KindTable, domain.ShapeRectangle, 0, 0, 100, 50, 0)
	if !HitTest(rect, Pt{100, 50}) || HitTest(rect, Pt{101, 50}) {
		t.Fatalf("rectangle edges should be inclusive and exclusive beyond")
	}

	circle := el("c", domain.KindTable, domain.ShapeCircle, 0, 0, 100, 100, 0)
	if !HitTest(circle, Pt{50, 50}) {
		t.Fatalf("center should hit")
	}
	if HitTest(circle, Pt{5, 5}) {
		t.Fatalf("bounding-box corner is outside the circle")
	}

	tri := el("t", domain.KindTable, domain.ShapeTriangle, 0, 0, 100, 100, 0)
	if !HitTest(tri, Pt{50, 60}) || HitTest(tri, Pt{5, 10}) {
		t.Fatalf("unexpected triangle hit result")
	}

	poly := el("p", domain.KindSpecialArea, domain.ShapePolygon, 0, 0, 200, 100, 0)
	poly.Points = []domain.Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 50}, {X: 100, Y: 50}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	if !HitTest(poly, Pt{20, 20}) || HitTest(poly, Pt{180, 20}) || !HitTest(poly, Pt{180, 80}) {
		t.Fatalf("unexpected L-polygon hit result")
	}
	if HitTest(rect, Pt{math.NaN(), 1}) {
		t.Fatalf("NaN must never hit")
	}
}

func TestHitTestRespectsRotation(t *testing.T) {
	// a 100x20 bar rotated 90 degrees around (50,10) stands upright
	bar := el("b", domain.KindSpecialArea, domain.ShapeRectangle, 0, 0, 100, 20, 90)
	if !HitTest(bar, Pt{50, 50}) {
		t.Fatalf("expected hit inside the rotated bar")
	}
	if HitTest(bar, Pt{5, 10}) {
		t.Fatalf("unrotated end should be outside after rotation")
	}
}

func TestBoundingBoxRotated(t *testing.T) {
	e := el("x", domain.KindTable, domain.ShapeRectangle, 0, 0, 100, 20, 90)
	bb := BoundingBox(e)
	if math.Abs(bb.X-40) > 1e-9 || math.Abs(bb.Y+40) > 1e-9 || math.Abs(bb.W-20) > 1e-9 || math.Abs(bb.H-100) > 1e-9 {
		t.Fatalf("unexpected bounds: %+v", bb)
	}
}

func TestOutlinePolygonScalesWithBox(t *testing.T) {
	e := el("p", domain.KindZone, domain.ShapePolygon, 10, 10, 200, 100, 0)
	e.Points = []domain.Point{{X: 50, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	pts := Outline(e)
	want := []Pt{{110, 10}, {210, 110}, {10, 110}}
	for i := range want {
		if math.Abs(pts[i].X-want[i].X) > 1e-9 || math.Abs(pts[i].Y-want[i].Y) > 1e-9 {
			t.Fatalf("outline[%d] = %+v, want %+v", i, pts[i], want[i])
		}
	}
	if got := len(LocalOutline(el("c", domain.KindTable, domain.ShapeCircle, 0, 0, 10, 10, 0))); got != circleSegments {
		t.Fatalf("circle outline has %d points", got)
	}
}

func TestZoneContainsUsesZoneRotation(t *testing.T) {
	// 200x40 zone rotated 90 degrees: occupies x 80..120, y -80..120
	zone := el("z", domain.KindZone, domain.ShapeRectangle, 0, 0, 200, 40, 90)
	inside := el("t", domain.KindTable, domain.ShapeCircle, 80, 80, 40, 40, 0)  // center (100,100)
	outside := el("t", domain.KindTable, domain.ShapeCircle, 160, 0, 40, 40, 0) // center (180,20)
	if !ZoneContains(zone, inside) {
		t.Fatalf("expected rotated zone to contain table")
	}
	if ZoneContains(zone, outside) {
		t.Fatalf("table sits in the unrotated footprint only")
	}
	other := el("z2", domain.KindZone, domain.ShapeRectangle, 90, 90, 10, 10, 0)
	if ZoneContains(zone, other) {
		t.Fatalf("zones never contain zones")
	}
	area := el("a", domain.KindSpecialArea, domain.ShapeRectangle, 90, 90, 10, 10, 0)
	if ZoneContains(zone, area) {
		t.Fatalf("special areas do not participate")
	}
}

func TestAttachZonesFirstMatchWins(t *testing.T) {
	elems := []domain.Element{
		el("z1", domain.KindZone, domain.ShapeRectangle, 0, 0, 300, 300, 0),
		el("z2", domain.KindZone, domain.ShapeRectangle, 100, 100, 300, 300, 0),
		el("t1", domain.KindTable, domain.ShapeCircle, 180, 180, 40, 40, 0),
		el("s1", domain.KindSecurity, domain.ShapeRectangle, 900, 900, 40, 40, 0),
	}
	elems[3].ZoneID = "z2"
	if n := AttachZones(elems, nil); n != 2 {
		t.Fatalf("expected 2 changes, got %d", n)
	}
	if elems[2].ZoneID != "z1" {
		t.Fatalf("overlap should resolve to first zone, got %q", elems[2].ZoneID)
	}
	if elems[3].ZoneID != "" {
		t.Fatalf("element outside all zones keeps no zone, got %q", elems[3].ZoneID)
	}
	if n := AttachZones(elems, []string{"t1"}); n != 0 {
		t.Fatalf("second pass should be stable, got %d changes", n)
	}
}

func TestHandlesFollowRotation(t *testing.T) {
	e := el("h", domain.KindTable, domain.ShapeRectangle, 0, 0, 100, 50, 0)
	se := HandlePos(e, HandleSE, 24)
	if se != (Pt{100, 50}) {
		t.Fatalf("se handle at %+v", se)
	}
	if !HitHandle(e, HandleSE, Pt{103, 47}, 4, 24) || HitHandle(e, HandleSE, Pt{106, 50}, 4, 24) {
		t.Fatalf("unexpected se hit result")
	}
	if !HitHandle(e, HandleRotate, Pt{50, -24}, 6, 24) {
		t.Fatalf("rotate handle should sit above the top edge")
	}

	e.Rotation = 180
	se = HandlePos(e, HandleSE, 24)
	if math.Abs(se.X) > 1e-9 || math.Abs(se.Y) > 1e-9 {
		t.Fatalf("rotated se handle at %+v, want origin", se)
	}
	if !HitHandle(e, HandleRotate, Pt{50, 74}, 6, 24) {
		t.Fatalf("rotate handle should flip below when upside down")
	}
}

func TestHandleNames(t *testing.T) {
	for _, h := range ResizeHandles {
		if ParseHandle(h.String()) != h {
			t.Fatalf("round trip failed for %v", h)
		}
	}
	if !HandleNW.Corner() || HandleN.Corner() || !HandleSW.Left() || !HandleSW.Bottom() || HandleE.Top() {
		t.Fatalf("unexpected handle predicates")
	}
}
