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
	"encoding/json"
	"testing"
)

func TestPlanRoundTripJSON(t *testing.T) {
	p := Plan{
		VenueID:      "venue-1",
		LineID:       "friday",
		Name:         "Main floor",
		CanvasWidth:  2000,
		CanvasHeight: 2000,
		Elements: []Element{
			{ID: "z1", Kind: KindZone, X: 0, Y: 0, Width: 400, Height: 300, Shape: ShapeRectangle, Description: "Terrace"},
			{ID: "t1", Kind: KindTable, X: 40, Y: 40, Width: 60, Height: 60, Shape: ShapeCircle, Seats: 4, ZoneID: "z1"},
		},
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Plan
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.VenueID != p.VenueID || got.LineID != p.LineID {
		t.Fatalf("scope mismatch: got %q/%q", got.VenueID, got.LineID)
	}
	if !Collection(got.Elements).Equal(p.Elements) {
		t.Fatalf("elements mismatch: %+v", got.Elements)
	}
	var raw map[string]any
	_ = json.Unmarshal(b, &raw)
	els := raw["elements"].([]any)
	if els[1].(map[string]any)["type"] != "table" || els[1].(map[string]any)["zoneId"] != "z1" {
		t.Fatalf("unexpected wire names: %v", els[1])
	}
}

func TestNormalizeEnforcesInvariants(t *testing.T) {
	e := Element{ID: "a", Kind: KindTable, Width: 5, Height: -1, Rotation: -30, Shape: ShapeRectangle}.Normalize()
	if e.Width != MinSize || e.Height != MinSize {
		t.Fatalf("expected min size clamp, got %vx%v", e.Width, e.Height)
	}
	if e.Rotation != 330 {
		t.Fatalf("rotation = %v, want 330", e.Rotation)
	}

	poly := Element{ID: "p", Shape: ShapePolygon, Width: 50, Height: 50, Points: []Point{{0, 0}, {150, 50}}}.Normalize()
	if poly.Shape != ShapeRectangle || poly.Points != nil {
		t.Fatalf("degenerate polygon should fall back to rectangle: %+v", poly)
	}

	poly = Element{ID: "p", Shape: ShapePolygon, Width: 50, Height: 50, Points: []Point{{0, 0}, {150, 50}, {-4, 100}}}.Normalize()
	if poly.Points[1].X != 100 || poly.Points[2].X != 0 {
		t.Fatalf("polygon points not clamped: %+v", poly.Points)
	}

	sq := Element{Shape: ShapeSquare, Width: 40, Height: 60}.Normalize()
	if sq.Width != 60 || sq.Height != 60 {
		t.Fatalf("square should have equal sides: %vx%v", sq.Width, sq.Height)
	}
}

func TestNormalizeDegrees(t *testing.T) {
	cases := map[float64]float64{0: 0, 360: 0, 370: 10, -10: 350, 725: 5, -720: 0}
	for in, want := range cases {
		if got := NormalizeDegrees(in); got != want {
			t.Fatalf("NormalizeDegrees(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	c := Collection{{ID: "p", Shape: ShapePolygon, Points: []Point{{0, 0}, {100, 0}, {50, 100}}}}
	cp := c.Clone()
	cp[0].Points[0].X = 42
	cp[0].X = 99
	if c[0].Points[0].X != 0 || c[0].X != 0 {
		t.Fatalf("clone aliases the source: %+v", c[0])
	}
	if !c.Clone().Equal(c) {
		t.Fatalf("clone should equal source")
	}
}

func TestRenderOrderPutsZonesFirst(t *testing.T) {
	c := Collection{
		{ID: "t1", Kind: KindTable},
		{ID: "z1", Kind: KindZone},
		{ID: "t2", Kind: KindTable},
		{ID: "z2", Kind: KindZone},
	}
	order := c.RenderOrder()
	var got []string
	for _, i := range order {
		got = append(got, c[i].ID)
	}
	want := []string{"z1", "z2", "t1", "t2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("render order = %v, want %v", got, want)
		}
	}
}

func TestNewElementDefaults(t *testing.T) {
	e := NewElement(KindTable, ShapeCircle, 10, 20)
	if e.ID == "" || e.Seats != 4 || e.Width != 60 {
		t.Fatalf("unexpected defaults: %+v", e)
	}
	other := NewElement(KindTable, ShapeCircle, 10, 20)
	if other.ID == e.ID {
		t.Fatalf("ids must be unique")
	}
	if !KindTable.Zoneable() || KindZone.Zoneable() || KindLine.Valid() {
		t.Fatalf("kind predicates wrong")
	}
}
