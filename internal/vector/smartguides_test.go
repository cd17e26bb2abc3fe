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

import "testing"

func TestComputeSmartGuides_SnapToEdges(t *testing.T) {
	anchor := Rect{X: 0, Y: 0, W: 200, H: 100}
	moving := Rect{X: 3, Y: 4, W: 80, H: 40}
	opts := SnapOptions{Threshold: 6, SnapToEdges: true}

	snapped, guides := ComputeSmartGuides(moving, []Anchor{{ID: "bar", Rect: anchor, Weight: 1}}, opts)
	if snapped.X != 0 {
		t.Fatalf("expected X snapped to 0, got %v", snapped.X)
	}
	if snapped.Y != 0 {
		t.Fatalf("expected Y snapped to 0, got %v", snapped.Y)
	}
	var vOK, hOK bool
	for _, g := range guides {
		if g.Orientation == Vertical && g.Position == 0 {
			vOK = true
		}
		if g.Orientation == Horizontal && g.Position == 0 {
			hOK = true
		}
		if len(g.SourceIDs) != 1 || g.SourceIDs[0] != "bar" {
			t.Fatalf("expected guide sourced from bar, got %v", g.SourceIDs)
		}
	}
	if !vOK || !hOK {
		t.Fatalf("expected guides at x=0 (%v) and y=0 (%v)", vOK, hOK)
	}
}

func TestComputeSmartGuides_SnapToCenters(t *testing.T) {
	anchor := Rect{X: 0, Y: 0, W: 200, H: 100}
	moving := Rect{X: 200/2 - 50 - 2, Y: 100/2 - 30 - 3, W: 100, H: 60}
	opts := SnapOptions{Threshold: 5, SnapToCenters: true}

	snapped, guides := ComputeSmartGuides(moving, []Anchor{{Rect: anchor, Weight: 1}}, opts)
	if snapped.X != 50 || snapped.Y != 20 {
		t.Fatalf("expected center snap to (50,20), got (%v,%v)", snapped.X, snapped.Y)
	}
	var vOK, hOK bool
	for _, g := range guides {
		if g.Orientation == Vertical && g.Kind == GuideCenter && g.Position == 100 {
			vOK = true
		}
		if g.Orientation == Horizontal && g.Kind == GuideCenter && g.Position == 50 {
			hOK = true
		}
	}
	if !vOK || !hOK {
		t.Fatalf("expected center guides present: %+v", guides)
	}
}

func TestComputeSmartGuides_ThresholdPreventsSnap(t *testing.T) {
	anchor := Rect{X: 0, Y: 0, W: 200, H: 100}
	moving := Rect{X: 10, Y: 10, W: 50, H: 20}

	snapped, guides := ComputeSmartGuides(moving, []Anchor{{Rect: anchor, Weight: 1}}, SnapOptions{Threshold: 5, SnapToEdges: true})
	if snapped != moving {
		t.Fatalf("expected no snapping when outside threshold; got %+v", snapped)
	}
	if len(guides) != 0 {
		t.Fatalf("expected no guides when no snap")
	}
}

func TestComputeSmartGuides_PicksClosestAxisIndependently(t *testing.T) {
	anchors := []Anchor{
		{ID: "a", Rect: Rect{X: 0, Y: 0, W: 100, H: 100}, Weight: 1},
		{ID: "b", Rect: Rect{X: 300, Y: 0, W: 100, H: 100}, Weight: 1},
	}
	moving := Rect{X: 2, Y: 97, W: 80, H: 80}

	snapped, _ := ComputeSmartGuides(moving, anchors, SnapOptions{Threshold: 5, SnapToEdges: true})
	if snapped.X != 0 {
		t.Fatalf("expected X snapped to 0, got %v", snapped.X)
	}
	if snapped.Y != 100 {
		t.Fatalf("expected Y snapped to 100, got %v", snapped.Y)
	}
}

func TestComputeSmartGuides_MergesSourcesOnSameLine(t *testing.T) {
	anchors := []Anchor{
		{ID: "t1", Rect: Rect{X: 0, Y: 0, W: 40, H: 40}},
		{ID: "t2", Rect: Rect{X: 0, Y: 200, W: 40, H: 40}},
	}
	moving := Rect{X: 3, Y: 100, W: 40, H: 40}

	_, guides := ComputeSmartGuides(moving, anchors, SnapOptions{Threshold: 5, SnapToEdges: true})
	if len(guides) != 1 {
		t.Fatalf("expected a single vertical guide, got %+v", guides)
	}
	g := guides[0]
	if len(g.SourceIDs) != 2 {
		t.Fatalf("expected both anchors on the guide, got %v", g.SourceIDs)
	}
	if g.From.Y != 0 || g.To.Y != 240 {
		t.Fatalf("guide should span both anchors: %+v", g)
	}
}

func TestComputeSmartGuides_DefaultThreshold(t *testing.T) {
	opts := DefaultSnapOptions()
	if opts.Threshold != 5 || !opts.SnapToEdges || !opts.SnapToCenters {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
	moving := Rect{X: 106, Y: 500, W: 10, H: 10}
	snapped, _ := ComputeSmartGuides(moving, []Anchor{{Rect: Rect{X: 0, Y: 0, W: 100, H: 10}}}, SnapOptions{SnapToEdges: true})
	if snapped.X != 106 {
		t.Fatalf("distance 6 exceeds default threshold 5; got %v", snapped.X)
	}
}
