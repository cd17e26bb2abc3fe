/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"testing"
	"time"

	"venueplan/internal/domain"
)

func TestRevisionsSaveListLatest(t *testing.T) {
	ctx := context.Background()
	h, err := InitPlan(t.TempDir(), testPlan())
	if err != nil {
		t.Fatalf("InitPlan error: %v", err)
	}
	if rev, err := LatestRevision(ctx, h); err != nil || rev != nil {
		t.Fatalf("empty log: got %+v, %v", rev, err)
	}
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	elems := h.Plan.Elements
	for i := 0; i < 3; i++ {
		if err := SaveRevision(ctx, h, TriggerSave, elems[:i%2+1], base.Add(time.Duration(i)*time.Millisecond)); err != nil {
			t.Fatalf("SaveRevision %d: %v", i, err)
		}
	}
	revs, err := ListRevisions(ctx, h, 10)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revs) != 3 {
		t.Fatalf("revisions: got %d want 3", len(revs))
	}
	if !revs[0].TS.Equal(base.Add(2 * time.Millisecond)) {
		t.Fatalf("newest first: got %v", revs[0].TS)
	}
	latest, err := LatestRevision(ctx, h)
	if err != nil {
		t.Fatalf("LatestRevision: %v", err)
	}
	if latest.ID != revs[0].ID || len(latest.Elements) != 1 || latest.VenueID != "venue-1" {
		t.Fatalf("latest mismatch: %+v", latest)
	}
}

func TestRevisionsAreScopedByLine(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	fri, err := InitPlan(root, testPlan())
	if err != nil {
		t.Fatalf("InitPlan error: %v", err)
	}
	sat := &PlanHandle{Root: root, PlanPath: fri.PlanPath, Plan: testPlan()}
	sat.Plan.LineID = "saturday"
	now := time.Now()
	if err := SaveRevision(ctx, fri, TriggerSave, fri.Plan.Elements, now); err != nil {
		t.Fatal(err)
	}
	if err := SaveRevision(ctx, sat, TriggerSave, nil, now); err != nil {
		t.Fatal(err)
	}
	revs, err := ListRevisions(ctx, sat, 0)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revs) != 1 || len(revs[0].Elements) != 0 {
		t.Fatalf("saturday scope: got %+v", revs)
	}
}

func TestPruneRevisionsKeepsNewest(t *testing.T) {
	ctx := context.Background()
	h, err := InitPlan(t.TempDir(), testPlan())
	if err != nil {
		t.Fatalf("InitPlan error: %v", err)
	}
	base := time.Now()
	for i := 0; i < 5; i++ {
		e := []domain.Element{{ID: "t", Kind: domain.KindTable, X: float64(i), Width: 20, Height: 20, Shape: domain.ShapeSquare}}
		if err := SaveRevision(ctx, h, TriggerAutosave, e, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatal(err)
		}
	}
	n, err := PruneRevisions(ctx, h, 2)
	if err != nil {
		t.Fatalf("PruneRevisions: %v", err)
	}
	if n != 3 {
		t.Fatalf("pruned: got %d want 3", n)
	}
	revs, err := ListRevisions(ctx, h, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(revs) != 2 || revs[0].Elements[0].X != 4 || revs[1].Elements[0].X != 3 {
		t.Fatalf("kept wrong revisions: %+v", revs)
	}
	if n, _ := PruneRevisions(ctx, h, 0); n != 0 {
		t.Fatalf("keepLast 0 must be a no-op")
	}
}
