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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"venueplan/internal/domain"
)

func testPlan() domain.Plan {
	return domain.Plan{
		VenueID:      "venue-1",
		LineID:       "friday",
		Name:         "Main floor",
		CanvasWidth:  2000,
		CanvasHeight: 2000,
		Elements: []domain.Element{
			{ID: "z1", Kind: domain.KindZone, Name: "Terrace", X: 0, Y: 0, Width: 300, Height: 200, Shape: domain.ShapeRectangle},
			{ID: "t1", Kind: domain.KindTable, Name: "T1", X: 40, Y: 40, Width: 60, Height: 60, Shape: domain.ShapeCircle, Seats: 4, ZoneID: "z1"},
		},
	}
}

func countBackups(t *testing.T, root string) int {
	t.Helper()
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	n := 0
	for _, e := range ents {
		if strings.HasPrefix(e.Name(), PlanFileName+".") && strings.HasSuffix(e.Name(), ".bak") {
			n++
		}
	}
	return n
}

func TestInitPlanCreatesStructureAndPlan(t *testing.T) {
	root := t.TempDir()
	h, err := InitPlan(root, testPlan())
	if err != nil {
		t.Fatalf("InitPlan error: %v", err)
	}
	b, err := os.ReadFile(h.PlanPath)
	if err != nil {
		t.Fatalf("read plan: %v", err)
	}
	var got domain.Plan
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal plan: %v", err)
	}
	if got.VenueID != "venue-1" || len(got.Elements) != 2 {
		t.Fatalf("plan mismatch: got venue %q with %d elements", got.VenueID, len(got.Elements))
	}
	if got.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt not set")
	}
	for _, d := range []string{ExportsDirName, BackupsDirName} {
		if fi, err := os.Stat(filepath.Join(root, d)); err != nil || !fi.IsDir() {
			t.Fatalf("expected directory %s to exist", d)
		}
	}
}

func TestInitPlanRequiresVenue(t *testing.T) {
	p := testPlan()
	p.VenueID = " "
	if _, err := InitPlan(t.TempDir(), p); err == nil {
		t.Fatalf("expected error for empty venue id")
	}
	if _, err := InitPlan("", testPlan()); err == nil {
		t.Fatalf("expected error for empty root")
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	root := t.TempDir()
	h, err := InitPlan(root, testPlan())
	if err != nil {
		t.Fatalf("InitPlan error: %v", err)
	}
	if n := countBackups(t, root); n != 0 {
		t.Fatalf("fresh plan should have no backups, got %d", n)
	}
	h.Plan.Name = "changed"
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if n := countBackups(t, root); n != 1 {
		t.Fatalf("expected one backup, got %d", n)
	}
}

func TestOpenRoundTrip(t *testing.T) {
	root := t.TempDir()
	if _, err := InitPlan(root, testPlan()); err != nil {
		t.Fatalf("InitPlan error: %v", err)
	}
	h, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	want := testPlan().Elements
	if !domain.Collection(h.Plan.Elements).Equal(want) {
		t.Fatalf("elements mismatch:\n got %+v\nwant %+v", h.Plan.Elements, want)
	}
}

func TestOpenFallsBackToLatestBackupOnCorruption(t *testing.T) {
	root := t.TempDir()
	h, err := InitPlan(root, testPlan())
	if err != nil {
		t.Fatalf("InitPlan error: %v", err)
	}
	if err := Save(h); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := os.WriteFile(h.PlanPath, []byte("{ this is not json"), 0o644); err != nil {
		t.Fatalf("corrupt plan: %v", err)
	}
	opened, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if opened.Plan.Name != "Main floor" {
		t.Fatalf("opened plan name mismatch: got %q", opened.Plan.Name)
	}
	if opened.PlanPath != h.PlanPath {
		t.Fatalf("PlanPath should point at plan.json, got %q", opened.PlanPath)
	}
}

func TestOpenRejectsSchemaViolationWithoutBackup(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, BackupsDirName), 0o755); err != nil {
		t.Fatal(err)
	}
	bad := `{"venueId":"v","elements":[{"id":"a","type":"table","x":0,"y":0,"width":10,"height":10,"shape":"hexagon"}]}`
	if err := os.WriteFile(filepath.Join(root, PlanFileName), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(root); err == nil {
		t.Fatalf("expected error for invalid plan without backups")
	}
}

func TestSaveAsMovesHandle(t *testing.T) {
	h, err := InitPlan(t.TempDir(), testPlan())
	if err != nil {
		t.Fatalf("InitPlan error: %v", err)
	}
	dst := filepath.Join(t.TempDir(), "copy")
	if err := SaveAs(h, dst); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}
	if h.Root != dst || h.PlanPath != filepath.Join(dst, PlanFileName) {
		t.Fatalf("handle not updated: %+v", h)
	}
	if _, err := Open(dst); err != nil {
		t.Fatalf("Open copy: %v", err)
	}
}

func TestPruneBackupsKeepsNewest(t *testing.T) {
	root := t.TempDir()
	if _, err := InitPlan(root, testPlan()); err != nil {
		t.Fatalf("InitPlan error: %v", err)
	}
	bdir := filepath.Join(root, BackupsDirName)
	names := []string{
		"plan.json.20250101-100000.000.bak",
		"plan.json.20250101-100001.000.bak",
		"plan.json.20250101-100002.000.bak",
		"crash-20250101-100003.000.plan.json",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(bdir, n), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	removed, err := PruneBackups(root, 1)
	if err != nil {
		t.Fatalf("PruneBackups error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed: got %d want 2", removed)
	}
	if _, err := os.Stat(filepath.Join(bdir, names[2])); err != nil {
		t.Fatalf("newest backup should remain: %v", err)
	}
	if _, err := os.Stat(filepath.Join(bdir, names[3])); err != nil {
		t.Fatalf("crash snapshot must not be pruned: %v", err)
	}
}

func TestAutosaveCrashSnapshotWritesFile(t *testing.T) {
	h, err := InitPlan(t.TempDir(), testPlan())
	if err != nil {
		t.Fatalf("InitPlan error: %v", err)
	}
	h.Plan.Elements = h.Plan.Elements[:1]
	path, err := AutosaveCrashSnapshot(h)
	if err != nil {
		t.Fatalf("AutosaveCrashSnapshot error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var got domain.Plan
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(got.Elements) != 1 {
		t.Fatalf("snapshot elements: got %d want 1", len(got.Elements))
	}
	// plan.json itself is untouched
	opened, err := Open(h.Root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if len(opened.Plan.Elements) != 2 {
		t.Fatalf("plan.json changed by crash snapshot")
	}
}
