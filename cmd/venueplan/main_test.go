/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"venueplan/internal/config"
	"venueplan/internal/domain"
	"venueplan/internal/storage"
)

func newCLI() (*cli, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := config.Defaults()
	cfg.Editor.AutosaveMs = 20
	return &cli{cfg: cfg, out: &buf, log: slog.Default()}, &buf
}

func seedPlan(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := storage.InitPlan(dir, domain.Plan{
		VenueID: "club",
		Name:    "Club",
		Elements: []domain.Element{
			{ID: "z", Kind: domain.KindZone, Name: "Floor", X: 0, Y: 0, Width: 600, Height: 400, Shape: domain.ShapeRectangle},
			{ID: "a", Kind: domain.KindTable, Name: "A", X: 10, Y: 10, Width: 40, Height: 40, Shape: domain.ShapeRectangle, Seats: 4, ZoneID: "z"},
			{ID: "b", Kind: domain.KindTable, Name: "B", X: 100, Y: 60, Width: 40, Height: 40, Shape: domain.ShapeRectangle, Seats: 2, ZoneID: "z"},
		},
	})
	if err != nil {
		t.Fatalf("InitPlan: %v", err)
	}
	return dir
}

func TestRunVersionAndUsage(t *testing.T) {
	c, out := newCLI()
	if code := c.run([]string{"version"}); code != 0 {
		t.Fatalf("version exit = %d", code)
	}
	if !strings.Contains(out.String(), "VenuePlan") {
		t.Fatalf("version output: %q", out.String())
	}
	if code := c.run([]string{"bogus"}); code != 2 {
		t.Fatalf("unknown command exit = %d, want 2", code)
	}
	if code := c.run([]string{"init"}); code != 2 {
		t.Fatalf("init without args exit = %d, want 2", code)
	}
}

func TestRunInitAndOpen(t *testing.T) {
	c, out := newCLI()
	dir := filepath.Join(t.TempDir(), "plan")
	if code := c.run([]string{"init", dir, "venue-9", "saturday"}); code != 0 {
		t.Fatalf("init exit = %d: %s", code, out.String())
	}
	out.Reset()
	if code := c.run([]string{"open", dir}); code != 0 {
		t.Fatalf("open exit = %d: %s", code, out.String())
	}
	for _, want := range []string{"Venue: venue-9", "Line: saturday", "Elements: 0"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("open output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunOpenSummarizesSeats(t *testing.T) {
	c, out := newCLI()
	dir := seedPlan(t)
	if code := c.run([]string{"open", dir}); code != 0 {
		t.Fatalf("open exit = %d: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "Seats: 6") {
		t.Fatalf("expected 6 seats:\n%s", out.String())
	}
}

func TestRunExportIntoDirectory(t *testing.T) {
	c, out := newCLI()
	dir := seedPlan(t)
	outDir := t.TempDir()
	if code := c.run([]string{"export", dir, "svg", outDir}); code != 0 {
		t.Fatalf("export exit = %d: %s", code, out.String())
	}
	if _, err := os.Stat(filepath.Join(outDir, "plan-club.svg")); err != nil {
		t.Fatalf("svg not written: %v", err)
	}
	if code := c.run([]string{"export", dir, "gif", outDir}); code != 2 {
		t.Fatalf("unknown format exit = %d, want 2", code)
	}
}

func TestRunAlignCommitsAndRecordsRevision(t *testing.T) {
	c, out := newCLI()
	dir := seedPlan(t)
	if code := c.run([]string{"align", dir, "top", "a", "b"}); code != 0 {
		t.Fatalf("align exit = %d: %s", code, out.String())
	}
	h, err := storage.Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, _ := domain.Collection(h.Plan.Elements).ByID("b")
	if b.Y != 10 {
		t.Fatalf("b.Y = %v, want 10", b.Y)
	}
	out.Reset()
	if code := c.run([]string{"revisions", dir}); code != 0 {
		t.Fatalf("revisions exit = %d: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "elements") {
		t.Fatalf("revisions output: %q", out.String())
	}
	if code := c.run([]string{"align", dir, "top", "a", "missing"}); code != 1 {
		t.Fatalf("align with unknown id exit = %d, want 1", code)
	}
}
