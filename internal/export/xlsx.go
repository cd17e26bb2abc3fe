/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"

	"venueplan/internal/domain"
)

const (
	sheetTables = "Tables"
	sheetZones  = "Zones"
	// unzoned groups tables that are not inside any zone.
	unzoned = "(no zone)"
)

// SeatingRow is one table or security post in the inventory.
type SeatingRow struct {
	ID       string
	Name     string
	Kind     domain.Kind
	Zone     string
	Seats    int
	Shape    domain.Shape
	X, Y     float64
	Rotation float64
	Notes    string
}

// ZoneSummary aggregates the tables of one zone.
type ZoneSummary struct {
	Zone   string
	Tables int
	Seats  int
}

// Inventory lists zoneable elements sorted by zone then name, and per-zone totals
// in zone collection order with unzoned last.
func Inventory(p domain.Plan) ([]SeatingRow, []ZoneSummary) {
	zoneNames := map[string]string{}
	var zoneOrder []string
	for _, e := range p.Elements {
		if e.Kind == domain.KindZone {
			name := e.Name
			if name == "" {
				name = e.ID
			}
			zoneNames[e.ID] = name
			zoneOrder = append(zoneOrder, e.ID)
		}
	}
	var rows []SeatingRow
	totals := map[string]*ZoneSummary{}
	for _, e := range p.Elements {
		if !e.Kind.Zoneable() {
			continue
		}
		zone, ok := zoneNames[e.ZoneID]
		if !ok {
			zone = unzoned
		}
		rows = append(rows, SeatingRow{
			ID: e.ID, Name: e.Name, Kind: e.Kind, Zone: zone, Seats: e.Seats, Shape: e.Shape,
			X: e.X, Y: e.Y, Rotation: e.Rotation, Notes: e.Notes,
		})
		key := e.ZoneID
		if !ok {
			key = ""
		}
		t := totals[key]
		if t == nil {
			t = &ZoneSummary{Zone: zone}
			totals[key] = t
		}
		if e.Kind == domain.KindTable {
			t.Tables++
			t.Seats += e.Seats
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Zone != rows[j].Zone {
			return rows[i].Zone < rows[j].Zone
		}
		return rows[i].Name < rows[j].Name
	})
	var sums []ZoneSummary
	for _, id := range zoneOrder {
		if t, ok := totals[id]; ok {
			sums = append(sums, *t)
		} else {
			sums = append(sums, ZoneSummary{Zone: zoneNames[id]})
		}
	}
	if t, ok := totals[""]; ok {
		sums = append(sums, *t)
	}
	return rows, sums
}

// WriteSeatingXLSX writes the seating inventory workbook to w.
func WriteSeatingXLSX(w io.Writer, p domain.Plan) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetTables); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetZones); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	rows, sums := Inventory(p)
	tableRows := [][]any{{"Name", "Type", "Zone", "Seats", "Shape", "X", "Y", "Rotation", "Notes", "ID"}}
	for _, r := range rows {
		tableRows = append(tableRows, []any{r.Name, string(r.Kind), r.Zone, r.Seats, string(r.Shape), r.X, r.Y, r.Rotation, r.Notes, r.ID})
	}
	zoneRows := [][]any{{"Zone", "Tables", "Seats"}}
	var tables, seats int
	for _, s := range sums {
		zoneRows = append(zoneRows, []any{s.Zone, s.Tables, s.Seats})
		tables += s.Tables
		seats += s.Seats
	}
	zoneRows = append(zoneRows, []any{"Total", tables, seats})

	for sheet, data := range map[string][][]any{sheetTables: tableRows, sheetZones: zoneRows} {
		if err := writeSheet(f, sheet, data, headerStyle); err != nil {
			return err
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, data [][]any, headerStyle int) error {
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(data) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(data[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// ExportSeatingXLSX writes the seating inventory workbook to path.
func ExportSeatingXLSX(p domain.Plan, path string) error {
	var buf bytes.Buffer
	if err := WriteSeatingXLSX(&buf, p); err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
