/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export writes floor plans to SVG, PNG, PDF and an XLSX seating inventory.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"venueplan/internal/domain"
	"venueplan/internal/render"
	"venueplan/internal/vector"
)

// Format is an export target.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatPDF, FormatXLSX}

// ParseFormat accepts a format name or file extension, case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	for _, k := range Formats {
		if f == k {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format: %q", s)
}

// Options controls the drawing exporters.
type Options struct {
	// Scale is output pixels (SVG, PNG) or points (PDF) per canvas unit. Zero means 1.
	Scale float64
	// Margin around the content in canvas units.
	Margin float64
	// GridSize draws the grid when > 0.
	GridSize float64
	// FullCanvas exports the whole canvas instead of the content bounds.
	FullCanvas bool
	Theme      *render.Theme
}

func (o Options) scale() float64 {
	if o.Scale <= 0 || !vector.Finite(o.Scale) {
		return 1
	}
	return o.Scale
}

// frame returns the draw list and the canvas area to export.
func frame(p domain.Plan, opt Options) ([]render.Command, vector.Rect) {
	area := vector.Bounds(p.Elements)
	if opt.FullCanvas || area.Empty() {
		w, h := p.CanvasWidth, p.CanvasHeight
		if w <= 0 || h <= 0 {
			w, h = 2000, 2000
		}
		area = vector.R(0, 0, w, h)
	}
	if opt.Margin > 0 {
		area = area.Inset(-opt.Margin, -opt.Margin)
	}
	s := render.PlanScene(p, opt.Theme)
	s.Scale = opt.scale()
	if opt.GridSize > 0 {
		s.Grid = opt.GridSize
		s.Extent = area
	}
	return render.Build(s), area
}

func pixelSize(area vector.Rect, scale float64) (int, int) {
	return int(math.Ceil(area.W * scale)), int(math.Ceil(area.H * scale))
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName returns the default output name for a plan: plan-<venue>[-<line>].<ext>.
func FileName(p domain.Plan, f Format) string {
	name := "plan-" + p.VenueID
	if p.LineID != "" {
		name += "-" + p.LineID
	}
	name = strings.Trim(unsafeName.ReplaceAllString(name, "_"), "_")
	return name + "." + string(f)
}

// ToFile writes p in format f to path.
func ToFile(f Format, p domain.Plan, path string, opt Options) error {
	switch f {
	case FormatSVG:
		return ExportSVG(p, path, opt)
	case FormatPNG:
		return ExportPNG(p, path, opt)
	case FormatPDF:
		return ExportPDF(p, path, opt)
	case FormatXLSX:
		return ExportSeatingXLSX(p, path)
	}
	return fmt.Errorf("unknown export format: %q", f)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return nil
}
