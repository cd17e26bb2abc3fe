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
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"venueplan/internal/domain"
	"venueplan/internal/render"
	"venueplan/internal/vector"
)

// ExportPDF writes p as a single-page vector PDF sized to the exported area.
// Units are points; opt.Scale is points per canvas unit.
func ExportPDF(p domain.Plan, path string, opt Options) error {
	cmds, area := frame(p, opt)
	s := opt.scale()
	pageW, pageH := area.W*s, area.H*s
	if pageW <= 0 || pageH <= 0 {
		return fmt.Errorf("empty export area")
	}
	th := render.DefaultTheme()
	if opt.Theme != nil {
		th = *opt.Theme
	}
	m := vector.Scale(s, s).Mul(vector.Translate(-area.X, -area.Y))

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	title := p.Name
	if title == "" {
		title = "Floor plan " + p.VenueID
	}
	pdf.SetTitle(title, true)
	pdf.SetCreator("venueplan", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	setFillColor(pdf, th.Background)
	pdf.Rect(0, 0, pageW, pageH, "F")

	for _, c := range cmds {
		if c.Op == render.OpText {
			size := c.FontSize * s
			pdf.SetFont("Helvetica", "", size)
			pdf.SetTextColor(int(c.Paint.Fill.Color.R), int(c.Paint.Fill.Color.G), int(c.Paint.Fill.Color.B))
			txt := tr(c.Text)
			at := m.Apply(c.Center)
			pdf.Text(at.X-pdf.GetStringWidth(txt)/2, at.Y+size*0.35, txt)
			continue
		}
		if len(c.Points) < 2 {
			continue
		}
		pts := make([]gofpdf.PointType, len(c.Points))
		for i, pt := range c.Points {
			q := m.Apply(pt)
			pts[i] = gofpdf.PointType{X: q.X, Y: q.Y}
		}
		style := ""
		if c.Paint.Fill.Enabled && c.Closed {
			setFillColor(pdf, c.Paint.Fill.Color)
			style += "F"
		}
		if c.Paint.Stroke.Enabled {
			setDrawColor(pdf, c.Paint.Stroke.Color)
			pdf.SetLineWidth(c.Paint.Stroke.Width * s)
			if c.Paint.Stroke.Dashed {
				d := c.Paint.Stroke.Width * s * 4
				pdf.SetDashPattern([]float64{d, d}, 0)
			}
			style += "D"
		}
		if style == "" {
			continue
		}
		pdf.SetAlpha(c.Paint.Fill.Color.Opacity(), "Normal")
		if !c.Paint.Fill.Enabled {
			pdf.SetAlpha(1, "Normal")
		}
		if c.Closed {
			pdf.Polygon(pts, style)
		} else {
			for i := 1; i < len(pts); i++ {
				pdf.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
			}
		}
		pdf.SetAlpha(1, "Normal")
		if c.Paint.Stroke.Dashed {
			pdf.SetDashPattern([]float64{}, 0)
		}
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
