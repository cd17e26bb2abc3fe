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
	"strings"

	"venueplan/internal/domain"
	"venueplan/internal/render"
	"venueplan/internal/vector"
)

// WriteSVG writes p as a standalone SVG document. The viewBox is in canvas
// units; width and height are scaled by opt.Scale.
func WriteSVG(w io.Writer, p domain.Plan, opt Options) error {
	cmds, area := frame(p, opt)
	th := render.DefaultTheme()
	if opt.Theme != nil {
		th = *opt.Theme
	}
	pxW, pxH := pixelSize(area, opt.scale())

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"%g %g %g %g\">\n", pxW, pxH, area.X, area.Y, area.W, area.H)
	if p.Name != "" {
		wf("  <title>%s</title>\n", escText(p.Name))
	}
	wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", area.X, area.Y, area.W, area.H, th.Background.Hex())

	for _, c := range cmds {
		switch c.Op {
		case render.OpText:
			wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"%g\" text-anchor=\"middle\" dominant-baseline=\"middle\" fill=\"%s\">%s</text>\n",
				c.Center.X, c.Center.Y, c.FontSize, c.Paint.Fill.Color.Hex(), escText(c.Text))
		case render.OpEllipse:
			wf("  <ellipse%s cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\"", idAttr(c), c.Center.X, c.Center.Y, c.RX, c.RY)
			if c.Rotation != 0 {
				wf(" transform=\"rotate(%g %g %g)\"", c.Rotation, c.Center.X, c.Center.Y)
			}
			wf("%s/>\n", paintAttrs(c.Paint))
		default:
			tag := "polyline"
			if c.Closed {
				tag = "polygon"
			}
			wf("  <%s%s points=\"%s\"%s/>\n", tag, idAttr(c), points(c.Points), paintAttrs(c.Paint))
		}
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ExportSVG writes the SVG document to path.
func ExportSVG(p domain.Plan, path string, opt Options) error {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, p, opt); err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func idAttr(c render.Command) string {
	if c.ElementID == "" || c.Layer > render.LayerElements {
		return ""
	}
	return fmt.Sprintf(" data-id=\"%s\"", escAttr(c.ElementID))
}

func points(pts []vector.Pt) string {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%g,%g", vector.FloatRound(p.X, 3), vector.FloatRound(p.Y, 3))
	}
	return b.String()
}

func paintAttrs(p vector.Paint) string {
	var b strings.Builder
	if p.Fill.Enabled {
		fmt.Fprintf(&b, " fill=\"%s\"", p.Fill.Color.Hex())
		if p.Fill.Color.A < 255 {
			fmt.Fprintf(&b, " fill-opacity=\"%.3g\"", p.Fill.Color.Opacity())
		}
	} else {
		b.WriteString(" fill=\"none\"")
	}
	if p.Stroke.Enabled {
		fmt.Fprintf(&b, " stroke=\"%s\" stroke-width=\"%g\"", p.Stroke.Color.Hex(), p.Stroke.Width)
		if p.Stroke.Dashed {
			fmt.Fprintf(&b, " stroke-dasharray=\"%g %g\"", p.Stroke.Width*4, p.Stroke.Width*4)
		}
	}
	return b.String()
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
