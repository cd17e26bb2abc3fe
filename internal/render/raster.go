/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package render

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	xvector "golang.org/x/image/vector"

	"venueplan/internal/vector"
	"venueplan/internal/viewport"
)

// RasterOptions controls Rasterize.
type RasterOptions struct {
	Width, Height int
	// Transform maps canvas units to pixels.
	Transform  vector.Affine2D
	Background vector.Color
	// SkipText omits labels.
	SkipText bool
}

// ViewTransform returns the canvas-to-pixel transform of a viewport.
func ViewTransform(vp *viewport.Viewport) vector.Affine2D {
	return vector.Translate(vp.Width/2+vp.PanX, vp.Height/2+vp.PanY).
		Mul(vector.Scale(vp.Zoom, vp.Zoom)).
		Mul(vector.Translate(-vp.ExtentW/2, -vp.ExtentH/2))
}

// FitTransform maps bounds into a w x h pixel area with a margin, keeping the aspect ratio.
func FitTransform(bounds vector.Rect, w, h int, margin float64) vector.Affine2D {
	if bounds.W <= 0 || bounds.H <= 0 || w <= 0 || h <= 0 {
		return vector.Identity
	}
	availW := math.Max(1, float64(w)-2*margin)
	availH := math.Max(1, float64(h)-2*margin)
	s := math.Min(availW/bounds.W, availH/bounds.H)
	c := bounds.Center()
	return vector.Translate(float64(w)/2, float64(h)/2).
		Mul(vector.Scale(s, s)).
		Mul(vector.Translate(-c.X, -c.Y))
}

// Rasterize paints cmds into a new RGBA image.
func Rasterize(cmds []Command, opt RasterOptions) *image.RGBA {
	w, h := opt.Width, opt.Height
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(opt.Background.RGBA()), image.Point{}, draw.Src)

	m := opt.Transform
	if m == (vector.Affine2D{}) {
		m = vector.Identity
	}
	// uniform scale factor for stroke widths
	scale := math.Sqrt(math.Abs(m.A*m.D - m.B*m.C))
	view := vector.R(0, 0, float64(w), float64(h))
	z := xvector.NewRasterizer(w, h)

	for _, c := range cmds {
		if c.Op == OpText {
			if !opt.SkipText {
				drawLabel(dst, m.Apply(c.Center), c.Text, c.Paint.Fill.Color)
			}
			continue
		}
		pts := make([]vector.Pt, len(c.Points))
		for i, p := range c.Points {
			pts[i] = m.Apply(p)
		}
		if len(pts) < 2 || !overlaps(pts, view) {
			continue
		}
		if c.Paint.Fill.Enabled && c.Closed && len(pts) >= 3 {
			z.Reset(w, h)
			fillPath(z, pts)
			z.Draw(dst, dst.Bounds(), image.NewUniform(c.Paint.Fill.Color.RGBA()), image.Point{})
		}
		if st := c.Paint.Stroke; st.Enabled {
			sw := math.Max(1, st.Width*scale)
			z.Reset(w, h)
			strokePath(z, pts, c.Closed, sw, st.Dashed)
			z.Draw(dst, dst.Bounds(), image.NewUniform(st.Color.RGBA()), image.Point{})
		}
	}
	return dst
}

func overlaps(pts []vector.Pt, view vector.Rect) bool {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		if !vector.Finite(p.X, p.Y) {
			return false
		}
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}
	return maxX >= view.X && minX <= view.X+view.W && maxY >= view.Y && minY <= view.Y+view.H
}

func fillPath(z *xvector.Rasterizer, pts []vector.Pt) {
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
}

// strokePath adds one quad per segment; the rasterizer's non-zero winding
// merges overlapping quads at joints.
func strokePath(z *xvector.Rasterizer, pts []vector.Pt, closed bool, width float64, dashed bool) {
	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	dash := width * 4
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%n]
		if !dashed {
			quad(z, a, b, width)
			continue
		}
		l := math.Hypot(b.X-a.X, b.Y-a.Y)
		for s := 0.0; s < l; s += 2 * dash {
			e := math.Min(s+dash, l)
			quad(z, lerp(a, b, s/l), lerp(a, b, e/l), width)
		}
	}
}

func lerp(a, b vector.Pt, t float64) vector.Pt {
	return vector.Pt{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

func quad(z *xvector.Rasterizer, a, b vector.Pt, width float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	// normal scaled to half width, extended along the segment to close joints
	nx, ny := -dy/l*width/2, dx/l*width/2
	ex, ey := dx/l*width/2, dy/l*width/2
	z.MoveTo(float32(a.X-ex+nx), float32(a.Y-ey+ny))
	z.LineTo(float32(b.X+ex+nx), float32(b.Y+ey+ny))
	z.LineTo(float32(b.X+ex-nx), float32(b.Y+ey-ny))
	z.LineTo(float32(a.X-ex-nx), float32(a.Y-ey-ny))
	z.ClosePath()
}

func drawLabel(dst draw.Image, at vector.Pt, text string, c vector.Color) {
	if text == "" || !vector.Finite(at.X, at.Y) {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c.RGBA()), Face: face}
	adv := d.MeasureString(text)
	x := at.X - float64(adv.Round())/2
	y := at.Y + float64(face.Ascent)/2
	d.Dot = fixed.P(int(math.Round(x)), int(math.Round(y)))
	d.DrawString(text)
}
