/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package viewport maps between screen pixels and canvas logical units.
//
// The logical canvas has a fixed extent centered in the visible viewport. Pan is
// an offset in screen pixels and zoom a scalar clamped to [MinZoom, MaxZoom]:
//
//	canvas = (screen - viewportCenter - pan) / zoom + extent/2
package viewport

import (
	"math"

	"venueplan/internal/vector"
)

const (
	DefaultExtent  = 2000
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 5
	// WheelZoomStep is the multiplicative zoom change per wheel notch.
	WheelZoomStep = 1.1
)

// Viewport holds the view-level transform. The zero value is not usable; call New.
type Viewport struct {
	// Width and Height are the visible area in screen pixels.
	Width, Height float64
	// ExtentW and ExtentH are the logical canvas size.
	ExtentW, ExtentH float64
	Zoom             float64
	PanX, PanY       float64
	MinZoom, MaxZoom float64
}

// New returns a viewport of the given screen size over the default extent.
func New(width, height float64) *Viewport {
	return &Viewport{
		Width: width, Height: height,
		ExtentW: DefaultExtent, ExtentH: DefaultExtent,
		Zoom:    1,
		MinZoom: DefaultMinZoom, MaxZoom: DefaultMaxZoom,
	}
}

// Valid reports whether the transform can be evaluated. A zero-size viewport
// (e.g. before the first layout) is invalid.
func (v *Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0 && v.Zoom > 0 &&
		vector.Finite(v.Width, v.Height, v.Zoom, v.PanX, v.PanY, v.ExtentW, v.ExtentH)
}

// ScreenToCanvas converts a screen point to canvas logical units. Invalid input
// or an invalid viewport returns the input unmodified.
func (v *Viewport) ScreenToCanvas(sx, sy float64) (float64, float64) {
	if !v.Valid() || !vector.Finite(sx, sy) {
		return sx, sy
	}
	return (sx-v.Width/2-v.PanX)/v.Zoom + v.ExtentW/2,
		(sy-v.Height/2-v.PanY)/v.Zoom + v.ExtentH/2
}

// CanvasToScreen is the inverse of ScreenToCanvas.
func (v *Viewport) CanvasToScreen(cx, cy float64) (float64, float64) {
	if !v.Valid() || !vector.Finite(cx, cy) {
		return cx, cy
	}
	return (cx-v.ExtentW/2)*v.Zoom + v.Width/2 + v.PanX,
		(cy-v.ExtentH/2)*v.Zoom + v.Height/2 + v.PanY
}

// ClampZoom limits z to the configured range.
func (v *Viewport) ClampZoom(z float64) float64 {
	lo, hi := v.MinZoom, v.MaxZoom
	if lo <= 0 {
		lo = DefaultMinZoom
	}
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, z))
}

// ZoomAt sets the zoom level keeping the canvas point under (sx, sy) fixed.
func (v *Viewport) ZoomAt(zoom, sx, sy float64) {
	if !v.Valid() || !vector.Finite(zoom, sx, sy) || zoom <= 0 {
		return
	}
	cx, cy := v.ScreenToCanvas(sx, sy)
	v.Zoom = v.ClampZoom(zoom)
	v.PanX = sx - v.Width/2 - (cx-v.ExtentW/2)*v.Zoom
	v.PanY = sy - v.Height/2 - (cy-v.ExtentH/2)*v.Zoom
}

// ZoomBy multiplies the zoom level by factor around (sx, sy).
func (v *Viewport) ZoomBy(factor, sx, sy float64) {
	v.ZoomAt(v.Zoom*factor, sx, sy)
}

// PanBy moves the view by a screen-pixel delta.
func (v *Viewport) PanBy(dx, dy float64) {
	if !vector.Finite(dx, dy) {
		return
	}
	v.PanX += dx
	v.PanY += dy
}

// SetSize updates the visible area. Non-finite or negative sizes are ignored.
func (v *Viewport) SetSize(w, h float64) {
	if !vector.Finite(w, h) || w < 0 || h < 0 {
		return
	}
	v.Width, v.Height = w, h
}

// Reset restores zoom 1 and no pan.
func (v *Viewport) Reset() {
	v.Zoom = 1
	v.PanX, v.PanY = 0, 0
}

// Fit zooms and pans so bounds (canvas units) fill the viewport minus a
// margin in screen pixels.
func (v *Viewport) Fit(bounds vector.Rect, margin float64) {
	if !v.Valid() || bounds.W <= 0 || bounds.H <= 0 || !vector.Finite(bounds.X, bounds.Y, bounds.W, bounds.H, margin) {
		return
	}
	availW := math.Max(1, v.Width-2*margin)
	availH := math.Max(1, v.Height-2*margin)
	v.Zoom = v.ClampZoom(math.Min(availW/bounds.W, availH/bounds.H))
	c := bounds.Center()
	v.PanX = -(c.X - v.ExtentW/2) * v.Zoom
	v.PanY = -(c.Y - v.ExtentH/2) * v.Zoom
}

// VisibleRect returns the canvas area currently on screen.
func (v *Viewport) VisibleRect() vector.Rect {
	x0, y0 := v.ScreenToCanvas(0, 0)
	x1, y1 := v.ScreenToCanvas(v.Width, v.Height)
	return vector.RectFromPoints(vector.Pt{X: x0, Y: y0}, vector.Pt{X: x1, Y: y1})
}
