/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package render builds a backend-neutral draw list for a floor plan and
// rasterizes it. The desktop UI and the exporters consume the same list.
package render

import (
	"fmt"
	"math"
	"sort"

	"venueplan/internal/domain"
	"venueplan/internal/vector"
)

type Op uint8

const (
	// OpPath is a polyline, closed when Command.Closed is set.
	OpPath Op = iota
	// OpEllipse is a rotated ellipse; Points holds its polygon approximation.
	OpEllipse
	// OpText is a label centered on Command.Center.
	OpText
)

// Layer orders commands; lower layers paint first.
type Layer uint8

const (
	LayerGrid Layer = iota
	LayerZones
	LayerElements
	LayerLabels
	LayerSelection
	LayerGuides
	LayerHandles
	LayerOverlay
)

// Command is one drawing primitive in canvas units.
type Command struct {
	Op        Op
	Layer     Layer
	ElementID string
	Points    []vector.Pt
	Closed    bool
	Center    vector.Pt
	RX, RY    float64
	Rotation  float64
	Text      string
	FontSize  float64
	Paint     vector.Paint
}

// Scene is everything needed to draw one frame.
type Scene struct {
	Elements []domain.Element
	Selected []string
	Primary  string
	Guides   []vector.GuideLine
	// SelectionBox is the rubber band while box selecting.
	SelectionBox *vector.Rect
	// Scale is screen pixels per canvas unit. Overlays keep a constant
	// on-screen size by dividing through it. Zero means 1.
	Scale        float64
	HandleSize   float64
	RotateOffset float64
	// Grid is the grid spacing drawn over Extent; zero hides the grid.
	Grid   float64
	Extent vector.Rect
	Labels bool
	Theme  *Theme
}

// Build returns the draw list for s sorted by layer. Zones paint beneath all
// other kinds; within a layer collection order is kept.
func Build(s Scene) []Command {
	th := DefaultTheme()
	if s.Theme != nil {
		th = *s.Theme
	}
	scale := s.Scale
	if scale <= 0 || !vector.Finite(scale) {
		scale = 1
	}
	px := func(v float64) float64 { return v / scale }

	var out []Command
	if s.Grid > 0 && !s.Extent.Empty() {
		out = append(out, gridLines(s.Extent, s.Grid, th, px(1))...)
	}

	elems := domain.Collection(s.Elements)
	for _, i := range elems.RenderOrder() {
		e := elems[i]
		layer := LayerElements
		if e.Kind == domain.KindZone {
			layer = LayerZones
		}
		paint := vector.Filled(th.FillFor(e), th.Outline, px(th.OutlineWidth))
		for _, c := range RendererFor(e.Shape).Render(e, paint) {
			c.Layer = layer
			out = append(out, c)
		}
		if s.Labels {
			if txt := Label(e); txt != "" {
				cx, cy := e.Center()
				out = append(out, Command{
					Op: OpText, Layer: LayerLabels, ElementID: e.ID, Text: txt,
					Center: vector.Pt{X: cx, Y: cy}, FontSize: th.FontSize,
					Paint: vector.Paint{Fill: vector.Fill{Color: th.Label, Enabled: true}},
				})
			}
		}
	}

	selected := make(map[string]struct{}, len(s.Selected))
	for _, id := range s.Selected {
		selected[id] = struct{}{}
	}
	hs := px(s.HandleSize)
	for _, e := range elems {
		if _, ok := selected[e.ID]; !ok {
			continue
		}
		out = append(out, Command{
			Op: OpPath, Layer: LayerSelection, ElementID: e.ID, Points: vector.Outline(e), Closed: true,
			Paint: vector.Outlined(th.Selection, px(th.SelectionWidth), false),
		})
		if hs > 0 {
			out = append(out, handles(e, hs, th, px(1))...)
		}
		if e.ID == s.Primary && e.Kind != domain.KindZone && hs > 0 {
			out = append(out, rotateHandle(e, hs, px(s.RotateOffset), th, px(1))...)
		}
	}

	for _, g := range s.Guides {
		out = append(out, Command{
			Op: OpPath, Layer: LayerGuides, Points: []vector.Pt{g.From, g.To},
			Paint: vector.Outlined(th.Guide, px(th.GuideWidth), g.Kind == vector.GuideCenter),
		})
	}

	if b := s.SelectionBox; b != nil {
		out = append(out, Command{
			Op: OpPath, Layer: LayerOverlay, Closed: true,
			Points: []vector.Pt{b.Min(), {X: b.X + b.W, Y: b.Y}, b.Max(), {X: b.X, Y: b.Y + b.H}},
			Paint: vector.Paint{
				Fill:   vector.Fill{Color: th.BoxFill, Enabled: th.BoxFill.A > 0},
				Stroke: vector.Stroke{Color: th.Box, Width: px(1), Dashed: true, Enabled: true},
			},
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Layer < out[j].Layer })
	return out
}

// Label is the text drawn on an element: its name, with the seat count for tables.
func Label(e domain.Element) string {
	name := e.Name
	if e.Kind == domain.KindSpecialArea && name == "" {
		name = string(e.AreaType)
	}
	if e.Kind == domain.KindTable && e.Seats > 0 {
		if name == "" {
			return fmt.Sprintf("%d", e.Seats)
		}
		return fmt.Sprintf("%s (%d)", name, e.Seats)
	}
	return name
}

func gridLines(ext vector.Rect, step float64, th Theme, w float64) []Command {
	// keep huge grids readable and bounded
	for ext.W/step > 500 || ext.H/step > 500 {
		step *= 2
	}
	paint := vector.Outlined(th.Grid, w, false)
	var out []Command
	for x := math.Ceil(ext.X/step) * step; x <= ext.X+ext.W; x += step {
		out = append(out, Command{Op: OpPath, Layer: LayerGrid, Points: []vector.Pt{{X: x, Y: ext.Y}, {X: x, Y: ext.Y + ext.H}}, Paint: paint})
	}
	for y := math.Ceil(ext.Y/step) * step; y <= ext.Y+ext.H; y += step {
		out = append(out, Command{Op: OpPath, Layer: LayerGrid, Points: []vector.Pt{{X: ext.X, Y: y}, {X: ext.X + ext.W, Y: y}}, Paint: paint})
	}
	return out
}

// handles draws the eight resize handles as squares aligned with the element.
func handles(e domain.Element, size float64, th Theme, w float64) []Command {
	m := vector.ElementTransform(e)
	half := size / 2
	out := make([]Command, 0, len(vector.ResizeHandles))
	for _, h := range vector.ResizeHandles {
		c := h.LocalPos(e.Width, e.Height, 0)
		pts := []vector.Pt{
			m.Apply(vector.Pt{X: c.X - half, Y: c.Y - half}),
			m.Apply(vector.Pt{X: c.X + half, Y: c.Y - half}),
			m.Apply(vector.Pt{X: c.X + half, Y: c.Y + half}),
			m.Apply(vector.Pt{X: c.X - half, Y: c.Y + half}),
		}
		out = append(out, Command{
			Op: OpPath, Layer: LayerHandles, ElementID: e.ID, Points: pts, Closed: true,
			Text: h.String(), Paint: vector.Filled(th.Handle, th.Selection, w),
		})
	}
	return out
}

// rotateHandle draws a stem from the top edge and a round knob at its end.
func rotateHandle(e domain.Element, size, offset float64, th Theme, w float64) []Command {
	top := vector.HandlePos(e, vector.HandleN, 0)
	knob := vector.HandlePos(e, vector.HandleRotate, offset)
	r := size * 0.75
	n := 16
	pts := make([]vector.Pt, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = vector.Pt{X: knob.X + r*math.Cos(a), Y: knob.Y + r*math.Sin(a)}
	}
	return []Command{
		{Op: OpPath, Layer: LayerHandles, ElementID: e.ID, Points: []vector.Pt{top, knob}, Paint: vector.Outlined(th.Selection, w, false)},
		{
			Op: OpEllipse, Layer: LayerHandles, ElementID: e.ID, Points: pts, Closed: true,
			Center: knob, RX: r, RY: r, Text: vector.HandleRotate.String(),
			Paint: vector.Filled(th.Handle, th.Selection, w),
		},
	}
}
