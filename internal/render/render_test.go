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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venueplan/internal/domain"
	"venueplan/internal/vector"
	"venueplan/internal/viewport"
)

func el(id string, kind domain.Kind, shape domain.Shape, x, y, w, h float64) domain.Element {
	return domain.Element{ID: id, Kind: kind, Shape: shape, X: x, Y: y, Width: w, Height: h}
}

func byLayer(cmds []Command, l Layer) []Command {
	var out []Command
	for _, c := range cmds {
		if c.Layer == l {
			out = append(out, c)
		}
	}
	return out
}

func TestBuildPaintsZonesFirst(t *testing.T) {
	cmds := Build(Scene{Elements: []domain.Element{
		el("t", domain.KindTable, domain.ShapeCircle, 10, 10, 40, 40),
		el("z", domain.KindZone, domain.ShapeRectangle, 0, 0, 200, 200),
	}})
	require.Len(t, cmds, 2)
	assert.Equal(t, "z", cmds[0].ElementID)
	assert.Equal(t, LayerZones, cmds[0].Layer)
	assert.Equal(t, "t", cmds[1].ElementID)
	assert.Equal(t, OpEllipse, cmds[1].Op)
	assert.Equal(t, 20.0, cmds[1].RX)
	assert.Equal(t, vector.Pt{X: 30, Y: 30}, cmds[1].Center)
}

func TestBuildHandles(t *testing.T) {
	elems := []domain.Element{
		el("t", domain.KindTable, domain.ShapeRectangle, 0, 0, 40, 40),
		el("z", domain.KindZone, domain.ShapeRectangle, 100, 100, 200, 200),
	}
	cmds := Build(Scene{Elements: elems, Selected: []string{"t", "z"}, Primary: "t", HandleSize: 8, RotateOffset: 24, Scale: 2})
	assert.Len(t, byLayer(cmds, LayerSelection), 2)
	hs := byLayer(cmds, LayerHandles)
	// 8 per element plus stem and knob for the primary
	require.Len(t, hs, 18)
	nw := hs[0]
	assert.Equal(t, "nw", nw.Text)
	assert.InDelta(t, -2.0, nw.Points[0].X, 1e-9, "handle size is divided by scale")
	assert.InDelta(t, 2.0, nw.Points[2].X, 1e-9)

	var knob *Command
	for i := range hs {
		if hs[i].Text == "rotate" {
			knob = &hs[i]
		}
	}
	require.NotNil(t, knob)
	assert.Equal(t, vector.Pt{X: 20, Y: -12}, knob.Center)

	cmds = Build(Scene{Elements: elems, Selected: []string{"z"}, Primary: "z", HandleSize: 8, RotateOffset: 24})
	assert.Len(t, byLayer(cmds, LayerHandles), 8, "zones have no rotate handle")
}

func TestBuildOverlays(t *testing.T) {
	box := vector.R(0, 0, 50, 30)
	cmds := Build(Scene{
		Guides:       []vector.GuideLine{{Orientation: vector.Vertical, Kind: vector.GuideEdge, Position: 10, From: vector.Pt{X: 10}, To: vector.Pt{X: 10, Y: 100}}},
		SelectionBox: &box,
		Grid:         20,
		Extent:       vector.R(0, 0, 100, 100),
	})
	assert.Len(t, byLayer(cmds, LayerGrid), 12)
	guides := byLayer(cmds, LayerGuides)
	require.Len(t, guides, 1)
	assert.False(t, guides[0].Paint.Stroke.Dashed)
	over := byLayer(cmds, LayerOverlay)
	require.Len(t, over, 1)
	assert.True(t, over[0].Closed)
	assert.Equal(t, vector.Pt{X: 50, Y: 30}, over[0].Points[2])
	assert.Equal(t, LayerOverlay, cmds[len(cmds)-1].Layer)
}

func TestLabels(t *testing.T) {
	tab := el("t", domain.KindTable, domain.ShapeRectangle, 0, 0, 40, 40)
	tab.Name, tab.Seats = "T1", 4
	assert.Equal(t, "T1 (4)", Label(tab))
	tab.Name = ""
	assert.Equal(t, "4", Label(tab))
	bar := el("b", domain.KindSpecialArea, domain.ShapeRectangle, 0, 0, 40, 40)
	bar.AreaType = domain.AreaBar
	assert.Equal(t, "bar", Label(bar))

	cmds := Build(Scene{Elements: []domain.Element{tab}, Labels: true})
	texts := byLayer(cmds, LayerLabels)
	require.Len(t, texts, 1)
	assert.Equal(t, vector.Pt{X: 20, Y: 20}, texts[0].Center)
}

func TestRegisterOverridesShape(t *testing.T) {
	prev := RendererFor(domain.ShapeTriangle)
	t.Cleanup(func() { Register(domain.ShapeTriangle, prev) })

	called := 0
	Register(domain.ShapeTriangle, ShapeRendererFunc(func(e domain.Element, p vector.Paint) []Command {
		called++
		return []Command{{Op: OpText, ElementID: e.ID, Text: "tri"}}
	}))
	cmds := Build(Scene{Elements: []domain.Element{el("x", domain.KindTable, domain.ShapeTriangle, 0, 0, 20, 20)}})
	assert.Equal(t, 1, called)
	require.Len(t, cmds, 1)
	assert.Equal(t, "tri", cmds[0].Text)

	fallback := RendererFor("hexagon").Render(el("h", domain.KindTable, "hexagon", 0, 0, 20, 20), vector.Paint{})
	require.Len(t, fallback, 1)
	assert.Len(t, fallback[0].Points, 4)
}

func TestThemeFill(t *testing.T) {
	th := DefaultTheme()
	e := el("t", domain.KindTable, domain.ShapeRectangle, 0, 0, 20, 20)
	assert.Equal(t, th.KindFill[domain.KindTable], th.FillFor(e))
	e.Color = "#ff0000"
	assert.Equal(t, vector.Color{R: 255, A: 255}, th.FillFor(e))
	z := el("z", domain.KindZone, domain.ShapeRectangle, 0, 0, 20, 20)
	assert.Equal(t, th.ZoneAlpha, th.FillFor(z).A)
}

func TestRasterizeFillsShape(t *testing.T) {
	red := el("t", domain.KindTable, domain.ShapeRectangle, 10, 10, 20, 20)
	red.Color = "#ff0000"
	img := Rasterize(Build(Scene{Elements: []domain.Element{red}}), RasterOptions{
		Width: 40, Height: 40, Background: vector.White, SkipText: true,
	})
	require.Equal(t, 40, img.Bounds().Dx())
	c := img.RGBAAt(20, 20)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(0), c.G)
	bg := img.RGBAAt(2, 2)
	assert.Equal(t, uint8(255), bg.G)

	empty := Rasterize(nil, RasterOptions{})
	assert.Equal(t, 0, empty.Bounds().Dx())
}

func TestViewTransformMatchesViewport(t *testing.T) {
	vp := viewport.New(800, 600)
	vp.ZoomAt(2, 100, 50)
	vp.PanBy(13, -7)
	m := ViewTransform(vp)
	for _, p := range []vector.Pt{{X: 0, Y: 0}, {X: 1000, Y: 1000}, {X: 37.5, Y: 1900}} {
		sx, sy := vp.CanvasToScreen(p.X, p.Y)
		got := m.Apply(p)
		assert.InDelta(t, sx, got.X, 1e-9)
		assert.InDelta(t, sy, got.Y, 1e-9)
	}
}

func TestFitTransform(t *testing.T) {
	m := FitTransform(vector.R(100, 100, 200, 100), 400, 400, 0)
	assert.Equal(t, vector.Pt{X: 200, Y: 200}, m.Apply(vector.Pt{X: 200, Y: 150}))
	assert.Equal(t, vector.Pt{X: 0, Y: 100}, m.Apply(vector.Pt{X: 100, Y: 100}))
	assert.Equal(t, vector.Identity, FitTransform(vector.Rect{}, 10, 10, 0))
}
