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

	"venueplan/internal/domain"
	"venueplan/internal/editor"
	"venueplan/internal/vector"
)

// SceneOf captures the current frame of an editing session.
func SceneOf(c *editor.Controller, th *Theme) Scene {
	o := c.Options()
	vp := c.Viewport()
	s := Scene{
		Elements:     c.Elements(),
		Selected:     c.Selection(),
		Primary:      c.Primary(),
		Guides:       c.Guides(),
		Scale:        vp.Zoom,
		HandleSize:   o.HandleSize,
		RotateOffset: o.RotateHandleOffset,
		Extent:       vector.R(0, 0, o.CanvasWidth, o.CanvasHeight),
		Labels:       true,
		Theme:        th,
	}
	if o.GridSnap {
		s.Grid = o.GridSize
	}
	if box, ok := c.SelectionBox(); ok {
		s.SelectionBox = &box
	}
	return s
}

// Frame rasterizes the controller's view at the viewport size.
func Frame(c *editor.Controller, th *Theme) *image.RGBA {
	vp := c.Viewport()
	t := DefaultTheme()
	if th != nil {
		t = *th
	}
	return Rasterize(Build(SceneOf(c, &t)), RasterOptions{
		Width:      int(vp.Width),
		Height:     int(vp.Height),
		Transform:  ViewTransform(vp),
		Background: t.Background,
	})
}

// PlanScene is a static scene of a stored plan without selection overlays.
func PlanScene(p domain.Plan, th *Theme) Scene {
	return Scene{Elements: p.Elements, Labels: true, Theme: th}
}
