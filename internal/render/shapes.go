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
	"sync"

	"venueplan/internal/domain"
	"venueplan/internal/vector"
)

// ShapeRenderer turns one element into draw commands in canvas units.
// Implementations are registered per shape so new shapes need no changes in Build.
type ShapeRenderer interface {
	Render(e domain.Element, p vector.Paint) []Command
}

// ShapeRendererFunc adapts a function to ShapeRenderer.
type ShapeRendererFunc func(e domain.Element, p vector.Paint) []Command

func (f ShapeRendererFunc) Render(e domain.Element, p vector.Paint) []Command { return f(e, p) }

var (
	registryMu sync.RWMutex
	registry   = map[domain.Shape]ShapeRenderer{
		domain.ShapeRectangle: ShapeRendererFunc(renderOutline),
		domain.ShapeSquare:    ShapeRendererFunc(renderOutline),
		domain.ShapeTriangle:  ShapeRendererFunc(renderOutline),
		domain.ShapePolygon:   ShapeRendererFunc(renderOutline),
		domain.ShapeCircle:    ShapeRendererFunc(renderEllipse),
	}
)

// Register installs r for shape, replacing any previous renderer.
func Register(shape domain.Shape, r ShapeRenderer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[shape] = r
}

// RendererFor returns the renderer for shape, falling back to the rectangle renderer.
func RendererFor(shape domain.Shape) ShapeRenderer {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if r, ok := registry[shape]; ok {
		return r
	}
	return registry[domain.ShapeRectangle]
}

func renderOutline(e domain.Element, p vector.Paint) []Command {
	return []Command{{Op: OpPath, ElementID: e.ID, Points: vector.Outline(e), Closed: true, Paint: p}}
}

// renderEllipse emits a true ellipse for vector targets; Points carries a
// polygon approximation for raster targets.
func renderEllipse(e domain.Element, p vector.Paint) []Command {
	cx, cy := e.Center()
	return []Command{{
		Op:        OpEllipse,
		ElementID: e.ID,
		Points:    vector.Outline(e),
		Closed:    true,
		Center:    vector.Pt{X: cx, Y: cy},
		RX:        e.Width / 2,
		RY:        e.Height / 2,
		Rotation:  e.Rotation,
		Paint:     p,
	}}
}
