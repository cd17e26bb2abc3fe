/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"venueplan/internal/domain"
	"venueplan/internal/vector"
)

// hitRotateHandle returns the primary element id when p is on its rotate
// handle. Zones have no rotate handle.
func (c *Controller) hitRotateHandle(p vector.Pt) string {
	id := c.sel.Primary()
	if id == "" {
		return ""
	}
	e, ok := c.elems.ByID(id)
	if !ok || e.Kind == domain.KindZone {
		return ""
	}
	if vector.HitHandle(e, vector.HandleRotate, p, c.HandleRadius()*1.5, c.RotateHandleOffset()) {
		return id
	}
	return ""
}

// hitResizeHandle checks the handles of selected elements, primary first.
func (c *Controller) hitResizeHandle(p vector.Pt) (string, vector.Handle) {
	ids := c.sel.IDs()
	if prim := c.sel.Primary(); prim != "" {
		ordered := []string{prim}
		for _, id := range ids {
			if id != prim {
				ordered = append(ordered, id)
			}
		}
		ids = ordered
	}
	r := c.HandleRadius()
	for _, id := range ids {
		e, ok := c.elems.ByID(id)
		if !ok {
			continue
		}
		for _, h := range vector.ResizeHandles {
			if vector.HitHandle(e, h, p, r, 0) {
				return id, h
			}
		}
	}
	return "", vector.HandleNone
}

// hitElement returns the top-most element under p. Non-zones paint above
// zones and later elements above earlier ones.
func (c *Controller) hitElement(p vector.Pt) string {
	order := c.elems.RenderOrder()
	for i := len(order) - 1; i >= 0; i-- {
		e := c.elems[order[i]]
		if vector.HitTest(e, p) {
			return e.ID
		}
	}
	return ""
}

// HitTest returns the id of the element under the screen point, or "".
func (c *Controller) HitTest(sx, sy float64) string {
	p, ok := c.canvasPoint(PointerEvent{X: sx, Y: sy})
	if !ok {
		return ""
	}
	return c.hitElement(p)
}
