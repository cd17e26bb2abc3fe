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
	"context"
	"errors"
	"fmt"
	"log/slog"

	"venueplan/internal/bulk"
	"venueplan/internal/domain"
	"venueplan/internal/notify"
	"venueplan/internal/vector"
)

// ErrBusy is returned by commands issued while a gesture is active.
var ErrBusy = errors.New("editor: gesture in progress")

func (c *Controller) selected() domain.Collection {
	ids := c.sel.IDs()
	out := make(domain.Collection, 0, len(ids))
	for _, id := range ids {
		if e, ok := c.elems.ByID(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// restore installs a state from history without recording a new one.
func (c *Controller) restore(state domain.Collection, op string) {
	c.elems = state
	c.sel.Prune(c.elems)
	if c.saver != nil {
		c.saver.Schedule(c.elems)
	}
	c.log.Debug(op, slog.Int("elements", len(c.elems)))
	c.frames.Request()
}

// Undo restores the previous committed state. It is ignored mid-gesture.
func (c *Controller) Undo() bool {
	if c.active != nil {
		return false
	}
	state, ok := c.history.Undo()
	if !ok {
		return false
	}
	c.restore(state, "undo")
	return true
}

// Redo restores the next committed state. It is ignored mid-gesture.
func (c *Controller) Redo() bool {
	if c.active != nil {
		return false
	}
	state, ok := c.history.Redo()
	if !ok {
		return false
	}
	c.restore(state, "redo")
	return true
}

// Copy puts the selected elements on the clipboard.
func (c *Controller) Copy() bool {
	sel := c.selected()
	if len(sel) == 0 {
		return false
	}
	c.clip.Copy(sel)
	return true
}

// Paste inserts offset copies of the clipboard and selects them.
func (c *Controller) Paste() bool {
	if c.active != nil {
		return false
	}
	elems, ok := c.clip.Paste()
	if !ok {
		return false
	}
	c.insert(elems, "paste")
	return true
}

// Duplicate inserts offset copies of the selection without touching the clipboard.
func (c *Controller) Duplicate() bool {
	if c.active != nil {
		return false
	}
	dup := c.clip.Duplicate(c.selected())
	if len(dup) == 0 {
		return false
	}
	c.insert(dup, "duplicate")
	return true
}

func (c *Controller) insert(elems []domain.Element, op string) {
	ids := make([]string, len(elems))
	for i := range elems {
		elems[i] = elems[i].Normalize()
		ids[i] = elems[i].ID
	}
	c.elems = append(c.elems, elems...)
	vector.AttachZones(c.elems, zoneTargets(c.elems, ids))
	c.sel.Set(ids...)
	c.commit(op)
}

// AddElement places a new element centered at (x, y) in canvas units, attaches
// it to the zone it lands in and selects it.
func (c *Controller) AddElement(kind domain.Kind, shape domain.Shape, x, y float64) (domain.Element, error) {
	if c.active != nil {
		return domain.Element{}, ErrBusy
	}
	if !kind.Valid() {
		return domain.Element{}, fmt.Errorf("cannot place element of kind %q", kind)
	}
	if !vector.Finite(x, y) {
		return domain.Element{}, fmt.Errorf("invalid position %v,%v", x, y)
	}
	e := domain.NewElement(kind, shape, 0, 0)
	e.X, e.Y = x-e.Width/2, y-e.Height/2
	c.insert([]domain.Element{e}, "add")
	e, _ = c.elems.ByID(e.ID)
	return e.Clone(), nil
}

// UpdateElement applies fn to a copy of the element with id, normalizes the
// result and commits it when anything changed. The id cannot be changed and
// an invalid kind is ignored. Changing the kind recomputes zone membership
// for the whole collection.
func (c *Controller) UpdateElement(id string, fn func(*domain.Element)) bool {
	if c.active != nil {
		return false
	}
	i := c.elems.Index(id)
	if i < 0 {
		return false
	}
	before := c.elems.Clone()
	e := c.elems[i].Clone()
	kind := e.Kind
	fn(&e)
	e.ID = id
	if !e.Kind.Valid() {
		e.Kind = kind
	}
	if !e.Kind.Zoneable() {
		e.ZoneID = ""
	}
	c.elems[i] = e.Normalize()
	targets := zoneTargets(c.elems, []string{id})
	if e.Kind != kind {
		// gaining or losing zone status changes every membership
		targets = nil
	}
	vector.AttachZones(c.elems, targets)
	return c.commitIfChanged(before, "update")
}

// DeleteSelection removes the selected elements. Elements that referenced a
// deleted zone get their membership recomputed.
func (c *Controller) DeleteSelection() bool {
	if c.active != nil || c.sel.Empty() {
		return false
	}
	ids := c.sel.IDs()
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	c.elems = c.elems.Without(ids)
	var orphans []string
	for _, e := range c.elems {
		if _, ok := gone[e.ZoneID]; ok && e.ZoneID != "" {
			orphans = append(orphans, e.ID)
		}
	}
	if len(orphans) > 0 {
		vector.AttachZones(c.elems, orphans)
	}
	c.sel.Clear()
	c.commit("delete")
	return true
}

// SelectAll selects every element.
func (c *Controller) SelectAll() {
	c.sel.SelectAll(c.elems)
	c.frames.Request()
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.sel.Clear()
	c.frames.Request()
}

// Select replaces the selection with ids that exist in the collection.
func (c *Controller) Select(ids ...string) {
	c.sel.Set(ids...)
	c.sel.Prune(c.elems)
	c.frames.Request()
}

// Nudge moves the selection by (dx, dy) canvas units.
func (c *Controller) Nudge(dx, dy float64) bool {
	if c.active != nil || c.sel.Empty() || !vector.Finite(dx, dy) || (dx == 0 && dy == 0) {
		return false
	}
	ids := c.sel.IDs()
	for _, id := range ids {
		if i := c.elems.Index(id); i >= 0 {
			c.elems[i].X += dx
			c.elems[i].Y += dy
		}
	}
	vector.AttachZones(c.elems, zoneTargets(c.elems, ids))
	c.commit("nudge")
	return true
}

// Align aligns the selection. Validation errors are notified and leave the
// collection untouched.
func (c *Controller) Align(a bulk.Alignment) error {
	return c.bulk("align", func(boxes []bulk.Box) ([]bulk.Box, error) { return bulk.Align(boxes, a) })
}

// Distribute spaces the selection evenly along axis.
func (c *Controller) Distribute(axis bulk.Axis) error {
	return c.bulk("distribute", func(boxes []bulk.Box) ([]bulk.Box, error) { return bulk.Distribute(boxes, axis) })
}

// MatchSize gives the selection the size of the first selected element, or
// target when non-nil.
func (c *Controller) MatchSize(target *bulk.Size) error {
	return c.bulk("match size", func(boxes []bulk.Box) ([]bulk.Box, error) { return bulk.MatchSize(boxes, target) })
}

func (c *Controller) bulk(op string, fn func([]bulk.Box) ([]bulk.Box, error)) error {
	if c.active != nil {
		return ErrBusy
	}
	sel := c.selected()
	boxes := make([]bulk.Box, len(sel))
	for i, e := range sel {
		boxes[i] = bulk.BoxOf(e)
	}
	out, err := fn(boxes)
	if err != nil {
		c.notify.Notify(notify.Error, err.Error())
		c.log.Info("bulk operation rejected", slog.String("op", op), slog.Any("err", err))
		return err
	}
	changed := bulk.Apply(c.elems, out)
	if len(changed) == 0 {
		return nil
	}
	vector.AttachZones(c.elems, zoneTargets(c.elems, changed))
	c.commit(op)
	return nil
}

// Save persists the current collection immediately, bypassing the debounce.
func (c *Controller) Save(ctx context.Context) error {
	if c.saver == nil {
		return ErrNoPersister
	}
	return c.saver.Save(ctx, c.elems)
}

// ZoomIn and ZoomOut step the zoom around the viewport center.
func (c *Controller) ZoomIn()  { c.zoomStep(1.2) }
func (c *Controller) ZoomOut() { c.zoomStep(1 / 1.2) }

func (c *Controller) zoomStep(f float64) {
	c.vp.ZoomBy(f, c.vp.Width/2, c.vp.Height/2)
	c.frames.Request()
}

// ResetView restores zoom 1 without pan.
func (c *Controller) ResetView() {
	c.vp.Reset()
	c.frames.Request()
}

// FitToContent zooms so every element is visible.
func (c *Controller) FitToContent(margin float64) {
	c.vp.Fit(vector.Bounds(c.elems), margin)
	c.frames.Request()
}

func (c *Controller) ToggleGrid() bool {
	c.opts.GridSnap = !c.opts.GridSnap
	c.frames.Request()
	return c.opts.GridSnap
}

func (c *Controller) ToggleGuides() bool {
	c.opts.Guides = !c.opts.Guides
	c.frames.Request()
	return c.opts.Guides
}
