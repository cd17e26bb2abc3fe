/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor is the interactive canvas state machine. It turns pointer,
// wheel and key events into new element collections, records one history
// state per completed gesture and schedules auto-save.
package editor

import (
	"errors"
	"log/slog"
	"math"

	"venueplan/internal/autosave"
	"venueplan/internal/clipboard"
	"venueplan/internal/domain"
	"venueplan/internal/notify"
	"venueplan/internal/selection"
	"venueplan/internal/undo"
	"venueplan/internal/vector"
	"venueplan/internal/viewport"
)

// ErrNoPersister is returned by Save when no auto-save scheduler is attached.
var ErrNoPersister = errors.New("editor: no persister configured")

// Deps are the collaborators of a controller. All fields are optional.
type Deps struct {
	Viewport *viewport.Viewport
	Saver    *autosave.Scheduler
	Notifier notify.Notifier
	Logger   *slog.Logger
}

// Controller owns the authoritative element collection of an editing session.
// It is driven from a single UI goroutine and is not safe for concurrent use.
type Controller struct {
	opts   Options
	vp     *viewport.Viewport
	saver  *autosave.Scheduler
	notify notify.Notifier
	log    *slog.Logger

	elems   domain.Collection
	sel     selection.Model
	history *undo.History
	clip    *clipboard.Manager
	frames  FrameScheduler

	active gesture
	cursor vector.Pt
	guides []vector.GuideLine
}

// New builds a controller with an empty collection.
func New(opts Options, deps Deps) *Controller {
	opts = opts.withDefaults()
	vp := deps.Viewport
	if vp == nil {
		vp = viewport.New(0, 0)
	}
	vp.ExtentW, vp.ExtentH = opts.CanvasWidth, opts.CanvasHeight
	vp.MinZoom, vp.MaxZoom = opts.ZoomMin, opts.ZoomMax
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	n := deps.Notifier
	if n == nil {
		n = notify.Log{L: logger}
	}
	c := &Controller{
		opts:    opts,
		vp:      vp,
		saver:   deps.Saver,
		notify:  n,
		log:     logger.With(slog.String("component", "editor")),
		history: undo.NewHistory(undo.Config{MaxDepth: opts.HistoryDepth}),
		clip:    clipboard.New(opts.PasteOffset),
	}
	c.history.Reset(nil)
	return c
}

// Load replaces the collection, resetting history, selection and any gesture.
// Elements are normalized; duplicate or empty ids get fresh ones.
func (c *Controller) Load(elems []domain.Element) {
	seen := make(map[string]struct{}, len(elems))
	out := make(domain.Collection, 0, len(elems))
	for _, e := range domain.Collection(elems).Clone() {
		if _, dup := seen[e.ID]; dup || e.ID == "" {
			e.ID = domain.NewID()
		}
		seen[e.ID] = struct{}{}
		out = append(out, e.Normalize())
	}
	c.elems = out
	c.active = nil
	c.guides = nil
	c.sel.Clear()
	c.history.Reset(c.elems)
	c.frames.Request()
	c.log.Debug("plan loaded", slog.Int("elements", len(out)))
}

// Elements returns a copy of the current collection.
func (c *Controller) Elements() domain.Collection { return c.elems.Clone() }

// Element returns a copy of the element with id.
func (c *Controller) Element(id string) (domain.Element, bool) {
	e, ok := c.elems.ByID(id)
	return e.Clone(), ok
}

func (c *Controller) Mode() Mode {
	if c.active == nil {
		return ModeIdle
	}
	return c.active.mode()
}

func (c *Controller) Selection() []string          { return c.sel.IDs() }
func (c *Controller) Primary() string              { return c.sel.Primary() }
func (c *Controller) Guides() []vector.GuideLine   { return append([]vector.GuideLine(nil), c.guides...) }
func (c *Controller) Viewport() *viewport.Viewport { return c.vp }
func (c *Controller) Frames() *FrameScheduler      { return &c.frames }
func (c *Controller) Options() Options             { return c.opts }
func (c *Controller) CanUndo() bool                { return c.active == nil && c.history.CanUndo() }
func (c *Controller) CanRedo() bool                { return c.active == nil && c.history.CanRedo() }
func (c *Controller) HasClipboard() bool           { return c.clip.HasData() }

// SelectionBox returns the rubber band in canvas units while box selecting.
func (c *Controller) SelectionBox() (vector.Rect, bool) {
	g, ok := c.active.(*boxGesture)
	if !ok {
		return vector.Rect{}, false
	}
	return vector.RectFromPoints(g.origin, c.cursor), true
}

// HandleRadius is the handle hit radius in canvas units at the current zoom.
func (c *Controller) HandleRadius() float64 {
	z := c.vp.Zoom
	if z <= 0 || !vector.Finite(z) {
		z = 1
	}
	return c.opts.HandleSize / 2 / z
}

// RotateHandleOffset is the rotate handle distance above the top edge in canvas units.
func (c *Controller) RotateHandleOffset() float64 {
	z := c.vp.Zoom
	if z <= 0 || !vector.Finite(z) {
		z = 1
	}
	return c.opts.RotateHandleOffset / z
}

func (c *Controller) canvasPoint(ev PointerEvent) (vector.Pt, bool) {
	if !c.vp.Valid() || !vector.Finite(ev.X, ev.Y) {
		return vector.Pt{}, false
	}
	x, y := c.vp.ScreenToCanvas(ev.X, ev.Y)
	if !vector.Finite(x, y) {
		return vector.Pt{}, false
	}
	return vector.Pt{X: x, Y: y}, true
}

// PointerDown classifies a press and enters the matching state.
func (c *Controller) PointerDown(ev PointerEvent) {
	if c.active != nil {
		// a release was lost; finish the old gesture before starting another
		c.Cancel()
	}
	p, ok := c.canvasPoint(ev)
	if !ok {
		return
	}
	c.cursor = p

	if ev.Button == ButtonMiddle || ev.Button == ButtonSecondary {
		c.startPan(ev)
		return
	}
	if id := c.hitRotateHandle(p); id != "" {
		e, _ := c.elems.ByID(id)
		cx, cy := e.Center()
		c.active = &rotateGesture{
			start:         c.elems.Clone(),
			id:            id,
			center:        vector.Pt{X: cx, Y: cy},
			startAngle:    math.Atan2(p.Y-cy, p.X-cx),
			startRotation: e.Rotation,
		}
		c.frames.Request()
		return
	}
	if id, h := c.hitResizeHandle(p); id != "" {
		e, _ := c.elems.ByID(id)
		c.sel.Add(id)
		c.active = &resizeGesture{start: c.elems.Clone(), origin: p, elem: e, handle: h}
		c.frames.Request()
		return
	}
	if id := c.hitElement(p); id != "" {
		c.startDrag(id, p, ev.Mods)
		return
	}
	if ev.Mods.Alt || ev.Mods.Space {
		c.startPan(ev)
		return
	}
	c.active = &boxGesture{origin: p, additive: ev.Mods.Additive()}
	c.frames.Request()
}

func (c *Controller) startPan(ev PointerEvent) {
	if !vector.Finite(ev.X, ev.Y) {
		return
	}
	c.active = &panGesture{originX: ev.X, originY: ev.Y, startPanX: c.vp.PanX, startPanY: c.vp.PanY}
}

func (c *Controller) startDrag(id string, p vector.Pt, mods Modifiers) {
	collapse := ""
	switch {
	case mods.Additive():
		if !c.sel.Click(id, true) {
			// toggled off: no drag
			c.frames.Request()
			return
		}
	case c.sel.Contains(id):
		// keep a multi-selection so it can be dragged together; a plain click
		// without movement narrows it on release
		c.sel.Add(id)
		if c.sel.Len() > 1 {
			collapse = id
		}
	default:
		c.sel.Click(id, false)
	}
	ids := c.sel.IDs()
	if len(ids) == 0 {
		ids = []string{id}
	}
	c.active = &dragGesture{start: c.elems.Clone(), origin: p, ids: ids, primary: id, collapseTo: collapse}
	c.frames.Request()
}

// PointerMove updates the active gesture from its start snapshot.
func (c *Controller) PointerMove(ev PointerEvent) {
	if c.active == nil {
		return
	}
	if g, ok := c.active.(*panGesture); ok {
		if !vector.Finite(ev.X, ev.Y) {
			return
		}
		c.vp.PanX = g.startPanX + ev.X - g.originX
		c.vp.PanY = g.startPanY + ev.Y - g.originY
		c.frames.Request()
		return
	}
	p, ok := c.canvasPoint(ev)
	if !ok {
		return
	}
	c.cursor = p
	switch g := c.active.(type) {
	case *dragGesture:
		c.elems, c.guides = g.apply(p, c.opts)
	case *resizeGesture:
		c.elems = g.apply(p, ev.Mods, c.opts)
	case *rotateGesture:
		c.elems = g.apply(p, ev.Mods, c.opts)
	}
	c.frames.Request()
}

// PointerUp applies the final position and returns to idle. One history state
// is recorded when the gesture changed the collection.
func (c *Controller) PointerUp(ev PointerEvent) {
	if c.active == nil {
		return
	}
	c.PointerMove(ev)
	c.finish(true)
}

// Cancel ends any gesture, e.g. on lost pointer capture or focus loss.
// Element gestures are committed as of their last applied frame; box selection
// and panning are discarded.
func (c *Controller) Cancel() {
	if c.active == nil {
		return
	}
	c.finish(false)
}

func (c *Controller) finish(released bool) {
	g := c.active
	c.active = nil
	c.guides = nil
	defer c.frames.Request()
	switch g := g.(type) {
	case *dragGesture:
		if !c.commitIfChanged(g.start, "drag") && released && g.collapseTo != "" {
			c.sel.Set(g.collapseTo)
		}
	case *resizeGesture:
		c.commitIfChanged(g.start, "resize")
	case *rotateGesture:
		c.commitIfChanged(g.start, "rotate")
	case *boxGesture:
		if released {
			c.sel.ApplyBox(vector.RectFromPoints(g.origin, c.cursor), c.elems, g.additive)
		}
	case *panGesture:
		if !released {
			c.vp.PanX, c.vp.PanY = g.startPanX, g.startPanY
		}
	}
}

func (c *Controller) commitIfChanged(before domain.Collection, op string) bool {
	if c.elems.Equal(before) {
		return false
	}
	c.commit(op)
	return true
}

// commit records the current collection in history and schedules auto-save.
func (c *Controller) commit(op string) {
	c.history.Push(c.elems)
	if c.saver != nil {
		c.saver.Schedule(c.elems)
	}
	c.log.Debug("commit", slog.String("op", op), slog.Int("elements", len(c.elems)), slog.Int("selected", c.sel.Len()))
	c.frames.Request()
}

// Wheel zooms around the pointer with the command modifier and pans otherwise.
func (c *Controller) Wheel(ev WheelEvent) {
	if !vector.Finite(ev.X, ev.Y, ev.DX, ev.DY) {
		return
	}
	if ev.Mods.Command() {
		if ev.DY == 0 {
			return
		}
		f := viewport.WheelZoomStep
		if ev.DY > 0 {
			f = 1 / f
		}
		c.vp.ZoomBy(f, ev.X, ev.Y)
	} else {
		c.vp.PanBy(-ev.DX, -ev.DY)
	}
	c.frames.Request()
}
