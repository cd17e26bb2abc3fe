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
	"math"

	"venueplan/internal/domain"
	"venueplan/internal/vector"
)

// Mode is the interaction state. Exactly one is active at a time.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeResizing
	ModeRotating
	ModeBoxSelecting
	ModePanning
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDragging:
		return "dragging"
	case ModeResizing:
		return "resizing"
	case ModeRotating:
		return "rotating"
	case ModeBoxSelecting:
		return "boxSelecting"
	case ModePanning:
		return "panning"
	}
	return "unknown"
}

// gesture is the context of a non-idle state. Each implementation is created
// on entry, never mutated, and dropped on exit. Element-editing gestures keep
// the collection as it was at entry and derive every frame from it.
type gesture interface {
	mode() Mode
}

type dragGesture struct {
	start   domain.Collection
	origin  vector.Pt
	ids     []string
	primary string
	// collapseTo is selected alone when the press ends without movement.
	collapseTo string
}

type resizeGesture struct {
	start  domain.Collection
	origin vector.Pt
	elem   domain.Element
	handle vector.Handle
}

type rotateGesture struct {
	start         domain.Collection
	id            string
	center        vector.Pt
	startAngle    float64
	startRotation float64
}

type boxGesture struct {
	origin   vector.Pt
	additive bool
}

type panGesture struct {
	originX, originY     float64
	startPanX, startPanY float64
}

func (*dragGesture) mode() Mode   { return ModeDragging }
func (*resizeGesture) mode() Mode { return ModeResizing }
func (*rotateGesture) mode() Mode { return ModeRotating }
func (*boxGesture) mode() Mode    { return ModeBoxSelecting }
func (*panGesture) mode() Mode    { return ModePanning }

// apply moves every dragged element by the pointer delta from its start
// position. Grid snap and guides correct the primary and the same correction
// is applied to the rest so relative offsets stay exact.
func (g *dragGesture) apply(p vector.Pt, o Options) (domain.Collection, []vector.GuideLine) {
	dx, dy := p.X-g.origin.X, p.Y-g.origin.Y
	out := g.start.Clone()
	if !vector.Finite(dx, dy) {
		return out, nil
	}
	prim, ok := g.start.ByID(g.primary)
	if !ok {
		prim, _ = g.start.ByID(g.ids[0])
	}
	if o.GridSnap {
		dx = vector.SnapToGrid(prim.X+dx, o.GridSize) - prim.X
		dy = vector.SnapToGrid(prim.Y+dy, o.GridSize) - prim.Y
	}
	var guides []vector.GuideLine
	if o.Guides {
		moving := vector.BoundingBox(prim)
		moving.X += dx
		moving.Y += dy
		snapped, lines := vector.ComputeSmartGuides(moving, anchors(g.start, g.ids), vector.SnapOptions{
			Threshold: o.GuideThreshold, SnapToEdges: true, SnapToCenters: true,
		})
		dx += snapped.X - moving.X
		dy += snapped.Y - moving.Y
		guides = lines
	}
	moved := make(map[string]struct{}, len(g.ids))
	for _, id := range g.ids {
		moved[id] = struct{}{}
	}
	for i := range out {
		if _, ok := moved[out[i].ID]; ok {
			out[i].X += dx
			out[i].Y += dy
		}
	}
	vector.AttachZones(out, zoneTargets(out, g.ids))
	return out, guides
}

// apply resizes the element in its local frame so the opposite edges stay
// fixed on the canvas, even for rotated elements.
func (g *resizeGesture) apply(p vector.Pt, mods Modifiers, o Options) domain.Collection {
	out := g.start.Clone()
	e := g.elem
	h := g.handle
	d := vector.Rotate(-vector.Deg2Rad(e.Rotation)).Apply(vector.Pt{X: p.X - g.origin.X, Y: p.Y - g.origin.Y})
	if !vector.Finite(d.X, d.Y) {
		return out
	}
	l, t, r, b := 0.0, 0.0, e.Width, e.Height
	if h.Left() {
		l += d.X
	}
	if h.Right() {
		r += d.X
	}
	if h.Top() {
		t += d.Y
	}
	if h.Bottom() {
		b += d.Y
	}
	if o.GridSnap && e.Rotation == 0 {
		gs := o.GridSize
		if h.Left() {
			l = vector.SnapToGrid(e.X+l, gs) - e.X
		}
		if h.Right() {
			r = vector.SnapToGrid(e.X+r, gs) - e.X
		}
		if h.Top() {
			t = vector.SnapToGrid(e.Y+t, gs) - e.Y
		}
		if h.Bottom() {
			b = vector.SnapToGrid(e.Y+b, gs) - e.Y
		}
	}
	square := e.Shape == domain.ShapeSquare
	switch {
	case h.Corner() && (mods.Shift || square):
		s := math.Max((r-l)/e.Width, (b-t)/e.Height)
		w, hh := e.Width*s, e.Height*s
		if h.Left() {
			l = r - w
		} else {
			r = l + w
		}
		if h.Top() {
			t = b - hh
		} else {
			b = t + hh
		}
	case square && (h.Left() || h.Right()):
		b = t + (r - l)
	case square:
		r = l + (b - t)
	}
	if r-l < domain.MinSize {
		if h.Left() {
			l = r - domain.MinSize
		} else {
			r = l + domain.MinSize
		}
	}
	if b-t < domain.MinSize {
		if h.Top() {
			t = b - domain.MinSize
		} else {
			b = t + domain.MinSize
		}
	}
	c := vector.ElementTransform(e).Apply(vector.Pt{X: (l + r) / 2, Y: (t + b) / 2})
	ne := e
	ne.Width, ne.Height = r-l, b-t
	ne.X, ne.Y = c.X-ne.Width/2, c.Y-ne.Height/2
	if !vector.Finite(ne.X, ne.Y, ne.Width, ne.Height) {
		return out
	}
	if i := out.Index(e.ID); i >= 0 {
		out[i] = ne.Normalize()
	}
	vector.AttachZones(out, zoneTargets(out, []string{e.ID}))
	return out
}

// apply adds the pointer's angular delta around the element center to the
// start rotation. Shift snaps to RotateSnapDegrees.
func (g *rotateGesture) apply(p vector.Pt, mods Modifiers, o Options) domain.Collection {
	out := g.start.Clone()
	i := out.Index(g.id)
	if i < 0 {
		return out
	}
	dx, dy := p.X-g.center.X, p.Y-g.center.Y
	if !vector.Finite(dx, dy) || (dx == 0 && dy == 0) {
		return out
	}
	rot := g.startRotation + vector.Rad2Deg(math.Atan2(dy, dx)-g.startAngle)
	if mods.Shift && o.RotateSnapDegrees > 0 {
		rot = math.Round(rot/o.RotateSnapDegrees) * o.RotateSnapDegrees
	}
	out[i].Rotation = domain.NormalizeDegrees(rot)
	return out
}

func anchors(c domain.Collection, exclude []string) []vector.Anchor {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	out := make([]vector.Anchor, 0, len(c))
	for _, e := range c {
		if _, ok := skip[e.ID]; ok {
			continue
		}
		out = append(out, vector.Anchor{ID: e.ID, Rect: vector.BoundingBox(e), Weight: 1})
	}
	return out
}

// zoneTargets returns the ids whose zone membership must be recomputed after
// ids changed geometry. A changed zone affects every zoneable element (nil).
func zoneTargets(c domain.Collection, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		e, ok := c.ByID(id)
		if !ok {
			continue
		}
		if e.Kind == domain.KindZone {
			return nil
		}
		if e.Kind.Zoneable() {
			out = append(out, id)
		}
	}
	return out
}
