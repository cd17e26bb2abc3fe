/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package vector

import "venueplan/internal/domain"

// Handle identifies a selection handle. Resize handles sit on the corners and
// edge midpoints of the element box; the rotate handle floats above the top edge.
type Handle int

const (
	HandleNone Handle = iota
	HandleNW
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
	HandleRotate
)

// ResizeHandles lists the eight resize handles in hit-test order.
var ResizeHandles = [...]Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}

var handleNames = map[Handle]string{
	HandleNone: "none", HandleNW: "nw", HandleN: "n", HandleNE: "ne", HandleE: "e",
	HandleSE: "se", HandleS: "s", HandleSW: "sw", HandleW: "w", HandleRotate: "rotate",
}

func (h Handle) String() string {
	if s, ok := handleNames[h]; ok {
		return s
	}
	return "unknown"
}

// ParseHandle maps "nw", "se", ... back to a Handle.
func ParseHandle(s string) Handle {
	for h, name := range handleNames {
		if name == s {
			return h
		}
	}
	return HandleNone
}

// Corner reports whether h changes both dimensions.
func (h Handle) Corner() bool {
	return h == HandleNW || h == HandleNE || h == HandleSE || h == HandleSW
}

// Left, Right, Top and Bottom report which box edges h moves.
func (h Handle) Left() bool   { return h == HandleNW || h == HandleW || h == HandleSW }
func (h Handle) Right() bool  { return h == HandleNE || h == HandleE || h == HandleSE }
func (h Handle) Top() bool    { return h == HandleNW || h == HandleN || h == HandleNE }
func (h Handle) Bottom() bool { return h == HandleSW || h == HandleS || h == HandleSE }

// LocalPos returns the handle position in the element's local frame.
// rotateOffset is the distance of the rotate handle above the top edge.
func (h Handle) LocalPos(w, hgt, rotateOffset float64) Pt {
	switch h {
	case HandleNW:
		return Pt{0, 0}
	case HandleN:
		return Pt{w / 2, 0}
	case HandleNE:
		return Pt{w, 0}
	case HandleE:
		return Pt{w, hgt / 2}
	case HandleSE:
		return Pt{w, hgt}
	case HandleS:
		return Pt{w / 2, hgt}
	case HandleSW:
		return Pt{0, hgt}
	case HandleW:
		return Pt{0, hgt / 2}
	case HandleRotate:
		return Pt{w / 2, -rotateOffset}
	}
	return Pt{w / 2, hgt / 2}
}

// HandlePos returns the handle position on the canvas, following the element rotation.
func HandlePos(e domain.Element, h Handle, rotateOffset float64) Pt {
	return ElementTransform(e).Apply(h.LocalPos(e.Width, e.Height, rotateOffset))
}

// HitHandle reports whether p is within radius of handle h on e. Distances are
// measured in the element's local frame so handles rotate with the element.
func HitHandle(e domain.Element, h Handle, p Pt, radius, rotateOffset float64) bool {
	if !Finite(p.X, p.Y) {
		return false
	}
	q := ToLocal(e, p)
	c := h.LocalPos(e.Width, e.Height, rotateOffset)
	dx, dy := q.X-c.X, q.Y-c.Y
	if h == HandleRotate {
		return dx*dx+dy*dy <= radius*radius
	}
	return dx >= -radius && dx <= radius && dy >= -radius && dy <= radius
}
