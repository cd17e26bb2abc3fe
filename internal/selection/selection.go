/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package selection tracks the selected element ids of an editing session.
package selection

import (
	"slices"

	"venueplan/internal/domain"
	"venueplan/internal/vector"
)

// Model holds a primary id for single-target operations and an ordered set of
// selected ids for multi-target ones. The primary is always a member of the set
// or empty. The zero value is an empty selection.
type Model struct {
	primary string
	ids     []string
}

// Primary returns the primary id or "".
func (m *Model) Primary() string { return m.primary }

// IDs returns a copy of the selected ids in selection order.
func (m *Model) IDs() []string { return slices.Clone(m.ids) }

func (m *Model) Len() int { return len(m.ids) }

func (m *Model) Empty() bool { return len(m.ids) == 0 }

func (m *Model) Contains(id string) bool { return slices.Contains(m.ids, id) }

// Set replaces the selection. The last id becomes primary.
func (m *Model) Set(ids ...string) {
	m.ids = m.ids[:0]
	m.primary = ""
	for _, id := range ids {
		m.Add(id)
	}
}

// Add appends id (if absent) and makes it primary.
func (m *Model) Add(id string) {
	if id == "" {
		return
	}
	if !m.Contains(id) {
		m.ids = append(m.ids, id)
	}
	m.primary = id
}

// Remove drops id. Removing the primary promotes the last remaining member.
func (m *Model) Remove(id string) {
	i := slices.Index(m.ids, id)
	if i < 0 {
		return
	}
	m.ids = slices.Delete(m.ids, i, i+1)
	if m.primary == id {
		m.primary = ""
		if n := len(m.ids); n > 0 {
			m.primary = m.ids[n-1]
		}
	}
}

func (m *Model) Clear() {
	m.ids = nil
	m.primary = ""
}

// Click applies a press on element id. Without modifier the selection becomes
// exactly {id}; with modifier membership is toggled. It reports whether id is
// selected afterwards.
func (m *Model) Click(id string, modifier bool) bool {
	if !modifier {
		m.Set(id)
		return true
	}
	if m.Contains(id) {
		m.Remove(id)
		return false
	}
	m.Add(id)
	return true
}

// ClickEmpty applies a press on empty canvas: without modifier the selection
// is cleared.
func (m *Model) ClickEmpty(modifier bool) {
	if !modifier {
		m.Clear()
	}
}

// SelectAll selects every element in collection order.
func (m *Model) SelectAll(elems []domain.Element) {
	ids := make([]string, len(elems))
	for i, e := range elems {
		ids[i] = e.ID
	}
	m.Set(ids...)
}

// Prune drops ids that no longer exist in elems.
func (m *Model) Prune(elems []domain.Element) {
	for _, id := range m.IDs() {
		if domain.Collection(elems).Index(id) < 0 {
			m.Remove(id)
		}
	}
}

// CentersInside returns the ids of elements whose center lies within r
// (inclusive), in collection order.
func CentersInside(r vector.Rect, elems []domain.Element) []string {
	var out []string
	for _, e := range elems {
		cx, cy := e.Center()
		if r.Contains(vector.Pt{X: cx, Y: cy}) {
			out = append(out, e.ID)
		}
	}
	return out
}

// ApplyBox finishes a rubber-band selection. Matches replace the selection, or
// extend it when modifier is held. No matches clear the selection unless a
// modifier was held.
func (m *Model) ApplyBox(r vector.Rect, elems []domain.Element, modifier bool) {
	hits := CentersInside(r, elems)
	switch {
	case len(hits) == 0 && modifier:
	case len(hits) == 0:
		m.Clear()
	case modifier:
		for _, id := range hits {
			m.Add(id)
		}
	default:
		m.Set(hits...)
	}
}
