/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package clipboard holds copied elements and produces fresh copies of them.
package clipboard

import (
	"sync"

	"venueplan/internal/domain"
)

// DefaultOffset is the per-paste displacement in canvas units.
const DefaultOffset = 20

// Manager is an in-memory copy buffer. Pasted and duplicated elements always
// get new ids and are shifted so they never sit exactly on their source.
type Manager struct {
	mu     sync.Mutex
	buf    domain.Collection
	pastes int
	offset float64
	newID  func() string
}

// New returns a manager shifting copies by offset units (DefaultOffset when <= 0).
func New(offset float64) *Manager {
	if offset <= 0 {
		offset = DefaultOffset
	}
	return &Manager{offset: offset, newID: domain.NewID}
}

// Copy stores a deep copy of elems and restarts the paste offset sequence.
// Copying nothing leaves the buffer unchanged.
func (m *Manager) Copy(elems []domain.Element) {
	if len(elems) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf = domain.Collection(elems).Clone()
	m.pastes = 0
}

// Paste returns fresh copies of the buffer offset by n*offset for the n-th
// paste since the last Copy. ok is false when the buffer is empty.
func (m *Manager) Paste() ([]domain.Element, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.buf) == 0 {
		return nil, false
	}
	m.pastes++
	return m.fresh(m.buf, float64(m.pastes)*m.offset), true
}

// Duplicate returns offset copies of elems without touching the buffer.
func (m *Manager) Duplicate(elems []domain.Element) []domain.Element {
	if len(elems) == 0 {
		return nil
	}
	return m.fresh(elems, m.offset)
}

// HasData reports whether Paste would return elements.
func (m *Manager) HasData() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buf) > 0
}

// Clear empties the buffer.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf = nil
	m.pastes = 0
}

func (m *Manager) fresh(src []domain.Element, d float64) []domain.Element {
	out := domain.Collection(src).Clone()
	for i := range out {
		out[i].ID = m.newID()
		out[i].X += d
		out[i].Y += d
		// zone membership is recomputed by the caller after placement
		out[i].ZoneID = ""
	}
	return out
}
