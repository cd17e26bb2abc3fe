/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"

	"venueplan/internal/domain"
)

// DefaultMaxDepth is the number of states kept when Config.MaxDepth is unset.
const DefaultMaxDepth = 50

// Entry is an immutable deep copy of the element collection at one point in time.
type Entry struct {
	Elements domain.Collection
	TS       time.Time
}

// Config controls the history depth.
type Config struct {
	// MaxDepth caps the number of stored states; the oldest are dropped first.
	MaxDepth int
}

// History is a bounded undo/redo list of full collection states with a cursor
// at the current state. Every stored and returned collection is a deep copy.
// It is safe for concurrent use.
type History struct {
	cfg     Config
	mu      sync.Mutex
	entries []Entry
	cursor  int
	now     func() time.Time
}

func NewHistory(cfg Config) *History {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return &History{cfg: cfg, cursor: -1, now: time.Now}
}

// Reset drops all states and records initial as the baseline.
func (h *History) Reset(initial domain.Collection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = []Entry{{Elements: initial.Clone(), TS: h.now()}}
	h.cursor = 0
}

// Push records a committed state. Any redo branch beyond the cursor is discarded.
func (h *History) Push(c domain.Collection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor+1 < len(h.entries) {
		h.entries = h.entries[:h.cursor+1]
	}
	h.entries = append(h.entries, Entry{Elements: c.Clone(), TS: h.now()})
	h.cursor = len(h.entries) - 1
	h.enforceCapLocked()
}

// Undo moves the cursor back and returns a copy of that state. ok is false at
// the oldest state.
func (h *History) Undo() (domain.Collection, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor <= 0 {
		return nil, false
	}
	h.cursor--
	return h.entries[h.cursor].Elements.Clone(), true
}

// Redo moves the cursor forward and returns a copy of that state. ok is false
// when there is nothing to redo.
func (h *History) Redo() (domain.Collection, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor < 0 || h.cursor+1 >= len(h.entries) {
		return nil, false
	}
	h.cursor++
	return h.entries[h.cursor].Elements.Clone(), true
}

// Current returns a copy of the state at the cursor.
func (h *History) Current() (domain.Collection, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor < 0 {
		return nil, false
	}
	return h.entries[h.cursor].Elements.Clone(), true
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor >= 0 && h.cursor+1 < len(h.entries)
}

// Len returns the number of stored states.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Stats returns current sizes for diagnostics.
func (h *History) Stats() (states int, cursor int, elements int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		elements += len(e.Elements)
	}
	return len(h.entries), h.cursor, elements
}

func (h *History) enforceCapLocked() {
	if over := len(h.entries) - h.cfg.MaxDepth; over > 0 {
		h.entries = append([]Entry{}, h.entries[over:]...)
		h.cursor -= over
		if h.cursor < 0 {
			h.cursor = 0
		}
	}
}
