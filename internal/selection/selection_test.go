/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"venueplan/internal/domain"
	"venueplan/internal/vector"
)

func box(id string, x, y, w, h float64) domain.Element {
	return domain.Element{ID: id, Kind: domain.KindTable, X: x, Y: y, Width: w, Height: h}
}

func TestClickReplacesAndToggles(t *testing.T) {
	var m Model
	m.Click("a", false)
	m.Click("b", true)
	assert.Equal(t, []string{"a", "b"}, m.IDs())
	assert.Equal(t, "b", m.Primary())

	assert.False(t, m.Click("b", true))
	assert.Equal(t, "a", m.Primary())
	assert.False(t, m.Click("a", true))
	assert.True(t, m.Empty())
	assert.Equal(t, "", m.Primary(), "removing the last member clears the primary")

	m.Set("x", "y")
	m.Click("z", false)
	assert.Equal(t, []string{"z"}, m.IDs())
}

func TestClickEmpty(t *testing.T) {
	var m Model
	m.Set("a", "b")
	m.ClickEmpty(true)
	assert.Equal(t, 2, m.Len())
	m.ClickEmpty(false)
	assert.True(t, m.Empty())
}

func TestBoxSelectionUsesCenters(t *testing.T) {
	elems := []domain.Element{
		box("out", 90, 90, 40, 40), // center (110,110)
		box("in", 60, 60, 40, 40),  // center (80,80)
	}
	r := vector.RectFromPoints(vector.Pt{X: 0, Y: 0}, vector.Pt{X: 100, Y: 100})
	assert.Equal(t, []string{"in"}, CentersInside(r, elems))

	var m Model
	m.Set("other")
	m.ApplyBox(r, elems, false)
	assert.Equal(t, []string{"in"}, m.IDs())

	m.Set("other")
	m.ApplyBox(r, elems, true)
	assert.Equal(t, []string{"other", "in"}, m.IDs())
}

func TestBoxSelectionWithoutMatches(t *testing.T) {
	elems := []domain.Element{box("a", 500, 500, 40, 40)}
	empty := vector.R(0, 0, 10, 10)

	var m Model
	m.Set("a")
	m.ApplyBox(empty, elems, true)
	assert.Equal(t, []string{"a"}, m.IDs(), "modifier keeps the selection")
	m.ApplyBox(empty, elems, false)
	assert.True(t, m.Empty())
}

func TestPruneDropsMissing(t *testing.T) {
	var m Model
	m.Set("a", "gone")
	m.Prune([]domain.Element{box("a", 0, 0, 20, 20)})
	assert.Equal(t, []string{"a"}, m.IDs())
	assert.Equal(t, "a", m.Primary())
}
