//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venueplan/internal/domain"
)

func TestInspectorFollowsUndoOnSameElement(t *testing.T) {
	pc := newCanvas(t, domain.Element{ID: "t1", Kind: domain.KindTable, Shape: domain.ShapeRectangle, Name: "A1", Seats: 4, Width: 60, Height: 60})
	in := newInspector(pc)
	pc.OnChange = in.refresh
	assert.True(t, in.name.Disabled())

	ctrl := pc.Controller()
	ctrl.Select("t1")
	pc.Redraw()
	require.Equal(t, "A1", in.name.Text)

	in.name.SetText("VIP")
	in.seats.SetText("8")
	in.commit()
	require.Equal(t, "VIP", mustName(t, pc))
	require.True(t, ctrl.Undo())
	pc.Redraw()
	assert.Equal(t, "A1", in.name.Text)
	assert.Equal(t, "4", in.seats.Text)

	// unrelated changes keep pending edits
	in.name.SetText("draft")
	require.True(t, ctrl.Nudge(10, 0))
	pc.Redraw()
	assert.Equal(t, "draft", in.name.Text)
}

func mustName(t *testing.T, pc *PlanCanvas) string {
	t.Helper()
	e, ok := pc.Controller().Element("t1")
	require.True(t, ok)
	return e.Name
}
