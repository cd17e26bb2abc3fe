/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venueplan/internal/domain"
)

func table(id string, x, y float64) domain.Element {
	return domain.Element{ID: id, Kind: domain.KindTable, Shape: domain.ShapeCircle, X: x, Y: y, Width: 40, Height: 40, ZoneID: "z1"}
}

func TestPasteTwiceNeverOverlaps(t *testing.T) {
	m := New(0)
	src := table("t1", 100, 100)
	m.Copy([]domain.Element{src})
	require.True(t, m.HasData())

	first, ok := m.Paste()
	require.True(t, ok)
	second, ok := m.Paste()
	require.True(t, ok)
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	assert.Equal(t, 120.0, first[0].X)
	assert.Equal(t, 120.0, first[0].Y)
	assert.Equal(t, 140.0, second[0].X)
	assert.Equal(t, 140.0, second[0].Y)
	assert.NotEqual(t, src.ID, first[0].ID)
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.Empty(t, first[0].ZoneID)
}

func TestCopyRestartsOffsets(t *testing.T) {
	m := New(10)
	m.Copy([]domain.Element{table("t1", 0, 0)})
	m.Paste()
	m.Paste()
	m.Copy([]domain.Element{table("t2", 0, 0)})
	got, _ := m.Paste()
	assert.Equal(t, 10.0, got[0].X)
}

func TestCopyIsDeep(t *testing.T) {
	m := New(0)
	src := []domain.Element{{ID: "p", Kind: domain.KindZone, Shape: domain.ShapePolygon, Width: 100, Height: 100,
		Points: []domain.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 50, Y: 100}}}}
	m.Copy(src)
	src[0].Points[0].X = 42
	got, _ := m.Paste()
	assert.Equal(t, 0.0, got[0].Points[0].X)
}

func TestDuplicateLeavesBufferAlone(t *testing.T) {
	m := New(0)
	assert.False(t, m.HasData())
	dup := m.Duplicate([]domain.Element{table("t1", 5, 5)})
	require.Len(t, dup, 1)
	assert.Equal(t, 25.0, dup[0].X)
	assert.False(t, m.HasData())
	_, ok := m.Paste()
	assert.False(t, ok)
}

func TestEmptyCopyKeepsBuffer(t *testing.T) {
	m := New(0)
	m.Copy([]domain.Element{table("t1", 0, 0)})
	m.Copy(nil)
	assert.True(t, m.HasData())
	m.Clear()
	assert.False(t, m.HasData())
}
