/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package bulk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venueplan/internal/domain"
)

func TestAlignLeft(t *testing.T) {
	in := []Box{{ID: "a", X: 30, Y: 1, W: 10, H: 10}, {ID: "b", X: 10, Y: 2, W: 20, H: 10}, {ID: "c", X: 50, Y: 3, W: 5, H: 10}}
	out, err := Align(in, AlignLeft)
	require.NoError(t, err)
	for i, b := range out {
		assert.Equal(t, 10.0, b.X)
		assert.Equal(t, in[i].Y, b.Y, "y must be unchanged")
	}
	assert.Equal(t, 30.0, in[0].X, "input must not be modified")
}

func TestAlignRightCenterBottomMiddle(t *testing.T) {
	in := []Box{{ID: "a", X: 0, Y: 0, W: 10, H: 10}, {ID: "b", X: 50, Y: 40, W: 30, H: 20}}

	out, err := Align(in, AlignRight)
	require.NoError(t, err)
	assert.Equal(t, 70.0, out[0].X)
	assert.Equal(t, 50.0, out[1].X)

	out, err = Align(in, AlignCenter)
	require.NoError(t, err)
	// centers 5 and 65, mean 35
	assert.Equal(t, 30.0, out[0].X)
	assert.Equal(t, 20.0, out[1].X)

	out, err = Align(in, AlignBottom)
	require.NoError(t, err)
	assert.Equal(t, 50.0, out[0].Y)
	assert.Equal(t, 40.0, out[1].Y)

	out, err = Align(in, AlignMiddle)
	require.NoError(t, err)
	// centers 5 and 50, mean 27.5
	assert.Equal(t, 22.5, out[0].Y)
	assert.Equal(t, 17.5, out[1].Y)

	out, err = Align(in, AlignTop)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[1].Y)
}

func TestDistributeHorizontal(t *testing.T) {
	in := []Box{{ID: "c", X: 100, W: 10, H: 10}, {ID: "a", X: 0, W: 10, H: 10}, {ID: "b", X: 30, W: 10, H: 10}}
	out, err := Distribute(in, Horizontal)
	require.NoError(t, err)
	// first center 5, last center 105, midpoint 55
	assert.Equal(t, 100.0, out[0].X)
	assert.Equal(t, 0.0, out[1].X)
	assert.Equal(t, 50.0, out[2].X)
	assert.Equal(t, 55.0, out[2].X+out[2].W/2)
}

func TestDistributeVertical(t *testing.T) {
	in := []Box{{ID: "a", Y: 0, W: 10, H: 20}, {ID: "b", Y: 10, W: 10, H: 40}, {ID: "c", Y: 200, W: 10, H: 20}, {ID: "d", Y: 50, W: 10, H: 20}}
	out, err := Distribute(in, Vertical)
	require.NoError(t, err)
	// centers 10 .. 210 in steps of 200/3
	assert.InDelta(t, 10+200.0/3, out[1].Y+out[1].H/2, 1e-9)
	assert.InDelta(t, 10+400.0/3, out[3].Y+out[3].H/2, 1e-9)
	assert.Equal(t, 200.0, out[2].Y)
}

func TestTooFewElements(t *testing.T) {
	_, err := Align([]Box{{ID: "a"}}, AlignLeft)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooFewElements))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 2, ve.Need)

	_, err = Distribute([]Box{{ID: "a"}, {ID: "b"}}, Horizontal)
	assert.ErrorIs(t, err, ErrTooFewElements)

	_, err = MatchSize(nil, nil)
	assert.ErrorIs(t, err, ErrTooFewElements)
}

func TestMatchSize(t *testing.T) {
	in := []Box{{ID: "a", X: 5, W: 80, H: 40}, {ID: "b", X: 9, W: 20, H: 20}}
	out, err := MatchSize(in, nil)
	require.NoError(t, err)
	assert.Equal(t, Box{ID: "b", X: 9, W: 80, H: 40}, out[1])

	out, err = MatchSize(in, &Size{W: 10, H: 30})
	require.NoError(t, err)
	assert.Equal(t, 20.0, out[0].W, "clamped to the minimum size")
	assert.Equal(t, 30.0, out[0].H)

	_, err = MatchSize(in, &Size{W: -1, H: 5})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTooFewElements)
}

func TestApplyWritesBack(t *testing.T) {
	c := domain.Collection{
		{ID: "a", Kind: domain.KindTable, Shape: domain.ShapeRectangle, X: 30, Width: 40, Height: 40},
		{ID: "b", Kind: domain.KindTable, Shape: domain.ShapeRectangle, X: 10, Width: 40, Height: 40},
	}
	boxes := []Box{BoxOf(c[0]), BoxOf(c[1])}
	out, err := Align(boxes, AlignLeft)
	require.NoError(t, err)
	changed := Apply(c, out)
	assert.Equal(t, []string{"a"}, changed)
	assert.Equal(t, 10.0, c[0].X)
}
