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

import (
	"math"
	"testing"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestRectFromPointsNormalizes(t *testing.T) {
	r := RectFromPoints(Pt{100, 80}, Pt{20, 10})
	if r != R(20, 10, 80, 70) {
		t.Fatalf("unexpected rect: %+v", r)
	}
}

func TestUnionIgnoresEmpty(t *testing.T) {
	var empty Rect
	r := empty.Union(R(5, 5, 10, 10)).Union(R(0, 20, 5, 5))
	if r != R(0, 5, 15, 20) {
		t.Fatalf("unexpected union: %+v", r)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
}

func TestAffineInvertRoundTrip(t *testing.T) {
	m := RotateAbout(33, Pt{50, 40}).Mul(Scale(2, 0.5))
	inv, ok := m.Invert()
	if !ok {
		t.Fatalf("expected invertible matrix")
	}
	p := Pt{17, -4}
	q := inv.Apply(m.Apply(p))
	if math.Abs(q.X-p.X) > 1e-9 || math.Abs(q.Y-p.Y) > 1e-9 {
		t.Fatalf("round trip drifted: %+v -> %+v", p, q)
	}
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Fatalf("singular matrix must not invert")
	}
}

func TestSnapToGrid(t *testing.T) {
	cases := []struct{ v, size, want float64 }{
		{29, 20, 20},
		{31, 20, 40},
		{-11, 20, -20},
		{13, 0, 13},
	}
	for _, c := range cases {
		if got := SnapToGrid(c.v, c.size); got != c.want {
			t.Fatalf("SnapToGrid(%v, %v) = %v, want %v", c.v, c.size, got, c.want)
		}
	}
	if got := SnapToGrid(math.NaN(), 20); !math.IsNaN(got) {
		t.Fatalf("NaN should pass through, got %v", got)
	}
}

func TestFloatRound(t *testing.T) {
	if got := FloatRound(1.23456, 3); got != 1.235 {
		t.Fatalf("FloatRound = %v", got)
	}
	if got := FloatRound(1.5, -1); got != 1.5 {
		t.Fatalf("negative places should be a no-op, got %v", got)
	}
}
