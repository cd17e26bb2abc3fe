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
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Styles and paint definitions.

type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// ParseHex parses #rgb, #rrggbb or #rrggbbaa. Anything else yields fallback.
func ParseHex(s string, fallback Color) Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6, 8:
	default:
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	if len(s) == 6 {
		return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
	}
	return Color{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}
}

// Hex formats the color as #rrggbb; alpha is dropped.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Opacity returns alpha in [0,1].
func (c Color) Opacity() float64 { return float64(c.A) / 255 }

// RGBA converts to a non-premultiplied image color.
func (c Color) RGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// WithAlpha returns c with alpha replaced.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}

type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

func (r FillRule) String() string {
	if r == EvenOdd {
		return "evenodd"
	}
	return "nonzero"
}

type Fill struct {
	Color   Color
	Rule    FillRule
	Enabled bool
}

// Stroke is an outline paint. Width is in the units of the path it strokes.
type Stroke struct {
	Color   Color
	Width   float64
	Dashed  bool
	Enabled bool
}

// Paint combines fill and stroke.
type Paint struct {
	Fill   Fill
	Stroke Stroke
}

// Filled returns a paint that fills with c and strokes with sc at width w.
func Filled(c, sc Color, w float64) Paint {
	return Paint{
		Fill:   Fill{Color: c, Enabled: c.A > 0},
		Stroke: Stroke{Color: sc, Width: w, Enabled: w > 0 && sc.A > 0},
	}
}

// Outlined returns a stroke-only paint.
func Outlined(sc Color, w float64, dashed bool) Paint {
	return Paint{Stroke: Stroke{Color: sc, Width: w, Dashed: dashed, Enabled: w > 0 && sc.A > 0}}
}
