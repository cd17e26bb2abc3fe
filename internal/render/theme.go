/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package render

import (
	"venueplan/internal/domain"
	"venueplan/internal/vector"
)

// Theme holds the colors and overlay sizes used to draw a plan.
// Overlay sizes are screen pixels; Build divides them by the scene scale.
type Theme struct {
	Background vector.Color
	Grid       vector.Color
	Outline    vector.Color
	Label      vector.Color
	Selection  vector.Color
	Handle     vector.Color
	Guide      vector.Color
	Box        vector.Color
	BoxFill    vector.Color

	KindFill map[domain.Kind]vector.Color
	// ZoneAlpha is applied to zone fills so tables stay visible beneath labels.
	ZoneAlpha uint8

	OutlineWidth   float64
	SelectionWidth float64
	GuideWidth     float64
	FontSize       float64
}

// DefaultTheme mirrors the web editor's palette.
func DefaultTheme() Theme {
	return Theme{
		Background: vector.White,
		Grid:       vector.Color{R: 229, G: 231, B: 235, A: 255},
		Outline:    vector.Color{R: 55, G: 65, B: 81, A: 255},
		Label:      vector.Color{R: 17, G: 24, B: 39, A: 255},
		Selection:  vector.Color{R: 37, G: 99, B: 235, A: 255},
		Handle:     vector.White,
		Guide:      vector.Color{R: 236, G: 72, B: 153, A: 255},
		Box:        vector.Color{R: 37, G: 99, B: 235, A: 255},
		BoxFill:    vector.Color{R: 37, G: 99, B: 235, A: 40},
		KindFill: map[domain.Kind]vector.Color{
			domain.KindTable:       {R: 209, G: 250, B: 229, A: 255},
			domain.KindZone:        {R: 224, G: 242, B: 254, A: 255},
			domain.KindSpecialArea: {R: 254, G: 243, B: 199, A: 255},
			domain.KindSecurity:    {R: 254, G: 202, B: 202, A: 255},
		},
		ZoneAlpha:      160,
		OutlineWidth:   1,
		SelectionWidth: 2,
		GuideWidth:     1,
		FontSize:       12,
	}
}

// FillFor resolves the fill of e: its own color when parseable, else the kind default.
func (t Theme) FillFor(e domain.Element) vector.Color {
	def, ok := t.KindFill[e.Kind]
	if !ok {
		def = vector.Color{R: 243, G: 244, B: 246, A: 255}
	}
	c := vector.ParseHex(e.Color, def)
	if e.Kind == domain.KindZone && t.ZoneAlpha > 0 {
		c.A = t.ZoneAlpha
	}
	return c
}
