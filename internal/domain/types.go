/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the floor-plan data model. Element is the unit of placement on the
// canvas; Plan is the persisted document scoped to a venue and an optional line
// (a recurring event series). JSON field names are camelCase to stay compatible with
// plans written by the web editor.

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates element variants.
type Kind string

const (
	KindTable       Kind = "table"
	KindZone        Kind = "zone"
	KindSpecialArea Kind = "specialArea"
	KindSecurity    Kind = "security"
	// KindLine is reserved and never produced by the editor.
	KindLine Kind = "line"
)

// Valid reports whether k is a placeable kind.
func (k Kind) Valid() bool {
	switch k {
	case KindTable, KindZone, KindSpecialArea, KindSecurity:
		return true
	}
	return false
}

// Zoneable reports whether elements of this kind are auto-attached to zones.
func (k Kind) Zoneable() bool { return k == KindTable || k == KindSecurity }

// Shape selects the outline used for hit testing and rendering.
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeSquare    Shape = "square"
	ShapeCircle    Shape = "circle"
	ShapeTriangle  Shape = "triangle"
	ShapePolygon   Shape = "polygon"
)

// AreaType classifies special areas.
type AreaType string

const (
	AreaBar      AreaType = "bar"
	AreaKitchen  AreaType = "kitchen"
	AreaEntrance AreaType = "entrance"
	AreaStage    AreaType = "stage"
	AreaRestroom AreaType = "restroom"
	AreaOther    AreaType = "other"
)

// Point is a polygon vertex in percent (0..100) of the element's own box.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is a placed, positioned, resizable, rotatable unit on the canvas.
// X and Y are the top-left corner of the unrotated box in canvas logical units;
// rotation is applied around the box center.
type Element struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"type"`
	Name     string  `json:"name,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Shape    Shape   `json:"shape"`
	Points   []Point `json:"points,omitempty"`
	Color    string  `json:"color,omitempty"`
	Icon     string  `json:"icon,omitempty"`

	// table
	Seats  int    `json:"seats,omitempty"`
	Notes  string `json:"notes,omitempty"`
	ZoneID string `json:"zoneId,omitempty"`
	// zone
	Description string `json:"description,omitempty"`
	// specialArea
	AreaType AreaType `json:"areaType,omitempty"`
}

// Center returns the center of the element's box.
func (e Element) Center() (float64, float64) {
	return e.X + e.Width/2, e.Y + e.Height/2
}

// Plan is the persisted floor plan for a venue, optionally scoped to a line.
type Plan struct {
	VenueID      string    `json:"venueId"`
	LineID       string    `json:"lineId,omitempty"`
	Name         string    `json:"name"`
	CanvasWidth  float64   `json:"canvasWidth"`
	CanvasHeight float64   `json:"canvasHeight"`
	Elements     []Element `json:"elements"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewID returns a fresh element identifier.
func NewID() string { return uuid.NewString() }

// NewElement builds an element of the given kind with sensible defaults at (x, y).
func NewElement(kind Kind, shape Shape, x, y float64) Element {
	e := Element{ID: NewID(), Kind: kind, Shape: shape, X: x, Y: y}
	switch kind {
	case KindZone:
		e.Width, e.Height = 300, 200
		e.Color = "#e0f2fe"
	case KindSpecialArea:
		e.Width, e.Height = 120, 80
		e.AreaType = AreaOther
		e.Color = "#fef3c7"
	case KindSecurity:
		e.Width, e.Height = 40, 40
		e.Color = "#fecaca"
	default:
		e.Width, e.Height = 60, 60
		e.Seats = 4
		e.Color = "#d1fae5"
	}
	if shape == ShapePolygon {
		e.Points = []Point{{50, 0}, {100, 100}, {0, 100}}
	}
	return e.Normalize()
}
