/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"venueplan/internal/clipboard"
	"venueplan/internal/undo"
	"venueplan/internal/vector"
	"venueplan/internal/viewport"
)

// Options tunes the controller. Zero fields take the defaults from DefaultOptions.
type Options struct {
	GridSize       float64
	GridSnap       bool
	Guides         bool
	GuideThreshold float64
	HistoryDepth   int
	PasteOffset    float64
	// NudgeStep and NudgeStepLarge are the arrow key steps without and with Shift.
	NudgeStep      float64
	NudgeStepLarge float64
	// HandleSize and RotateHandleOffset are in screen pixels.
	HandleSize         float64
	RotateHandleOffset float64
	// RotateSnapDegrees is the Shift-rotate increment.
	RotateSnapDegrees float64
	CanvasWidth       float64
	CanvasHeight      float64
	ZoomMin, ZoomMax  float64
}

func DefaultOptions() Options {
	return Options{
		GridSize:           20,
		Guides:             true,
		GuideThreshold:     vector.DefaultGuideThreshold,
		HistoryDepth:       undo.DefaultMaxDepth,
		PasteOffset:        clipboard.DefaultOffset,
		NudgeStep:          1,
		NudgeStepLarge:     10,
		HandleSize:         8,
		RotateHandleOffset: 24,
		RotateSnapDegrees:  15,
		CanvasWidth:        viewport.DefaultExtent,
		CanvasHeight:       viewport.DefaultExtent,
		ZoomMin:            viewport.DefaultMinZoom,
		ZoomMax:            viewport.DefaultMaxZoom,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.GridSize <= 0 {
		o.GridSize = d.GridSize
	}
	if o.GuideThreshold <= 0 {
		o.GuideThreshold = d.GuideThreshold
	}
	if o.HistoryDepth <= 0 {
		o.HistoryDepth = d.HistoryDepth
	}
	if o.PasteOffset <= 0 {
		o.PasteOffset = d.PasteOffset
	}
	if o.NudgeStep <= 0 {
		o.NudgeStep = d.NudgeStep
	}
	if o.NudgeStepLarge <= 0 {
		o.NudgeStepLarge = d.NudgeStepLarge
	}
	if o.HandleSize <= 0 {
		o.HandleSize = d.HandleSize
	}
	if o.RotateHandleOffset <= 0 {
		o.RotateHandleOffset = d.RotateHandleOffset
	}
	if o.RotateSnapDegrees <= 0 {
		o.RotateSnapDegrees = d.RotateSnapDegrees
	}
	if o.CanvasWidth <= 0 {
		o.CanvasWidth = d.CanvasWidth
	}
	if o.CanvasHeight <= 0 {
		o.CanvasHeight = d.CanvasHeight
	}
	if o.ZoomMin <= 0 {
		o.ZoomMin = d.ZoomMin
	}
	if o.ZoomMax < o.ZoomMin {
		o.ZoomMax = d.ZoomMax
	}
	return o
}
