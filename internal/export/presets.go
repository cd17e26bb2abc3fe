/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"

	"venueplan/internal/domain"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export of one plan to several formats.
//
// Files are written as <OutDir>/<preset>/plan-<venue>[-<line>].<ext>.
type BatchOptions struct {
	Preset  PresetName
	Formats []Format // empty means preset defaults
	OutDir  string
	// Scale overrides the preset scale when > 0.
	Scale float64
	// Grid overrides the preset grid when set.
	Grid *float64
}

// BatchExport runs the exports of a preset and returns the written paths.
func BatchExport(p domain.Plan, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	o := presetOptions(opt.Preset)
	if opt.Scale > 0 {
		o.Scale = opt.Scale
	}
	if opt.Grid != nil {
		o.GridSize = *opt.Grid
	}
	preset := opt.Preset
	if preset == "" {
		preset = PresetWeb
	}
	base := filepath.Join(opt.OutDir, string(preset))

	var written []string
	for _, f := range formats {
		out := filepath.Join(base, FileName(p, f))
		if err := ToFile(f, p, out, o); err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, out)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []Format {
	switch p {
	case PresetPrint:
		return []Format{FormatPDF, FormatXLSX}
	default:
		return []Format{FormatPNG, FormatSVG}
	}
}

func presetOptions(p PresetName) Options {
	switch p {
	case PresetPrint:
		// A4 landscape is about 842pt wide; a 2000 unit canvas prints at roughly that width
		return Options{Scale: 0.42, Margin: 20, GridSize: 100}
	default:
		return Options{Scale: 1, Margin: 20}
	}
}
