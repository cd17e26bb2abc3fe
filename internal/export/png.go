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
	"image"
	"image/png"
	"io"
	"os"

	"venueplan/internal/domain"
	"venueplan/internal/render"
	"venueplan/internal/vector"
)

// maxPixels bounds raster exports so a stray scale cannot exhaust memory.
const maxPixels = 64 << 20

// RenderPNG rasterizes p at opt.Scale pixels per canvas unit.
func RenderPNG(p domain.Plan, opt Options) (*image.RGBA, error) {
	cmds, area := frame(p, opt)
	s := opt.scale()
	w, h := pixelSize(area, s)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty export area")
	}
	if w*h > maxPixels {
		return nil, fmt.Errorf("export of %dx%d pixels exceeds limit", w, h)
	}
	th := render.DefaultTheme()
	if opt.Theme != nil {
		th = *opt.Theme
	}
	return render.Rasterize(cmds, render.RasterOptions{
		Width:      w,
		Height:     h,
		Transform:  vector.Scale(s, s).Mul(vector.Translate(-area.X, -area.Y)),
		Background: th.Background,
	}), nil
}

// WritePNG encodes the rasterized plan to w.
func WritePNG(w io.Writer, p domain.Plan, opt Options) error {
	img, err := RenderPNG(p, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportPNG writes the rasterized plan to path.
func ExportPNG(p domain.Plan, path string, opt Options) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := WritePNG(f, p, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}
