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

// Smart guides and snapping for dragged elements. UI-agnostic and deterministic
// so they can be unit tested and reused by the renderer.

import "math"

const (
	Vertical   = "vertical"
	Horizontal = "horizontal"

	GuideEdge   = "edge"
	GuideCenter = "center"

	// DefaultGuideThreshold is the snap distance in canvas logical units.
	DefaultGuideThreshold = 5
)

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance at which snapping occurs.
	Threshold     float64
	SnapToEdges   bool
	SnapToCenters bool
}

// DefaultSnapOptions snaps to edges and centers within DefaultGuideThreshold.
func DefaultSnapOptions() SnapOptions {
	return SnapOptions{Threshold: DefaultGuideThreshold, SnapToEdges: true, SnapToCenters: true}
}

// Anchor is a stationary reference rect, usually a non-dragged element.
// Weight biases selection when distances tie (higher = preferred); 0 counts as 1.
type Anchor struct {
	ID     string
	Rect   Rect
	Weight float64
}

// GuideLine describes a visual guide generated during a snap alignment.
// Position is the x (vertical) or y (horizontal) coordinate of the guide,
// rounded to 3 decimal places. SourceIDs lists the anchors aligned on it.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
	SourceIDs   []string
}

type axisBest struct {
	delta float64
	dist  float64
	score float64
	guide GuideLine
}

// ComputeSmartGuides computes snapping adjustments for a moving rectangle
// against a set of anchors. It returns the snapped rectangle and the guide
// lines to render. Snapping happens independently in X and Y.
func ComputeSmartGuides(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultGuideThreshold
	}
	if !Finite(moving.X, moving.Y, moving.W, moving.H) {
		return moving, nil
	}
	bx := axisBest{dist: math.Inf(1), score: math.Inf(1)}
	by := axisBest{dist: math.Inf(1), score: math.Inf(1)}

	mxL, mxR, mxT, mxB := moving.X, moving.X+moving.W, moving.Y, moving.Y+moving.H
	mxCX, mxCY := moving.X+moving.W/2, moving.Y+moving.H/2

	for _, a := range anchors {
		axL, axR, axT, axB := a.Rect.X, a.Rect.X+a.Rect.W, a.Rect.Y, a.Rect.Y+a.Rect.H
		axCX, axCY := a.Rect.X+a.Rect.W/2, a.Rect.Y+a.Rect.H/2

		if opts.SnapToEdges {
			consider(&bx, mxL-axL, opts.Threshold, a, guideForVertical(axL, moving, a.Rect, GuideEdge))
			consider(&bx, mxR-axR, opts.Threshold, a, guideForVertical(axR, moving, a.Rect, GuideEdge))
			consider(&bx, mxL-axR, opts.Threshold, a, guideForVertical(axR, moving, a.Rect, GuideEdge))
			consider(&bx, mxR-axL, opts.Threshold, a, guideForVertical(axL, moving, a.Rect, GuideEdge))

			consider(&by, mxT-axT, opts.Threshold, a, guideForHorizontal(axT, moving, a.Rect, GuideEdge))
			consider(&by, mxB-axB, opts.Threshold, a, guideForHorizontal(axB, moving, a.Rect, GuideEdge))
			consider(&by, mxT-axB, opts.Threshold, a, guideForHorizontal(axB, moving, a.Rect, GuideEdge))
			consider(&by, mxB-axT, opts.Threshold, a, guideForHorizontal(axT, moving, a.Rect, GuideEdge))
		}
		if opts.SnapToCenters {
			consider(&bx, mxCX-axCX, opts.Threshold, a, guideForVertical(axCX, moving, a.Rect, GuideCenter))
			consider(&by, mxCY-axCY, opts.Threshold, a, guideForHorizontal(axCY, moving, a.Rect, GuideCenter))
		}
	}

	snapped := moving
	var guides []GuideLine
	if bx.dist <= opts.Threshold {
		snapped.X = FloatRound(moving.X-bx.delta, 3)
		guides = append(guides, bx.guide)
	}
	if by.dist <= opts.Threshold {
		snapped.Y = FloatRound(moving.Y-by.delta, 3)
		guides = append(guides, by.guide)
	}
	return snapped, guides
}

func consider(best *axisBest, delta, threshold float64, a Anchor, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / math.Max(1, a.Weight)
	switch {
	case score < best.score:
		g.SourceIDs = appendID(nil, a.ID)
		best.delta, best.dist, best.score, best.guide = delta, dist, score, g
	case score == best.score && g.Position == best.guide.Position && g.Orientation == best.guide.Orientation:
		// another anchor on the same line; extend the guide to cover it
		best.guide.SourceIDs = appendID(best.guide.SourceIDs, a.ID)
		if g.Orientation == Vertical {
			best.guide.From.Y = math.Min(best.guide.From.Y, g.From.Y)
			best.guide.To.Y = math.Max(best.guide.To.Y, g.To.Y)
		} else {
			best.guide.From.X = math.Min(best.guide.From.X, g.From.X)
			best.guide.To.X = math.Max(best.guide.To.X, g.To.X)
		}
	}
}

func appendID(ids []string, id string) []string {
	if id == "" {
		return ids
	}
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}

func guideForVertical(x float64, a Rect, b Rect, kind string) GuideLine {
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Y+a.H, b.Y+b.H)
	x = FloatRound(x, 3)
	return GuideLine{
		Orientation: Vertical,
		Kind:        kind,
		Position:    x,
		From:        Pt{x, minY},
		To:          Pt{x, maxY},
	}
}

func guideForHorizontal(y float64, a Rect, b Rect, kind string) GuideLine {
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.X+a.W, b.X+b.W)
	y = FloatRound(y, 3)
	return GuideLine{
		Orientation: Horizontal,
		Kind:        kind,
		Position:    y,
		From:        Pt{minX, y},
		To:          Pt{maxX, y},
	}
}
