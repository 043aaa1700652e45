package graph

import (
	"fmt"
	"math"

	"github.com/chazu/archway/pkg/fill"
)

// ---------------------------------------------------------------------------
// Tier 2: Geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateWallDimensions(g)...)
	errs = append(errs, validateDoorRanges(g)...)
	warnings = append(warnings, validateOpeningFit(g)...)

	return errs, warnings
}

// validateWallDimensions checks that every wall has a positive width and
// height.
func validateWallDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Walls() {
		wd, ok := node.Data.(WallData)
		if !ok {
			continue
		}
		if wd.Width <= 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("wall width is %.4f, must be positive", wd.Width),
				Severity: SeverityError,
			})
		}
		if wd.Height <= 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("wall height is %.4f, must be positive", wd.Height),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateDoorRanges rejects parameters no construction can use.
func validateDoorRanges(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Doors() {
		dd, ok := node.Data.(DoorData)
		if !ok {
			continue
		}
		check := func(bad bool, format string, args ...any) {
			if bad {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf(format, args...),
					Severity: SeverityError,
				})
			}
		}
		check(dd.Array < 0, "array count %d is negative", dd.Array)
		check(dd.FrameThickness < 0, "frame thickness %.4f is negative", dd.FrameThickness)
		check(dd.FrameDepth < 0, "frame depth %.4f is negative", dd.FrameDepth)
		check(dd.DoorDepth < 0, "door depth %.4f is negative", dd.DoorDepth)
		check(dd.Arch.Resolution < 0, "arch resolution %d is negative", dd.Arch.Resolution)
	}

	return errs
}

// validateOpeningFit predicts, per door and wall, the openings the build
// will skip or fail on. Each column of the wall gets the same opening:
// Size.Y of the column width by Size.X of the wall height, centred on the
// column before the offset is applied. Opening the floor stretches it down
// to the bottom of the wall, so the frame sees a height of top.
func validateOpeningFit(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning
	const eps = 1e-6

	for _, node := range g.Doors() {
		dd, ok := node.Data.(DoorData)
		if !ok {
			continue
		}
		warn := func(format string, args ...any) {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf(format, args...),
			})
		}

		if dd.Size.X <= 0 || dd.Size.Y <= 0 {
			warn("size %gx%g is not positive; every opening will be skipped", dd.Size.X, dd.Size.Y)
			continue
		}

		for _, wid := range dd.Walls {
			wn := g.Nodes[wid]
			if wn == nil {
				continue // dangling references handled by Tier 1
			}
			wd, ok := wn.Data.(WallData)
			if !ok || wd.Width <= 0 || wd.Height <= 0 {
				continue
			}

			colW := wd.Width / float64(max(dd.Array, 1))
			w, h := colW*dd.Size.Y, wd.Height*dd.Size.X
			bottom := (wd.Height-h)/2 + dd.Offset.Y
			top := bottom + h
			if math.Abs(dd.Offset.X)+w/2 > colW/2+eps || bottom < -eps || top > wd.Height+eps {
				warn("opening %.4gx%.4g does not fit wall %q; its openings will be skipped", w, h, wn.Name)
				continue
			}
			if dd.FrameThickness > 0 && dd.FrameThickness >= w/3 {
				warn("frame thickness %.4g leaves no opening between the mullions of %q (opening width %.4g)",
					dd.FrameThickness, wn.Name, w)
			}
			if dd.FrameThickness >= top {
				warn("frame thickness %.4g is not below the opening height %.4g in %q",
					dd.FrameThickness, top, wn.Name)
			}
			if dd.Arch.Resolution > 0 && top+dd.Arch.Height > wd.Height+eps {
				warn("arch apex at %.4g rises above the top of %q (%.4g)",
					top+dd.Arch.Height, wn.Name, wd.Height)
			}
		}
	}

	return warnings
}

// ---------------------------------------------------------------------------
// Tier 3: Fill warnings
// ---------------------------------------------------------------------------

// validateFill warns about fill settings the build will ignore.
func validateFill(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Doors() {
		dd, ok := node.Data.(DoorData)
		if !ok {
			continue
		}
		switch dd.Fill {
		case fill.None:
			if len(dd.FillOptions) > 0 {
				warnings = append(warnings, ValidationWarning{
					NodeID:  node.ID,
					Message: fmt.Sprintf("fill options %v are ignored without a fill type", dd.FillOptions),
				})
			}
		case fill.Panels, fill.GlassPanes, fill.Louver:
		default:
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("unknown fill type %s; no fill will be generated", dd.Fill),
			})
		}
	}

	return warnings
}
