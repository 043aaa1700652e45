package door

import (
	"errors"
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/archway/pkg/fill"
)

// Array repeats the door side by side across the base face.
type Array struct {
	Count int
}

// SizeOffset places the rough opening inside a face. Size.Y is the width
// fraction and Size.X the height fraction. Offset.X and Offset.Y shift the
// opening right and up in face units; Offset.Z moves it along the normal.
type SizeOffset struct {
	Size   v2.Vec
	Offset v3.Vec
}

// Arch shapes the top of the opening. Resolution points are inserted on
// each arched edge; Height is the rise at the middle and Offset shifts the
// apex sideways.
type Arch struct {
	Resolution int
	Height     float64
	Offset     float64
}

// Params is everything one door construction reads. It is never modified
// during construction.
type Params struct {
	Array          Array
	SizeOffset     SizeOffset
	FrameThickness float64
	FrameDepth     float64
	DoorDepth      float64
	Arch           Arch

	FillType   fill.Type
	PanelFill  fill.Options
	GlassFill  fill.Options
	LouverFill fill.Options
}

// DefaultParams returns a single framed, arched door filling most of the
// face, with no fill.
func DefaultParams() Params {
	return Params{
		Array:          Array{Count: 1},
		SizeOffset:     SizeOffset{Size: v2.Vec{X: 0.8, Y: 0.5}},
		FrameThickness: 0.1,
		FrameDepth:     0.1,
		DoorDepth:      0.05,
		Arch:           Arch{Resolution: 8, Height: 0.2},
		FillType:       fill.None,
	}
}

// FillOptions returns the sub-configuration of the selected fill type.
func (p Params) FillOptions() fill.Options {
	switch p.FillType {
	case fill.Panels:
		return p.PanelFill
	case fill.GlassPanes:
		return p.GlassFill
	case fill.Louver:
		return p.LouverFill
	}
	return nil
}

// Validate reports every out-of-range field.
func (p Params) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(p.FrameThickness >= 0, "frame thickness %g is negative", p.FrameThickness)
	check(p.FrameDepth >= 0, "frame depth %g is negative", p.FrameDepth)
	check(p.DoorDepth >= 0, "door depth %g is negative", p.DoorDepth)
	check(p.Arch.Resolution >= 0, "arch resolution %d is negative", p.Arch.Resolution)
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("door params: %w", err)
	}
	return nil
}
