package graph

import (
	"fmt"

	"github.com/chazu/archway/pkg/fill"
)

// Vec2 is a plain 2D vector.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a plain 3D vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ---------------------------------------------------------------------------
// Wall
// ---------------------------------------------------------------------------

// Facing is the direction a wall's outer side looks towards. Z is up.
type Facing int

const (
	FacingFront Facing = iota // -Y
	FacingBack                // +Y
	FacingLeft                // -X
	FacingRight               // +X
)

var facingNames = [...]string{"front", "back", "left", "right"}

func (f Facing) String() string {
	if f >= 0 && int(f) < len(facingNames) {
		return facingNames[f]
	}
	return fmt.Sprintf("Facing(%d)", int(f))
}

// ParseFacing maps a facing name to its value.
func ParseFacing(s string) (Facing, error) {
	for i, n := range facingNames {
		if n == s {
			return Facing(i), nil
		}
	}
	return 0, fmt.Errorf("invalid facing %q, expected front, back, left or right", s)
}

// Normal returns the outward unit normal.
func (f Facing) Normal() Vec3 {
	switch f {
	case FacingBack:
		return Vec3{Y: 1}
	case FacingLeft:
		return Vec3{X: -1}
	case FacingRight:
		return Vec3{X: 1}
	}
	return Vec3{Y: -1}
}

// WallData is a vertical rectangular face. Origin is its center.
type WallData struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Origin Vec3    `json:"origin"`
	Facing Facing  `json:"facing"`
}

func (WallData) nodeData() {}

// ---------------------------------------------------------------------------
// Door
// ---------------------------------------------------------------------------

// ArchData shapes the top of a door opening.
type ArchData struct {
	Resolution int     `json:"resolution"`
	Height     float64 `json:"height"`
	Offset     float64 `json:"offset"`
}

// DoorData holds the construction parameters of a door. Size is stored as
// (height, width) fractions of the column it is built into.
type DoorData struct {
	Walls          []NodeID     `json:"walls"`
	Array          int          `json:"array"`
	Size           Vec2         `json:"size"`
	Offset         Vec3         `json:"offset"`
	FrameThickness float64      `json:"frame_thickness"`
	FrameDepth     float64      `json:"frame_depth"`
	DoorDepth      float64      `json:"door_depth"`
	Arch           ArchData     `json:"arch"`
	Fill           fill.Type    `json:"fill"`
	FillOptions    fill.Options `json:"fill_options,omitempty"`
}

func (DoorData) nodeData() {}

// DefaultDoorData returns the values a door form starts from before its
// keywords are applied.
func DefaultDoorData() DoorData {
	return DoorData{
		Array:          1,
		Size:           Vec2{X: 0.8, Y: 0.5},
		FrameThickness: 0.1,
		FrameDepth:     0.1,
		DoorDepth:      0.05,
		Arch:           ArchData{Resolution: 8, Height: 0.2},
		Fill:           fill.None,
	}
}
