// Package fill routes a finished door face to one of the decorative fill
// generators. The generators themselves live outside this module; they are
// supplied through Fillers.
package fill

import (
	"fmt"

	"github.com/chazu/archway/pkg/kernel"
	"github.com/chazu/archway/pkg/kernel/bmesh"
)

// Type selects the decorative fill of a door face.
type Type int

const (
	None Type = iota
	Panels
	GlassPanes
	Louver
)

var typeNames = map[Type]string{
	None:       "none",
	Panels:     "panels",
	GlassPanes: "glass-panes",
	Louver:     "louver",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a fill name ("none", "panels", "glass-panes", "louver")
// to its Type. Underscores and spaces are accepted in place of the hyphen.
func ParseType(s string) (Type, error) {
	switch s {
	case "none", "":
		return None, nil
	case "panels":
		return Panels, nil
	case "glass-panes", "glass_panes", "glass panes":
		return GlassPanes, nil
	case "louver":
		return Louver, nil
	}
	return None, fmt.Errorf("fill: unknown fill type %q", s)
}

// Options are generator-specific settings, passed through untouched.
type Options map[string]float64

// Filler adds decorative sub-geometry inside a face.
type Filler interface {
	Fill(k kernel.Kernel, face *bmesh.Face, opts Options) error
}

// FillerFunc adapts a function to the Filler interface.
type FillerFunc func(k kernel.Kernel, face *bmesh.Face, opts Options) error

func (f FillerFunc) Fill(k kernel.Kernel, face *bmesh.Face, opts Options) error {
	return f(k, face, opts)
}

// Fillers holds one optional generator per fill type.
type Fillers struct {
	Panels     Filler
	GlassPanes Filler
	Louver     Filler
}

func (fs Fillers) lookup(t Type) Filler {
	switch t {
	case Panels:
		return fs.Panels
	case GlassPanes:
		return fs.GlassPanes
	case Louver:
		return fs.Louver
	}
	return nil
}

// Dispatch runs the generator registered for t on face. An unknown type, None,
// or a missing generator leaves the face bare.
func Dispatch(k kernel.Kernel, face *bmesh.Face, t Type, fillers Fillers, opts Options) error {
	f := fillers.lookup(t)
	if f == nil {
		return nil
	}
	if err := f.Fill(k, face, opts); err != nil {
		return fmt.Errorf("fill %s: %w", t, err)
	}
	return nil
}
