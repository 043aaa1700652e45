// Package export writes tessellated door meshes to files other tools can
// open: DXF for CAD, PNG for a quick flat elevation. STL lives with the
// sdfx adapter.
package export

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/archway/pkg/door"
	"github.com/chazu/archway/pkg/kernel"
)

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("no geometry to export")

// palette is used for parts without an assigned color.
var palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

var partColors = map[string]string{
	door.PartWall:   "#D9D4C7",
	door.PartFrame:  "#8B5A2B",
	door.PartReveal: "#6E6A60",
	door.PartDoor:   "#A0522D",
}

// Color returns the display color of a part as a hex string. Known parts
// have fixed colors; the rest cycle through the palette by index.
func Color(part string, i int) string {
	if c, ok := partColors[part]; ok {
		return c
	}
	return palette[i%len(palette)]
}

func checkMeshes(meshes []*kernel.Mesh) error {
	if lo.EveryBy(meshes, (*kernel.Mesh).IsEmpty) {
		return ErrEmpty
	}
	return nil
}

// triangles calls fn for every triangle of m.
func triangles(m *kernel.Mesh, fn func(tri [3]v3.Vec) error) error {
	for t := 0; t < m.TriangleCount(); t++ {
		if err := fn(m.Triangle(t)); err != nil {
			return fmt.Errorf("part %s triangle %d: %w", m.PartName, t, err)
		}
	}
	return nil
}
