package meshutil

import (
	"fmt"
	"math"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/archway/pkg/kernel"
	"github.com/chazu/archway/pkg/kernel/bmesh"
)

// ArcEdge bends e into an arc in the plane of a face with the given
// normal. resolution points are inserted at t = i/(resolution+1) from the
// left end; each is lifted along the face's up axis by height·sin(πt) and
// pushed along its right axis by offset·sin(πt). The endpoints stay put.
// It returns the inserted vertices left to right; resolution <= 0 leaves
// the edge alone.
func ArcEdge(k kernel.Kernel, e *bmesh.Edge, normal v3.Vec, resolution int, height, offset float64) ([]*bmesh.Vert, error) {
	if resolution <= 0 {
		return nil, nil
	}
	right, up := FaceAxes(normal)
	ends := e.Verts()
	g, err := k.SubdivideEdges([]*bmesh.Edge{e}, resolution)
	if err != nil {
		return nil, fmt.Errorf("arc %s: %w", e, err)
	}
	verts := FilterGeom[*bmesh.Vert](g)
	if ends[0].Co.Dot(right) > ends[1].Co.Dot(right) {
		slices.Reverse(verts)
	}
	for i, v := range verts {
		t := float64(i+1) / float64(resolution+1)
		s := math.Sin(math.Pi * t)
		k.Translate([]*bmesh.Vert{v}, up.MulScalar(height*s).Add(right.MulScalar(offset*s)))
	}
	return verts, nil
}
