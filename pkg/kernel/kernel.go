// Package kernel defines the boundary-mesh kernel contract the door
// construction is written against, and the triangle Mesh it is exported
// as. The bmesh package implements it; manifold wraps any implementation
// with invariant checks.
package kernel

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/archway/pkg/kernel/bmesh"
)

// Kernel is the set of primitive mesh edits the construction relies on.
// Every structure-changing call returns the geometry it produced; handles
// obtained before such a call must not be reused unless they came back in
// its result.
type Kernel interface {
	// Topology edits
	DissolveEdges(edges []*bmesh.Edge, useVerts bool) ([]*bmesh.Face, error)
	SubdivideEdges(edges []*bmesh.Edge, cuts int) (bmesh.Geom, error)
	SplitEdge(e *bmesh.Edge, v *bmesh.Vert, fac float64) (*bmesh.Vert, error)
	ConnectVerts(verts []*bmesh.Vert) (bmesh.Geom, error)
	ExtrudeDiscreteFaces(faces []*bmesh.Face) (bmesh.ExtrudeResult, error)
	PointMerge(verts []*bmesh.Vert, co v3.Vec) (*bmesh.Vert, error)
	DeleteFaces(faces []*bmesh.Face) error

	// Geometry
	Translate(verts []*bmesh.Vert, vec v3.Vec)
	RecalcNormals()

	// Queries
	Faces() []*bmesh.Face
	Validate() error
}

// Compile-time check that the in-memory mesh satisfies the contract.
var _ Kernel = (*bmesh.Mesh)(nil)
