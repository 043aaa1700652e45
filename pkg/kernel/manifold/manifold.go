// Package manifold provides a checking kernel: it forwards every call to an
// underlying kernel and validates the mesh after each mutation, so the
// first edit that breaks manifoldness, winding or face validity is named
// in the error instead of surfacing later as corrupt geometry.
package manifold

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/archway/pkg/kernel"
	"github.com/chazu/archway/pkg/kernel/bmesh"
)

// ErrInvariant is wrapped by errors reporting a mesh left invalid by an
// otherwise successful operation.
var ErrInvariant = errors.New("mesh invariant violated")

// Compile-time interface check.
var _ kernel.Kernel = (*ManifoldKernel)(nil)

// ManifoldKernel validates the wrapped kernel after every mutating call.
type ManifoldKernel struct {
	k kernel.Kernel

	// Checks counts the validations run; useful in tests.
	Checks int

	// err is the first invariant failure seen by RecalcNormals, which
	// cannot return one.
	err error
}

// New wraps k.
func New(k kernel.Kernel) *ManifoldKernel {
	return &ManifoldKernel{k: k}
}

// Err returns the first invariant failure raised by RecalcNormals, if any.
func (m *ManifoldKernel) Err() error { return m.err }

func (m *ManifoldKernel) check(op string, err error) error {
	if err != nil {
		return err
	}
	m.Checks++
	if verr := m.k.Validate(); verr != nil {
		return fmt.Errorf("manifold: after %s: %w: %w", op, ErrInvariant, verr)
	}
	return nil
}

func (m *ManifoldKernel) DissolveEdges(edges []*bmesh.Edge, useVerts bool) ([]*bmesh.Face, error) {
	faces, err := m.k.DissolveEdges(edges, useVerts)
	return faces, m.check("dissolve edges", err)
}

func (m *ManifoldKernel) SubdivideEdges(edges []*bmesh.Edge, cuts int) (bmesh.Geom, error) {
	g, err := m.k.SubdivideEdges(edges, cuts)
	return g, m.check("subdivide edges", err)
}

func (m *ManifoldKernel) SplitEdge(e *bmesh.Edge, v *bmesh.Vert, fac float64) (*bmesh.Vert, error) {
	nv, err := m.k.SplitEdge(e, v, fac)
	return nv, m.check("split edge", err)
}

func (m *ManifoldKernel) ConnectVerts(verts []*bmesh.Vert) (bmesh.Geom, error) {
	g, err := m.k.ConnectVerts(verts)
	return g, m.check("connect verts", err)
}

// ExtrudeDiscreteFaces is validated by the next checked call: the side
// quads have zero area until the copy is translated.
func (m *ManifoldKernel) ExtrudeDiscreteFaces(faces []*bmesh.Face) (bmesh.ExtrudeResult, error) {
	return m.k.ExtrudeDiscreteFaces(faces)
}

func (m *ManifoldKernel) PointMerge(verts []*bmesh.Vert, co v3.Vec) (*bmesh.Vert, error) {
	v, err := m.k.PointMerge(verts, co)
	return v, m.check("point merge", err)
}

func (m *ManifoldKernel) DeleteFaces(faces []*bmesh.Face) error {
	return m.check("delete faces", m.k.DeleteFaces(faces))
}

// Translate is not validated on its own; see ExtrudeDiscreteFaces.
func (m *ManifoldKernel) Translate(verts []*bmesh.Vert, vec v3.Vec) {
	m.k.Translate(verts, vec)
}

func (m *ManifoldKernel) RecalcNormals() {
	m.k.RecalcNormals()
	if err := m.check("recalc normals", nil); err != nil && m.err == nil {
		m.err = err
	}
}

func (m *ManifoldKernel) Faces() []*bmesh.Face { return m.k.Faces() }

func (m *ManifoldKernel) Validate() error { return m.k.Validate() }
