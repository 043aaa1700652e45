// Package bmesh is an in-memory boundary mesh: vertices, edges and polygonal
// faces with explicit adjacency. It implements the primitive editing
// operations the door construction relies on (dissolve, subdivide, extrude,
// point-merge, edge split, connect, delete, normal recalculation).
//
// All mutations happen in place. Operations that restructure the mesh return
// the geometry they created; handles to removed elements become stale and
// are rejected by later operations.
package bmesh

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrTopology is wrapped by every error caused by a topology assumption that
// does not hold: stale handles, non-manifold edges, faces that would
// degenerate.
var ErrTopology = errors.New("topology violation")

// Epsilon is the distance below which two positions are considered equal.
const Epsilon = 1e-6

// Vert is a mesh vertex.
type Vert struct {
	ID    int
	Co    v3.Vec
	edges []*Edge
	mesh  *Mesh
}

// Edge joins two vertices and borders at most two faces.
type Edge struct {
	ID    int
	v     [2]*Vert
	faces []*Face
	mesh  *Mesh
}

// Face is a simple polygon. verts is the boundary loop; edges[i] joins
// verts[i] and verts[i+1].
type Face struct {
	ID     int
	Normal v3.Vec
	Part   string // role label used by exports, e.g. "wall" or "frame"
	verts  []*Vert
	edges  []*Edge
	mesh   *Mesh
}

// Mesh owns all vertices, edges and faces. Iteration order is insertion
// order, which keeps every query deterministic.
type Mesh struct {
	verts []*Vert
	edges []*Edge
	faces []*Face

	nextVert, nextEdge, nextFace int
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// Verts returns the vertices in insertion order.
func (m *Mesh) Verts() []*Vert { return append([]*Vert(nil), m.verts...) }

// Edges returns the edges in insertion order.
func (m *Mesh) Edges() []*Edge { return append([]*Edge(nil), m.edges...) }

// Faces returns the faces in insertion order.
func (m *Mesh) Faces() []*Face { return append([]*Face(nil), m.faces...) }

// AddVert creates a vertex at co.
func (m *Mesh) AddVert(co v3.Vec) *Vert {
	v := &Vert{ID: m.nextVert, Co: co, mesh: m}
	m.nextVert++
	m.verts = append(m.verts, v)
	return v
}

// AddFace creates a face from an ordered vertex loop. Missing edges are
// created; the face normal follows the loop winding.
func (m *Mesh) AddFace(verts []*Vert, part string) (*Face, error) {
	for _, v := range verts {
		if !v.Valid() || v.mesh != m {
			return nil, fmt.Errorf("add face: stale vertex: %w", ErrTopology)
		}
	}
	if err := checkLoop(verts); err != nil {
		return nil, fmt.Errorf("add face: %w", err)
	}
	return m.addFace(verts, part), nil
}

func checkLoop(verts []*Vert) error {
	if len(verts) < 3 {
		return fmt.Errorf("loop has %d vertices: %w", len(verts), ErrTopology)
	}
	seen := make(map[*Vert]bool, len(verts))
	for _, v := range verts {
		if seen[v] {
			return fmt.Errorf("loop visits vertex %d twice: %w", v.ID, ErrTopology)
		}
		seen[v] = true
	}
	return nil
}

// addFace assumes verts is a valid loop.
func (m *Mesh) addFace(verts []*Vert, part string) *Face {
	f := &Face{ID: m.nextFace, Part: part, mesh: m}
	m.nextFace++
	f.verts = append([]*Vert(nil), verts...)
	m.linkFace(f)
	f.Normal = f.CalcNormal()
	m.faces = append(m.faces, f)
	return f
}

// linkFace builds f.edges from f.verts and registers f on each edge.
func (m *Mesh) linkFace(f *Face) {
	n := len(f.verts)
	f.edges = make([]*Edge, n)
	for i, v := range f.verts {
		e := m.edgeOrCreate(v, f.verts[(i+1)%n])
		e.faces = append(e.faces, f)
		f.edges[i] = e
	}
}

// unlinkFace removes f from the face lists of its edges.
func (m *Mesh) unlinkFace(f *Face) {
	for _, e := range f.edges {
		e.faces = removeItem(e.faces, f)
	}
	f.edges = nil
}

// relinkFace replaces the loop of an existing face and prunes edges that
// lost their last face.
func (m *Mesh) relinkFace(f *Face, verts []*Vert) {
	old := f.edges
	m.unlinkFace(f)
	f.verts = verts
	m.linkFace(f)
	m.pruneEdges(old)
}

func (m *Mesh) removeFace(f *Face) {
	m.unlinkFace(f)
	m.faces = removeItem(m.faces, f)
	f.mesh = nil
}

func (m *Mesh) edgeOrCreate(a, b *Vert) *Edge {
	if e := EdgeBetween(a, b); e != nil {
		return e
	}
	e := &Edge{ID: m.nextEdge, v: [2]*Vert{a, b}, mesh: m}
	m.nextEdge++
	a.edges = append(a.edges, e)
	b.edges = append(b.edges, e)
	m.edges = append(m.edges, e)
	return e
}

func (m *Mesh) removeEdge(e *Edge) {
	for _, v := range e.v {
		v.edges = removeItem(v.edges, e)
	}
	m.edges = removeItem(m.edges, e)
	e.mesh = nil
}

func (m *Mesh) removeVert(v *Vert) {
	for _, e := range append([]*Edge(nil), v.edges...) {
		m.removeEdge(e)
	}
	m.verts = removeItem(m.verts, v)
	v.mesh = nil
}

// pruneEdges removes the given edges when no face uses them any more, and
// then any of their vertices left without edges.
func (m *Mesh) pruneEdges(edges []*Edge) {
	var orphans []*Vert
	for _, e := range edges {
		if e.mesh == nil || len(e.faces) > 0 {
			continue
		}
		m.removeEdge(e)
		orphans = append(orphans, e.v[0], e.v[1])
	}
	for _, v := range orphans {
		if v.mesh != nil && len(v.edges) == 0 {
			m.removeVert(v)
		}
	}
}

func removeItem[T comparable](s []T, item T) []T {
	for i, x := range s {
		if x == item {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

// EdgeBetween returns the edge joining a and b, or nil.
func EdgeBetween(a, b *Vert) *Edge {
	for _, e := range a.edges {
		if e.Other(a) == b {
			return e
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Vert
// ---------------------------------------------------------------------------

// Valid reports whether the vertex still belongs to a mesh.
func (v *Vert) Valid() bool { return v != nil && v.mesh != nil }

// LinkEdges returns the edges using v.
func (v *Vert) LinkEdges() []*Edge { return append([]*Edge(nil), v.edges...) }

// LinkFaces returns the faces using v, without duplicates.
func (v *Vert) LinkFaces() []*Face {
	var faces []*Face
	seen := make(map[*Face]bool)
	for _, e := range v.edges {
		for _, f := range e.faces {
			if !seen[f] {
				seen[f] = true
				faces = append(faces, f)
			}
		}
	}
	return faces
}

// Neighbors returns the vertices sharing an edge with v.
func (v *Vert) Neighbors() []*Vert {
	out := make([]*Vert, 0, len(v.edges))
	for _, e := range v.edges {
		out = append(out, e.Other(v))
	}
	return out
}

func (v *Vert) String() string {
	return fmt.Sprintf("v%d(%.4g %.4g %.4g)", v.ID, v.Co.X, v.Co.Y, v.Co.Z)
}

// ---------------------------------------------------------------------------
// Edge
// ---------------------------------------------------------------------------

// Valid reports whether the edge still belongs to a mesh.
func (e *Edge) Valid() bool { return e != nil && e.mesh != nil }

// Verts returns both endpoints.
func (e *Edge) Verts() [2]*Vert { return e.v }

// Other returns the endpoint that is not v.
func (e *Edge) Other(v *Vert) *Vert {
	if e.v[0] == v {
		return e.v[1]
	}
	return e.v[0]
}

// Has reports whether v is an endpoint of e.
func (e *Edge) Has(v *Vert) bool { return e.v[0] == v || e.v[1] == v }

// LinkFaces returns the faces bordered by e.
func (e *Edge) LinkFaces() []*Face { return append([]*Face(nil), e.faces...) }

// Median returns the midpoint of the edge.
func (e *Edge) Median() v3.Vec {
	return e.v[0].Co.Add(e.v[1].Co).MulScalar(0.5)
}

// Length returns the edge length.
func (e *Edge) Length() float64 {
	return e.v[1].Co.Sub(e.v[0].Co).Length()
}

func (e *Edge) String() string {
	return fmt.Sprintf("e%d(v%d-v%d)", e.ID, e.v[0].ID, e.v[1].ID)
}

// ---------------------------------------------------------------------------
// Face
// ---------------------------------------------------------------------------

// Valid reports whether the face still belongs to a mesh.
func (f *Face) Valid() bool { return f != nil && f.mesh != nil }

// Verts returns the boundary loop.
func (f *Face) Verts() []*Vert { return append([]*Vert(nil), f.verts...) }

// Edges returns the boundary edges in loop order.
func (f *Face) Edges() []*Edge { return append([]*Edge(nil), f.edges...) }

// Len returns the number of boundary vertices.
func (f *Face) Len() int { return len(f.verts) }

// HasVert reports whether v is on the boundary loop.
func (f *Face) HasVert(v *Vert) bool { return f.index(v) >= 0 }

// HasEdge reports whether e is a boundary edge of f.
func (f *Face) HasEdge(e *Edge) bool {
	for _, x := range f.edges {
		if x == e {
			return true
		}
	}
	return false
}

func (f *Face) index(v *Vert) int {
	for i, x := range f.verts {
		if x == v {
			return i
		}
	}
	return -1
}

// CenterMedian returns the mean of the boundary vertices.
func (f *Face) CenterMedian() v3.Vec {
	var sum v3.Vec
	for _, v := range f.verts {
		sum = sum.Add(v.Co)
	}
	return sum.DivScalar(float64(len(f.verts)))
}

// CalcNormal computes the unit normal from the loop winding (Newell's
// method). A degenerate loop yields the zero vector.
func (f *Face) CalcNormal() v3.Vec {
	n := newell(f.verts)
	if l := n.Length(); l > 0 {
		return n.DivScalar(l)
	}
	return v3.Vec{}
}

// Area returns the polygon area.
func (f *Face) Area() float64 {
	return newell(f.verts).Length() / 2
}

func newell(verts []*Vert) v3.Vec {
	var n v3.Vec
	for i, v := range verts {
		a, b := v.Co, verts[(i+1)%len(verts)].Co
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

func (f *Face) String() string {
	return fmt.Sprintf("f%d[%d verts %s]", f.ID, len(f.verts), f.Part)
}
