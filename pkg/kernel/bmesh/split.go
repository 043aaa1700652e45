package bmesh

import (
	"fmt"
	"slices"
)

// SplitEdge inserts a vertex on e at fac of its length measured from v.
// The faces bordered by e gain the vertex in their loops. It returns the
// new vertex; e keeps joining v and the new vertex.
func (m *Mesh) SplitEdge(e *Edge, v *Vert, fac float64) (*Vert, error) {
	if !e.Valid() || !v.Valid() || !e.Has(v) {
		return nil, fmt.Errorf("split edge: stale or unrelated handles: %w", ErrTopology)
	}
	if fac <= 0 || fac >= 1 {
		return nil, fmt.Errorf("split edge %s: factor %g outside (0,1): %w", e, fac, ErrTopology)
	}
	nv, _ := m.splitEdge(e, v, fac)
	return nv, nil
}

func (m *Mesh) splitEdge(e *Edge, v *Vert, fac float64) (*Vert, *Edge) {
	other := e.Other(v)
	faces := e.LinkFaces()
	for _, f := range faces {
		m.unlinkFace(f)
	}

	nv := m.AddVert(v.Co.Add(other.Co.Sub(v.Co).MulScalar(fac)))
	// Re-point e at the new vertex and add the remaining half.
	other.edges = removeItem(other.edges, e)
	if e.v[0] == other {
		e.v[0] = nv
	} else {
		e.v[1] = nv
	}
	nv.edges = append(nv.edges, e)
	ne := m.edgeOrCreate(nv, other)

	for _, f := range faces {
		f.verts = insertBetween(f.verts, v, other, nv)
		m.linkFace(f)
	}
	return nv, ne
}

// insertBetween puts x between the loop neighbours a and b.
func insertBetween(loop []*Vert, a, b, x *Vert) []*Vert {
	n := len(loop)
	for i := range loop {
		j := (i + 1) % n
		if (loop[i] == a && loop[j] == b) || (loop[i] == b && loop[j] == a) {
			return slices.Insert(loop, i+1, x)
		}
	}
	return loop
}

// SubdivideEdges inserts cuts evenly spaced vertices on every edge. The
// result holds the new vertices, ordered from each edge's first vertex to
// its second, followed by the edges created along the way.
func (m *Mesh) SubdivideEdges(edges []*Edge, cuts int) (Geom, error) {
	if cuts < 1 {
		return nil, nil
	}
	for _, e := range edges {
		if !e.Valid() {
			return nil, fmt.Errorf("subdivide edges: stale edge: %w", ErrTopology)
		}
	}
	var verts, created []Elem
	for _, e := range edges {
		start := e.v[0]
		cur := e
		from := start
		for i := range cuts {
			// Remaining span shrinks by one segment per cut.
			fac := 1 / float64(cuts+1-i)
			nv, ne := m.splitEdge(cur, from, fac)
			verts = append(verts, nv)
			created = append(created, ne)
			cur, from = ne, nv
		}
	}
	return append(verts, created...), nil
}

// ConnectVerts joins two vertices that share a face but no edge, splitting
// that face in two. The result holds the new edge followed by both halves.
func (m *Mesh) ConnectVerts(verts []*Vert) (Geom, error) {
	if len(verts) != 2 {
		return nil, fmt.Errorf("connect verts: need 2 vertices, got %d: %w", len(verts), ErrTopology)
	}
	a, b := verts[0], verts[1]
	if !a.Valid() || !b.Valid() || a == b {
		return nil, fmt.Errorf("connect verts: stale or identical vertices: %w", ErrTopology)
	}
	if EdgeBetween(a, b) != nil {
		return nil, fmt.Errorf("connect verts: %s and %s already joined: %w", a, b, ErrTopology)
	}
	var f *Face
	for _, cand := range a.LinkFaces() {
		if cand.HasVert(b) {
			f = cand
			break
		}
	}
	if f == nil {
		return nil, fmt.Errorf("connect verts: %s and %s share no face: %w", a, b, ErrTopology)
	}

	i, j := f.index(a), f.index(b)
	first := loopSpan(f.verts, i, j)
	second := loopSpan(f.verts, j, i)
	// Both halves are linked before pruning: edges and vertices that only
	// the second half uses must survive.
	old := f.edges
	m.unlinkFace(f)
	f.verts = first
	m.linkFace(f)
	nf := m.addFace(second, f.Part)
	m.pruneEdges(old)
	f.Normal = f.CalcNormal()
	return Geom{EdgeBetween(a, b), f, nf}, nil
}

// loopSpan returns loop[i..j] inclusive, wrapping around.
func loopSpan(loop []*Vert, i, j int) []*Vert {
	n := len(loop)
	var out []*Vert
	for k := i; ; k = (k + 1) % n {
		out = append(out, loop[k])
		if k == j {
			return out
		}
	}
}
