package bmesh

import (
	"fmt"
	"math"
	"slices"
)

// collinearCos is the minimum |cos| between two edges for their shared
// vertex to count as a straight-through vertex.
const collinearCos = 1 - 1e-9

// DissolveEdges removes each edge and merges the two faces it separated.
// Edges bordering fewer than two distinct faces are left alone. With
// useVerts, endpoints left with exactly two collinear edges are dissolved
// too, unless their neighbours are already joined. It returns the merged
// faces that survive.
func (m *Mesh) DissolveEdges(edges []*Edge, useVerts bool) ([]*Face, error) {
	for _, e := range edges {
		if !e.Valid() {
			return nil, fmt.Errorf("dissolve edges: stale edge: %w", ErrTopology)
		}
	}
	var merged []*Face
	var ends []*Vert
	for _, e := range edges {
		if !e.Valid() || len(e.faces) != 2 || e.faces[0] == e.faces[1] {
			continue
		}
		f, err := m.mergeAcross(e)
		if err != nil {
			return nil, fmt.Errorf("dissolve edges: %w", err)
		}
		merged = append(merged, f)
		ends = append(ends, e.v[0], e.v[1])
	}
	if useVerts {
		for _, v := range ends {
			if v.Valid() {
				m.dissolveStraightVert(v)
			}
		}
	}
	return slices.DeleteFunc(merged, func(f *Face) bool { return !f.Valid() }), nil
}

// mergeAcross joins the two faces of e into the first one.
func (m *Mesh) mergeAcross(e *Edge) (*Face, error) {
	f1, f2 := e.faces[0], e.faces[1]
	a, b := e.v[0], e.v[1]
	if !traverses(f1, a, b) {
		a, b = b, a
	}
	loop2 := f2.verts
	if traverses(f2, a, b) {
		loop2 = reversed(loop2)
	}
	// f1 walks a->b; f2 walks b->a. Keep f1 from b round to a, then f2
	// from a round to b without repeating the shared endpoints.
	path1 := loopSpan(f1.verts, f1.index(b), f1.index(a))
	path2 := loopSpan(loop2, slices.Index(loop2, a), slices.Index(loop2, b))
	loop := append(path1, path2[1:len(path2)-1]...)
	if err := checkLoop(loop); err != nil {
		return nil, fmt.Errorf("merge %s and %s: %w", f1, f2, err)
	}
	old := append(f1.Edges(), f2.edges...)
	m.removeFace(f2)
	m.unlinkFace(f1)
	f1.verts = loop
	m.linkFace(f1)
	m.pruneEdges(old)
	f1.Normal = f1.CalcNormal()
	return f1, nil
}

// dissolveStraightVert removes v from every loop when v sits in the middle
// of a straight run of two edges.
func (m *Mesh) dissolveStraightVert(v *Vert) {
	if len(v.edges) != 2 {
		return
	}
	n1, n2 := v.edges[0].Other(v), v.edges[1].Other(v)
	if EdgeBetween(n1, n2) != nil {
		return
	}
	d1, d2 := n1.Co.Sub(v.Co), n2.Co.Sub(v.Co)
	l1, l2 := d1.Length(), d2.Length()
	if l1 == 0 || l2 == 0 || math.Abs(d1.Dot(d2)/(l1*l2)) < collinearCos {
		return
	}
	faces := v.LinkFaces()
	for _, f := range faces {
		if len(f.verts) <= 3 {
			return
		}
	}
	for _, f := range faces {
		m.relinkFace(f, slices.DeleteFunc(f.Verts(), func(x *Vert) bool { return x == v }))
	}
}

// traverses reports whether f's loop steps from a directly to b.
func traverses(f *Face, a, b *Vert) bool {
	i := f.index(a)
	return i >= 0 && f.verts[(i+1)%len(f.verts)] == b
}

func reversed(loop []*Vert) []*Vert {
	out := slices.Clone(loop)
	slices.Reverse(out)
	return out
}
