package bmesh

import (
	"fmt"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// PointMerge collapses verts into verts[0], which moves to co. Edges that
// shrink to nothing disappear, edges that coincide become one, and faces
// left with fewer than three vertices are dropped. It returns the
// surviving vertex.
func (m *Mesh) PointMerge(verts []*Vert, co v3.Vec) (*Vert, error) {
	if len(verts) == 0 {
		return nil, fmt.Errorf("point merge: no vertices: %w", ErrTopology)
	}
	for _, v := range verts {
		if !v.Valid() {
			return nil, fmt.Errorf("point merge: stale vertex: %w", ErrTopology)
		}
	}
	keep := verts[0]
	keep.Co = co
	gone := make(map[*Vert]bool)
	for _, v := range verts[1:] {
		if v != keep {
			gone[v] = true
		}
	}

	var affected []*Face
	for v := range gone {
		for _, f := range v.LinkFaces() {
			if !slices.Contains(affected, f) {
				affected = append(affected, f)
			}
		}
	}
	slices.SortFunc(affected, func(a, b *Face) int { return a.ID - b.ID })

	for _, f := range affected {
		loop := make([]*Vert, 0, len(f.verts))
		for _, v := range f.verts {
			if gone[v] {
				v = keep
			}
			loop = append(loop, v)
		}
		loop = dedupCyclic(loop)
		if len(loop) < 3 {
			old := f.Edges()
			m.removeFace(f)
			m.pruneEdges(old)
			continue
		}
		if err := checkLoop(loop); err != nil {
			return nil, fmt.Errorf("point merge into %s pinches %s: %w", keep, f, err)
		}
		m.relinkFace(f, loop)
		f.Normal = f.CalcNormal()
	}

	for v := range gone {
		if v.Valid() {
			m.removeVert(v)
		}
	}
	for _, f := range keep.LinkFaces() {
		f.Normal = f.CalcNormal()
	}
	return keep, nil
}

// dedupCyclic drops consecutive repeats, including the wrap-around pair.
func dedupCyclic(loop []*Vert) []*Vert {
	loop = slices.Compact(loop)
	for len(loop) > 1 && loop[0] == loop[len(loop)-1] {
		loop = loop[:len(loop)-1]
	}
	return loop
}
