package bmesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ExtrudeDiscreteFaces extrudes each face on its own. The face's loop is
// duplicated in place, a quad joins every boundary edge to its copy, and
// the original face is removed. The copies keep the original winding and
// part label; nothing is moved.
func (m *Mesh) ExtrudeDiscreteFaces(faces []*Face) (ExtrudeResult, error) {
	var res ExtrudeResult
	for _, f := range faces {
		if !f.Valid() {
			return res, fmt.Errorf("extrude discrete faces: stale face: %w", ErrTopology)
		}
	}
	for _, f := range faces {
		loop := f.verts
		m.removeFace(f)

		dup := make([]*Vert, len(loop))
		for i, v := range loop {
			dup[i] = m.AddVert(v.Co)
		}
		for i := range loop {
			j := (i + 1) % len(loop)
			side := m.addFace([]*Vert{loop[i], loop[j], dup[j], dup[i]}, f.Part)
			res.Sides = append(res.Sides, side)
		}
		nf := m.addFace(dup, f.Part)
		res.Faces = append(res.Faces, nf)
	}
	return res, nil
}

// Translate moves verts by vec and refreshes the normals of the faces
// around them.
func (m *Mesh) Translate(verts []*Vert, vec v3.Vec) {
	touched := make(map[*Face]bool)
	for _, v := range verts {
		if !v.Valid() {
			continue
		}
		v.Co = v.Co.Add(vec)
		for _, f := range v.LinkFaces() {
			touched[f] = true
		}
	}
	for f := range touched {
		f.Normal = f.CalcNormal()
	}
}
