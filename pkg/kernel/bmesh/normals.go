package bmesh

// RecalcNormals makes the winding of every connected group of faces agree
// with the first face of that group (in mesh order) and recomputes all
// face normals. Two faces agree when they walk their shared edge in
// opposite directions.
func (m *Mesh) RecalcNormals() {
	done := make(map[*Face]bool, len(m.faces))
	for _, seed := range m.faces {
		if done[seed] {
			continue
		}
		done[seed] = true
		queue := []*Face{seed}
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			for i, e := range f.edges {
				a, b := f.verts[i], f.verts[(i+1)%len(f.verts)]
				for _, g := range e.faces {
					if g == f || done[g] {
						continue
					}
					done[g] = true
					if traverses(g, a, b) {
						m.relinkFace(g, reversed(g.verts))
					}
					queue = append(queue, g)
				}
			}
		}
	}
	for _, f := range m.faces {
		f.Normal = f.CalcNormal()
	}
}
