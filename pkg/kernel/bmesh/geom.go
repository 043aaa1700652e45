package bmesh

// Elem is any mesh element: *Vert, *Edge or *Face.
type Elem interface {
	Valid() bool
	String() string
	elem()
}

func (*Vert) elem() {}
func (*Edge) elem() {}
func (*Face) elem() {}

// Geom is the result set of a structure-changing operation. Callers pick
// what they need from it instead of re-scanning the mesh.
type Geom []Elem

// Verts returns the vertices in g, in order.
func (g Geom) Verts() []*Vert { return pick[*Vert](g) }

// Edges returns the edges in g, in order.
func (g Geom) Edges() []*Edge { return pick[*Edge](g) }

// Faces returns the faces in g, in order.
func (g Geom) Faces() []*Face { return pick[*Face](g) }

func pick[T Elem](g Geom) []T {
	var out []T
	for _, e := range g {
		if t, ok := e.(T); ok && e.Valid() {
			out = append(out, t)
		}
	}
	return out
}

// ExtrudeResult is returned by ExtrudeDiscreteFaces. Faces[i] is the moved
// copy of the i-th input face; Sides holds the connecting quads of all
// inputs.
type ExtrudeResult struct {
	Faces []*Face
	Sides []*Face
}
