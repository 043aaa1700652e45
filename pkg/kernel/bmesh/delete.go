package bmesh

import "fmt"

// DeleteFaces removes faces along with any edges and vertices no remaining
// face uses.
func (m *Mesh) DeleteFaces(faces []*Face) error {
	for _, f := range faces {
		if !f.Valid() {
			return fmt.Errorf("delete faces: stale face: %w", ErrTopology)
		}
	}
	var old []*Edge
	for _, f := range faces {
		if !f.Valid() {
			continue
		}
		old = append(old, f.edges...)
		m.removeFace(f)
	}
	m.pruneEdges(old)
	return nil
}
