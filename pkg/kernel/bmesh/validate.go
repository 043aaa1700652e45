package bmesh

import (
	"errors"
	"fmt"
	"math"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Validate checks the invariants every operation must leave behind. Every
// handle reachable from a face or edge is live and owned by m, and the
// adjacency lists agree in both directions. Each face is a simple polygon
// with at least three distinct vertices and nonzero area. No edge is
// shorter than Epsilon or borders more than two faces, and faces sharing
// an edge walk it in opposite directions. All violations are reported,
// joined.
func (m *Mesh) Validate() error {
	errs := m.checkLinks()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, e := range m.edges {
		if len(e.faces) > 2 {
			errs = append(errs, fmt.Errorf("%s borders %d faces: %w", e, len(e.faces), ErrTopology))
		}
		if e.Length() < Epsilon {
			errs = append(errs, fmt.Errorf("%s has zero length: %w", e, ErrTopology))
		}
		if len(e.faces) == 2 {
			a, b := e.v[0], e.v[1]
			if traverses(e.faces[0], a, b) == traverses(e.faces[1], a, b) {
				errs = append(errs, fmt.Errorf("%s: %s and %s wind inconsistently: %w",
					e, e.faces[0], e.faces[1], ErrTopology))
			}
		}
	}
	for _, f := range m.faces {
		if err := checkLoop(f.verts); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f, err))
			continue
		}
		if f.Area() < Epsilon*Epsilon {
			errs = append(errs, fmt.Errorf("%s has zero area: %w", f, ErrTopology))
			continue
		}
		if !simple(f) {
			errs = append(errs, fmt.Errorf("%s self-intersects: %w", f, ErrTopology))
		}
	}
	return errors.Join(errs...)
}

// checkLinks verifies referential integrity between the element lists.
func (m *Mesh) checkLinks() []error {
	var errs []error
	verts := make(map[*Vert]bool, len(m.verts))
	for _, v := range m.verts {
		if v.mesh != m {
			errs = append(errs, fmt.Errorf("%s listed but not owned: %w", v, ErrTopology))
		}
		verts[v] = true
	}
	edges := make(map[*Edge]bool, len(m.edges))
	for _, e := range m.edges {
		edges[e] = true
		if e.mesh != m {
			errs = append(errs, fmt.Errorf("%s listed but not owned: %w", e, ErrTopology))
		}
		for _, v := range e.v {
			if !verts[v] || !v.Valid() {
				errs = append(errs, fmt.Errorf("%s uses stale vertex %s: %w", e, v, ErrTopology))
			} else if !slices.Contains(v.edges, e) {
				errs = append(errs, fmt.Errorf("%s missing from the edges of %s: %w", e, v, ErrTopology))
			}
		}
		for _, f := range e.faces {
			if !f.Valid() || !f.HasEdge(e) {
				errs = append(errs, fmt.Errorf("%s lists %s, which does not use it: %w", e, f, ErrTopology))
			}
		}
	}
	for _, v := range m.verts {
		for _, e := range v.edges {
			if !edges[e] || !e.Valid() {
				errs = append(errs, fmt.Errorf("%s links stale edge %s: %w", v, e, ErrTopology))
			}
		}
	}
	for _, f := range m.faces {
		if f.mesh != m {
			errs = append(errs, fmt.Errorf("%s listed but not owned: %w", f, ErrTopology))
		}
		if len(f.edges) != len(f.verts) {
			errs = append(errs, fmt.Errorf("%s has %d edges for %d vertices: %w",
				f, len(f.edges), len(f.verts), ErrTopology))
			continue
		}
		n := len(f.verts)
		for i, v := range f.verts {
			if !verts[v] || !v.Valid() {
				errs = append(errs, fmt.Errorf("%s uses stale vertex %s: %w", f, v, ErrTopology))
				continue
			}
			e := f.edges[i]
			switch {
			case !edges[e] || !e.Valid():
				errs = append(errs, fmt.Errorf("%s uses stale edge %s: %w", f, e, ErrTopology))
			case !e.Has(v) || !e.Has(f.verts[(i+1)%n]):
				errs = append(errs, fmt.Errorf("%s: %s does not join loop neighbours: %w", f, e, ErrTopology))
			case !slices.Contains(e.faces, f):
				errs = append(errs, fmt.Errorf("%s missing from the faces of %s: %w", f, e, ErrTopology))
			}
		}
	}
	return errs
}

// simple reports whether the face loop, projected onto the plane of its
// dominant normal axis, has no crossing non-adjacent sides.
func simple(f *Face) bool {
	pts := project(f.verts, newell(f.verts))
	n := len(pts)
	for i := range n {
		a1, a2 := pts[i], pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsTouch(a1, a2, pts[j], pts[(j+1)%n]) {
				return false
			}
		}
	}
	return true
}

type pt struct{ x, y float64 }

func project(verts []*Vert, n v3.Vec) []pt {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	out := make([]pt, len(verts))
	for i, v := range verts {
		switch {
		case az >= ax && az >= ay:
			out[i] = pt{v.Co.X, v.Co.Y}
		case ay >= ax:
			out[i] = pt{v.Co.X, v.Co.Z}
		default:
			out[i] = pt{v.Co.Y, v.Co.Z}
		}
	}
	return out
}

func orient(a, b, c pt) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

func segmentsTouch(p1, p2, q1, q2 pt) bool {
	d1, d2 := orient(q1, q2, p1), orient(q1, q2, p2)
	d3, d4 := orient(p1, p2, q1), orient(p1, p2, q2)
	const eps = 1e-12
	if ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps)) {
		return true
	}
	return (math.Abs(d1) <= eps && onSegment(q1, q2, p1)) ||
		(math.Abs(d2) <= eps && onSegment(q1, q2, p2)) ||
		(math.Abs(d3) <= eps && onSegment(p1, p2, q1)) ||
		(math.Abs(d4) <= eps && onSegment(p1, p2, q2))
}

func onSegment(a, b, p pt) bool {
	return math.Min(a.x, b.x)-Epsilon <= p.x && p.x <= math.Max(a.x, b.x)+Epsilon &&
		math.Min(a.y, b.y)-Epsilon <= p.y && p.y <= math.Max(a.y, b.y)+Epsilon
}
