// Package tessellate turns the polygonal faces of a boundary mesh into
// triangle meshes. One mesh is produced per face part label, in the order
// the labels first appear.
package tessellate

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/archway/pkg/kernel"
	"github.com/chazu/archway/pkg/kernel/bmesh"
	"github.com/chazu/archway/pkg/kernel/sdfx"
	"github.com/chazu/archway/pkg/meshutil"
)

// DefaultPart names the mesh of faces without a part label.
const DefaultPart = "mesh"

// Tessellate triangulates faces and groups the triangles by Face.Part. The
// faces are read only.
func Tessellate(faces []*bmesh.Face) ([]*kernel.Mesh, error) {
	var order []string
	byPart := make(map[string][]*sdf.Triangle3)

	for _, f := range faces {
		if !f.Valid() {
			return nil, fmt.Errorf("tessellate: stale face %s: %w", f, bmesh.ErrTopology)
		}
		tris, err := Face(f)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %w", err)
		}
		part := f.Part
		if part == "" {
			part = DefaultPart
		}
		if _, seen := byPart[part]; !seen {
			order = append(order, part)
		}
		byPart[part] = append(byPart[part], tris...)
	}

	meshes := make([]*kernel.Mesh, 0, len(order))
	for _, part := range order {
		meshes = append(meshes, sdfx.ToMesh(byPart[part], part))
	}
	return meshes, nil
}

// Face triangulates a simple polygon by ear clipping in the face plane.
// Triangles keep the face's winding, so their normals agree with it.
// Vertices lying on a straight stretch of the boundary produce no
// triangle of their own.
func Face(f *bmesh.Face) ([]*sdf.Triangle3, error) {
	normal := f.CalcNormal()
	if normal.Length() == 0 {
		return nil, fmt.Errorf("face %s has no area: %w", f, bmesh.ErrTopology)
	}
	right, up := meshutil.FaceAxes(normal)

	verts := f.Verts()
	pts := make([]point, len(verts))
	for i, v := range verts {
		pts[i] = point{x: v.Co.Dot(right), y: v.Co.Dot(up), co: v.Co}
	}

	// Scale the flatness tolerance to the face so small and large faces
	// behave alike.
	eps := bmesh.Epsilon * math.Max(f.Area(), bmesh.Epsilon)

	var tris []*sdf.Triangle3
	ring := pts
	for len(ring) > 3 {
		i := findEar(ring, eps)
		prev, cur, next := ring[(i+len(ring)-1)%len(ring)], ring[i], ring[(i+1)%len(ring)]
		if cross(prev, cur, next) > eps {
			tris = append(tris, &sdf.Triangle3{prev.co, cur.co, next.co})
		}
		ring = append(ring[:i:i], ring[i+1:]...)
	}
	if cross(ring[0], ring[1], ring[2]) > eps {
		tris = append(tris, &sdf.Triangle3{ring[0].co, ring[1].co, ring[2].co})
	}
	return tris, nil
}

type point struct {
	x, y float64
	co   v3.Vec
}

// cross is twice the signed area of triangle abc; positive when
// counter-clockwise.
func cross(a, b, c point) float64 {
	return (b.x-a.x)*(c.y-a.y) - (b.y-a.y)*(c.x-a.x)
}

// findEar returns the index of the next vertex to clip: a flat vertex if
// there is one, otherwise a convex vertex whose triangle holds no other
// vertex. If rounding leaves no clean ear, the most convex vertex is used.
func findEar(ring []point, eps float64) int {
	n := len(ring)
	best, bestCross := 0, math.Inf(-1)
	for i := range ring {
		prev, cur, next := ring[(i+n-1)%n], ring[i], ring[(i+1)%n]
		c := cross(prev, cur, next)
		if math.Abs(c) <= eps {
			return i
		}
		if c > bestCross {
			best, bestCross = i, c
		}
	}
	for i := range ring {
		prev, cur, next := ring[(i+n-1)%n], ring[i], ring[(i+1)%n]
		if cross(prev, cur, next) <= eps {
			continue
		}
		if !containsAny(ring, i, prev, cur, next) {
			return i
		}
	}
	return best
}

// containsAny reports whether any vertex other than the ear's corners lies
// inside or on triangle abc.
func containsAny(ring []point, ear int, a, b, c point) bool {
	n := len(ring)
	for j, p := range ring {
		if j == ear || j == (ear+n-1)%n || j == (ear+1)%n {
			continue
		}
		if p.co == a.co || p.co == b.co || p.co == c.co {
			continue
		}
		if cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0 {
			return true
		}
	}
	return false
}
