// Package meshutil holds the geometry helpers the door construction uses
// to measure, classify and pick mesh elements. Heights are world Z; the
// horizontal and vertical axes of a face come from FaceAxes.
package meshutil

import (
	"math"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/samber/lo"

	"github.com/chazu/archway/pkg/kernel/bmesh"
)

// axisTolerance is how far the direction cosine of an edge may stray from
// 1 and still count as aligned with an axis.
const axisTolerance = 1e-3

var worldUp = v3.Vec{Z: 1}

// EdgeMedian returns the midpoint of e.
func EdgeMedian(e *bmesh.Edge) v3.Vec { return e.Median() }

// FaceCenter returns the mean of f's vertices.
func FaceCenter(f *bmesh.Face) v3.Vec { return f.CenterMedian() }

// FaceAxes returns the in-plane horizontal (right) and vertical (up)
// directions of a face with the given normal. Up is world +Z projected
// onto the plane; faces lying flat use +Y instead. Right is up × normal,
// so a wall facing -Y has right = +X.
func FaceAxes(normal v3.Vec) (right, up v3.Vec) {
	up = project(worldUp, normal)
	if up.Length() < bmesh.Epsilon {
		up = project(v3.Vec{Y: 1}, normal)
	}
	up = up.Normalize()
	right = up.Cross(normal).Normalize()
	return right, up
}

func project(v, normal v3.Vec) v3.Vec {
	return v.Sub(normal.MulScalar(v.Dot(normal)))
}

// FaceDimensions returns the extent of f along its horizontal and vertical
// axes.
func FaceDimensions(f *bmesh.Face) (width, height float64) {
	r0, r1, u0, u1 := faceRect(f)
	return r1 - r0, u1 - u0
}

// faceRect is the bounding rectangle of f in (right, up) coordinates.
func faceRect(f *bmesh.Face) (r0, r1, u0, u1 float64) {
	right, up := FaceAxes(f.Normal)
	r0, u0 = math.Inf(1), math.Inf(1)
	r1, u1 = math.Inf(-1), math.Inf(-1)
	for _, v := range f.Verts() {
		r, u := v.Co.Dot(right), v.Co.Dot(up)
		r0, r1 = math.Min(r0, r), math.Max(r1, r)
		u0, u1 = math.Min(u0, u), math.Max(u1, u)
	}
	return r0, r1, u0, u1
}

func edgeDir(e *bmesh.Edge) v3.Vec {
	vs := e.Verts()
	return vs[1].Co.Sub(vs[0].Co).Normalize()
}

func aligned(e *bmesh.Edge, axis v3.Vec) bool {
	return math.Abs(edgeDir(e).Dot(axis)) >= 1-axisTolerance
}

// FilterVerticalEdges keeps the edges running along the vertical axis of a
// face with the given normal.
func FilterVerticalEdges(edges []*bmesh.Edge, normal v3.Vec) []*bmesh.Edge {
	_, up := FaceAxes(normal)
	return lo.Filter(edges, func(e *bmesh.Edge, _ int) bool { return aligned(e, up) })
}

// FilterHorizontalEdges keeps the edges running along the horizontal axis
// of a face with the given normal.
func FilterHorizontalEdges(edges []*bmesh.Edge, normal v3.Vec) []*bmesh.Edge {
	right, _ := FaceAxes(normal)
	return lo.Filter(edges, func(e *bmesh.Edge, _ int) bool { return aligned(e, right) })
}

// FilterGeom returns the live elements of type T in g, in order.
func FilterGeom[T bmesh.Elem](g bmesh.Geom) []T {
	return lo.FilterMap(g, func(el bmesh.Elem, _ int) (T, bool) {
		t, ok := el.(T)
		return t, ok && el.Valid()
	})
}

// LowestEdge returns the edge with the lowest median; ties keep the first.
// It returns nil for no edges.
func LowestEdge(edges []*bmesh.Edge) *bmesh.Edge {
	return lo.MinBy(edges, func(a, b *bmesh.Edge) bool { return a.Median().Z < b.Median().Z })
}

// HighestEdge returns the edge with the highest median; ties keep the
// first. It returns nil for no edges.
func HighestEdge(edges []*bmesh.Edge) *bmesh.Edge {
	return lo.MaxBy(edges, func(a, b *bmesh.Edge) bool { return a.Median().Z > b.Median().Z })
}

// LowestFace returns the face with the lowest center; ties keep the first.
func LowestFace(faces []*bmesh.Face) *bmesh.Face {
	return lo.MinBy(faces, func(a, b *bmesh.Face) bool { return a.CenterMedian().Z < b.CenterMedian().Z })
}

// SortVertsByHeight returns verts ordered from lowest to highest; equal
// heights keep their input order.
func SortVertsByHeight(verts []*bmesh.Vert) []*bmesh.Vert {
	out := slices.Clone(verts)
	slices.SortStableFunc(out, func(a, b *bmesh.Vert) int {
		switch {
		case a.Co.Z < b.Co.Z:
			return -1
		case a.Co.Z > b.Co.Z:
			return 1
		}
		return 0
	})
	return out
}

// HighestNeighbor returns the linked vertex of v with the greatest height.
func HighestNeighbor(v *bmesh.Vert) *bmesh.Vert {
	return lo.MaxBy(v.Neighbors(), func(a, b *bmesh.Vert) bool { return a.Co.Z > b.Co.Z })
}

// FaceWithVerts returns the first face whose loop contains every vertex,
// or nil.
func FaceWithVerts(verts []*bmesh.Vert) *bmesh.Face {
	if len(verts) == 0 {
		return nil
	}
	f, _ := lo.Find(verts[0].LinkFaces(), func(f *bmesh.Face) bool {
		return lo.EveryBy(verts, f.HasVert)
	})
	return f
}

// EdgeVerts returns the distinct endpoints of edges in first-seen order.
func EdgeVerts(edges []*bmesh.Edge) []*bmesh.Vert {
	return lo.Uniq(lo.FlatMap(edges, func(e *bmesh.Edge, _ int) []*bmesh.Vert {
		vs := e.Verts()
		return vs[:]
	}))
}
