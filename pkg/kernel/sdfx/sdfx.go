// Package sdfx bridges triangle output to the github.com/deadsy/sdfx
// library: triangles are exchanged as sdf.Triangle3 values and written to
// STL with the sdfx renderer.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/archway/pkg/kernel"
)

// ToMesh flattens triangles into a kernel.Mesh with one vertex per corner
// and flat per-triangle normals.
func ToMesh(triangles []*sdf.Triangle3, part string) *kernel.Mesh {
	numVerts := len(triangles) * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		PartName: part,
	}
}

// ToTriangles expands indexed meshes back into sdfx triangles.
func ToTriangles(meshes []*kernel.Mesh) []*sdf.Triangle3 {
	var out []*sdf.Triangle3
	for _, m := range meshes {
		for t := 0; t < m.TriangleCount(); t++ {
			tri := sdf.Triangle3(m.Triangle(t))
			out = append(out, &tri)
		}
	}
	return out
}

// Bounds returns the axis-aligned box around all mesh vertices. Empty
// input yields the zero box.
func Bounds(meshes []*kernel.Mesh) sdf.Box3 {
	lo := v3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := lo.Neg()
	for _, m := range meshes {
		for i := 0; i < m.VertexCount(); i++ {
			p := m.Vertex(i)
			lo = lo.Min(p)
			hi = hi.Max(p)
		}
	}
	if math.IsInf(lo.X, 1) {
		return sdf.Box3{}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// SaveSTL writes all meshes to a single binary STL file.
func SaveSTL(path string, meshes []*kernel.Mesh) error {
	tris := ToTriangles(meshes)
	if len(tris) == 0 {
		return fmt.Errorf("sdfx: save %s: no triangles", path)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: save %s: %w", path, err)
	}
	return nil
}
