package bmesh

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wall builds a single quad in the XZ plane facing -Y, corners at (±w/2, ±h/2).
func wall(t *testing.T, w, h float64) (*Mesh, *Face) {
	t.Helper()
	m := New()
	a := m.AddVert(v3.Vec{X: -w / 2, Z: -h / 2})
	b := m.AddVert(v3.Vec{X: w / 2, Z: -h / 2})
	c := m.AddVert(v3.Vec{X: w / 2, Z: h / 2})
	d := m.AddVert(v3.Vec{X: -w / 2, Z: h / 2})
	f, err := m.AddFace([]*Vert{a, b, c, d}, "wall")
	require.NoError(t, err)
	return m, f
}

func edgeAt(t *testing.T, f *Face, a, b v3.Vec) *Edge {
	t.Helper()
	for _, e := range f.Edges() {
		p, q := e.Verts()[0].Co, e.Verts()[1].Co
		if (near(p, a) && near(q, b)) || (near(p, b) && near(q, a)) {
			return e
		}
	}
	t.Fatalf("no edge %v-%v on %s", a, b, f)
	return nil
}

func near(a, b v3.Vec) bool { return a.Sub(b).Length() < Epsilon }

func TestAddFace(t *testing.T) {
	m, f := wall(t, 2, 2)
	assert.Equal(t, 4, f.Len())
	assert.Len(t, m.Edges(), 4)
	assert.InDelta(t, -1, f.Normal.Y, 1e-9)
	assert.InDelta(t, 4, f.Area(), 1e-9)
	require.NoError(t, m.Validate())

	_, err := m.AddFace(f.Verts()[:2], "wall")
	assert.ErrorIs(t, err, ErrTopology)

	v := f.Verts()[0]
	_, err = m.AddFace([]*Vert{v, f.Verts()[1], v}, "wall")
	assert.ErrorIs(t, err, ErrTopology)
}

func TestSplitEdge(t *testing.T) {
	m, f := wall(t, 2, 2)
	e := edgeAt(t, f, v3.Vec{X: 1, Z: -1}, v3.Vec{X: 1, Z: 1})
	top := e.Verts()[1]

	nv, err := m.SplitEdge(e, top, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, nv.Co.Z, 1e-9)
	assert.Equal(t, 5, f.Len())
	assert.True(t, e.Has(top))
	assert.True(t, e.Has(nv))
	require.NoError(t, m.Validate())

	_, err = m.SplitEdge(e, top, 1)
	assert.ErrorIs(t, err, ErrTopology)
}

func TestSplitEdgeSharedByTwoFaces(t *testing.T) {
	m, f := wall(t, 2, 2)
	res, err := m.SubdivideEdges([]*Edge{edgeAt(t, f, v3.Vec{X: -1, Z: -1}, v3.Vec{X: 1, Z: -1})}, 1)
	require.NoError(t, err)
	bottom := res.Verts()[0]
	res, err = m.SubdivideEdges([]*Edge{edgeAt(t, f, v3.Vec{X: 1, Z: 1}, v3.Vec{X: -1, Z: 1})}, 1)
	require.NoError(t, err)
	top := res.Verts()[0]

	g, err := m.ConnectVerts([]*Vert{bottom, top})
	require.NoError(t, err)
	mid := g.Edges()[0]
	require.Len(t, mid.LinkFaces(), 2)

	nv, err := m.SplitEdge(mid, top, 0.5)
	require.NoError(t, err)
	for _, face := range m.Faces() {
		assert.True(t, face.HasVert(nv), "%s should contain the split vertex", face)
	}
	require.NoError(t, m.Validate())
}

func TestSubdivideEdges(t *testing.T) {
	m, f := wall(t, 3, 1)
	e := edgeAt(t, f, v3.Vec{X: -1.5, Z: -0.5}, v3.Vec{X: 1.5, Z: -0.5})

	res, err := m.SubdivideEdges([]*Edge{e}, 2)
	require.NoError(t, err)
	verts := res.Verts()
	require.Len(t, verts, 2)
	assert.InDelta(t, -0.5, verts[0].Co.X, 1e-9)
	assert.InDelta(t, 0.5, verts[1].Co.X, 1e-9)
	assert.Len(t, res.Edges(), 2)
	assert.Equal(t, 6, f.Len())
	require.NoError(t, m.Validate())

	res, err = m.SubdivideEdges([]*Edge{e}, 0)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestConnectVerts(t *testing.T) {
	m, f := wall(t, 2, 2)
	vs := f.Verts()

	g, err := m.ConnectVerts([]*Vert{vs[0], vs[2]})
	require.NoError(t, err)
	require.Len(t, g.Edges(), 1)
	faces := g.Faces()
	require.Len(t, faces, 2)
	assert.Equal(t, 3, faces[0].Len())
	assert.Equal(t, 3, faces[1].Len())
	assert.Equal(t, "wall", faces[1].Part)
	assert.InDelta(t, faces[0].Normal.Y, faces[1].Normal.Y, 1e-9)
	require.NoError(t, m.Validate())

	_, err = m.ConnectVerts([]*Vert{vs[0], vs[2]})
	assert.ErrorIs(t, err, ErrTopology, "already joined")
	_, err = m.ConnectVerts([]*Vert{vs[0]})
	assert.ErrorIs(t, err, ErrTopology)
}

func TestConnectVertsKeepsSecondHalf(t *testing.T) {
	m, f := wall(t, 2, 2)
	vs := f.Verts()
	bot, err := m.SubdivideEdges([]*Edge{EdgeBetween(vs[0], vs[1])}, 1)
	require.NoError(t, err)
	top, err := m.SubdivideEdges([]*Edge{EdgeBetween(vs[2], vs[3])}, 1)
	require.NoError(t, err)

	g, err := m.ConnectVerts([]*Vert{bot.Verts()[0], top.Verts()[0]})
	require.NoError(t, err)
	require.Len(t, g.Faces(), 2)

	live := m.Verts()
	assert.Len(t, live, 6)
	assert.Len(t, m.Edges(), 7)
	for _, half := range g.Faces() {
		assert.Equal(t, 4, half.Len())
		for _, v := range half.Verts() {
			assert.True(t, v.Valid(), "%s on %s", v, half)
			assert.Contains(t, live, v)
		}
		for _, e := range half.Edges() {
			assert.True(t, e.Valid(), "%s on %s", e, half)
		}
	}
	require.NoError(t, m.Validate())

	// Both columns can be cut again.
	for _, half := range g.Faces() {
		e := half.Edges()[0]
		_, err := m.SplitEdge(e, e.Verts()[0], 0.5)
		require.NoError(t, err)
	}
	require.NoError(t, m.Validate())
}

func TestDissolveEdges(t *testing.T) {
	m, f := wall(t, 2, 2)
	vs := f.Verts()
	// Split the quad into two rectangles along x = 0.
	bot, err := m.SubdivideEdges([]*Edge{EdgeBetween(vs[0], vs[1])}, 1)
	require.NoError(t, err)
	top, err := m.SubdivideEdges([]*Edge{EdgeBetween(vs[2], vs[3])}, 1)
	require.NoError(t, err)
	g, err := m.ConnectVerts([]*Vert{bot.Verts()[0], top.Verts()[0]})
	require.NoError(t, err)
	require.Len(t, m.Faces(), 2)

	t.Run("without verts keeps T-junctions", func(t *testing.T) {
		m2, f2 := wall(t, 2, 2)
		vs2 := f2.Verts()
		b2, _ := m2.SubdivideEdges([]*Edge{EdgeBetween(vs2[0], vs2[1])}, 1)
		t2, _ := m2.SubdivideEdges([]*Edge{EdgeBetween(vs2[2], vs2[3])}, 1)
		g2, err := m2.ConnectVerts([]*Vert{b2.Verts()[0], t2.Verts()[0]})
		require.NoError(t, err)
		merged, err := m2.DissolveEdges(g2.Edges(), false)
		require.NoError(t, err)
		require.Len(t, merged, 1)
		assert.Equal(t, 6, merged[0].Len())
		require.NoError(t, m2.Validate())
	})

	mid := g.Edges()[0]
	merged, err := m.DissolveEdges([]*Edge{mid}, true)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, 4, merged[0].Len(), "collinear midpoints dissolved")
	assert.Len(t, m.Faces(), 1)
	assert.Len(t, m.Verts(), 4)
	assert.Len(t, m.Edges(), 4)
	assert.False(t, mid.Valid())
	require.NoError(t, m.Validate())
}

func TestDissolveBoundaryEdgeIsNoop(t *testing.T) {
	m, f := wall(t, 2, 2)
	merged, err := m.DissolveEdges(f.Edges()[:1], true)
	require.NoError(t, err)
	assert.Empty(t, merged)
	assert.True(t, f.Valid())
	assert.Equal(t, 4, f.Len())
	assert.Len(t, m.Faces(), 1)
}

func TestExtrudeDiscreteFaces(t *testing.T) {
	m, f := wall(t, 2, 2)
	res, err := m.ExtrudeDiscreteFaces([]*Face{f})
	require.NoError(t, err)
	assert.False(t, f.Valid())
	require.Len(t, res.Faces, 1)
	require.Len(t, res.Sides, 4)

	nf := res.Faces[0]
	assert.Equal(t, "wall", nf.Part)
	assert.InDelta(t, -1, nf.Normal.Y, 1e-9)

	m.Translate(nf.Verts(), nf.Normal.MulScalar(0.3))
	for _, v := range nf.Verts() {
		assert.InDelta(t, -0.3, v.Co.Y, 1e-9)
	}
	require.NoError(t, m.Validate())
	assert.Len(t, m.Faces(), 5)
}

func TestPointMerge(t *testing.T) {
	m, f := wall(t, 2, 2)
	vs := f.Verts()
	// Put an extra vertex on the right edge and collapse it onto the corner.
	nv, err := m.SplitEdge(EdgeBetween(vs[1], vs[2]), vs[2], 0.1)
	require.NoError(t, err)
	require.Equal(t, 5, f.Len())

	keep, err := m.PointMerge([]*Vert{vs[2], nv}, vs[2].Co)
	require.NoError(t, err)
	assert.Same(t, vs[2], keep)
	assert.False(t, nv.Valid())
	assert.Equal(t, 4, f.Len())
	assert.Len(t, m.Edges(), 4)
	require.NoError(t, m.Validate())
}

func TestPointMergeDropsCollapsedFaces(t *testing.T) {
	m := New()
	a := m.AddVert(v3.Vec{})
	b := m.AddVert(v3.Vec{X: 1})
	c := m.AddVert(v3.Vec{X: 1, Z: 1})
	d := m.AddVert(v3.Vec{Z: 1})
	_, err := m.AddFace([]*Vert{a, b, c, d}, "wall")
	require.NoError(t, err)
	tri, err := m.AddFace([]*Vert{b, a, m.AddVert(v3.Vec{X: 0.5, Z: -1})}, "wall")
	require.NoError(t, err)

	_, err = m.PointMerge([]*Vert{a, b}, v3.Vec{X: 0.5})
	require.NoError(t, err)
	assert.False(t, tri.Valid(), "triangle sharing the collapsed edge is gone")
	assert.Len(t, m.Faces(), 1)
	assert.Equal(t, 3, m.Faces()[0].Len())
	require.NoError(t, m.Validate())
}

func TestDeleteFacesPrunes(t *testing.T) {
	m, f := wall(t, 2, 2)
	res, err := m.ExtrudeDiscreteFaces([]*Face{f})
	require.NoError(t, err)
	m.Translate(res.Faces[0].Verts(), v3.Vec{Y: 1})

	require.NoError(t, m.DeleteFaces(res.Faces))
	assert.Len(t, m.Faces(), 4)
	assert.Len(t, m.Verts(), 8, "verts still used by the sides stay")

	require.NoError(t, m.DeleteFaces(res.Sides))
	assert.Empty(t, m.Faces())
	assert.Empty(t, m.Edges())
	assert.Empty(t, m.Verts())

	assert.ErrorIs(t, m.DeleteFaces(res.Sides), ErrTopology)
}

func TestRecalcNormals(t *testing.T) {
	m := New()
	a := m.AddVert(v3.Vec{})
	b := m.AddVert(v3.Vec{X: 1})
	c := m.AddVert(v3.Vec{X: 1, Z: 1})
	d := m.AddVert(v3.Vec{Z: 1})
	e := m.AddVert(v3.Vec{X: 2})
	g := m.AddVert(v3.Vec{X: 2, Z: 1})
	left, err := m.AddFace([]*Vert{a, b, c, d}, "wall")
	require.NoError(t, err)
	// Same winding direction along b-c: inconsistent with left.
	right, err := m.AddFace([]*Vert{b, c, g, e}, "wall")
	require.NoError(t, err)
	require.Error(t, m.Validate())

	m.RecalcNormals()
	require.NoError(t, m.Validate())
	assert.InDelta(t, left.Normal.Y, right.Normal.Y, 1e-9)
	assert.InDelta(t, -1, left.Normal.Y, 1e-9, "seed face keeps its winding")
}

func TestValidateDetectsSelfIntersection(t *testing.T) {
	m := New()
	a := m.AddVert(v3.Vec{})
	b := m.AddVert(v3.Vec{X: 1, Z: 1})
	c := m.AddVert(v3.Vec{X: 1})
	d := m.AddVert(v3.Vec{Z: 1})
	_, err := m.AddFace([]*Vert{a, b, c, d}, "wall")
	require.NoError(t, err)
	assert.ErrorIs(t, m.Validate(), ErrTopology)
}

func TestValidateDetectsStaleHandles(t *testing.T) {
	t.Run("face uses removed vertex", func(t *testing.T) {
		m, f := wall(t, 2, 2)
		v := f.Verts()[0]
		m.verts = removeItem(m.verts, v)
		v.mesh = nil
		assert.ErrorIs(t, m.Validate(), ErrTopology)
	})
	t.Run("edge missing from vertex", func(t *testing.T) {
		m, f := wall(t, 2, 2)
		v := f.Verts()[1]
		v.edges = v.edges[:1]
		assert.ErrorIs(t, m.Validate(), ErrTopology)
	})
	t.Run("face not registered on edge", func(t *testing.T) {
		m, f := wall(t, 2, 2)
		e := f.Edges()[2]
		e.faces = nil
		assert.ErrorIs(t, m.Validate(), ErrTopology)
	})
}

func TestGeomFilters(t *testing.T) {
	m, f := wall(t, 2, 2)
	g := Geom{f, f.Edges()[0], f.Verts()[0], f.Verts()[1]}
	assert.Len(t, g.Faces(), 1)
	assert.Len(t, g.Edges(), 1)
	assert.Len(t, g.Verts(), 2)

	require.NoError(t, m.DeleteFaces([]*Face{f}))
	assert.Empty(t, g.Faces(), "stale elements are filtered out")
}
