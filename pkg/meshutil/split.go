package meshutil

import (
	"errors"
	"fmt"
	"math"
	"slices"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/archway/pkg/kernel"
	"github.com/chazu/archway/pkg/kernel/bmesh"
)

// ErrDegenerate is returned by InsetFaceWithScaleOffset when the requested
// opening has no area or does not fit inside the face. It marks a face to
// skip, not a failure.
var ErrDegenerate = errors.New("degenerate inset")

// SubdivideFaceEdgesVertical cuts a face into cuts+1 columns of equal width
// by subdividing its two horizontal edges and connecting the new points.
// The cut edges are returned left to right.
func SubdivideFaceEdgesVertical(k kernel.Kernel, face *bmesh.Face, cuts int) ([]*bmesh.Edge, error) {
	if cuts < 1 {
		return nil, nil
	}
	right, _ := FaceAxes(face.Normal)
	horiz := FilterHorizontalEdges(face.Edges(), face.Normal)
	if len(horiz) != 2 {
		return nil, fmt.Errorf("subdivide %s: %d horizontal edges, want 2: %w", face, len(horiz), bmesh.ErrTopology)
	}
	bottom, top := horiz[0], horiz[1]
	if bottom.Median().Z > top.Median().Z {
		bottom, top = top, bottom
	}

	rows := make([][]*bmesh.Vert, 2)
	for i, e := range []*bmesh.Edge{bottom, top} {
		g, err := k.SubdivideEdges([]*bmesh.Edge{e}, cuts)
		if err != nil {
			return nil, fmt.Errorf("subdivide %s: %w", face, err)
		}
		rows[i] = sortAlong(FilterGeom[*bmesh.Vert](g), right)
	}

	edges := make([]*bmesh.Edge, 0, cuts)
	for i := range cuts {
		g, err := k.ConnectVerts([]*bmesh.Vert{rows[0][i], rows[1][i]})
		if err != nil {
			return nil, fmt.Errorf("subdivide %s: cut %d: %w", face, i, err)
		}
		edges = append(edges, FilterGeom[*bmesh.Edge](g)...)
	}
	return edges, nil
}

func sortAlong(verts []*bmesh.Vert, axis v3.Vec) []*bmesh.Vert {
	out := slices.Clone(verts)
	slices.SortStableFunc(out, func(a, b *bmesh.Vert) int {
		return cmpFloat(a.Co.Dot(axis), b.Co.Dot(axis))
	})
	return out
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// InsetFaceWithScaleOffset carves a rectangular opening out of face. The
// opening is width×height of the face's horizontal and vertical extent,
// centred on the face, then shifted by ox (right) and oy (up). The face is cut into regular quads: two vertical
// cuts through the whole face, and two horizontal cuts through the middle
// column only. Cuts that would fall on the boundary are skipped. Finally
// the opening is moved by oz along the normal.
//
// A full-size opening with no in-plane offset returns face itself.
func InsetFaceWithScaleOffset(k kernel.Kernel, face *bmesh.Face, width, height, ox, oy, oz float64) (*bmesh.Face, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("inset %s: size %gx%g: %w", face, width, height, ErrDegenerate)
	}
	normal := face.Normal
	right, up := FaceAxes(normal)
	r0, r1, u0, u1 := faceRect(face)

	ow, oh := (r1-r0)*width, (u1-u0)*height
	rl := r0 + ((r1-r0)-ow)/2 + ox
	rr := rl + ow
	ub := u0 + ((u1-u0)-oh)/2 + oy
	ut := ub + oh
	const eps = bmesh.Epsilon
	if rl < r0-eps || rr > r1+eps || ub < u0-eps || ut > u1+eps {
		return nil, fmt.Errorf("inset %s: opening outside face: %w", face, ErrDegenerate)
	}

	var err error
	opening := face
	cuts := []struct {
		axis  v3.Vec
		at    float64
		above bool
		skip  bool
	}{
		{right, rl, true, rl <= r0+eps},
		{right, rr, false, rr >= r1-eps},
		{up, ub, true, ub <= u0+eps},
		{up, ut, false, ut >= u1-eps},
	}
	for _, c := range cuts {
		if c.skip {
			continue
		}
		if opening, err = cutFace(k, opening, c.axis, c.at, c.above); err != nil {
			return nil, fmt.Errorf("inset %s: %w", face, err)
		}
	}

	if oz != 0 {
		k.Translate(opening.Verts(), normal.MulScalar(oz))
	}
	return opening, nil
}

// cutFace splits a convex face along the line where dot(p, axis) == at and
// returns the piece on the requested side.
func cutFace(k kernel.Kernel, face *bmesh.Face, axis v3.Vec, at float64, above bool) (*bmesh.Face, error) {
	type hit struct {
		e   *bmesh.Edge
		v   *bmesh.Vert
		fac float64
	}
	var hits []hit
	verts := face.Verts()
	for i, p := range verts {
		q := verts[(i+1)%len(verts)]
		dp, dq := p.Co.Dot(axis)-at, q.Co.Dot(axis)-at
		switch {
		case math.Abs(dp) < bmesh.Epsilon:
			hits = append(hits, hit{v: p})
		case math.Abs(dq) >= bmesh.Epsilon && dp*dq < 0:
			hits = append(hits, hit{e: bmesh.EdgeBetween(p, q), v: p, fac: dp / (dp - dq)})
		}
	}
	if len(hits) != 2 {
		return nil, fmt.Errorf("cut %s at %g: %d crossings, want 2: %w", face, at, len(hits), bmesh.ErrTopology)
	}

	ends := make([]*bmesh.Vert, 2)
	for i, h := range hits {
		if h.e == nil {
			ends[i] = h.v
			continue
		}
		v, err := k.SplitEdge(h.e, h.v, h.fac)
		if err != nil {
			return nil, fmt.Errorf("cut %s: %w", face, err)
		}
		ends[i] = v
	}
	g, err := k.ConnectVerts(ends)
	if err != nil {
		return nil, fmt.Errorf("cut %s: %w", face, err)
	}
	for _, f := range FilterGeom[*bmesh.Face](g) {
		if (f.CenterMedian().Dot(axis) > at) == above {
			return f, nil
		}
	}
	return nil, fmt.Errorf("cut %s at %g: no piece on the kept side: %w", face, at, bmesh.ErrTopology)
}
