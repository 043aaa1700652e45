package door

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"github.com/chazu/archway/pkg/kernel"
	"github.com/chazu/archway/pkg/kernel/bmesh"
	"github.com/chazu/archway/pkg/meshutil"
)

// errReporter is implemented by kernels that record failures from calls
// without an error result (see manifold.ManifoldKernel).
type errReporter interface {
	Err() error
}

// CreateFrame turns a rough opening into a framed, arched door and returns
// the face to fill: the frame-depth face when FrameDepth is set, otherwise
// the door face.
func CreateFrame(k kernel.Kernel, face *bmesh.Face, p Params) (*bmesh.Face, error) {
	log := Logger()
	normal := face.Normal

	// Open the floor: merge the opening with whatever lies below it.
	bottom := meshutil.LowestEdge(face.Edges())
	if bottom == nil {
		return nil, fmt.Errorf("frame %s: no edges: %w", face, bmesh.ErrTopology)
	}
	merged, err := k.DissolveEdges([]*bmesh.Edge{bottom}, true)
	if err != nil {
		return nil, fmt.Errorf("frame: floor: %w", err)
	}
	if len(merged) > 0 {
		face = merged[len(merged)-1]
	}
	if !face.Valid() {
		return nil, fmt.Errorf("frame: opening lost after floor dissolve: %w", bmesh.ErrTopology)
	}

	top := meshutil.HighestEdge(face.Edges())
	inner := top
	if p.FrameThickness > 0 {
		if face, inner, err = frameRing(k, face, p.FrameThickness); err != nil {
			return nil, fmt.Errorf("frame: ring: %w", err)
		}
	}
	log.Debug("frame ring", "opening", face, "top", top, "inner", inner)

	for _, e := range lo.Uniq([]*bmesh.Edge{top, inner}) {
		if _, err := meshutil.ArcEdge(k, e, normal, p.Arch.Resolution, p.Arch.Height, p.Arch.Offset); err != nil {
			return nil, fmt.Errorf("frame: arch: %w", err)
		}
	}

	if p.DoorDepth > 0 {
		res, err := k.ExtrudeDiscreteFaces([]*bmesh.Face{face})
		if err != nil {
			return nil, fmt.Errorf("frame: door depth: %w", err)
		}
		face = res.Faces[len(res.Faces)-1]
		label(res.Sides, PartReveal)
		k.Translate(face.Verts(), normal.MulScalar(-p.DoorDepth))
	}
	k.RecalcNormals()
	if r, ok := k.(errReporter); ok && r.Err() != nil {
		return nil, fmt.Errorf("frame: %w", r.Err())
	}
	face.Part = PartDoor

	if p.FrameDepth > 0 {
		if face, err = ExtrudeFaceAndDeleteBottom(k, face, -p.FrameDepth); err != nil {
			return nil, fmt.Errorf("frame: frame depth: %w", err)
		}
	}
	return face, nil
}

// frameRing splits a frame of thickness ft off the sides and top of the
// opening. It returns the new, smaller opening and its top edge.
func frameRing(k kernel.Kernel, face *bmesh.Face, ft float64) (*bmesh.Face, *bmesh.Edge, error) {
	w, h := meshutil.FaceDimensions(face)
	if 2*ft >= w || ft >= h {
		return nil, nil, fmt.Errorf("thickness %g does not fit a %gx%g opening: %w", ft, w, h, bmesh.ErrTopology)
	}

	split, err := splitEdgesHorizontalOffsetTop(k, meshutil.FilterVerticalEdges(face.Edges(), face.Normal), ft)
	if err != nil {
		return nil, nil, err
	}
	face = meshutil.LowestFace(split.LinkFaces())

	w, _ = meshutil.FaceDimensions(face)
	off := w/3 - ft
	cuts, err := splitFaceVerticalWithOffset(k, face, 2, []float64{off, off})
	if err != nil {
		return nil, nil, err
	}
	shared := lo.Intersect(cuts[0].LinkFaces(), cuts[1].LinkFaces())
	if len(shared) != 1 {
		return nil, nil, fmt.Errorf("%d faces between the mullion cuts, want 1: %w", len(shared), bmesh.ErrTopology)
	}
	opening := shared[0]
	inner := meshutil.HighestEdge(opening.Edges())

	// Fold the side members' top corners onto the outer top corners. The
	// two lowest linked vertices are the feet of the mullion cuts.
	ends := inner.Verts()
	var linked []*bmesh.Vert
	for _, v := range ends {
		for _, n := range v.Neighbors() {
			if !inner.Has(n) && !lo.Contains(linked, n) {
				linked = append(linked, n)
			}
		}
	}
	sorted := meshutil.SortVertsByHeight(linked)
	if len(sorted) < 2 {
		return nil, nil, fmt.Errorf("%d vertices around the inner top edge: %w", len(sorted), bmesh.ErrTopology)
	}
	upperTier := sorted[2:]
	for i := len(upperTier) - 1; i >= 0; i-- {
		v := upperTier[i]
		if !v.Valid() {
			continue
		}
		upper := meshutil.HighestNeighbor(v)
		if upper == nil {
			return nil, nil, fmt.Errorf("%s has no neighbours: %w", v, bmesh.ErrTopology)
		}
		if _, err := k.PointMerge([]*bmesh.Vert{upper, v}, upper.Co); err != nil {
			return nil, nil, err
		}
	}

	for _, v := range ends {
		for _, f := range v.LinkFaces() {
			if f != opening {
				f.Part = PartFrame
			}
		}
	}
	return opening, inner, nil
}

// splitEdgesHorizontalOffsetTop cuts the face spanned by edges with a
// horizontal edge offset below the top of each vertical side, and returns
// that edge.
func splitEdgesHorizontalOffsetTop(k kernel.Kernel, edges []*bmesh.Edge, offset float64) (*bmesh.Edge, error) {
	face := meshutil.FaceWithVerts(meshutil.EdgeVerts(edges))
	if face == nil {
		return nil, fmt.Errorf("no face spans %d edges: %w", len(edges), bmesh.ErrTopology)
	}
	var verts []*bmesh.Vert
	for _, e := range meshutil.FilterVerticalEdges(face.Edges(), face.Normal) {
		ends := e.Verts()
		top := lo.MaxBy(ends[:], func(a, b *bmesh.Vert) bool { return a.Co.Z > b.Co.Z })
		v, err := k.SplitEdge(e, top, offset/e.Length())
		if err != nil {
			return nil, err
		}
		verts = append(verts, v)
	}
	g, err := k.ConnectVerts(verts)
	if err != nil {
		return nil, err
	}
	edges = meshutil.FilterGeom[*bmesh.Edge](g)
	return edges[len(edges)-1], nil
}

// splitFaceVerticalWithOffset cuts face into cuts+1 columns and pushes each
// cut sideways, away from the face centre, by the matching offset.
func splitFaceVerticalWithOffset(k kernel.Kernel, face *bmesh.Face, cuts int, offsets []float64) ([]*bmesh.Edge, error) {
	median := face.CenterMedian()
	right, _ := meshutil.FaceAxes(face.Normal)
	edges, err := meshutil.SubdivideFaceEdgesVertical(k, face, cuts)
	if err != nil {
		return nil, err
	}
	for i, e := range edges {
		if i >= len(offsets) {
			break
		}
		side := math.Copysign(1, e.Median().Sub(median).Dot(right))
		ends := e.Verts()
		k.Translate(ends[:], right.MulScalar(side*offsets[i]))
	}
	return edges, nil
}

// ExtrudeFaceAndDeleteBottom extrudes face by depth along its normal and
// deletes the bottom face of the extrusion, so the result stays open
// where it meets the floor. It returns the extruded face.
func ExtrudeFaceAndDeleteBottom(k kernel.Kernel, face *bmesh.Face, depth float64) (*bmesh.Face, error) {
	res, err := k.ExtrudeDiscreteFaces([]*bmesh.Face{face})
	if err != nil {
		return nil, err
	}
	f := res.Faces[len(res.Faces)-1]
	label(res.Sides, PartReveal)
	k.Translate(f.Verts(), f.Normal.MulScalar(depth))
	if err := deleteBottomFace(k, f); err != nil {
		return nil, err
	}
	return f, nil
}

func deleteBottomFace(k kernel.Kernel, face *bmesh.Face) error {
	bottom := meshutil.LowestEdge(meshutil.FilterHorizontalEdges(face.Edges(), face.Normal))
	if bottom == nil {
		return fmt.Errorf("%s has no horizontal edge: %w", face, bmesh.ErrTopology)
	}
	return k.DeleteFaces([]*bmesh.Face{meshutil.LowestFace(bottom.LinkFaces())})
}

func label(faces []*bmesh.Face, part string) {
	for _, f := range faces {
		f.Part = part
	}
}
