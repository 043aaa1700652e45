// Package door builds arched doors into the faces of a boundary mesh.
//
// For every base face, Create runs the stages in order: Array splits the
// face into columns, Split carves the rough opening out of each column,
// Frame dissolves the floor edge, builds the frame ring and arches the
// tops, extrudes the door and frame depths, and the result is handed to
// the fill generator. A column whose opening does not fit is skipped; a
// construction that hits an unexpected topology is abandoned and reported
// while the rest of the batch continues.
package door

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/samber/lo"

	"github.com/chazu/archway/pkg/fill"
	"github.com/chazu/archway/pkg/kernel"
	"github.com/chazu/archway/pkg/kernel/bmesh"
	"github.com/chazu/archway/pkg/meshutil"
)

// Face part labels assigned during construction.
const (
	PartWall   = "wall"
	PartFrame  = "frame"
	PartDoor   = "door"
	PartReveal = "reveal"
)

// Report summarises a Create call.
type Report struct {
	Built   int
	Skipped int
	// Faces are the final faces of the built doors, in build order.
	Faces  []*bmesh.Face
	Errors []error
}

// Create builds doors into faces. Openings that do not fit are skipped;
// openings whose construction fails are recorded in Report.Errors and the
// batch moves on. The returned error joins every failure.
func Create(k kernel.Kernel, faces []*bmesh.Face, p Params, fillers fill.Fillers) (Report, error) {
	var rep Report
	if err := p.Validate(); err != nil {
		return rep, err
	}
	log := Logger()

	for i, base := range faces {
		cols, err := CreateArray(k, base, p.Array)
		if err != nil {
			rep.fail(log, fmt.Errorf("face %d: array: %w", i, err))
			continue
		}
		for j, col := range cols {
			f, err := createOne(k, col, p, fillers)
			switch {
			case errors.Is(err, meshutil.ErrDegenerate):
				rep.Skipped++
				log.Info("opening skipped", "face", i, "column", j, "reason", err)
			case err != nil:
				rep.fail(log, fmt.Errorf("face %d column %d: %w", i, j, err))
			default:
				rep.Built++
				rep.Faces = append(rep.Faces, f)
				log.Debug("door built", "face", i, "column", j, "result", f)
			}
		}
	}
	return rep, errors.Join(rep.Errors...)
}

func (r *Report) fail(log *slog.Logger, err error) {
	r.Errors = append(r.Errors, err)
	log.Warn("door construction abandoned", "err", err)
}

func createOne(k kernel.Kernel, face *bmesh.Face, p Params, fillers fill.Fillers) (*bmesh.Face, error) {
	f, err := CreateSplit(k, face, p.SizeOffset)
	if err != nil {
		return nil, err
	}
	if f, err = CreateFrame(k, f, p); err != nil {
		return nil, err
	}
	if err := fill.Dispatch(k, f, p.FillType, fillers, p.FillOptions()); err != nil {
		return nil, err
	}
	return f, nil
}

// CreateArray divides face into a.Count columns of equal width, ordered
// left to right. A count of one or less returns face unchanged.
func CreateArray(k kernel.Kernel, face *bmesh.Face, a Array) ([]*bmesh.Face, error) {
	if a.Count <= 1 {
		return []*bmesh.Face{face}, nil
	}
	right, _ := meshutil.FaceAxes(face.Normal)
	edges, err := meshutil.SubdivideFaceEdgesVertical(k, face, a.Count-1)
	if err != nil {
		return nil, err
	}
	cols := lo.Uniq(lo.FlatMap(edges, func(e *bmesh.Edge, _ int) []*bmesh.Face { return e.LinkFaces() }))
	slices.SortStableFunc(cols, func(a, b *bmesh.Face) int {
		ra, rb := a.CenterMedian().Dot(right), b.CenterMedian().Dot(right)
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		}
		return 0
	})
	return cols, nil
}

// CreateSplit carves the rough opening out of face. It returns an error
// wrapping meshutil.ErrDegenerate when the opening does not fit; the
// caller skips the face.
func CreateSplit(k kernel.Kernel, face *bmesh.Face, so SizeOffset) (*bmesh.Face, error) {
	return meshutil.InsetFaceWithScaleOffset(k, face,
		so.Size.Y, so.Size.X, so.Offset.X, so.Offset.Y, so.Offset.Z)
}
