// Package build turns a validated design graph into geometry: every wall
// becomes a face of one boundary mesh, every door is constructed into the
// faces of its walls, and the result is tessellated per part.
package build

import (
	"errors"
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"

	"github.com/chazu/archway/pkg/door"
	"github.com/chazu/archway/pkg/fill"
	"github.com/chazu/archway/pkg/graph"
	"github.com/chazu/archway/pkg/kernel"
	"github.com/chazu/archway/pkg/kernel/bmesh"
	"github.com/chazu/archway/pkg/kernel/manifold"
	"github.com/chazu/archway/pkg/meshutil"
	"github.com/chazu/archway/pkg/tessellate"
)

// ErrInvalidGraph is wrapped when graph validation reports errors.
var ErrInvalidGraph = errors.New("invalid design graph")

// Options controls a build.
type Options struct {
	// Strict validates the mesh after every kernel mutation.
	Strict bool
	// Fillers generate door fills. Missing generators leave doors unfilled.
	Fillers fill.Fillers
}

// DoorReport is the outcome of one door node.
type DoorReport struct {
	Name   string
	Report door.Report
}

// Result is everything a build produced. It is returned even when some
// doors failed, so the geometry that was built can still be exported.
type Result struct {
	RunID    string
	Mesh     *bmesh.Mesh
	Walls    map[string]*bmesh.Face // original wall faces by wall name
	Doors    []DoorReport
	Meshes   []*kernel.Mesh // tessellated, one per part
	Warnings []graph.ValidationWarning
}

// Build validates g and builds it. Validation errors stop the build before
// any geometry is made. Door failures do not: the returned error joins
// them and the Result holds everything else.
func Build(g *graph.DesignGraph, opts Options) (*Result, error) {
	res := &Result{
		RunID: uuid.NewString()[:8],
		Mesh:  bmesh.New(),
		Walls: make(map[string]*bmesh.Face),
	}
	log := door.Logger().With("run", res.RunID)

	vr := graph.ValidateAll(g)
	res.Warnings = vr.Warnings
	for _, w := range vr.Warnings {
		log.Info("design warning", "node", w.NodeID.Short(), "msg", w.Message)
	}
	if !vr.OK() {
		errs := make([]error, len(vr.Errors))
		for i, e := range vr.Errors {
			errs[i] = e
		}
		return res, fmt.Errorf("build: %w: %w", ErrInvalidGraph, errors.Join(errs...))
	}

	var k kernel.Kernel = res.Mesh
	if opts.Strict {
		k = manifold.New(res.Mesh)
	}

	faces := make(map[graph.NodeID]*bmesh.Face)
	for _, n := range g.Walls() {
		wd, ok := n.Data.(graph.WallData)
		if !ok {
			return res, fmt.Errorf("build: wall %q carries %T", n.Name, n.Data)
		}
		f, err := WallFace(res.Mesh, wd)
		if err != nil {
			return res, fmt.Errorf("build: wall %q: %w", n.Name, err)
		}
		faces[n.ID] = f
		res.Walls[n.Name] = f
	}
	log.Info("build started", "walls", len(faces), "doors", len(g.Doors()), "strict", opts.Strict)

	var doorErrs []error
	for _, n := range g.Doors() {
		dd := n.Data.(graph.DoorData) // checked by validation
		base := make([]*bmesh.Face, 0, len(dd.Walls))
		for _, wid := range dd.Walls {
			base = append(base, faces[wid])
		}
		rep, err := door.Create(k, base, Params(dd), opts.Fillers)
		res.Doors = append(res.Doors, DoorReport{Name: n.Name, Report: rep})
		if err != nil {
			doorErrs = append(doorErrs, fmt.Errorf("door %q: %w", n.Name, err))
		}
		log.Info("door done", "door", n.Name, "built", rep.Built, "skipped", rep.Skipped, "failed", len(rep.Errors))
	}

	meshes, err := tessellate.Tessellate(res.Mesh.Faces())
	if err != nil {
		return res, fmt.Errorf("build: %w", err)
	}
	res.Meshes = meshes
	log.Info("build finished", "faces", len(res.Mesh.Faces()), "parts", len(meshes))

	if err := errors.Join(doorErrs...); err != nil {
		return res, fmt.Errorf("build: %w", err)
	}
	return res, nil
}

// WallFace adds the rectangle of a wall to m, wound so its normal is the
// wall's facing.
func WallFace(m *bmesh.Mesh, w graph.WallData) (*bmesh.Face, error) {
	if w.Width <= 0 || w.Height <= 0 {
		return nil, fmt.Errorf("wall size %gx%g is not positive", w.Width, w.Height)
	}
	n := w.Facing.Normal()
	right, up := meshutil.FaceAxes(v3.Vec{X: n.X, Y: n.Y, Z: n.Z})
	o := v3.Vec{X: w.Origin.X, Y: w.Origin.Y, Z: w.Origin.Z}
	r, u := right.MulScalar(w.Width/2), up.MulScalar(w.Height/2)

	corners := []v3.Vec{
		o.Sub(r).Sub(u),
		o.Add(r).Sub(u),
		o.Add(r).Add(u),
		o.Sub(r).Add(u),
	}
	verts := make([]*bmesh.Vert, len(corners))
	for i, c := range corners {
		verts[i] = m.AddVert(c)
	}
	return m.AddFace(verts, door.PartWall)
}

// Params converts door node data into construction parameters. The fill
// options go to the slot of the selected fill type.
func Params(d graph.DoorData) door.Params {
	p := door.Params{
		Array: door.Array{Count: d.Array},
		SizeOffset: door.SizeOffset{
			Size:   v2.Vec{X: d.Size.X, Y: d.Size.Y},
			Offset: v3.Vec{X: d.Offset.X, Y: d.Offset.Y, Z: d.Offset.Z},
		},
		FrameThickness: d.FrameThickness,
		FrameDepth:     d.FrameDepth,
		DoorDepth:      d.DoorDepth,
		Arch: door.Arch{
			Resolution: d.Arch.Resolution,
			Height:     d.Arch.Height,
			Offset:     d.Arch.Offset,
		},
		FillType: d.Fill,
	}
	switch d.Fill {
	case fill.Panels:
		p.PanelFill = d.FillOptions
	case fill.GlassPanes:
		p.GlassFill = d.FillOptions
	case fill.Louver:
		p.LouverFill = d.FillOptions
	}
	return p
}
