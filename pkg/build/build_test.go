package build

import (
	"bytes"
	"log/slog"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/archway/pkg/door"
	"github.com/chazu/archway/pkg/fill"
	"github.com/chazu/archway/pkg/graph"
	"github.com/chazu/archway/pkg/kernel"
	"github.com/chazu/archway/pkg/kernel/bmesh"
	"github.com/chazu/archway/pkg/meshutil"
)

const tol = 1e-9

func vec(v graph.Vec3) v3.Vec { return v3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// design is a tiny graph builder for tests: walls first, then doors built
// into walls by name.
type design struct {
	g *graph.DesignGraph
}

func newDesign() *design { return &design{g: graph.New()} }

func (d *design) wall(name string, w graph.WallData) *design {
	d.g.AddNode(&graph.Node{ID: graph.NewNodeID("wall/" + name), Kind: graph.NodeWall, Name: name, Data: w})
	return d
}

func (d *design) door(name string, dd graph.DoorData, walls ...string) *design {
	for _, w := range walls {
		dd.Walls = append(dd.Walls, graph.NewNodeID("wall/"+w))
	}
	id := graph.NewNodeID("door/" + name)
	d.g.AddNode(&graph.Node{ID: id, Kind: graph.NodeDoor, Name: name, Children: dd.Walls, Data: dd})
	d.g.AddRoot(id)
	return d
}

// scenarioDoor matches the single-door scenario of the door package.
func scenarioDoor() graph.DoorData {
	return graph.DoorData{
		Array:          1,
		Size:           graph.Vec2{X: 0.8, Y: 0.8},
		FrameThickness: 0.1,
		FrameDepth:     0.1,
		DoorDepth:      0.05,
		Arch:           graph.ArchData{Resolution: 4, Height: 0.2},
	}
}

func TestParamsMatchDoorDefaults(t *testing.T) {
	assert.Equal(t, door.DefaultParams(), Params(graph.DefaultDoorData()))
}

func TestParamsRoutesFillOptions(t *testing.T) {
	opts := fill.Options{"rows": 2}
	cases := []struct {
		fill fill.Type
		slot func(door.Params) fill.Options
	}{
		{fill.Panels, func(p door.Params) fill.Options { return p.PanelFill }},
		{fill.GlassPanes, func(p door.Params) fill.Options { return p.GlassFill }},
		{fill.Louver, func(p door.Params) fill.Options { return p.LouverFill }},
	}
	for _, tc := range cases {
		t.Run(tc.fill.String(), func(t *testing.T) {
			d := graph.DefaultDoorData()
			d.Fill = tc.fill
			d.FillOptions = opts
			p := Params(d)
			assert.Equal(t, tc.fill, p.FillType)
			assert.Equal(t, opts, tc.slot(p))
			assert.Equal(t, opts, p.FillOptions())
		})
	}

	d := graph.DefaultDoorData()
	d.FillOptions = opts
	assert.Nil(t, Params(d).FillOptions(), "options without a fill type go nowhere")
}

func TestWallFace(t *testing.T) {
	for _, facing := range []graph.Facing{graph.FacingFront, graph.FacingBack, graph.FacingLeft, graph.FacingRight} {
		t.Run(facing.String(), func(t *testing.T) {
			m := bmesh.New()
			w := graph.WallData{Width: 3, Height: 2, Origin: graph.Vec3{X: 1, Y: 2, Z: 1}, Facing: facing}
			f, err := WallFace(m, w)
			require.NoError(t, err)
			assert.InDelta(t, 0, f.Normal.Sub(vec(facing.Normal())).Length(), tol)
			assert.InDelta(t, 0, f.CenterMedian().Sub(vec(w.Origin)).Length(), tol)
			width, height := meshutil.FaceDimensions(f)
			assert.InDelta(t, 3, width, tol)
			assert.InDelta(t, 2, height, tol)
			assert.Equal(t, door.PartWall, f.Part)
		})
	}

	_, err := WallFace(bmesh.New(), graph.WallData{Width: 0, Height: 1})
	assert.Error(t, err)
}

func TestBuildSingleDoor(t *testing.T) {
	g := newDesign().
		wall("front", graph.WallData{Width: 2, Height: 2}).
		door("entry", scenarioDoor(), "front").g

	res, err := Build(g, Options{Strict: true})
	require.NoError(t, err)
	require.NoError(t, res.Mesh.Validate())
	assert.Len(t, res.RunID, 8)
	assert.Empty(t, res.Warnings)

	require.Len(t, res.Doors, 1)
	rep := res.Doors[0]
	assert.Equal(t, "entry", rep.Name)
	assert.Equal(t, 1, rep.Report.Built)
	require.Len(t, rep.Report.Faces, 1)
	for _, v := range rep.Report.Faces[0].Verts() {
		assert.InDelta(t, 0.15, v.Co.Y, tol)
	}

	parts := make(map[string]int)
	for _, m := range res.Meshes {
		parts[m.PartName] = m.TriangleCount()
	}
	for _, p := range []string{door.PartWall, door.PartFrame, door.PartReveal, door.PartDoor} {
		assert.Positive(t, parts[p], "part %q tessellated", p)
	}
	assert.Len(t, parts, 4)
	assert.Contains(t, res.Walls, "front")
}

func TestBuildEveryFacing(t *testing.T) {
	for _, facing := range []graph.Facing{graph.FacingFront, graph.FacingBack, graph.FacingLeft, graph.FacingRight} {
		t.Run(facing.String(), func(t *testing.T) {
			origin := graph.Vec3{X: 2, Y: -1, Z: 1}
			g := newDesign().
				wall("w", graph.WallData{Width: 2, Height: 2, Origin: origin, Facing: facing}).
				door("d", scenarioDoor(), "w").g

			res, err := Build(g, Options{Strict: true})
			require.NoError(t, err)
			require.NoError(t, res.Mesh.Validate())
			require.Equal(t, 1, res.Doors[0].Report.Built)

			n := vec(facing.Normal())
			for _, v := range res.Doors[0].Report.Faces[0].Verts() {
				assert.InDelta(t, -0.15, v.Co.Sub(vec(origin)).Dot(n), tol, "door sits behind the wall plane")
			}
		})
	}
}

func TestBuildRejectsInvalidGraph(t *testing.T) {
	g := newDesign().
		wall("w", graph.WallData{Width: 0, Height: 2}).
		door("d", scenarioDoor(), "w").g

	res, err := Build(g, Options{})
	require.ErrorIs(t, err, ErrInvalidGraph)
	assert.Contains(t, err.Error(), "wall width")
	assert.Empty(t, res.Mesh.Faces(), "nothing is built from an invalid graph")
}

func TestBuildContinuesPastFailedDoor(t *testing.T) {
	thick := scenarioDoor()
	thick.FrameThickness = 0.8 // half the opening width
	g := newDesign().
		wall("a", graph.WallData{Width: 2, Height: 2}).
		wall("b", graph.WallData{Width: 2, Height: 2, Origin: graph.Vec3{X: 4}}).
		door("bad", thick, "a").
		door("good", scenarioDoor(), "b").g

	var buf bytes.Buffer
	door.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { door.SetLogger(nil) })

	res, err := Build(g, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, bmesh.ErrTopology)
	assert.Contains(t, err.Error(), `door "bad"`)
	assert.NotEmpty(t, res.Warnings, "the thick frame is predicted by validation")

	require.Len(t, res.Doors, 2)
	assert.Len(t, res.Doors[0].Report.Errors, 1)
	assert.Equal(t, 1, res.Doors[1].Report.Built)
	assert.NotEmpty(t, res.Meshes, "geometry built before and after the failure is kept")

	log := buf.String()
	assert.Contains(t, log, "run="+res.RunID)
	assert.Contains(t, log, "build finished")
	assert.Contains(t, log, "design warning")
}

func TestBuildSkipsOpeningsThatDoNotFit(t *testing.T) {
	d := scenarioDoor()
	d.Offset = graph.Vec3{X: 0.5}
	g := newDesign().
		wall("w", graph.WallData{Width: 2, Height: 2}).
		door("d", d, "w").g

	res, err := Build(g, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Doors[0].Report.Skipped)
	assert.Len(t, res.Mesh.Faces(), 1)
	require.Len(t, res.Meshes, 1)
	assert.Equal(t, door.PartWall, res.Meshes[0].PartName)
}

func TestBuildFillers(t *testing.T) {
	d := scenarioDoor()
	d.Fill = fill.Louver
	d.FillOptions = fill.Options{"slats": 5}
	g := newDesign().
		wall("w", graph.WallData{Width: 2, Height: 2}).
		door("d", d, "w").g

	var calls int
	var got fill.Options
	fillers := fill.Fillers{Louver: fill.FillerFunc(func(_ kernel.Kernel, _ *bmesh.Face, o fill.Options) error {
		calls++
		got = o
		return nil
	})}
	_, err := Build(g, Options{Fillers: fillers})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, fill.Options{"slats": 5}, got)
}
