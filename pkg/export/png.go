package export

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/gogpu/gg"

	"github.com/chazu/archway/pkg/door"
	"github.com/chazu/archway/pkg/kernel"
	"github.com/chazu/archway/pkg/kernel/sdfx"
)

// View is the direction an elevation looks in. The up axis is always +Z.
type View int

const (
	ViewFront View = iota // looking along +Y
	ViewBack              // looking along -Y
	ViewLeft              // looking along +X
	ViewRight             // looking along -X
)

var viewNames = []string{"front", "back", "left", "right"}

func (v View) String() string {
	if v >= 0 && int(v) < len(viewNames) {
		return viewNames[v]
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// ParseView maps "front", "back", "left" or "right" to its View.
func ParseView(s string) (View, error) {
	if i := slices.Index(viewNames, s); i >= 0 {
		return View(i), nil
	}
	return ViewFront, fmt.Errorf("export: unknown view %q", s)
}

func (v View) forward() v3.Vec {
	switch v {
	case ViewBack:
		return v3.Vec{Y: -1}
	case ViewLeft:
		return v3.Vec{X: 1}
	case ViewRight:
		return v3.Vec{X: -1}
	}
	return v3.Vec{Y: 1}
}

// PNGOptions controls an elevation render.
type PNGOptions struct {
	Width, Height int
	View          View
	Background    string // hex; empty for white
	Margin        float64 // pixels on every side
}

// DefaultPNGOptions renders a 1024x768 front elevation.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Width: 1024, Height: 768, View: ViewFront, Background: "#FFFFFF", Margin: 16}
}

type shape struct {
	pts   [3][2]float64
	depth float64
	color string
}

// PNG renders an orthographic elevation of meshes to path. Triangles are
// painted far to near in their part's color, which is enough for the
// convex-ish solids doors are made of.
func PNG(path string, meshes []*kernel.Mesh, opts PNGOptions) error {
	if err := checkMeshes(meshes); err != nil {
		return fmt.Errorf("export png: %w", err)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("export png: image size %dx%d is not positive", opts.Width, opts.Height)
	}

	fwd := opts.View.forward()
	right := fwd.Cross(v3.Vec{Z: 1})
	x0, x1, z0, z1 := extent(sdfx.Bounds(meshes), right)

	avail := math.Min(float64(opts.Width)-2*opts.Margin, float64(opts.Height)-2*opts.Margin)
	scale := avail / math.Max(math.Max(x1-x0, z1-z0), 1e-9)
	cx := (float64(opts.Width) - (x1-x0)*scale) / 2
	cy := (float64(opts.Height) - (z1-z0)*scale) / 2
	project := func(v v3.Vec) [2]float64 {
		return [2]float64{
			cx + (v.Dot(right)-x0)*scale,
			float64(opts.Height) - (cy + (v.Z-z0)*scale),
		}
	}

	var shapes []shape
	for i, m := range meshes {
		col := Color(m.PartName, i)
		_ = triangles(m, func(tri [3]v3.Vec) error {
			mid := tri[0].Add(tri[1]).Add(tri[2]).DivScalar(3)
			shapes = append(shapes, shape{
				pts:   [3][2]float64{project(tri[0]), project(tri[1]), project(tri[2])},
				depth: mid.Dot(fwd),
				color: col,
			})
			return nil
		})
	}
	slices.SortStableFunc(shapes, func(a, b shape) int { return cmp.Compare(b.depth, a.depth) })

	bg := opts.Background
	if bg == "" {
		bg = "#FFFFFF"
	}
	dc := gg.NewContext(opts.Width, opts.Height)
	defer dc.Close()
	dc.ClearWithColor(gg.Hex(bg))
	dc.SetLineWidth(0.5)
	for _, s := range shapes {
		dc.SetHexColor(s.color)
		dc.MoveTo(s.pts[0][0], s.pts[0][1])
		dc.LineTo(s.pts[1][0], s.pts[1][1])
		dc.LineTo(s.pts[2][0], s.pts[2][1])
		dc.ClosePath()
		if err := dc.FillPreserve(); err != nil {
			return fmt.Errorf("export png: %w", err)
		}
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("export png: %w", err)
		}
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("export png: save %s: %w", path, err)
	}
	door.Logger().Info("png written", "path", path, "triangles", len(shapes), "view", opts.View)
	return nil
}

// extent projects the corners of box onto the view plane.
func extent(box sdf.Box3, right v3.Vec) (x0, x1, z0, z1 float64) {
	x0, z0 = math.Inf(1), math.Inf(1)
	x1, z1 = math.Inf(-1), math.Inf(-1)
	for _, x := range []float64{box.Min.X, box.Max.X} {
		for _, y := range []float64{box.Min.Y, box.Max.Y} {
			for _, z := range []float64{box.Min.Z, box.Max.Z} {
				r := v3.Vec{X: x, Y: y, Z: z}.Dot(right)
				x0, x1 = math.Min(x0, r), math.Max(x1, r)
				z0, z1 = math.Min(z0, z), math.Max(z1, z)
			}
		}
	}
	return x0, x1, z0, z1
}
