package export

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/chazu/archway/pkg/door"
	"github.com/chazu/archway/pkg/kernel"
)

var layerColors = map[string]color.ColorNumber{
	door.PartWall:   color.White,
	door.PartFrame:  color.Yellow,
	door.PartReveal: color.Cyan,
	door.PartDoor:   color.Red,
}

// DXF writes meshes to path as 3DFACE entities, one layer per part.
func DXF(path string, meshes []*kernel.Mesh) error {
	if err := checkMeshes(meshes); err != nil {
		return fmt.Errorf("export dxf: %w", err)
	}
	d := dxf.NewDrawing()
	for _, m := range meshes {
		if m.IsEmpty() {
			continue
		}
		if err := addLayer(d, m.PartName); err != nil {
			return fmt.Errorf("export dxf: %w", err)
		}
		err := triangles(m, func(tri [3]v3.Vec) error {
			// A triangle is a 3DFACE whose fourth corner repeats the third.
			pts := [][]float64{point(tri[0]), point(tri[1]), point(tri[2]), point(tri[2])}
			_, err := d.ThreeDFace(pts)
			return err
		})
		if err != nil {
			return fmt.Errorf("export dxf: %w", err)
		}
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export dxf: save %s: %w", path, err)
	}
	door.Logger().Info("dxf written", "path", path, "parts", len(meshes))
	return nil
}

func point(v v3.Vec) []float64 { return []float64{v.X, v.Y, v.Z} }

// addLayer makes the part's layer current, creating it on first use.
func addLayer(d *drawing.Drawing, part string) error {
	if err := d.ChangeLayer(part); err == nil {
		return nil
	}
	cl, ok := layerColors[part]
	if !ok {
		cl = color.Green
	}
	if _, err := d.AddLayer(part, cl, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("layer %s: %w", part, err)
	}
	return nil
}
