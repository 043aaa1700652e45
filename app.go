package main

import (
	"github.com/chazu/archway/pkg/build"
	"github.com/chazu/archway/pkg/door"
	"github.com/chazu/archway/pkg/engine"
	"github.com/chazu/archway/pkg/export"
	"github.com/chazu/archway/pkg/graph"
)

// App runs door scripts: evaluate, validate, build, tessellate. It keeps the
// last build so the caller can export it.
type App struct {
	engine *engine.Engine
	opts   build.Options
	last   *build.Result
}

// MeshData is the JSON form of one tessellated part.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning. Line is zero
// when the problem is not tied to a source line.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// DoorSummary counts what one door node produced.
type DoorSummary struct {
	Name    string `json:"name"`
	Built   int    `json:"built"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// EvalResult is the full result of one Evaluate call.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Doors    []DoorSummary   `json:"doors"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with a fresh engine and default build options.
func NewApp() *App {
	return &App{engine: engine.NewEngine()}
}

// Last returns the most recent build, or nil if the last evaluation never
// reached the build.
func (a *App) Last() *build.Result { return a.last }

// Evaluate takes script source and returns meshes, errors and warnings.
// Door construction failures are reported as errors next to the meshes
// of everything that did build.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Doors:    []DoorSummary{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	a.last = nil
	log := door.Logger()

	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		log.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	res, err := build.Build(g, a.opts)
	a.last = res
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: describe(g, w.NodeID, w.Message)})
	}
	if err != nil {
		log.Warn("build failed", "run", res.RunID, "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
	}

	for _, d := range res.Doors {
		result.Doors = append(result.Doors, DoorSummary{
			Name:    d.Name,
			Built:   d.Report.Built,
			Skipped: d.Report.Skipped,
			Failed:  len(d.Report.Errors),
		})
	}
	for i, m := range res.Meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    export.Color(m.PartName, i),
		})
	}
	return result
}

// describe prefixes msg with the kind and name of the node it is about.
func describe(g *graph.DesignGraph, id graph.NodeID, msg string) string {
	if n := g.Get(id); n != nil {
		return n.Kind.String() + " " + n.Name + ": " + msg
	}
	return msg
}
