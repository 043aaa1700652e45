// Command archway builds arched doors from a door script and writes the
// result as STL, DXF or a PNG elevation.
//
// Usage:
//
//	archway [flags] script.door
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/chazu/archway/pkg/build"
	"github.com/chazu/archway/pkg/door"
	"github.com/chazu/archway/pkg/engine"
	"github.com/chazu/archway/pkg/export"
	"github.com/chazu/archway/pkg/kernel/sdfx"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("archway", flag.ContinueOnError)
	fs.SetOutput(stderr)
	strict := fs.Bool("strict", false, "validate the mesh after every kernel operation")
	stlPath := fs.String("stl", "", "write all parts to a binary STL `file`")
	dxfPath := fs.String("dxf", "", "write all parts to a DXF `file`, one layer per part")
	pngPath := fs.String("png", "", "render an elevation to a PNG `file`")
	view := fs.String("view", "front", "elevation direction: front, back, left or right")
	asJSON := fs.Bool("json", false, "print the evaluation result as JSON")
	verbose := fs.Bool("v", false, "log construction detail")
	timeout := fs.Duration("timeout", engine.EvalTimeout, "script evaluation time limit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: archway [flags] script.door\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	v, err := export.ParseView(*view)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	door.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	defer door.SetLogger(nil)

	source, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	app := &App{engine: &engine.Engine{Timeout: *timeout}, opts: build.Options{Strict: *strict}}
	start := time.Now()
	result := app.Evaluate(string(source))
	door.Logger().Info("evaluated", "script", fs.Arg(0), "meshes", len(result.Meshes),
		"errors", len(result.Errors), "elapsed", time.Since(start))

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	} else {
		report(stdout, result)
	}

	status := 0
	if len(result.Errors) > 0 {
		status = 1
	}
	if res := app.Last(); res != nil && len(res.Meshes) > 0 {
		if *stlPath != "" {
			if err := sdfx.SaveSTL(*stlPath, res.Meshes); err != nil {
				fmt.Fprintln(stderr, err)
				status = 1
			}
		}
		if *dxfPath != "" {
			if err := export.DXF(*dxfPath, res.Meshes); err != nil {
				fmt.Fprintln(stderr, err)
				status = 1
			}
		}
		if *pngPath != "" {
			opts := export.DefaultPNGOptions()
			opts.View = v
			if err := export.PNG(*pngPath, res.Meshes, opts); err != nil {
				fmt.Fprintln(stderr, err)
				status = 1
			}
		}
	}
	return status
}

func report(w io.Writer, r EvalResult) {
	for _, d := range r.Doors {
		fmt.Fprintf(w, "door %s: %d built, %d skipped, %d failed\n", d.Name, d.Built, d.Skipped, d.Failed)
	}
	for _, m := range r.Meshes {
		fmt.Fprintf(w, "part %s: %d triangles\n", m.PartName, len(m.Indices)/3)
	}
	for _, e := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", e.Message)
	}
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "error: line %d: %s\n", e.Line, e.Message)
			continue
		}
		fmt.Fprintf(w, "error: %s\n", e.Message)
	}
}
