package engine

import (
	"fmt"
	"slices"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/archway/pkg/fill"
	"github.com/chazu/archway/pkg/graph"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms door script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: fill-options -> fill_options
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	kind graph.NodeKind
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", n.kind, n.name)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec2 wraps a graph.Vec2.
type sexpVec2 struct {
	vec graph.Vec2
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpArch wraps a graph.ArchData returned from `arch`.
type sexpArch struct {
	arch graph.ArchData
}

func (a *sexpArch) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(arch :resolution %d :height %g :offset %g)", a.arch.Resolution, a.arch.Height, a.arch.Offset)
}
func (a *sexpArch) Type() *zygo.RegisteredType { return nil }

// sexpFillOptions wraps the options returned from `fill-options`.
type sexpFillOptions struct {
	opts fill.Options
}

func (o *sexpFillOptions) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(fill-options %v)", o.opts)
}
func (o *sexpFillOptions) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string // keyword names in call order
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if _, dup := result.kw[name]; !dup {
				result.order = append(result.order, name)
			}
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// unknown returns an error naming the first keyword not in allowed.
func (a kwArgs) unknown(fn string, allowed ...string) error {
	for _, k := range a.order {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("%s: unknown keyword :%s", fn, k)
		}
	}
	return nil
}

// floatKW sets *dst from keyword kw when present.
func (a kwArgs) floatKW(fn, kw string, dst *float64) error {
	v, ok := a.kw[kw]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, kw, err)
	}
	*dst = f
	return nil
}

// intKW sets *dst from keyword kw when present.
func (a kwArgs) intKW(fn, kw string, dst *int) error {
	v, ok := a.kw[kw]
	if !ok {
		return nil
	}
	n, err := toInt(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, kw, err)
	}
	*dst = n
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer; floats are accepted when they are whole.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == float64(int(v.Val)) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_front) and plain strings ("front").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toFacing converts a keyword or string to a graph.Facing.
func toFacing(s zygo.Sexp) (graph.Facing, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected facing keyword (:front, :back, :left, :right): %w", err)
	}
	return graph.ParseFacing(name)
}

// toFillType converts a keyword or string to a fill.Type.
func toFillType(s zygo.Sexp) (fill.Type, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected fill keyword (:none, :panels, :glass-panes, :louver): %w", err)
	}
	return fill.ParseType(name)
}

// toWallRef extracts a wall NodeID from a sexpNodeRef.
func toWallRef(s zygo.Sexp) (graph.NodeID, error) {
	ref, ok := s.(*sexpNodeRef)
	if !ok {
		return graph.ZeroID, fmt.Errorf("expected wall reference, got %T (%s)", s, s.SexpString(nil))
	}
	if ref.kind != graph.NodeWall {
		return graph.ZeroID, fmt.Errorf("expected wall reference, got %s %q", ref.kind, ref.name)
	}
	return ref.id, nil
}

// toVec2 extracts a Vec2 from a sexpVec2.
func toVec2(s zygo.Sexp) (graph.Vec2, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.vec, nil
	}
	return graph.Vec2{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// numbers converts exactly n numeric arguments.
func numbers(fn string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", fn, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the door DSL builtins into a zygomys environment.
// The builtins operate on the provided DesignGraph, populating it during
// evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {

	// -----------------------------------------------------------------------
	// (vec2 0.8 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		n, err := numbers("vec2", args, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec2{vec: graph.Vec2{X: n[0], Y: n[1]}}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		n, err := numbers("vec3", args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: graph.Vec3{X: n[0], Y: n[1], Z: n[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (arch :resolution 8 :height 0.2 :offset 0)
	// -----------------------------------------------------------------------
	env.AddFunction("arch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.unknown("arch", "resolution", "height", "offset"); err != nil {
			return zygo.SexpNull, err
		}
		a := graph.DefaultDoorData().Arch
		if err := pa.intKW("arch", "resolution", &a.Resolution); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.floatKW("arch", "height", &a.Height); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.floatKW("arch", "offset", &a.Offset); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpArch{arch: a}, nil
	})

	// -----------------------------------------------------------------------
	// (fill-options :rows 3 :cols 2)
	//
	// Registered as "fill_options"; the preprocessor converts the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("fill_options", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("fill-options takes only keyword arguments")
		}
		opts := make(fill.Options, len(pa.kw))
		for _, k := range pa.order {
			f, err := toFloat64(pa.kw[k])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fill-options: %s: %w", k, err)
			}
			opts[k] = f
		}
		return &sexpFillOptions{opts: opts}, nil
	})

	// -----------------------------------------------------------------------
	// (wall "front" :width 2 :height 2 :origin (vec3 0 0 0) :facing :front)
	// -----------------------------------------------------------------------
	env.AddFunction("wall", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		wallName, err := nodeName("wall", g, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.unknown("wall", "width", "height", "origin", "facing"); err != nil {
			return zygo.SexpNull, err
		}

		wd := graph.WallData{}
		if err := pa.floatKW("wall", "width", &wd.Width); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.floatKW("wall", "height", &wd.Height); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["origin"]; ok {
			if wd.Origin, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("wall: origin: %w", err)
			}
		}
		if v, ok := pa.kw["facing"]; ok {
			if wd.Facing, err = toFacing(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("wall: facing: %w", err)
			}
		}

		id := graph.NewNodeID("wall/" + wallName)
		g.AddNode(&graph.Node{
			ID:   id,
			Kind: graph.NodeWall,
			Name: wallName,
			Data: wd,
		})

		return &sexpNodeRef{id: id, kind: graph.NodeWall, name: wallName}, nil
	})

	// -----------------------------------------------------------------------
	// (door "entry" :walls (list w) :array 1 :size (vec2 0.8 0.5)
	//       :offset (vec3 0 0 0) :frame-thickness 0.1 :frame-depth 0.1
	//       :door-depth 0.05 :arch (arch ...) :fill :panels
	//       :fill-options (fill-options ...))
	// -----------------------------------------------------------------------
	env.AddFunction("door", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		doorName, err := nodeName("door", g, pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.unknown("door", "walls", "array", "size", "offset",
			"frame-thickness", "frame-depth", "door-depth", "arch", "fill", "fill-options"); err != nil {
			return zygo.SexpNull, err
		}

		dd := graph.DefaultDoorData()
		if v, ok := pa.kw["walls"]; ok {
			if dd.Walls, err = wallRefs(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("door: walls: %w", err)
			}
		}
		if err := pa.intKW("door", "array", &dd.Array); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["size"]; ok {
			if dd.Size, err = toVec2(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("door: size: %w", err)
			}
		}
		if v, ok := pa.kw["offset"]; ok {
			if dd.Offset, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("door: offset: %w", err)
			}
		}
		if err := pa.floatKW("door", "frame-thickness", &dd.FrameThickness); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.floatKW("door", "frame-depth", &dd.FrameDepth); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.floatKW("door", "door-depth", &dd.DoorDepth); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["arch"]; ok {
			a, isArch := v.(*sexpArch)
			if !isArch {
				return zygo.SexpNull, fmt.Errorf("door: arch: expected arch, got %T (%s)", v, v.SexpString(nil))
			}
			dd.Arch = a.arch
		}
		if v, ok := pa.kw["fill"]; ok {
			if dd.Fill, err = toFillType(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("door: fill: %w", err)
			}
		}
		if v, ok := pa.kw["fill-options"]; ok {
			o, isOpts := v.(*sexpFillOptions)
			if !isOpts {
				return zygo.SexpNull, fmt.Errorf("door: fill-options: expected fill-options, got %T (%s)", v, v.SexpString(nil))
			}
			dd.FillOptions = o.opts
		}

		id := graph.NewNodeID("door/" + doorName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeDoor,
			Name:     doorName,
			Children: append([]graph.NodeID(nil), dd.Walls...),
			Data:     dd,
		})
		g.AddRoot(id)

		return &sexpNodeRef{id: id, kind: graph.NodeDoor, name: doorName}, nil
	})
}

// nodeName reads the leading name argument of wall and door forms and
// rejects names already in use.
func nodeName(fn string, g *graph.DesignGraph, pa kwArgs) (string, error) {
	if len(pa.positional) != 1 {
		return "", fmt.Errorf("%s requires a name argument", fn)
	}
	n, err := toString(pa.positional[0])
	if err != nil {
		return "", fmt.Errorf("%s: name: %w", fn, err)
	}
	if n == "" {
		return "", fmt.Errorf("%s: name must not be empty", fn)
	}
	if prev := g.Lookup(n); prev != nil {
		return "", fmt.Errorf("%s: name %q already used by a %s", fn, n, prev.Kind)
	}
	return n, nil
}

// wallRefs accepts a single wall reference or a list of them.
func wallRefs(s zygo.Sexp) ([]graph.NodeID, error) {
	if _, single := s.(*sexpNodeRef); single {
		id, err := toWallRef(s)
		if err != nil {
			return nil, err
		}
		return []graph.NodeID{id}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	ids := make([]graph.NodeID, 0, len(items))
	for i, item := range items {
		id, err := toWallRef(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
