package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks the build
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks the build
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the result carries no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs all Tier 1 structural validation checks on the design graph
// and returns a slice of findings. An empty slice means the graph is valid.
// This function is read-only and never mutates the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateDoorWalls(g)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, geometric, fill)
// and returns a ValidationResult with separated errors and warnings.
func ValidateAll(g *DesignGraph) ValidationResult {
	tier1 := Validate(g)
	tier2Errs, tier2Warnings := validateGeometry(g)
	tier3Warnings := validateFill(g)

	var result ValidationResult
	for _, e := range tier1 {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)
	result.Warnings = append(result.Warnings, tier3Warnings...)

	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	for _, n := range g.ordered() {
		if color[n.ID] == white && visit(n.ID) {
			// One cycle error is sufficient.
			break
		}
	}

	return errs
}

// validateReferences checks that every NodeID referenced anywhere in the graph
// points to a node that actually exists in g.Nodes.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.ordered() {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}

		if d, ok := node.Data.(DoorData); ok {
			for _, wid := range d.Walls {
				if _, ok := g.Nodes[wid]; !ok {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("door wall reference %s does not exist", wid.Short()),
						Severity: SeverityError,
					})
				}
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share the
// same name) and that every entry in NameIndex points to an existing node.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	var names []string
	for _, node := range g.ordered() {
		if node.Name == "" {
			continue
		}
		if _, seen := nameToNodes[node.Name]; !seen {
			names = append(names, node.Name)
		}
		nameToNodes[node.Name] = append(nameToNodes[node.Name], node.ID)
	}
	for _, name := range names {
		if ids := nameToNodes[name]; len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root ID references an existing node and
// warns about orphan nodes (walls no door is built into).
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}

	if len(g.Nodes) == 0 {
		return errs
	}

	// BFS from all roots through Children and door wall references.
	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	push := func(id NodeID) {
		if !reachable[id] {
			reachable[id] = true
			queue = append(queue, id)
		}
	}
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok {
			push(rid)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			push(childID)
		}
		if d, ok := node.Data.(DoorData); ok {
			for _, wid := range d.Walls {
				push(wid)
			}
		}
	}

	for _, node := range g.ordered() {
		if reachable[node.ID] {
			continue
		}
		name := node.Name
		if name == "" {
			name = node.ID.Short()
		}
		errs = append(errs, ValidationError{
			NodeID:   node.ID,
			Message:  fmt.Sprintf("%s %q is not reachable from any door (orphan)", node.Kind, name),
			Severity: SeverityWarning,
		})
	}

	return errs
}

// validateDoorWalls checks that every door is built into at least one wall,
// that its references name walls, and that no wall hosts two doors: both
// would edit the same face.
func validateDoorWalls(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	host := make(map[NodeID]NodeID) // wall -> first door using it

	for _, node := range g.Doors() {
		d, ok := node.Data.(DoorData)
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("door node carries %T, not door data", node.Data),
				Severity: SeverityError,
			})
			continue
		}
		if len(d.Walls) == 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "door is not built into any wall",
				Severity: SeverityError,
			})
		}
		for _, wid := range d.Walls {
			w, ok := g.Nodes[wid]
			if !ok {
				continue // reported by validateReferences
			}
			if w.Kind != NodeWall {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("door wall %s is %s, not wall", wid.Short(), w.Kind),
					Severity: SeverityError,
				})
				continue
			}
			if first, taken := host[wid]; taken {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("wall %q already hosts door %s", w.Name, first.Short()),
					Severity: SeverityError,
				})
				continue
			}
			host[wid] = node.ID
		}
	}

	return errs
}
