package graph

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// buildValidHouse creates one door built into two walls, with the door as
// the only root.
func buildValidHouse() *DesignGraph {
	g := New()

	frontID := NewNodeID("wall/front")
	backID := NewNodeID("wall/back")
	doorID := NewNodeID("door/entry")

	g.AddNode(&Node{
		ID: frontID, Kind: NodeWall, Name: "front",
		Data: WallData{Width: 2, Height: 2, Facing: FacingFront},
	})
	g.AddNode(&Node{
		ID: backID, Kind: NodeWall, Name: "back",
		Data: WallData{Width: 2, Height: 2, Origin: Vec3{Y: 3}, Facing: FacingBack},
	})
	d := DefaultDoorData()
	d.Walls = []NodeID{frontID, backID}
	g.AddNode(&Node{
		ID: doorID, Kind: NodeDoor, Name: "entry",
		Children: []NodeID{frontID, backID},
		Data:     d,
	})
	g.AddRoot(doorID)

	return g
}

// hasError returns true if errs contains at least one error-severity finding
// whose message contains substr.
func hasError(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityError && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// hasWarning returns true if errs contains at least one warning-severity
// finding whose message contains substr.
func hasWarning(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if e.Severity == SeverityWarning && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// errorCount returns the number of error-severity findings.
func errorCount(errs []ValidationError) int {
	n := 0
	for _, e := range errs {
		if e.Severity == SeverityError {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestValidate_ValidGraph(t *testing.T) {
	g := buildValidHouse()
	for _, e := range Validate(g) {
		t.Errorf("unexpected validation error: %s", e)
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	for _, e := range Validate(New()) {
		t.Errorf("unexpected validation error on empty graph: %s", e)
	}
}

func TestValidate_CycleDetection(t *testing.T) {
	g := New()

	aID := NewNodeID("a")
	bID := NewNodeID("b")

	// Create a cycle: a -> b -> a
	g.AddNode(&Node{ID: aID, Kind: NodeWall, Name: "a", Children: []NodeID{bID}, Data: WallData{Width: 1, Height: 1}})
	g.AddNode(&Node{ID: bID, Kind: NodeWall, Name: "b", Children: []NodeID{aID}, Data: WallData{Width: 1, Height: 1}})
	g.AddRoot(aID)

	errs := Validate(g)
	if !hasError(errs, "cycle") {
		t.Errorf("expected cycle error, got %v", errs)
	}
}

func TestValidate_DanglingReferences(t *testing.T) {
	g := buildValidHouse()
	door := g.MustLookup("entry")
	d := door.Data.(DoorData)
	ghost := NewNodeID("wall/ghost")
	d.Walls = append(d.Walls, ghost)
	door.Data = d
	door.Children = append(door.Children, ghost)

	errs := Validate(g)
	if !hasError(errs, "door wall reference") {
		t.Errorf("expected dangling wall error, got %v", errs)
	}
	if !hasError(errs, "child reference") {
		t.Errorf("expected dangling child error, got %v", errs)
	}
}

func TestValidate_DuplicateNames(t *testing.T) {
	g := buildValidHouse()
	g.AddNode(&Node{
		ID: NewNodeID("wall/front#2"), Kind: NodeWall, Name: "front",
		Data: WallData{Width: 1, Height: 1},
	})

	errs := Validate(g)
	if !hasError(errs, `duplicate name "front"`) {
		t.Errorf("expected duplicate name error, got %v", errs)
	}
}

func TestValidate_NameIndexDangling(t *testing.T) {
	g := buildValidHouse()
	g.NameIndex["ghost"] = NewNodeID("nowhere")

	if errs := Validate(g); !hasError(errs, `name index entry "ghost"`) {
		t.Errorf("expected name index error, got %v", errs)
	}
}

func TestValidate_RootMissing(t *testing.T) {
	g := buildValidHouse()
	g.AddRoot(NewNodeID("door/ghost"))

	if errs := Validate(g); !hasError(errs, "root reference") {
		t.Errorf("expected root error, got %v", errs)
	}
}

func TestValidate_OrphanWallIsWarning(t *testing.T) {
	g := buildValidHouse()
	g.AddNode(&Node{
		ID: NewNodeID("wall/side"), Kind: NodeWall, Name: "side",
		Data: WallData{Width: 1, Height: 1},
	})

	errs := Validate(g)
	if errorCount(errs) != 0 {
		t.Errorf("orphan should not be an error: %v", errs)
	}
	if !hasWarning(errs, `wall "side" is not reachable`) {
		t.Errorf("expected orphan warning, got %v", errs)
	}
}

func TestValidate_DoorWithoutWalls(t *testing.T) {
	g := New()
	id := NewNodeID("door/lonely")
	g.AddNode(&Node{ID: id, Kind: NodeDoor, Name: "lonely", Data: DefaultDoorData()})
	g.AddRoot(id)

	if errs := Validate(g); !hasError(errs, "not built into any wall") {
		t.Errorf("expected wall-less door error, got %v", errs)
	}
}

func TestValidate_DoorIntoDoor(t *testing.T) {
	g := buildValidHouse()
	entry := g.MustLookup("entry")
	id := NewNodeID("door/inner")
	d := DefaultDoorData()
	d.Walls = []NodeID{entry.ID}
	g.AddNode(&Node{ID: id, Kind: NodeDoor, Name: "inner", Children: d.Walls, Data: d})
	g.AddRoot(id)

	if errs := Validate(g); !hasError(errs, "is door, not wall") {
		t.Errorf("expected kind error, got %v", errs)
	}
}

func TestValidate_WallSharedByTwoDoors(t *testing.T) {
	g := buildValidHouse()
	front := g.MustLookup("front")
	id := NewNodeID("door/second")
	d := DefaultDoorData()
	d.Walls = []NodeID{front.ID}
	g.AddNode(&Node{ID: id, Kind: NodeDoor, Name: "second", Children: d.Walls, Data: d})
	g.AddRoot(id)

	errs := Validate(g)
	if !hasError(errs, `wall "front" already hosts door`) {
		t.Errorf("expected shared wall error, got %v", errs)
	}
	if errorCount(errs) != 1 {
		t.Errorf("error count = %d, want 1: %v", errorCount(errs), errs)
	}
}

func TestValidate_WrongPayload(t *testing.T) {
	g := New()
	id := NewNodeID("door/odd")
	g.AddNode(&Node{ID: id, Kind: NodeDoor, Name: "odd", Data: WallData{Width: 1, Height: 1}})
	g.AddRoot(id)

	if errs := Validate(g); !hasError(errs, "not door data") {
		t.Errorf("expected payload error, got %v", errs)
	}
}

func TestValidationErrorString(t *testing.T) {
	id := NewNodeID("door/entry")
	e := ValidationError{NodeID: id, Message: "boom", Severity: SeverityError}
	want := "[error] node " + id.Short() + ": boom"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}

	g := ValidationError{Message: "graph-level", Severity: SeverityWarning}
	if g.Error() != "[warning] graph-level" {
		t.Errorf("Error() = %q", g.Error())
	}
	if s := ValidationSeverity(5).String(); s != "ValidationSeverity(5)" {
		t.Errorf("unknown severity string = %q", s)
	}
}
