package consistency

import (
	"errors"
	"testing"

	"github.com/prentissw/charted-roots/pkg/graph"
	"github.com/prentissw/charted-roots/pkg/records"
)

func buildEngine(persons ...records.PersonRecord) *Engine {
	g := graph.Build(&records.RecordSet{Persons: persons})
	return NewEngine(g, nil)
}

func countType(incs []Inconsistency, t Type) int {
	n := 0
	for _, inc := range incs {
		if inc.Type == t {
			n++
		}
	}
	return n
}

func TestDetectClean(t *testing.T) {
	e := buildEngine(
		records.PersonRecord{ID: "father", Sex: "M",
			Children: []records.ChildLink{{ID: "child"}}},
		records.PersonRecord{ID: "child", FatherID: "father"},
	)
	if incs := e.Detect(nil); len(incs) != 0 {
		t.Errorf("Detect on symmetric data = %v, want none", incs)
	}
}

func TestDetectMissingReverseChild(t *testing.T) {
	// Child claims a father; father has no child entry.
	e := buildEngine(
		records.PersonRecord{ID: "father", Sex: "M"},
		records.PersonRecord{ID: "child", FatherID: "father"},
	)
	incs := e.Detect(nil)
	if len(incs) != 1 {
		t.Fatalf("Detect = %v, want 1 finding", incs)
	}
	if incs[0].Type != MissingReverse || incs[0].Rel != RelFather {
		t.Errorf("finding = %+v, want missing_reverse/father", incs[0])
	}
}

func TestDetectMissingReverseSpouse(t *testing.T) {
	e := buildEngine(
		records.PersonRecord{ID: "a", SpouseIDs: []records.PersonID{"b"}},
		records.PersonRecord{ID: "b"},
	)
	incs := e.Detect(nil)
	if len(incs) != 1 || incs[0].Rel != RelSpouse || incs[0].Type != MissingReverse {
		t.Errorf("Detect = %v, want one missing_reverse spouse", incs)
	}
}

func TestDetectConflictDeduped(t *testing.T) {
	// Both endpoints see the same subtype conflict; it must surface once.
	e := buildEngine(
		records.PersonRecord{ID: "father", Sex: "M",
			Children: []records.ChildLink{{ID: "child", Kind: records.ParentBlood}}},
		records.PersonRecord{ID: "child", FatherID: "father", FatherKind: records.ParentStep},
	)
	incs := e.Detect(nil)
	if got := countType(incs, ConflictingReverse); got != 1 {
		t.Errorf("conflicting_reverse findings = %d, want 1 (deduped)", got)
	}
}

func TestDetectDangling(t *testing.T) {
	e := buildEngine(
		records.PersonRecord{ID: "a", FatherID: "nobody",
			SpouseIDs: []records.PersonID{"nobody-else"}},
	)
	incs := e.Detect(nil)
	if got := countType(incs, Dangling); got != 2 {
		t.Errorf("dangling findings = %d, want 2", got)
	}
}

func TestDetectScope(t *testing.T) {
	e := buildEngine(
		records.PersonRecord{ID: "a", FatherID: "ghost-a"},
		records.PersonRecord{ID: "b", FatherID: "ghost-b"},
	)
	incs := e.Detect([]records.PersonID{"a"})
	if len(incs) != 1 || incs[0].From != "a" {
		t.Errorf("scoped Detect = %v, want only a's finding", incs)
	}
}

func TestFixMissingReverseChildEntry(t *testing.T) {
	// Child claims a step father; fix must add a step child entry on him.
	e := buildEngine(
		records.PersonRecord{ID: "father", Sex: "M"},
		records.PersonRecord{ID: "child", FatherID: "father", FatherKind: records.ParentStep},
	)
	res, err := e.Fix(e.Detect(nil))
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if res.Modified != 1 {
		t.Errorf("Modified = %d, want 1", res.Modified)
	}
	link, ok := e.store.Person("father").Record.ChildLinkFor("child")
	if !ok || link.Kind != records.ParentStep {
		t.Errorf("father child entry = %+v, %v; want step link", link, ok)
	}
	// The repaired graph is symmetric.
	if incs := e.Detect(nil); len(incs) != 0 {
		t.Errorf("post-fix Detect = %v, want none", incs)
	}
}

func TestFixMissingReverseParentSlot(t *testing.T) {
	// Mother lists the child; the child's mother slot is empty.
	e := buildEngine(
		records.PersonRecord{ID: "mother", Sex: "F",
			Children: []records.ChildLink{{ID: "child", Kind: records.ParentAdoptive}}},
		records.PersonRecord{ID: "child"},
	)
	res, err := e.Fix(e.Detect(nil))
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if res.Modified != 1 {
		t.Errorf("Modified = %d, want 1", res.Modified)
	}
	crec := e.store.Person("child").Record
	if crec.MotherID != "mother" || crec.MotherKind != records.ParentAdoptive {
		t.Errorf("child mother = %q/%v, want mother/adoptive", crec.MotherID, crec.MotherKind)
	}
}

func TestFixRefusesOccupiedSlot(t *testing.T) {
	// The child already records a different father; the forward link wins and
	// the repair is refused.
	e := buildEngine(
		records.PersonRecord{ID: "claimant", Sex: "M",
			Children: []records.ChildLink{{ID: "child"}}},
		records.PersonRecord{ID: "real-father", Sex: "M",
			Children: []records.ChildLink{{ID: "child"}}},
		records.PersonRecord{ID: "child", FatherID: "real-father"},
	)
	res, err := e.Fix(e.Detect(nil))
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if res.Modified != 0 {
		t.Errorf("Modified = %d, want 0", res.Modified)
	}
	if len(res.Errors) == 0 {
		t.Error("refusal should be reported as an error entry")
	}
	if e.store.Person("child").Record.FatherID != "real-father" {
		t.Error("existing forward link must not be replaced")
	}
}

func TestFixRefusesUnknownSex(t *testing.T) {
	e := buildEngine(
		records.PersonRecord{ID: "parent",
			Children: []records.ChildLink{{ID: "child"}}},
		records.PersonRecord{ID: "child"},
	)
	res, err := e.Fix(e.Detect(nil))
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if res.Modified != 0 || len(res.Errors) == 0 {
		t.Errorf("res = %+v, want refusal with error entry", res)
	}
}

func TestFixRefusesCycle(t *testing.T) {
	// grandchild lists grandparent as a child; linking the reverse slot would
	// make grandparent their own ancestor.
	e := buildEngine(
		records.PersonRecord{ID: "grandparent", Sex: "M",
			Children: []records.ChildLink{{ID: "parent"}}},
		records.PersonRecord{ID: "parent", Sex: "M", FatherID: "grandparent",
			Children: []records.ChildLink{{ID: "grandchild"}}},
		records.PersonRecord{ID: "grandchild", Sex: "M", FatherID: "parent",
			Children: []records.ChildLink{{ID: "grandparent"}}},
	)
	res, err := e.Fix(e.Detect(nil))
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if e.store.Person("grandparent").Record.FatherID != "" {
		t.Error("cycle-creating repair must be refused")
	}
	if len(res.Errors) == 0 {
		t.Error("cycle refusal should be reported")
	}
}

func TestFixConflictSpecificBeatsGeneric(t *testing.T) {
	e := buildEngine(
		records.PersonRecord{ID: "father", Sex: "M",
			Children: []records.ChildLink{{ID: "child", Kind: records.ParentBlood}}},
		records.PersonRecord{ID: "child", FatherID: "father", FatherKind: records.ParentAdoptive},
	)
	res, err := e.Fix(e.Detect(nil))
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if res.Modified != 1 {
		t.Errorf("Modified = %d, want 1", res.Modified)
	}
	link, _ := e.store.Person("father").Record.ChildLinkFor("child")
	if link.Kind != records.ParentAdoptive {
		t.Errorf("parent entry kind = %v, want adoptive", link.Kind)
	}
	if len(res.Errors) == 0 {
		t.Error("discarded value should be logged as an error entry")
	}
}

func TestFixConflictBothSpecificUntouched(t *testing.T) {
	e := buildEngine(
		records.PersonRecord{ID: "father", Sex: "M",
			Children: []records.ChildLink{{ID: "child", Kind: records.ParentFoster}}},
		records.PersonRecord{ID: "child", FatherID: "father", FatherKind: records.ParentStep},
	)
	res, err := e.Fix(e.Detect(nil))
	if err != nil {
		t.Fatalf("Fix: %v", err)
	}
	if res.Modified != 0 {
		t.Errorf("Modified = %d, want 0 (engine must not guess)", res.Modified)
	}
	if e.store.Person("child").Record.FatherKind != records.ParentStep {
		t.Error("child side changed")
	}
	link, _ := e.store.Person("father").Record.ChildLinkFor("child")
	if link.Kind != records.ParentFoster {
		t.Error("parent side changed")
	}
}

func TestFixIdempotent(t *testing.T) {
	e := buildEngine(
		records.PersonRecord{ID: "father", Sex: "M"},
		records.PersonRecord{ID: "mother", Sex: "F"},
		records.PersonRecord{ID: "child", FatherID: "father", MotherID: "mother",
			SpouseIDs: []records.PersonID{"partner"}},
		records.PersonRecord{ID: "partner"},
	)
	first, err := e.Fix(e.Detect(nil))
	if err != nil {
		t.Fatalf("first Fix: %v", err)
	}
	if first.Modified == 0 {
		t.Fatal("first pass should repair something")
	}

	second, err := e.Fix(e.Detect(nil))
	if err != nil {
		t.Fatalf("second Fix: %v", err)
	}
	if second.Modified != 0 {
		t.Errorf("second pass Modified = %d, want 0", second.Modified)
	}
}

func TestFixRejectsStaleFindings(t *testing.T) {
	e1 := buildEngine(
		records.PersonRecord{ID: "father", Sex: "M"},
		records.PersonRecord{ID: "child", FatherID: "father"},
	)
	stale := e1.Detect(nil)

	e2 := buildEngine(
		records.PersonRecord{ID: "father", Sex: "M"},
		records.PersonRecord{ID: "child", FatherID: "father"},
	)
	_, err := e2.Fix(stale)
	if !errors.Is(err, records.ErrPrecondition) {
		t.Errorf("Fix with stale findings err = %v, want ErrPrecondition", err)
	}
}

func TestAncestryCycles(t *testing.T) {
	e := buildEngine(
		records.PersonRecord{ID: "a", FatherID: "b"},
		records.PersonRecord{ID: "b", FatherID: "c"},
		records.PersonRecord{ID: "c", FatherID: "a"},
		records.PersonRecord{ID: "outside", FatherID: "a"},
	)
	cycles := e.AncestryCycles()
	if len(cycles) != 1 {
		t.Fatalf("cycles = %v, want exactly one", cycles)
	}
	path := cycles[0]
	if len(path) != 4 {
		t.Errorf("cycle path length = %d, want 4 (start repeated at the end)", len(path))
	}
	if path[0] != path[len(path)-1] {
		t.Errorf("cycle path %v should start and end at the same person", path)
	}
}

func TestWouldCreateCycle(t *testing.T) {
	e := buildEngine(
		records.PersonRecord{ID: "grandparent", Sex: "M"},
		records.PersonRecord{ID: "parent", FatherID: "grandparent"},
		records.PersonRecord{ID: "child", FatherID: "parent"},
	)
	if !e.WouldCreateCycle("grandparent", "child") {
		t.Error("making a descendant the parent must be flagged as a cycle")
	}
	if e.WouldCreateCycle("child", "grandparent") {
		t.Error("normal ancestor link flagged as cycle")
	}
}
