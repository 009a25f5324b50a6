// Package consistency implements the bidirectional consistency engine: every
// forward relationship link (A says "my father is B") must be mirrored on
// the related record (B lists A as a child), and drift between the two
// directions is detected and minimally repaired.
package consistency

import (
	"fmt"

	"github.com/prentissw/charted-roots/pkg/graph"
	"github.com/prentissw/charted-roots/pkg/records"
)

// Type classifies a detected inconsistency.
type Type string

const (
	// MissingReverse: the forward link exists but the mirror entry does not.
	MissingReverse Type = "missing_reverse"
	// ConflictingReverse: both directions exist but disagree on subtype.
	ConflictingReverse Type = "conflicting_reverse"
	// Dangling: the forward link references an id with no node.
	Dangling Type = "dangling"
)

// Rel names the forward relationship an inconsistency was found on.
type Rel string

const (
	RelFather Rel = "father"
	RelMother Rel = "mother"
	RelSpouse Rel = "spouse"
	RelChild  Rel = "child"
)

// Inconsistency is one detected drift between a forward link and its mirror.
// Findings are bound to the store snapshot they were detected on; Fix rejects
// findings from a different snapshot.
type Inconsistency struct {
	Type   Type
	Rel    Rel
	From   records.PersonID // owner of the forward link
	To     records.PersonID // the referenced person
	Detail string

	snapshot *graph.Store
}

func (i Inconsistency) String() string {
	return fmt.Sprintf("%s %s %s -> %s: %s", i.Type, i.Rel, i.From, i.To, i.Detail)
}

// Engine detects and repairs bidirectional drift over one store snapshot.
type Engine struct {
	store      *graph.Store
	writer     records.PersonWriter
	OnProgress records.ProgressFunc
}

// NewEngine creates an engine over a store. The writer persists repaired
// records; it may be nil for detect-only use.
func NewEngine(store *graph.Store, writer records.PersonWriter) *Engine {
	return &Engine{store: store, writer: writer}
}

// Detect scans the persons in scope (nil scope = everyone) and returns every
// drift finding. Detection never fails: malformed data produces findings,
// not errors.
func (e *Engine) Detect(scope []records.PersonID) []Inconsistency {
	nodes := e.scopeNodes(scope)

	var out []Inconsistency
	// Parent/child subtype conflicts surface from both endpoints; dedupe on
	// the (parent, child) pair.
	seenConflict := make(map[string]bool)

	for i, node := range nodes {
		e.OnProgress.Notify(i+1, len(nodes))
		rec := &node.Record

		out = append(out, e.checkParentLink(rec, RelFather, rec.FatherID, rec.FatherKind, seenConflict)...)
		out = append(out, e.checkParentLink(rec, RelMother, rec.MotherID, rec.MotherKind, seenConflict)...)

		for _, sp := range rec.SpouseIDs {
			other := e.store.Person(sp)
			if other == nil {
				out = append(out, e.finding(Dangling, RelSpouse, rec.ID, sp,
					fmt.Sprintf("spouse %q does not exist", sp)))
				continue
			}
			if !other.Record.HasSpouse(rec.ID) {
				out = append(out, e.finding(MissingReverse, RelSpouse, rec.ID, sp,
					fmt.Sprintf("%q does not list %q as spouse", sp, rec.ID)))
			}
		}

		for _, link := range rec.Children {
			child := e.store.Person(link.ID)
			if child == nil {
				out = append(out, e.finding(Dangling, RelChild, rec.ID, link.ID,
					fmt.Sprintf("child %q does not exist", link.ID)))
				continue
			}
			crec := &child.Record
			if crec.FatherID == rec.ID {
				if crec.FatherKind != link.Kind && !seenConflict[conflictKey(rec.ID, link.ID)] {
					seenConflict[conflictKey(rec.ID, link.ID)] = true
					out = append(out, e.finding(ConflictingReverse, RelChild, rec.ID, link.ID,
						fmt.Sprintf("child lists %s father, parent lists %s child", crec.FatherKind, link.Kind)))
				}
				continue
			}
			if crec.MotherID == rec.ID {
				if crec.MotherKind != link.Kind && !seenConflict[conflictKey(rec.ID, link.ID)] {
					seenConflict[conflictKey(rec.ID, link.ID)] = true
					out = append(out, e.finding(ConflictingReverse, RelChild, rec.ID, link.ID,
						fmt.Sprintf("child lists %s mother, parent lists %s child", crec.MotherKind, link.Kind)))
				}
				continue
			}
			out = append(out, e.finding(MissingReverse, RelChild, rec.ID, link.ID,
				fmt.Sprintf("%q does not list %q as a parent", link.ID, rec.ID)))
		}
	}
	return out
}

func (e *Engine) checkParentLink(rec *records.PersonRecord, rel Rel, parentID records.PersonID, kind records.ParentKind, seenConflict map[string]bool) []Inconsistency {
	if parentID == "" {
		return nil
	}
	parent := e.store.Person(parentID)
	if parent == nil {
		return []Inconsistency{e.finding(Dangling, rel, rec.ID, parentID,
			fmt.Sprintf("%s %q does not exist", rel, parentID))}
	}
	link, ok := parent.Record.ChildLinkFor(rec.ID)
	if !ok {
		return []Inconsistency{e.finding(MissingReverse, rel, rec.ID, parentID,
			fmt.Sprintf("%q does not list %q as a child", parentID, rec.ID))}
	}
	if link.Kind != kind && !seenConflict[conflictKey(parentID, rec.ID)] {
		seenConflict[conflictKey(parentID, rec.ID)] = true
		return []Inconsistency{e.finding(ConflictingReverse, rel, rec.ID, parentID,
			fmt.Sprintf("person lists %s %s, parent lists %s child", kind, rel, link.Kind))}
	}
	return nil
}

func conflictKey(parent, child records.PersonID) string {
	return string(parent) + "\x00" + string(child)
}

func (e *Engine) finding(t Type, rel Rel, from, to records.PersonID, detail string) Inconsistency {
	return Inconsistency{Type: t, Rel: rel, From: from, To: to, Detail: detail, snapshot: e.store}
}

func (e *Engine) scopeNodes(scope []records.PersonID) []*graph.PersonNode {
	if scope == nil {
		return e.store.Persons()
	}
	nodes := make([]*graph.PersonNode, 0, len(scope))
	for _, id := range scope {
		if n := e.store.Person(id); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
