// Package graph provides the in-memory family/place graph store. Nodes live
// in flat tables keyed by id and relationships stay as id lists, never as
// language-level pointers, so cycles and dangling links are representable and
// inspectable. The store is a rebuildable cache over the records source, not
// an authority.
package graph

import (
	"fmt"
	"sort"

	"github.com/prentissw/charted-roots/pkg/records"
)

// PersonNode is a person record materialized in the store. Engines mutate
// the embedded record through the store and persist via a records.PersonWriter.
type PersonNode struct {
	Record records.PersonRecord
}

// ID is a convenience accessor.
func (n *PersonNode) ID() records.PersonID { return n.Record.ID }

// PlaceNode is a place record materialized in the store.
type PlaceNode struct {
	Record records.PlaceRecord
}

// ID is a convenience accessor.
func (n *PlaceNode) ID() records.PlaceID { return n.Record.ID }

// DiagKind classifies a build diagnostic.
type DiagKind string

const (
	DiagDanglingFather DiagKind = "dangling_father"
	DiagDanglingMother DiagKind = "dangling_mother"
	DiagDanglingSpouse DiagKind = "dangling_spouse"
	DiagDanglingChild  DiagKind = "dangling_child"
	DiagDanglingParent DiagKind = "dangling_parent_place"
	DiagDuplicateID    DiagKind = "duplicate_id"
)

// Diagnostic is a structural finding recorded during build. Builds never
// fail on malformed input; partially-broken genealogical data is the normal
// case, so the store always produces a best-effort graph plus this list.
type Diagnostic struct {
	Kind    DiagKind
	Person  records.PersonID
	Place   records.PlaceID
	Ref     string // the id that failed to resolve
	Message string
}

func (d Diagnostic) String() string {
	subject := string(d.Person)
	if subject == "" {
		subject = string(d.Place)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Kind, subject, d.Message)
}

// RecordSource supplies the authoritative record set. The vault and the
// sqlite record store both implement it.
type RecordSource interface {
	Records() (*records.RecordSet, error)
}

// Store is the in-memory adjacency over one record snapshot. It is
// single-caller by contract: callers serialize rebuilds around each batch
// operation rather than the store defending against concurrent use.
type Store struct {
	source RecordSource

	persons     map[records.PersonID]*PersonNode
	places      map[records.PlaceID]*PlaceNode
	personOrder []records.PersonID
	placeOrder  []records.PlaceID

	// reverse adjacency for places; person reverse links live on the
	// records themselves and are the consistency engine's subject matter
	placeKids map[records.PlaceID][]records.PlaceID

	diags []Diagnostic
}

// Build materializes a store from a record set in two passes: pass one
// creates every node, pass two resolves references and records dangling ids
// as diagnostics.
func Build(set *records.RecordSet) *Store {
	s := &Store{
		persons:   make(map[records.PersonID]*PersonNode, len(set.Persons)),
		places:    make(map[records.PlaceID]*PlaceNode, len(set.Places)),
		placeKids: make(map[records.PlaceID][]records.PlaceID),
	}

	// Pass 1: materialize nodes. First record wins on id collision.
	for i := range set.Persons {
		rec := &set.Persons[i]
		if _, dup := s.persons[rec.ID]; dup {
			s.diags = append(s.diags, Diagnostic{
				Kind:    DiagDuplicateID,
				Person:  rec.ID,
				Message: fmt.Sprintf("duplicate person id %q", rec.ID),
			})
			continue
		}
		s.persons[rec.ID] = &PersonNode{Record: rec.Clone()}
		s.personOrder = append(s.personOrder, rec.ID)
	}
	for i := range set.Places {
		rec := &set.Places[i]
		if _, dup := s.places[rec.ID]; dup {
			s.diags = append(s.diags, Diagnostic{
				Kind:    DiagDuplicateID,
				Place:   rec.ID,
				Message: fmt.Sprintf("duplicate place id %q", rec.ID),
			})
			continue
		}
		s.places[rec.ID] = &PlaceNode{Record: rec.Clone()}
		s.placeOrder = append(s.placeOrder, rec.ID)
	}

	// Pass 2: resolve references. Dangling ids stay on the records (they
	// are data, and the consistency engine reports them); here they only
	// produce diagnostics and are left out of reverse indexes.
	for _, id := range s.personOrder {
		rec := &s.persons[id].Record
		if rec.FatherID != "" && s.persons[rec.FatherID] == nil {
			s.addPersonDiag(DiagDanglingFather, id, string(rec.FatherID), "father")
		}
		if rec.MotherID != "" && s.persons[rec.MotherID] == nil {
			s.addPersonDiag(DiagDanglingMother, id, string(rec.MotherID), "mother")
		}
		for _, sp := range rec.SpouseIDs {
			if s.persons[sp] == nil {
				s.addPersonDiag(DiagDanglingSpouse, id, string(sp), "spouse")
			}
		}
		for _, c := range rec.Children {
			if s.persons[c.ID] == nil {
				s.addPersonDiag(DiagDanglingChild, id, string(c.ID), "child")
			}
		}
	}
	for _, id := range s.placeOrder {
		rec := &s.places[id].Record
		if rec.ParentID == "" {
			continue
		}
		if s.places[rec.ParentID] == nil {
			s.diags = append(s.diags, Diagnostic{
				Kind:    DiagDanglingParent,
				Place:   id,
				Ref:     string(rec.ParentID),
				Message: fmt.Sprintf("place %q references missing parent %q", id, rec.ParentID),
			})
			continue
		}
		s.placeKids[rec.ParentID] = append(s.placeKids[rec.ParentID], id)
	}

	return s
}

func (s *Store) addPersonDiag(kind DiagKind, id records.PersonID, ref, rel string) {
	s.diags = append(s.diags, Diagnostic{
		Kind:    kind,
		Person:  id,
		Ref:     ref,
		Message: fmt.Sprintf("person %q references missing %s %q", id, rel, ref),
	})
}

// NewStore builds a store from a record source and remembers the source so
// Reload can rebuild wholesale after batch mutations.
func NewStore(src RecordSource) (*Store, error) {
	s := &Store{source: src}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rebuilds the store from its source. O(n), by design: batch
// operations trigger whole rebuilds instead of incremental patching, which
// removes any need for fine-grained locking.
func (s *Store) Reload() error {
	if s.source == nil {
		return fmt.Errorf("%w: store has no record source", records.ErrPrecondition)
	}
	set, err := s.source.Records()
	if err != nil {
		return fmt.Errorf("reload records: %w", err)
	}
	rebuilt := Build(set)
	rebuilt.source = s.source
	*s = *rebuilt
	return nil
}

// Person returns the node for id, or nil.
func (s *Store) Person(id records.PersonID) *PersonNode {
	return s.persons[id]
}

// Place returns the node for id, or nil.
func (s *Store) Place(id records.PlaceID) *PlaceNode {
	return s.places[id]
}

// Persons returns all person nodes in ingestion order. Deterministic walks
// over this slice are what make numbering runs repeatable.
func (s *Store) Persons() []*PersonNode {
	out := make([]*PersonNode, 0, len(s.personOrder))
	for _, id := range s.personOrder {
		out = append(out, s.persons[id])
	}
	return out
}

// Places returns all place nodes in ingestion order.
func (s *Store) Places() []*PlaceNode {
	out := make([]*PlaceNode, 0, len(s.placeOrder))
	for _, id := range s.placeOrder {
		out = append(out, s.places[id])
	}
	return out
}

// PersonCount returns the number of person nodes.
func (s *Store) PersonCount() int { return len(s.persons) }

// PlaceCount returns the number of place nodes.
func (s *Store) PlaceCount() int { return len(s.places) }

// ChildrenOf returns the ids in a person's children list that resolve to
// real nodes, in list order.
func (s *Store) ChildrenOf(id records.PersonID) []records.PersonID {
	node := s.persons[id]
	if node == nil {
		return nil
	}
	out := make([]records.PersonID, 0, len(node.Record.Children))
	for _, c := range node.Record.Children {
		if s.persons[c.ID] != nil {
			out = append(out, c.ID)
		}
	}
	return out
}

// PlaceChildren returns the direct children of a place, in ingestion order.
func (s *Store) PlaceChildren(id records.PlaceID) []records.PlaceID {
	return append([]records.PlaceID(nil), s.placeKids[id]...)
}

// Diagnostics returns the findings recorded during the last build.
func (s *Store) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), s.diags...)
}

// FamilyUnit is the derived co-parent grouping: two (or one) parents plus
// their shared children. Synthesized on demand and never persisted, so it
// cannot drift from the person records it is computed from.
type FamilyUnit struct {
	Parents  []records.PersonID
	Children []records.PersonID
}

// FamilyUnitOf synthesizes the family unit for a co-parent pair: the
// children both parents list. Order follows parent a's children list.
func (s *Store) FamilyUnitOf(a, b records.PersonID) *FamilyUnit {
	pa, pb := s.persons[a], s.persons[b]
	if pa == nil || pb == nil {
		return nil
	}
	unit := &FamilyUnit{Parents: []records.PersonID{a, b}}
	for _, c := range pa.Record.Children {
		if _, shared := pb.Record.ChildLinkFor(c.ID); shared {
			unit.Children = append(unit.Children, c.ID)
		}
	}
	return unit
}

// FamilyUnits synthesizes every family unit the person participates in: one
// per spouse or co-parent, plus a single-parent unit for children no spouse
// shares.
func (s *Store) FamilyUnits(id records.PersonID) []FamilyUnit {
	node := s.persons[id]
	if node == nil {
		return nil
	}

	coParents := make(map[records.PersonID]bool)
	for _, sp := range node.Record.SpouseIDs {
		if s.persons[sp] != nil {
			coParents[sp] = true
		}
	}
	for _, c := range node.Record.Children {
		child := s.persons[c.ID]
		if child == nil {
			continue
		}
		for _, pid := range child.Record.ParentIDs() {
			if pid != id && s.persons[pid] != nil {
				coParents[pid] = true
			}
		}
	}

	ordered := make([]records.PersonID, 0, len(coParents))
	for pid := range coParents {
		ordered = append(ordered, pid)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	var units []FamilyUnit
	claimed := make(map[records.PersonID]bool)
	for _, pid := range ordered {
		unit := s.FamilyUnitOf(id, pid)
		if unit == nil {
			continue
		}
		for _, c := range unit.Children {
			claimed[c] = true
		}
		units = append(units, *unit)
	}

	var solo []records.PersonID
	for _, c := range node.Record.Children {
		if s.persons[c.ID] != nil && !claimed[c.ID] {
			solo = append(solo, c.ID)
		}
	}
	if len(solo) > 0 {
		units = append(units, FamilyUnit{Parents: []records.PersonID{id}, Children: solo})
	}
	return units
}
