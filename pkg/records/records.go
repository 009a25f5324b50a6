// Package records defines the normalized record model shared by every engine
// in the core. Format parsers (GEDCOM, Gramps XML, CSV) live outside this
// module and hand us a RecordSet; nothing here cares which format produced it.
package records

import (
	"strings"

	"github.com/google/uuid"
)

// PersonID is a stable opaque identifier assigned at first ingestion and
// never reused.
type PersonID string

// PlaceID is a stable opaque identifier for a place node.
type PlaceID string

// SourceID identifies a citation source record.
type SourceID string

// NewPersonID mints an identifier for a record that arrived without one.
func NewPersonID() PersonID {
	return PersonID(uuid.NewString())
}

// NewPlaceID mints an identifier for a place that arrived without one.
func NewPlaceID() PlaceID {
	return PlaceID(uuid.NewString())
}

// Sex is the canonical sex value on a person record.
type Sex int

const (
	SexUnknown Sex = iota
	SexMale
	SexFemale
	SexNonbinary
)

func (s Sex) String() string {
	switch s {
	case SexMale:
		return "M"
	case SexFemale:
		return "F"
	case SexNonbinary:
		return "X"
	default:
		return "U"
	}
}

// ParseSex accepts only canonical spellings. Alias normalization (fuzzy
// values like "man", "fem") is the quality analyzer's job, not the model's.
func ParseSex(s string) (Sex, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M", "MALE":
		return SexMale, true
	case "F", "FEMALE":
		return SexFemale, true
	case "X", "NONBINARY", "NON-BINARY":
		return SexNonbinary, true
	case "U", "UNKNOWN", "":
		return SexUnknown, true
	}
	return SexUnknown, false
}

// ParentKind distinguishes the subtype of a parent/child edge. Blood is the
// generic value; Step and Adoptive are explicit and beat generic when the two
// sides of an edge disagree.
type ParentKind int

const (
	ParentBlood ParentKind = iota
	ParentStep
	ParentAdoptive
	ParentFoster
)

func (k ParentKind) String() string {
	switch k {
	case ParentStep:
		return "step"
	case ParentAdoptive:
		return "adoptive"
	case ParentFoster:
		return "foster"
	default:
		return "blood"
	}
}

// Specific reports whether the kind was explicitly recorded rather than
// defaulted.
func (k ParentKind) Specific() bool {
	return k != ParentBlood
}

// ParseParentKind maps a raw subtype string to a ParentKind.
func ParseParentKind(s string) (ParentKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "blood", "birth", "biological":
		return ParentBlood, true
	case "step":
		return ParentStep, true
	case "adoptive", "adopted":
		return ParentAdoptive, true
	case "foster":
		return ParentFoster, true
	}
	return ParentBlood, false
}

// ChildLink is one entry in a person's children list, carrying the subtype
// under which the parent recorded the child.
type ChildLink struct {
	ID   PersonID   `json:"id"`
	Kind ParentKind `json:"kind"`
}

// EventType classifies a life event on a person record.
type EventType string

const (
	EventBirth     EventType = "birth"
	EventDeath     EventType = "death"
	EventMarriage  EventType = "marriage"
	EventResidence EventType = "residence"
	EventBurial    EventType = "burial"
	EventOther     EventType = "other"
)

// Event is a typed life event carried on a person record. Place holds the
// raw place string from the source file; PlaceID is set once the string has
// been linked to a place node.
type Event struct {
	Type    EventType `json:"type"`
	Date    string    `json:"date,omitempty"`
	Place   string    `json:"place,omitempty"`
	PlaceID PlaceID   `json:"placeId,omitempty"`
}

// PersonRecord is the authoritative person entry. All relationships are by
// id so dangling and even cyclic links stay representable; resolution happens
// in the graph store.
type PersonRecord struct {
	ID         PersonID `json:"id"`
	Name       string   `json:"name"`
	Sex        string   `json:"sex,omitempty"` // raw value; canonicalized by the quality analyzer
	Born       string   `json:"born,omitempty"`
	Died       string   `json:"died,omitempty"`
	Collection string   `json:"collection,omitempty"`
	Universe   string   `json:"universe,omitempty"`

	FatherID   PersonID   `json:"fatherId,omitempty"`
	FatherKind ParentKind `json:"fatherKind,omitempty"`
	MotherID   PersonID   `json:"motherId,omitempty"`
	MotherKind ParentKind `json:"motherKind,omitempty"`
	SpouseIDs  []PersonID `json:"spouseIds,omitempty"`
	Children   []ChildLink `json:"children,omitempty"`

	Events []Event `json:"events,omitempty"`

	// Numbering holds display-only reference numbers keyed by system name
	// ("ahnentafel", "daboville", ...). Never identity.
	Numbering map[string]string `json:"numbering,omitempty"`

	// Extra retains unrecognized source fields so the nested-property
	// checker can still inspect them.
	Extra map[string]any `json:"extra,omitempty"`
}

// HasSpouse reports whether id appears in the spouse list.
func (p *PersonRecord) HasSpouse(id PersonID) bool {
	for _, s := range p.SpouseIDs {
		if s == id {
			return true
		}
	}
	return false
}

// ChildLinkFor returns the child entry for id, if present.
func (p *PersonRecord) ChildLinkFor(id PersonID) (ChildLink, bool) {
	for _, c := range p.Children {
		if c.ID == id {
			return c, true
		}
	}
	return ChildLink{}, false
}

// ParentIDs returns the recorded parent ids, father first, skipping unset
// slots.
func (p *PersonRecord) ParentIDs() []PersonID {
	out := make([]PersonID, 0, 2)
	if p.FatherID != "" {
		out = append(out, p.FatherID)
	}
	if p.MotherID != "" {
		out = append(out, p.MotherID)
	}
	return out
}

// Clone returns a deep copy. The graph store copies records on build so that
// engine mutations never alias caller-owned memory.
func (p *PersonRecord) Clone() PersonRecord {
	out := *p
	out.SpouseIDs = append([]PersonID(nil), p.SpouseIDs...)
	out.Children = append([]ChildLink(nil), p.Children...)
	out.Events = append([]Event(nil), p.Events...)
	if p.Numbering != nil {
		out.Numbering = make(map[string]string, len(p.Numbering))
		for k, v := range p.Numbering {
			out.Numbering[k] = v
		}
	}
	if p.Extra != nil {
		out.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// FamilyRecord is the parser-level family grouping (GEDCOM FAM, Gramps
// family). It never reaches the graph; NormalizeFamilies folds it into person
// forward links first.
type FamilyRecord struct {
	ID        string     `json:"id"`
	SpouseIDs []PersonID `json:"spouseIds,omitempty"`
	ChildIDs  []PersonID `json:"childIds,omitempty"`
}

// SourceRecord is a citation source. Carried through unmodified; the core
// only needs its identity for orphan scanning.
type SourceRecord struct {
	ID    SourceID `json:"id"`
	Title string   `json:"title,omitempty"`
}

// RecordSet is the normalized output of an external parser: the single input
// contract for the graph store.
type RecordSet struct {
	Persons  []PersonRecord `json:"persons"`
	Places   []PlaceRecord  `json:"places"`
	Families []FamilyRecord `json:"families,omitempty"`
	Sources  []SourceRecord `json:"sources,omitempty"`
}

// Person returns a pointer into the set by id, or nil.
func (rs *RecordSet) Person(id PersonID) *PersonRecord {
	for i := range rs.Persons {
		if rs.Persons[i].ID == id {
			return &rs.Persons[i]
		}
	}
	return nil
}

// Place returns a pointer into the set by id, or nil.
func (rs *RecordSet) Place(id PlaceID) *PlaceRecord {
	for i := range rs.Places {
		if rs.Places[i].ID == id {
			return &rs.Places[i]
		}
	}
	return nil
}

// NormalizeFamilies folds family records into person forward links: spouses
// learn each other, children learn parents (by spouse sex when known), and
// parents learn children. Existing explicit links are never overwritten.
// Returns the number of links added.
func (rs *RecordSet) NormalizeFamilies() int {
	added := 0
	for _, fam := range rs.Families {
		for _, a := range fam.SpouseIDs {
			pa := rs.Person(a)
			if pa == nil {
				continue
			}
			for _, b := range fam.SpouseIDs {
				if a == b {
					continue
				}
				if !pa.HasSpouse(b) {
					pa.SpouseIDs = append(pa.SpouseIDs, b)
					added++
				}
			}
			for _, c := range fam.ChildIDs {
				if _, ok := pa.ChildLinkFor(c); !ok {
					pa.Children = append(pa.Children, ChildLink{ID: c})
					added++
				}
				child := rs.Person(c)
				if child == nil {
					continue
				}
				sex, _ := ParseSex(pa.Sex)
				switch sex {
				case SexMale:
					if child.FatherID == "" {
						child.FatherID = a
						added++
					}
				case SexFemale:
					if child.MotherID == "" {
						child.MotherID = a
						added++
					}
				}
			}
		}
	}
	return added
}
