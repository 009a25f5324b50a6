// Package numbering assigns genealogical reference numbers (Ahnentafel,
// d'Aboville, Henry, generation-relative) over a connected subgraph rooted
// at a chosen person. All four systems share one cycle-guarded graph walk
// and differ only in numbering rule.
package numbering

import (
	"fmt"
	"strings"

	"github.com/prentissw/charted-roots/pkg/graph"
	"github.com/prentissw/charted-roots/pkg/records"
)

// System selects the numbering rule.
type System string

const (
	Ahnentafel System = "ahnentafel"
	DAboville  System = "daboville"
	Henry      System = "henry"
	Generation System = "generation"
)

// ParseSystem maps a raw string to a System.
func ParseSystem(s string) (System, bool) {
	switch System(strings.ToLower(strings.TrimSpace(s))) {
	case Ahnentafel:
		return Ahnentafel, true
	case DAboville, "d'aboville":
		return DAboville, true
	case Henry:
		return Henry, true
	case Generation:
		return Generation, true
	}
	return "", false
}

// State is the run lifecycle: Idle -> Assigning -> Complete | Failed.
type State int

const (
	Idle State = iota
	Assigning
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Assigning:
		return "assigning"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Assignment is one computed number. Ephemeral per run; written back to the
// person record as a display property, never treated as identity.
type Assignment struct {
	PersonID   records.PersonID
	Number     string
	Generation int
}

// Stats summarizes a numbering run. Skipped counts branches terminated by
// the cycle guard or dangling links; Conflicts counts persons reachable at
// two different generation values (remarriage, pedigree collapse) — a
// statistic, not an error.
type Stats struct {
	TotalAssigned int
	Skipped       int
	Conflicts     int
}

// Run is a single numbering execution over one store snapshot.
type Run struct {
	store  *graph.Store
	root   records.PersonID
	system System

	state       State
	assignments []Assignment
	numbers     map[records.PersonID]string
	stats       Stats
	notes       []string

	OnProgress records.ProgressFunc
}

// NewRun prepares an idle run.
func NewRun(store *graph.Store, root records.PersonID, system System) *Run {
	return &Run{
		store:   store,
		root:    root,
		system:  system,
		numbers: make(map[records.PersonID]string),
	}
}

// State returns the run lifecycle state.
func (r *Run) State() State { return r.state }

// Stats returns the run statistics.
func (r *Run) Stats() Stats { return r.stats }

// Assignments returns the computed numbers in assignment order. Given the
// same graph and root the order and content are byte-identical across runs.
func (r *Run) Assignments() []Assignment {
	return append([]Assignment(nil), r.assignments...)
}

// Number returns the assigned number for a person, if any.
func (r *Run) Number(id records.PersonID) (string, bool) {
	n, ok := r.numbers[id]
	return n, ok
}

// Notes returns human-readable remarks recorded during the walk, such as
// parents that could not take an Ahnentafel slot.
func (r *Run) Notes() []string {
	return append([]string(nil), r.notes...)
}

// Execute runs the walk. A missing root or unknown system moves the run to
// Failed; anything the walk encounters in the data itself (cycles, dangling
// links, collapses) is absorbed into stats and notes instead.
func (r *Run) Execute() error {
	if r.state != Idle {
		return fmt.Errorf("%w: run already executed (state %s)", records.ErrPrecondition, r.state)
	}
	r.state = Assigning

	if r.store.Person(r.root) == nil {
		r.state = Failed
		return fmt.Errorf("root person %q not found", r.root)
	}

	switch r.system {
	case Ahnentafel:
		r.runAhnentafel()
	case DAboville:
		r.runDotted(".", 0)
	case Henry:
		r.runDotted("", r.henryWidth())
	case Generation:
		r.runGeneration()
	default:
		r.state = Failed
		return fmt.Errorf("unknown numbering system %q", r.system)
	}

	r.state = Complete
	return nil
}

func (r *Run) assign(id records.PersonID, number string, gen int) {
	r.numbers[id] = number
	r.assignments = append(r.assignments, Assignment{PersonID: id, Number: number, Generation: gen})
	r.stats.TotalAssigned++
	r.OnProgress.Notify(r.stats.TotalAssigned, r.store.PersonCount())
}

// Apply writes the computed numbers back onto person records under the
// system's key. Another system's numbering is never touched; an existing
// different value under this system's own key is only replaced when
// overwrite is set.
func (r *Run) Apply(writer records.PersonWriter, overwrite bool) (records.BatchResult, error) {
	var res records.BatchResult
	if r.state != Complete {
		return res, fmt.Errorf("%w: apply requires a completed run (state %s)", records.ErrPrecondition, r.state)
	}
	for i, a := range r.assignments {
		r.OnProgress.Notify(i+1, len(r.assignments))
		res.Processed++
		node := r.store.Person(a.PersonID)
		if node == nil {
			res.AddError(fmt.Sprintf("person %q vanished from snapshot", a.PersonID))
			continue
		}
		rec := &node.Record
		if existing, ok := rec.Numbering[string(r.system)]; ok && existing != a.Number && !overwrite {
			res.AddError(fmt.Sprintf("person %q already numbered %q in %s; not overwriting", a.PersonID, existing, r.system))
			continue
		}
		if rec.Numbering == nil {
			rec.Numbering = make(map[string]string)
		}
		if rec.Numbering[string(r.system)] == a.Number {
			continue
		}
		rec.Numbering[string(r.system)] = a.Number
		res.Modified++
		if writer != nil {
			if err := writer.WritePerson(rec.Clone()); err != nil {
				res.AddError(fmt.Sprintf("write person %q: %v", a.PersonID, err))
			}
		}
	}
	return res, nil
}
