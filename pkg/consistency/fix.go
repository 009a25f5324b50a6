package consistency

import (
	"fmt"

	"github.com/prentissw/charted-roots/pkg/records"
)

// Fix applies the minimal edit restoring symmetry for each finding:
//
//   - missing_reverse: the mirror entry is added. Forward links the user set
//     are never removed.
//   - conflicting_reverse: when exactly one side carries an explicit subtype
//     (step/adoptive/foster) it wins, the generic side is rewritten, and the
//     discarded value is logged as an error entry. When both sides are
//     explicit and disagree the engine does not guess; both sides are left
//     untouched and the conflict is surfaced for manual resolution.
//   - dangling: nothing to mirror; recorded as an error entry.
//
// Fix is idempotent: re-running detect+fix on the repaired graph yields zero
// further modifications. That is what makes a crash between two record
// writes recoverable — the next run simply finishes the job.
//
// Findings must come from Detect on the engine's current store snapshot;
// anything else is a programmer error and fails with ErrPrecondition.
func (e *Engine) Fix(incs []Inconsistency) (records.BatchResult, error) {
	var res records.BatchResult
	for _, inc := range incs {
		if inc.snapshot != e.store {
			return res, fmt.Errorf("%w: inconsistency %q was not detected on the current graph snapshot",
				records.ErrPrecondition, inc.String())
		}
	}

	for i, inc := range incs {
		e.OnProgress.Notify(i+1, len(incs))
		res.Processed++
		switch inc.Type {
		case MissingReverse:
			e.fixMissingReverse(inc, &res)
		case ConflictingReverse:
			e.fixConflictingReverse(inc, &res)
		case Dangling:
			res.AddError(fmt.Sprintf("%s: no repair possible for dangling reference", inc.String()))
		default:
			res.AddError(fmt.Sprintf("%s: unknown inconsistency type", inc.String()))
		}
	}
	return res, nil
}

func (e *Engine) fixMissingReverse(inc Inconsistency, res *records.BatchResult) {
	switch inc.Rel {
	case RelFather, RelMother:
		// Child's forward link exists; add the child entry on the parent.
		child := e.store.Person(inc.From)
		parent := e.store.Person(inc.To)
		if child == nil || parent == nil {
			res.AddError(fmt.Sprintf("%s: node vanished from snapshot", inc.String()))
			return
		}
		if _, ok := parent.Record.ChildLinkFor(inc.From); ok {
			return // already mirrored, nothing to do
		}
		kind := child.Record.FatherKind
		if inc.Rel == RelMother {
			kind = child.Record.MotherKind
		}
		parent.Record.Children = append(parent.Record.Children, records.ChildLink{ID: inc.From, Kind: kind})
		e.persist(&parent.Record, res)

	case RelSpouse:
		other := e.store.Person(inc.To)
		if other == nil {
			res.AddError(fmt.Sprintf("%s: node vanished from snapshot", inc.String()))
			return
		}
		if other.Record.HasSpouse(inc.From) {
			return
		}
		other.Record.SpouseIDs = append(other.Record.SpouseIDs, inc.From)
		e.persist(&other.Record, res)

	case RelChild:
		// Parent's child entry exists; set the child's parent slot. Which
		// slot depends on the parent's recorded sex — without it there is
		// no safe guess.
		parent := e.store.Person(inc.From)
		child := e.store.Person(inc.To)
		if parent == nil || child == nil {
			res.AddError(fmt.Sprintf("%s: node vanished from snapshot", inc.String()))
			return
		}
		link, _ := parent.Record.ChildLinkFor(inc.To)
		sex, _ := records.ParseSex(parent.Record.Sex)
		switch sex {
		case records.SexMale:
			if child.Record.FatherID == inc.From {
				return
			}
			if child.Record.FatherID != "" {
				res.AddError(fmt.Sprintf("%s: child already records father %q; refusing to replace a forward link",
					inc.String(), child.Record.FatherID))
				return
			}
			if e.wouldCreateCycle(inc.To, inc.From) {
				res.AddError(fmt.Sprintf("%s: linking would make %q its own ancestor", inc.String(), inc.To))
				return
			}
			child.Record.FatherID = inc.From
			child.Record.FatherKind = link.Kind
			e.persist(&child.Record, res)
		case records.SexFemale:
			if child.Record.MotherID == inc.From {
				return
			}
			if child.Record.MotherID != "" {
				res.AddError(fmt.Sprintf("%s: child already records mother %q; refusing to replace a forward link",
					inc.String(), child.Record.MotherID))
				return
			}
			if e.wouldCreateCycle(inc.To, inc.From) {
				res.AddError(fmt.Sprintf("%s: linking would make %q its own ancestor", inc.String(), inc.To))
				return
			}
			child.Record.MotherID = inc.From
			child.Record.MotherKind = link.Kind
			e.persist(&child.Record, res)
		default:
			res.AddError(fmt.Sprintf("%s: parent sex unknown, cannot choose father/mother slot", inc.String()))
		}
	}
}

func (e *Engine) fixConflictingReverse(inc Inconsistency, res *records.BatchResult) {
	// Normalize endpoints to (parent, child) regardless of which side the
	// finding was reported from.
	parentID, childID := inc.From, inc.To
	if inc.Rel == RelFather || inc.Rel == RelMother {
		parentID, childID = inc.To, inc.From
	}
	parent := e.store.Person(parentID)
	child := e.store.Person(childID)
	if parent == nil || child == nil {
		res.AddError(fmt.Sprintf("%s: node vanished from snapshot", inc.String()))
		return
	}

	link, ok := parent.Record.ChildLinkFor(childID)
	if !ok {
		res.AddError(fmt.Sprintf("%s: parent no longer lists child", inc.String()))
		return
	}
	var childKind *records.ParentKind
	switch {
	case child.Record.FatherID == parentID:
		childKind = &child.Record.FatherKind
	case child.Record.MotherID == parentID:
		childKind = &child.Record.MotherKind
	default:
		res.AddError(fmt.Sprintf("%s: child no longer lists parent", inc.String()))
		return
	}

	if *childKind == link.Kind {
		return // resolved by an earlier fix in this batch
	}

	switch {
	case childKind.Specific() && !link.Kind.Specific():
		// Child's explicit subtype wins; rewrite the parent's entry.
		res.AddError(fmt.Sprintf("%s: discarded %s child entry on %q in favor of %s",
			inc.String(), link.Kind, parentID, *childKind))
		for i := range parent.Record.Children {
			if parent.Record.Children[i].ID == childID {
				parent.Record.Children[i].Kind = *childKind
			}
		}
		e.persist(&parent.Record, res)
	case link.Kind.Specific() && !childKind.Specific():
		res.AddError(fmt.Sprintf("%s: discarded %s parent link on %q in favor of %s",
			inc.String(), *childKind, childID, link.Kind))
		*childKind = link.Kind
		e.persist(&child.Record, res)
	default:
		// Both explicit and disagreeing: not ours to decide.
		res.AddError(fmt.Sprintf("%s: both sides explicit (%s vs %s), left untouched",
			inc.String(), *childKind, link.Kind))
	}
}

func (e *Engine) persist(rec *records.PersonRecord, res *records.BatchResult) {
	res.Modified++
	if e.writer == nil {
		return
	}
	if err := e.writer.WritePerson(rec.Clone()); err != nil {
		res.AddError(fmt.Sprintf("write person %q: %v", rec.ID, err))
	}
}
