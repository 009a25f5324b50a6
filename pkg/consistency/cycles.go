package consistency

import "github.com/prentissw/charted-roots/pkg/records"

// The self-ancestor invariant is enforced at mutation time, not during
// construction: imported data may legitimately arrive cyclic and must be
// reported, never silently dropped.

// WouldCreateCycle reports whether recording parentID as a parent of childID
// would make childID its own ancestor. wouldCreateCycle is the unexported
// form the fixer uses before filling a parent slot.
func (e *Engine) WouldCreateCycle(childID, parentID records.PersonID) bool {
	return e.wouldCreateCycle(childID, parentID)
}

func (e *Engine) wouldCreateCycle(childID, parentID records.PersonID) bool {
	if childID == parentID {
		return true
	}
	// Walk upward from the prospective parent; if we can reach the child,
	// the new edge closes a loop.
	visited := make(map[records.PersonID]bool)
	stack := []records.PersonID{parentID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		node := e.store.Person(cur)
		if node == nil {
			continue
		}
		for _, pid := range node.Record.ParentIDs() {
			if pid == childID {
				return true
			}
			if !visited[pid] {
				stack = append(stack, pid)
			}
		}
	}
	return false
}

// AncestryCycles scans every person and returns one representative path per
// ancestry loop found in the imported data. Each path starts and ends at the
// same person. Traversal is cycle-safe; reporting is the whole point.
func (e *Engine) AncestryCycles() [][]records.PersonID {
	var cycles [][]records.PersonID
	reported := make(map[records.PersonID]bool)

	for _, node := range e.store.Persons() {
		start := node.ID()
		if reported[start] {
			continue
		}
		if path := e.findCycleFrom(start); path != nil {
			for _, id := range path {
				reported[id] = true
			}
			cycles = append(cycles, path)
		}
	}
	return cycles
}

// findCycleFrom walks parent edges depth-first from start and returns the
// loop path if start is reachable from itself.
func (e *Engine) findCycleFrom(start records.PersonID) []records.PersonID {
	type frame struct {
		id   records.PersonID
		path []records.PersonID
	}
	visited := make(map[records.PersonID]bool)
	stack := []frame{{id: start, path: []records.PersonID{start}}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := e.store.Person(f.id)
		if node == nil {
			continue
		}
		for _, pid := range node.Record.ParentIDs() {
			if pid == start {
				return append(f.path, start)
			}
			if !visited[pid] {
				visited[pid] = true
				next := append(append([]records.PersonID(nil), f.path...), pid)
				stack = append(stack, frame{id: pid, path: next})
			}
		}
	}
	return nil
}
