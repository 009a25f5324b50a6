package numbering

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/prentissw/charted-roots/pkg/records"
)

// runAhnentafel numbers ancestors breadth-first: root = 1, father of n = 2n,
// mother of n = 2n+1. The number is a pure function of pedigree position; the
// walk order only decides which number a collapsed ancestor keeps.
func (r *Run) runAhnentafel() {
	type slot struct {
		id records.PersonID
		n  uint64
	}
	queue := []slot{{id: r.root, n: 1}}
	listedBy := r.reverseChildIndex()

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, seen := r.numbers[cur.id]; seen {
			// Pedigree collapse: the ancestor keeps its first number.
			r.stats.Skipped++
			continue
		}
		r.assign(cur.id, strconv.FormatUint(cur.n, 10), ahnenGeneration(cur.n))

		rec := &r.store.Person(cur.id).Record
		if rec.FatherID != "" {
			if r.store.Person(rec.FatherID) != nil {
				queue = append(queue, slot{id: rec.FatherID, n: 2 * cur.n})
			} else {
				r.stats.Skipped++
			}
		}
		if rec.MotherID != "" {
			if r.store.Person(rec.MotherID) != nil {
				queue = append(queue, slot{id: rec.MotherID, n: 2*cur.n + 1})
			} else {
				r.stats.Skipped++
			}
		}

		// A parent recorded only on its own children list, without a
		// father/mother slot on this person, has no paternal/maternal line
		// flag. Its Ahnentafel number is undefined: reported, not computed.
		for _, pid := range listedBy[cur.id] {
			if pid == rec.FatherID || pid == rec.MotherID {
				continue
			}
			r.stats.Skipped++
			r.notes = append(r.notes, fmt.Sprintf(
				"parent %q of %q has no paternal/maternal designation; ahnentafel number undefined", pid, cur.id))
		}
	}
}

// ahnenGeneration is floor(log2(n)): 1 -> 0, 2..3 -> 1, 4..7 -> 2.
func ahnenGeneration(n uint64) int {
	g := 0
	for n > 1 {
		n >>= 1
		g++
	}
	return g
}

// reverseChildIndex maps each person to the ids that list them as a child,
// in store order.
func (r *Run) reverseChildIndex() map[records.PersonID][]records.PersonID {
	idx := make(map[records.PersonID][]records.PersonID)
	for _, node := range r.store.Persons() {
		for _, c := range node.Record.Children {
			idx[c.ID] = append(idx[c.ID], node.ID())
		}
	}
	return idx
}

// runDotted numbers descendants depth-first. With sep "." it is d'Aboville
// ("1", "1.1", "1.2", "1.1.1"); with an empty sep it is Henry, where width
// pads every level to the run's maximum observed fan-out so the digits split
// back into path components unambiguously.
func (r *Run) runDotted(sep string, width int) {
	r.assign(r.root, "1", 0)
	r.descend(r.root, "1", 0, sep, width)
}

func (r *Run) descend(id records.PersonID, number string, gen int, sep string, width int) {
	children := r.orderedChildren(id)
	for i, child := range children {
		if _, seen := r.numbers[child]; seen {
			// Shared descendant reached along a second path: the branch
			// terminates here by design.
			r.stats.Skipped++
			continue
		}
		idx := strconv.Itoa(i + 1)
		if width > 0 {
			for len(idx) < width {
				idx = "0" + idx
			}
		}
		childNumber := number + sep + idx
		r.assign(child, childNumber, gen+1)
		r.descend(child, childNumber, gen+1, sep, width)
	}
}

// henryWidth pre-walks the descendant tree and returns the digit width of
// the maximum fan-out (1 for fan-out <= 9), so every Henry run uses one
// fixed per-level width.
func (r *Run) henryWidth() int {
	maxFan := 1
	visited := make(map[records.PersonID]bool)
	stack := []records.PersonID{r.root}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		children := r.orderedChildren(cur)
		if len(children) > maxFan {
			maxFan = len(children)
		}
		stack = append(stack, children...)
	}
	width := len(strconv.Itoa(maxFan))
	if width < 1 {
		width = 1
	}
	return width
}

// orderedChildren returns a person's resolvable children in birth-order
// where dates allow, insertion order otherwise. The sort is stable, so the
// same input always yields the same sibling numbering.
func (r *Run) orderedChildren(id records.PersonID) []records.PersonID {
	raw := r.store.ChildrenOf(id)
	out := make([]records.PersonID, 0, len(raw))
	seen := make(map[records.PersonID]bool, len(raw))
	for _, c := range raw {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		yi, oki := birthYear(&r.store.Person(out[i]).Record)
		yj, okj := birthYear(&r.store.Person(out[j]).Record)
		if oki && okj {
			return yi < yj
		}
		// Unknown dates keep their insertion position.
		return false
	})
	return out
}

// birthYear extracts the first four-digit year from the born string.
func birthYear(rec *records.PersonRecord) (int, bool) {
	run := 0
	start := -1
	for i, ch := range rec.Born {
		if ch >= '0' && ch <= '9' {
			if run == 0 {
				start = i
			}
			run++
			if run == 4 {
				year, err := strconv.Atoi(rec.Born[start : start+4])
				if err == nil {
					return year, true
				}
				run = 0
			}
		} else {
			run = 0
		}
	}
	return 0, false
}

// runGeneration numbers everyone reachable from the root breadth-first:
// root = 0, parent edges decrease by one, child edges increase by one. A
// person reachable at two different depths keeps the first value and the
// disagreement is counted, not raised — pedigree collapse is expected.
func (r *Run) runGeneration() {
	type slot struct {
		id  records.PersonID
		gen int
	}
	values := make(map[records.PersonID]int)
	queue := []slot{{id: r.root, gen: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if prev, seen := values[cur.id]; seen {
			if prev != cur.gen {
				r.stats.Conflicts++
			} else {
				r.stats.Skipped++
			}
			continue
		}
		values[cur.id] = cur.gen
		r.assign(cur.id, strconv.Itoa(cur.gen), cur.gen)

		rec := &r.store.Person(cur.id).Record
		for _, pid := range rec.ParentIDs() {
			if r.store.Person(pid) != nil {
				queue = append(queue, slot{id: pid, gen: cur.gen - 1})
			}
		}
		for _, cid := range r.store.ChildrenOf(cur.id) {
			queue = append(queue, slot{id: cid, gen: cur.gen + 1})
		}
	}
}
