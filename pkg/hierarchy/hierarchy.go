// Package hierarchy resolves place-containment chains: parent walks,
// descendant traversal, rank suggestions and variant-name standardization.
// Every traversal is cycle-safe — upstream data is allowed to be malformed
// and the resolver's job is to report that, not to loop on it.
package hierarchy

import (
	"fmt"
	"strings"

	"github.com/prentissw/charted-roots/pkg/graph"
	"github.com/prentissw/charted-roots/pkg/records"
)

// IssueKind classifies a hierarchy finding.
type IssueKind string

const (
	CircularHierarchy   IssueKind = "circular_hierarchy"
	RankInversion       IssueKind = "rank_inversion"
	OrphanPlace         IssueKind = "orphan_place"
	FictionalWithCoords IssueKind = "fictional_with_coords"
	RealMissingCoords   IssueKind = "real_missing_coords"
	MixedCoordinates    IssueKind = "mixed_coordinates"
)

// Issue is a reported hierarchy problem. Reported, never blocked: a bad link
// stays in the data until the user resolves it.
type Issue struct {
	Kind    IssueKind
	Place   records.PlaceID
	Message string
}

// Resolver answers containment queries over the graph store's place table.
type Resolver struct {
	store      *graph.Store
	OnProgress records.ProgressFunc
}

// NewResolver creates a resolver over a store.
func NewResolver(store *graph.Store) *Resolver {
	return &Resolver{store: store}
}

// Ancestors walks the parent chain from id, nearest-first, until the chain
// ends or revisits a place. A revisit returns the partial chain plus a
// circular_hierarchy issue instead of looping.
func (r *Resolver) Ancestors(id records.PlaceID) ([]*graph.PlaceNode, []Issue) {
	node := r.store.Place(id)
	if node == nil {
		return nil, nil
	}

	var chain []*graph.PlaceNode
	var issues []Issue
	visited := map[records.PlaceID]bool{id: true}

	cur := node.Record.ParentID
	for cur != "" {
		parent := r.store.Place(cur)
		if parent == nil {
			issues = append(issues, Issue{
				Kind:    OrphanPlace,
				Place:   id,
				Message: fmt.Sprintf("parent chain of %q references missing place %q", id, cur),
			})
			break
		}
		if visited[cur] {
			issues = append(issues, Issue{
				Kind:    CircularHierarchy,
				Place:   id,
				Message: fmt.Sprintf("parent chain of %q revisits %q", id, cur),
			})
			break
		}
		visited[cur] = true
		chain = append(chain, parent)
		cur = parent.Record.ParentID
	}
	return chain, issues
}

// Descendants returns every place contained in id, breadth-first. Iterative
// with a visited set, so a malformed cyclic hierarchy still terminates.
func (r *Resolver) Descendants(id records.PlaceID) []*graph.PlaceNode {
	if r.store.Place(id) == nil {
		return nil
	}
	var out []*graph.PlaceNode
	visited := map[records.PlaceID]bool{id: true}
	queue := r.store.PlaceChildren(id)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		node := r.store.Place(cur)
		if node == nil {
			continue
		}
		out = append(out, node)
		queue = append(queue, r.store.PlaceChildren(cur)...)
	}
	return out
}

// SuggestParent maps a child's type to the next rank up the fixed hierarchy
// table. A UI suggestion only, never enforced.
func SuggestParent(child records.PlaceType) (records.PlaceType, bool) {
	rank := child.Rank()
	if rank == 0 {
		return "", false
	}
	best := records.PlaceType("")
	bestRank := -1
	for _, t := range []records.PlaceType{
		records.TypePlanet, records.TypeContinent, records.TypeCountry,
		records.TypeRegion, records.TypeState, records.TypeCounty,
		records.TypeDistrict, records.TypeCity, records.TypeTown,
		records.TypeVillage, records.TypeNeighborhood, records.TypeBuilding,
	} {
		tr := t.Rank()
		if tr < rank && tr > bestRank {
			best = t
			bestRank = tr
		}
	}
	return best, best != ""
}

// Validate checks every place for rank inversions against its parent and for
// category/coordinate mismatches. Findings are reported, never auto-corrected.
func (r *Resolver) Validate() []Issue {
	var issues []Issue
	places := r.store.Places()
	for i, node := range places {
		r.OnProgress.Notify(i+1, len(places))
		rec := &node.Record

		if rec.ParentID != "" {
			if parent := r.store.Place(rec.ParentID); parent != nil {
				if parent.Record.Type.Rank() >= rec.Type.Rank() {
					issues = append(issues, Issue{
						Kind:  RankInversion,
						Place: rec.ID,
						Message: fmt.Sprintf("place %q (%s, rank %d) has parent %q (%s, rank %d); parent rank must be smaller",
							rec.ID, rec.Type, rec.Type.Rank(), parent.Record.ID, parent.Record.Type, parent.Record.Type.Rank()),
					})
				}
			}
		}

		issues = append(issues, ValidateCoordinates(rec)...)
	}
	return issues
}

// ValidateCoordinates checks one record's category against its coordinate
// kind: real/historical/disputed places carry geographic coordinates only;
// fictional/mythological/legendary places carry pixel coordinates only.
func ValidateCoordinates(rec *records.PlaceRecord) []Issue {
	var issues []Issue
	if rec.Coords != nil && rec.CustomCoords != nil {
		issues = append(issues, Issue{
			Kind:    MixedCoordinates,
			Place:   rec.ID,
			Message: fmt.Sprintf("place %q carries both coordinate kinds; they are mutually exclusive", rec.ID),
		})
	}
	if rec.Category.Geographic() {
		if rec.Coords == nil {
			issues = append(issues, Issue{
				Kind:    RealMissingCoords,
				Place:   rec.ID,
				Message: fmt.Sprintf("place %q is %s but has no geographic coordinates", rec.ID, rec.Category),
			})
		}
	} else {
		if rec.Coords != nil {
			issues = append(issues, Issue{
				Kind:    FictionalWithCoords,
				Place:   rec.ID,
				Message: fmt.Sprintf("place %q is %s but has geographic coordinates", rec.ID, rec.Category),
			})
		}
	}
	return issues
}

// StandardizeVariant rewrites place-reference strings on person records,
// replacing whole comma-delimited components matching variant (case
// insensitive) with canonical. Component-bounded on purpose: "USA" inside
// "Springfield, USA" matches, "USA" inside "USAlaska" does not. Scope nil
// means every person. Writer may be nil for a dry run over the store only.
func (r *Resolver) StandardizeVariant(variant, canonical string, scope []records.PersonID, writer records.PersonWriter) records.BatchResult {
	var res records.BatchResult
	want := strings.ToLower(strings.TrimSpace(variant))
	if want == "" {
		res.AddError("empty variant name")
		return res
	}

	nodes := r.scopeNodes(scope)
	for i, node := range nodes {
		r.OnProgress.Notify(i+1, len(nodes))
		res.Processed++
		rec := &node.Record
		changed := false
		for j := range rec.Events {
			replaced, ok := replaceComponent(rec.Events[j].Place, want, canonical)
			if ok {
				rec.Events[j].Place = replaced
				changed = true
			}
		}
		if !changed {
			continue
		}
		res.Modified++
		if writer != nil {
			if err := writer.WritePerson(rec.Clone()); err != nil {
				res.AddError(fmt.Sprintf("write person %q: %v", rec.ID, err))
			}
		}
	}
	return res
}

// replaceComponent swaps whole comma-delimited components equal to want
// (already lowercased) with canonical, preserving the other components'
// spelling and spacing convention.
func replaceComponent(value, want, canonical string) (string, bool) {
	if value == "" {
		return value, false
	}
	parts := strings.Split(value, ",")
	hit := false
	for i, part := range parts {
		if strings.ToLower(strings.TrimSpace(part)) == want {
			parts[i] = canonical
			hit = true
		} else {
			parts[i] = strings.TrimSpace(part)
		}
	}
	if !hit {
		return value, false
	}
	return strings.Join(parts, ", "), true
}

func (r *Resolver) scopeNodes(scope []records.PersonID) []*graph.PersonNode {
	if scope == nil {
		return r.store.Persons()
	}
	nodes := make([]*graph.PersonNode, 0, len(scope))
	for _, id := range scope {
		if n := r.store.Person(id); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
