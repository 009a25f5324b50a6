// Package quality composes the other engines into one categorized,
// severity-ranked report over a graph snapshot, plus the composite quality
// score callers display. The analyzer only reads; batch fixes stay with the
// engines that own them.
package quality

import (
	"fmt"

	"github.com/prentissw/charted-roots/pkg/consistency"
	"github.com/prentissw/charted-roots/pkg/graph"
	"github.com/prentissw/charted-roots/pkg/hierarchy"
	"github.com/prentissw/charted-roots/pkg/records"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Category groups issues for display.
type Category string

const (
	CategoryDates       Category = "dates"
	CategoryConsistency Category = "consistency"
	CategoryOrphans     Category = "orphans"
	CategoryPlaces      Category = "places"
	CategoryStructure   Category = "structure"
	CategoryLegacy      Category = "legacy"
)

// Issue is one report entry.
type Issue struct {
	Category Category         `json:"category"`
	Severity Severity         `json:"severity"`
	Kind     string           `json:"kind"`
	Person   records.PersonID `json:"personId,omitempty"`
	Place    records.PlaceID  `json:"placeId,omitempty"`
	Field    string           `json:"field,omitempty"`
	Message  string           `json:"message"`
}

// Summary aggregates the report counts.
type Summary struct {
	TotalPeople  int              `json:"totalPeople"`
	TotalPlaces  int              `json:"totalPlaces"`
	BySeverity   map[Severity]int `json:"bySeverity"`
	ByCategory   map[Category]int `json:"byCategory"`
	QualityScore float64          `json:"qualityScore"`
}

// Report is the analyzer output.
type Report struct {
	Summary Summary `json:"summary"`
	Issues  []Issue `json:"issues"`
}

// Config tunes the analyzer. The weights are configurable constants, not a
// contract; the only binding property is that more severe issues can never
// raise the score.
type Config struct {
	DateStyle           DateStyle
	AllowPartialDates   bool
	AllowCirca          bool
	AllowRanges         bool
	RequireLeadingZeros bool

	NormalizeSex bool

	Weights map[Severity]float64
}

// DefaultConfig matches how imported GEDCOM data is usually judged: flexible
// dates, partials and circa markers allowed, sex normalization on.
func DefaultConfig() Config {
	return Config{
		DateStyle:         DateFlexible,
		AllowPartialDates: true,
		AllowCirca:        true,
		AllowRanges:       true,
		NormalizeSex:      true,
		Weights: map[Severity]float64{
			SeverityError:   5,
			SeverityWarning: 2,
			SeverityInfo:    0.5,
		},
	}
}

// Analyzer runs every check over one store snapshot.
type Analyzer struct {
	store      *graph.Store
	engine     *consistency.Engine
	resolver   *hierarchy.Resolver
	cfg        Config
	OnProgress records.ProgressFunc
}

// NewAnalyzer wires an analyzer over a store. The engine and resolver are
// created detect-only; the analyzer never writes.
func NewAnalyzer(store *graph.Store, cfg Config) *Analyzer {
	return &Analyzer{
		store:    store,
		engine:   consistency.NewEngine(store, nil),
		resolver: hierarchy.NewResolver(store),
		cfg:      cfg,
	}
}

// Analyze produces the full report. It never fails: malformed data is the
// expected steady state and surfaces as issues.
func (a *Analyzer) Analyze() *Report {
	var issues []Issue

	issues = append(issues, a.checkConsistency()...)
	issues = append(issues, a.checkCycles()...)
	issues = append(issues, a.checkOrphans()...)
	issues = append(issues, a.checkPlaces()...)

	persons := a.store.Persons()
	for i, node := range persons {
		a.OnProgress.Notify(i+1, len(persons))
		issues = append(issues, a.checkDates(&node.Record)...)
		issues = append(issues, a.checkSex(&node.Record)...)
		issues = append(issues, a.checkShape(&node.Record)...)
		issues = append(issues, a.checkPlaceRefs(&node.Record)...)
	}

	return a.report(issues)
}

func (a *Analyzer) report(issues []Issue) *Report {
	summary := Summary{
		TotalPeople: a.store.PersonCount(),
		TotalPlaces: a.store.PlaceCount(),
		BySeverity:  make(map[Severity]int),
		ByCategory:  make(map[Category]int),
	}
	weighted := 0.0
	for _, issue := range issues {
		summary.BySeverity[issue.Severity]++
		summary.ByCategory[issue.Category]++
		weighted += a.weight(issue.Severity)
	}
	summary.QualityScore = score(weighted, summary.TotalPeople)
	return &Report{Summary: summary, Issues: issues}
}

func (a *Analyzer) weight(sev Severity) float64 {
	if w, ok := a.cfg.Weights[sev]; ok {
		return w
	}
	return 1
}

// score maps weighted issue density onto (0, 100]: an empty report scores
// 100 and every added issue lowers the score, never raises it.
func score(weighted float64, people int) float64 {
	if people < 1 {
		people = 1
	}
	density := weighted / float64(people)
	return 100 / (1 + density)
}

func (a *Analyzer) checkConsistency() []Issue {
	var issues []Issue
	for _, inc := range a.engine.Detect(nil) {
		sev := SeverityWarning
		if inc.Type != consistency.MissingReverse {
			sev = SeverityError
		}
		issues = append(issues, Issue{
			Category: CategoryConsistency,
			Severity: sev,
			Kind:     string(inc.Type),
			Person:   inc.From,
			Field:    string(inc.Rel),
			Message:  inc.Detail,
		})
	}
	return issues
}

func (a *Analyzer) checkCycles() []Issue {
	var issues []Issue
	for _, cycle := range a.engine.AncestryCycles() {
		issues = append(issues, Issue{
			Category: CategoryStructure,
			Severity: SeverityError,
			Kind:     "ancestry_cycle",
			Person:   cycle[0],
			Message:  fmt.Sprintf("person %q is their own ancestor (cycle of %d links)", cycle[0], len(cycle)-1),
		})
	}
	return issues
}

func (a *Analyzer) checkOrphans() []Issue {
	var issues []Issue
	for _, d := range a.store.Diagnostics() {
		issues = append(issues, Issue{
			Category: CategoryOrphans,
			Severity: SeverityError,
			Kind:     string(d.Kind),
			Person:   d.Person,
			Place:    d.Place,
			Message:  d.Message,
		})
	}
	return issues
}

func (a *Analyzer) checkPlaces() []Issue {
	var issues []Issue
	for _, is := range a.resolver.Validate() {
		sev := SeverityWarning
		switch is.Kind {
		case hierarchy.CircularHierarchy:
			sev = SeverityError
		case hierarchy.RealMissingCoords:
			sev = SeverityInfo
		}
		issues = append(issues, Issue{
			Category: CategoryPlaces,
			Severity: sev,
			Kind:     string(is.Kind),
			Place:    is.Place,
			Message:  is.Message,
		})
	}
	// Circular chains only surface from an ancestor walk; Validate checks
	// each link locally, so walk every place here.
	seen := make(map[records.PlaceID]bool)
	for _, node := range a.store.Places() {
		if seen[node.ID()] {
			continue
		}
		chain, walkIssues := a.resolver.Ancestors(node.ID())
		for _, p := range chain {
			seen[p.ID()] = true
		}
		for _, is := range walkIssues {
			if is.Kind != hierarchy.CircularHierarchy {
				continue // orphan parents already reported from build diagnostics
			}
			issues = append(issues, Issue{
				Category: CategoryPlaces,
				Severity: SeverityError,
				Kind:     string(is.Kind),
				Place:    is.Place,
				Message:  is.Message,
			})
		}
	}
	return issues
}

func (a *Analyzer) checkPlaceRefs(rec *records.PersonRecord) []Issue {
	var issues []Issue
	for _, ref := range PlaceReferences(rec) {
		if ref.IsLinked || ref.RawValue == "" {
			continue
		}
		issues = append(issues, Issue{
			Category: CategoryPlaces,
			Severity: SeverityInfo,
			Kind:     "unlinked_place",
			Person:   rec.ID,
			Field:    string(ref.Type),
			Message:  fmt.Sprintf("place mention %q is not linked to a place node", ref.RawValue),
		})
	}
	return issues
}

// PlaceReferences extracts the place mention facts from a person record.
func PlaceReferences(rec *records.PersonRecord) []records.PlaceReference {
	var refs []records.PlaceReference
	for _, ev := range rec.Events {
		if ev.Place == "" && ev.PlaceID == "" {
			continue
		}
		refs = append(refs, records.PlaceReference{
			PersonID: rec.ID,
			Type:     records.RefTypeForEvent(ev.Type),
			RawValue: ev.Place,
			PlaceID:  ev.PlaceID,
			IsLinked: ev.PlaceID != "",
		})
	}
	return refs
}
