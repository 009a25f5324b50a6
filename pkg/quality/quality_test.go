package quality

import (
	"testing"

	"github.com/prentissw/charted-roots/pkg/graph"
	"github.com/prentissw/charted-roots/pkg/records"
)

func analyze(set *records.RecordSet) *Report {
	return NewAnalyzer(graph.Build(set), DefaultConfig()).Analyze()
}

func kinds(report *Report) map[string]int {
	out := make(map[string]int)
	for _, issue := range report.Issues {
		out[issue.Kind]++
	}
	return out
}

func TestCleanVaultScoresHundred(t *testing.T) {
	report := analyze(&records.RecordSet{
		Persons: []records.PersonRecord{
			{ID: "p1", Name: "Jean Munro", Sex: "F", Born: "1840", Died: "1901-02-03"},
		},
		Places: []records.PlaceRecord{
			{ID: "pl1", Name: "Inverness", Coords: &records.GeoCoords{Lat: 57.5, Lon: -4.2}},
		},
	})
	if len(report.Issues) != 0 {
		t.Fatalf("issues = %v, want none", report.Issues)
	}
	if report.Summary.QualityScore != 100 {
		t.Errorf("score = %v, want 100", report.Summary.QualityScore)
	}
}

func TestScoreNeverRisesWithIssues(t *testing.T) {
	clean := analyze(&records.RecordSet{
		Persons: []records.PersonRecord{{ID: "a", Sex: "M"}},
	})
	dirty := analyze(&records.RecordSet{
		Persons: []records.PersonRecord{{ID: "a", Sex: "M", Born: "not a date"}},
	})
	dirtier := analyze(&records.RecordSet{
		Persons: []records.PersonRecord{
			{ID: "a", Sex: "M", Born: "not a date", Died: "also wrong"},
		},
	})
	if !(clean.Summary.QualityScore > dirty.Summary.QualityScore) {
		t.Errorf("score did not drop: clean %v, dirty %v",
			clean.Summary.QualityScore, dirty.Summary.QualityScore)
	}
	if !(dirty.Summary.QualityScore > dirtier.Summary.QualityScore) {
		t.Errorf("score did not keep dropping: %v then %v",
			dirty.Summary.QualityScore, dirtier.Summary.QualityScore)
	}
}

func TestConsistencyFindingsSurface(t *testing.T) {
	report := analyze(&records.RecordSet{
		Persons: []records.PersonRecord{
			{ID: "father", Sex: "M"},
			{ID: "child", FatherID: "father"},
		},
	})
	k := kinds(report)
	if k["missing_reverse"] != 1 {
		t.Errorf("kinds = %v, want one missing_reverse", k)
	}
	for _, issue := range report.Issues {
		if issue.Kind == "missing_reverse" && issue.Severity != SeverityWarning {
			t.Errorf("missing_reverse severity = %s, want warning", issue.Severity)
		}
	}
}

func TestAncestryCycleIsError(t *testing.T) {
	report := analyze(&records.RecordSet{
		Persons: []records.PersonRecord{
			{ID: "a", FatherID: "b", Children: []records.ChildLink{{ID: "b"}}},
			{ID: "b", FatherID: "a", Children: []records.ChildLink{{ID: "a"}}},
		},
	})
	k := kinds(report)
	if k["ancestry_cycle"] == 0 {
		t.Fatalf("kinds = %v, want ancestry_cycle", k)
	}
	for _, issue := range report.Issues {
		if issue.Kind == "ancestry_cycle" && issue.Severity != SeverityError {
			t.Errorf("ancestry_cycle severity = %s, want error", issue.Severity)
		}
	}
}

func TestOrphanReferencesSurface(t *testing.T) {
	report := analyze(&records.RecordSet{
		Persons: []records.PersonRecord{
			{ID: "a", Sex: "M", SpouseIDs: []records.PersonID{"nobody"}},
		},
	})
	k := kinds(report)
	if k["dangling_spouse"] != 1 {
		t.Errorf("kinds = %v, want dangling_spouse from build diagnostics", k)
	}
}

func TestCircularPlaceChainIsError(t *testing.T) {
	report := analyze(&records.RecordSet{
		Places: []records.PlaceRecord{
			{ID: "x", ParentID: "y", Coords: &records.GeoCoords{Lat: 1}},
			{ID: "y", ParentID: "x", Coords: &records.GeoCoords{Lat: 2}},
		},
	})
	k := kinds(report)
	if k["circular_hierarchy"] == 0 {
		t.Fatalf("kinds = %v, want circular_hierarchy", k)
	}
}

func TestPlaceCoordinateFindings(t *testing.T) {
	report := analyze(&records.RecordSet{
		Places: []records.PlaceRecord{
			{ID: "real-no-coords", Category: records.CategoryReal},
			{ID: "narnia", Category: records.CategoryFictional,
				Coords: &records.GeoCoords{Lat: 10, Lon: 10}},
		},
	})
	k := kinds(report)
	if k["real_missing_coords"] != 1 || k["fictional_with_coords"] != 1 {
		t.Errorf("kinds = %v, want one of each coordinate finding", k)
	}
}

func TestUnlinkedPlaceMention(t *testing.T) {
	report := analyze(&records.RecordSet{
		Persons: []records.PersonRecord{
			{ID: "p", Sex: "M", Events: []records.Event{
				{Type: records.EventBirth, Place: "Ullapool, Scotland"},
				{Type: records.EventDeath, Place: "Oban", PlaceID: "oban"},
			}},
		},
		Places: []records.PlaceRecord{
			{ID: "oban", Name: "Oban", Coords: &records.GeoCoords{Lat: 56.4, Lon: -5.5}},
		},
	})
	k := kinds(report)
	if k["unlinked_place"] != 1 {
		t.Errorf("kinds = %v, want exactly one unlinked_place (linked event is fine)", k)
	}
}

func TestSexChecks(t *testing.T) {
	report := analyze(&records.RecordSet{
		Persons: []records.PersonRecord{
			{ID: "canonical", Sex: "F"},
			{ID: "alias", Sex: "woman"},
			{ID: "junk", Sex: "q7"},
		},
	})
	k := kinds(report)
	if k["noncanonical_sex"] != 1 {
		t.Errorf("kinds = %v, want one noncanonical_sex", k)
	}
	if k["unknown_sex_value"] != 1 {
		t.Errorf("kinds = %v, want one unknown_sex_value", k)
	}
}

func TestSexCheckDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NormalizeSex = false
	g := graph.Build(&records.RecordSet{
		Persons: []records.PersonRecord{{ID: "p", Sex: "woman"}},
	})
	report := NewAnalyzer(g, cfg).Analyze()
	if len(report.Issues) != 0 {
		t.Errorf("issues = %v, want none with sex check disabled", report.Issues)
	}
}

func TestShapeChecks(t *testing.T) {
	report := analyze(&records.RecordSet{
		Persons: []records.PersonRecord{
			{ID: "p", Sex: "M", Extra: map[string]any{
				"parents":   "old style",
				"residence": map[string]any{"city": "Perth"},
				"tags":      []any{map[string]any{"k": "v"}},
				"note":      "plain string is fine",
			}},
		},
	})
	k := kinds(report)
	if k["legacy_field"] != 1 {
		t.Errorf("kinds = %v, want one legacy_field", k)
	}
	if k["nested_property"] != 2 {
		t.Errorf("kinds = %v, want two nested_property (map and list-of-maps)", k)
	}
}

func TestNormalizeSex(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Male", "M", true},
		{" woman ", "F", true},
		{"enby", "X", true},
		{"?", "U", true},
		{"q7", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeSex(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("NormalizeSex(%q) = %q, %v, want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestFlexibleDates(t *testing.T) {
	a := NewAnalyzer(graph.Build(&records.RecordSet{}), DefaultConfig())
	valid := []string{
		"", "1850", "1850-03", "1850-03-12", "c. 1850", "abt 1850", "~1850",
		"1850-1860", "450 BC", "1850s", "12 JAN 1850",
	}
	for _, v := range valid {
		if !a.validDate(v) {
			t.Errorf("validDate(%q) = false, want true", v)
		}
	}
	invalid := []string{"someday", "13/02/1850", "yesterday"}
	for _, v := range invalid {
		if a.validDate(v) {
			t.Errorf("validDate(%q) = true, want false", v)
		}
	}
}

func TestISODates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DateStyle = DateISO
	a := NewAnalyzer(graph.Build(&records.RecordSet{}), cfg)

	if !a.validDate("1850-03-12") || !a.validDate("1850") {
		t.Error("full and partial ISO dates should pass")
	}
	if a.validDate("12 JAN 1850") {
		t.Error("GEDCOM date should fail under ISO style")
	}

	cfg.AllowPartialDates = false
	strict := NewAnalyzer(graph.Build(&records.RecordSet{}), cfg)
	if strict.validDate("1850") {
		t.Error("partial date should fail with AllowPartialDates off")
	}
}

func TestGEDCOMDates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DateStyle = DateGEDCOM
	a := NewAnalyzer(graph.Build(&records.RecordSet{}), cfg)

	valid := []string{"12 JAN 1850", "JAN 1850", "1850", "ABT 1850", "BET 1850 AND 1860"}
	for _, v := range valid {
		if !a.validDate(v) {
			t.Errorf("validDate(%q) = false, want true under GEDCOM", v)
		}
	}
	if a.validDate("1850-03-12") {
		t.Error("ISO date should fail under GEDCOM style")
	}
}

func TestPlaceReferences(t *testing.T) {
	rec := &records.PersonRecord{
		ID: "p",
		Events: []records.Event{
			{Type: records.EventBirth, Place: "Crail"},
			{Type: records.EventBurial, Place: "Anstruther", PlaceID: "anst"},
			{Type: records.EventOther},
		},
	}
	refs := PlaceReferences(rec)
	if len(refs) != 2 {
		t.Fatalf("refs = %d, want 2 (empty event skipped)", len(refs))
	}
	if refs[0].Type != records.RefBirth || refs[0].IsLinked {
		t.Errorf("refs[0] = %+v, want unlinked birth", refs[0])
	}
	if refs[1].Type != records.RefBurial || !refs[1].IsLinked {
		t.Errorf("refs[1] = %+v, want linked burial", refs[1])
	}
}
