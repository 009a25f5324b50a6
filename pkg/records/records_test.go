package records

import "testing"

func TestParseSex(t *testing.T) {
	cases := []struct {
		in   string
		want Sex
		ok   bool
	}{
		{"M", SexMale, true},
		{"male", SexMale, true},
		{" F ", SexFemale, true},
		{"Female", SexFemale, true},
		{"X", SexNonbinary, true},
		{"non-binary", SexNonbinary, true},
		{"", SexUnknown, true},
		{"U", SexUnknown, true},
		{"man", SexUnknown, false},
		{"fem", SexUnknown, false},
	}
	for _, c := range cases {
		got, ok := ParseSex(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseSex(%q) = %v, %v, want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseParentKind(t *testing.T) {
	cases := []struct {
		in   string
		want ParentKind
		ok   bool
	}{
		{"", ParentBlood, true},
		{"biological", ParentBlood, true},
		{"step", ParentStep, true},
		{"adopted", ParentAdoptive, true},
		{"foster", ParentFoster, true},
		{"godparent", ParentBlood, false},
	}
	for _, c := range cases {
		got, ok := ParseParentKind(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseParentKind(%q) = %v, %v, want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
	if ParentBlood.Specific() {
		t.Error("ParentBlood should not be specific")
	}
	if !ParentStep.Specific() || !ParentAdoptive.Specific() || !ParentFoster.Specific() {
		t.Error("step/adoptive/foster should be specific")
	}
}

func TestPlaceTypeRanks(t *testing.T) {
	if TypeCountry.Rank() >= TypeCity.Rank() {
		t.Errorf("country rank %d should be above city rank %d", TypeCountry.Rank(), TypeCity.Rank())
	}
	if TypePlanet.Rank() != 0 {
		t.Errorf("planet rank = %d, want 0", TypePlanet.Rank())
	}
	if got := PlaceType("castle").Rank(); got != LeafRank {
		t.Errorf("custom type rank = %d, want %d", got, LeafRank)
	}
	if PlaceType("CITY").Rank() != TypeCity.Rank() {
		t.Error("rank lookup should be case-insensitive")
	}
}

func TestPlaceCategoryGeographic(t *testing.T) {
	for _, c := range []PlaceCategory{CategoryReal, CategoryHistorical, CategoryDisputed, ""} {
		if !c.Geographic() {
			t.Errorf("%q should be geographic", c)
		}
	}
	for _, c := range []PlaceCategory{CategoryLegendary, CategoryMythological, CategoryFictional} {
		if c.Geographic() {
			t.Errorf("%q should not be geographic", c)
		}
	}
}

func TestPersonClone(t *testing.T) {
	p := PersonRecord{
		ID:        "p1",
		Name:      "Elanor Gardner",
		SpouseIDs: []PersonID{"p2"},
		Children:  []ChildLink{{ID: "p3"}},
		Numbering: map[string]string{"ahnentafel": "1"},
	}
	c := p.Clone()
	c.SpouseIDs[0] = "p9"
	c.Children[0].ID = "p9"
	c.Numbering["ahnentafel"] = "2"

	if p.SpouseIDs[0] != "p2" || p.Children[0].ID != "p3" || p.Numbering["ahnentafel"] != "1" {
		t.Error("Clone should not alias the original's slices or maps")
	}
}

func TestNormalizeFamilies(t *testing.T) {
	set := &RecordSet{
		Persons: []PersonRecord{
			{ID: "husband", Sex: "M"},
			{ID: "wife", Sex: "F"},
			{ID: "kid"},
		},
		Families: []FamilyRecord{
			{ID: "f1", SpouseIDs: []PersonID{"husband", "wife"}, ChildIDs: []PersonID{"kid"}},
		},
	}

	added := set.NormalizeFamilies()
	if added == 0 {
		t.Fatal("NormalizeFamilies added no links")
	}

	h, w, k := set.Person("husband"), set.Person("wife"), set.Person("kid")
	if !h.HasSpouse("wife") || !w.HasSpouse("husband") {
		t.Error("spouses should learn each other")
	}
	if _, ok := h.ChildLinkFor("kid"); !ok {
		t.Error("husband should list the child")
	}
	if k.FatherID != "husband" || k.MotherID != "wife" {
		t.Errorf("child parents = %q/%q, want husband/wife", k.FatherID, k.MotherID)
	}

	// Idempotent: a second pass adds nothing.
	if again := set.NormalizeFamilies(); again != 0 {
		t.Errorf("second NormalizeFamilies added %d links, want 0", again)
	}
}

func TestNormalizeFamiliesKeepsExplicitLinks(t *testing.T) {
	set := &RecordSet{
		Persons: []PersonRecord{
			{ID: "dad", Sex: "M"},
			{ID: "stepdad", Sex: "M"},
			{ID: "kid", FatherID: "dad"},
		},
		Families: []FamilyRecord{
			{ID: "f1", SpouseIDs: []PersonID{"stepdad"}, ChildIDs: []PersonID{"kid"}},
		},
	}
	set.NormalizeFamilies()
	if set.Person("kid").FatherID != "dad" {
		t.Errorf("explicit father overwritten: got %q", set.Person("kid").FatherID)
	}
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := map[PersonID]bool{}
	for i := 0; i < 100; i++ {
		id := NewPersonID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
