package records

import "testing"

func TestPersonFromFields(t *testing.T) {
	fields := map[string]any{
		"name":       "Bilbo Baggins",
		"sex":        "M",
		"born":       2890,
		"universe":   "middle-earth",
		"father":     "bungo",
		"stepmother": "gerontia",
		"spouses":    []any{},
		"children": []any{
			"frodo-adopt-note",
			map[string]any{"id": "frodo", "kind": "adoptive"},
		},
		"events": []any{
			map[string]any{"type": "birth", "date": "2890", "place": "Hobbiton, The Shire"},
		},
		"numbering":  map[string]any{"daboville": "1.2"},
		"occupation": "burglar",
	}

	p := PersonFromFields("bilbo", fields)
	if p.ID != "bilbo" {
		t.Errorf("ID = %q, want bilbo", p.ID)
	}
	if p.Name != "Bilbo Baggins" {
		t.Errorf("Name = %q", p.Name)
	}
	if p.Born != "2890" {
		t.Errorf("Born = %q, want 2890 (int field should render without decimal)", p.Born)
	}
	if p.FatherID != "bungo" || p.FatherKind != ParentBlood {
		t.Errorf("father = %q/%v", p.FatherID, p.FatherKind)
	}
	if p.MotherID != "gerontia" || p.MotherKind != ParentStep {
		t.Errorf("stepmother = %q/%v", p.MotherID, p.MotherKind)
	}
	if len(p.Children) != 2 {
		t.Fatalf("children = %d, want 2", len(p.Children))
	}
	if p.Children[1].Kind != ParentAdoptive {
		t.Errorf("second child kind = %v, want adoptive", p.Children[1].Kind)
	}
	if len(p.Events) != 1 || p.Events[0].Place != "Hobbiton, The Shire" {
		t.Errorf("events = %+v", p.Events)
	}
	if p.Numbering["daboville"] != "1.2" {
		t.Errorf("numbering = %v", p.Numbering)
	}
	if p.Extra["occupation"] != "burglar" {
		t.Errorf("unknown field should land in Extra, got %v", p.Extra)
	}
}

func TestPersonFieldsRoundTrip(t *testing.T) {
	orig := PersonRecord{
		ID:         "p1",
		Name:       "Rosie Cotton",
		Sex:        "F",
		Born:       "2984",
		MotherID:   "lily",
		MotherKind: ParentFoster,
		SpouseIDs:  []PersonID{"sam"},
		Children:   []ChildLink{{ID: "elanor"}, {ID: "tom", Kind: ParentStep}},
		Events: []Event{
			{Type: EventMarriage, Date: "3020", Place: "Hobbiton", PlaceID: "hobbiton"},
		},
		Numbering: map[string]string{"henry": "11"},
		Extra:     map[string]any{"note": "verified"},
	}

	back := PersonFromFields(orig.ID, PersonFields(&orig))

	if back.Name != orig.Name || back.Sex != orig.Sex || back.Born != orig.Born {
		t.Errorf("scalar fields changed: %+v", back)
	}
	if back.MotherID != "lily" || back.MotherKind != ParentFoster {
		t.Errorf("foster mother lost: %q/%v", back.MotherID, back.MotherKind)
	}
	if len(back.SpouseIDs) != 1 || back.SpouseIDs[0] != "sam" {
		t.Errorf("spouses = %v", back.SpouseIDs)
	}
	if len(back.Children) != 2 || back.Children[1].Kind != ParentStep {
		t.Errorf("children = %v", back.Children)
	}
	if len(back.Events) != 1 || back.Events[0].PlaceID != "hobbiton" {
		t.Errorf("events = %v", back.Events)
	}
	if back.Numbering["henry"] != "11" {
		t.Errorf("numbering = %v", back.Numbering)
	}
	if back.Extra["note"] != "verified" {
		t.Errorf("extra = %v", back.Extra)
	}
}

func TestPlaceFromFields(t *testing.T) {
	p := PlaceFromFields("shire", map[string]any{
		"name":        "The Shire",
		"aliases":     []any{"Shire", "Sûza"},
		"category":    "fictional",
		"type":        "Region",
		"parent":      "eriador",
		"coordinates": map[string]any{"lat": 52.0, "lon": -1.5},
	})
	if p.Category != CategoryFictional {
		t.Errorf("category = %v", p.Category)
	}
	if p.Type != TypeRegion {
		t.Errorf("type = %v, want region (lowercased)", p.Type)
	}
	if p.ParentID != "eriador" {
		t.Errorf("parent = %v", p.ParentID)
	}
	if p.Coords == nil || p.Coords.Lat != 52.0 {
		t.Errorf("coords = %+v", p.Coords)
	}
	if len(p.Aliases) != 2 {
		t.Errorf("aliases = %v", p.Aliases)
	}
}

func TestPlaceFieldsRoundTrip(t *testing.T) {
	orig := PlaceRecord{
		ID:           "gondolin",
		Name:         "Gondolin",
		Category:     CategoryLegendary,
		Type:         TypeCity,
		ParentID:     "beleriand",
		CustomCoords: &PixelCoords{X: 120, Y: 300},
	}
	back := PlaceFromFields(orig.ID, PlaceFields(&orig))
	if back.Category != CategoryLegendary || back.Type != TypeCity || back.ParentID != "beleriand" {
		t.Errorf("round trip changed record: %+v", back)
	}
	if back.CustomCoords == nil || back.CustomCoords.X != 120 {
		t.Errorf("custom coords = %+v", back.CustomCoords)
	}
	if back.Coords != nil {
		t.Error("geo coords should stay unset")
	}
}

func TestPlaceDefaultCategory(t *testing.T) {
	p := PlaceFromFields("", map[string]any{"name": "Yorkshire"})
	if p.Category != CategoryReal {
		t.Errorf("default category = %v, want real", p.Category)
	}
	if p.ID == "" {
		t.Error("empty id should get one minted")
	}
}
