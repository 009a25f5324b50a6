package records

import (
	"fmt"
	"strings"
)

// This file is the ingestion boundary: untyped frontmatter/parser output
// (map[string]any) is converted into strict records immediately, with every
// unrecognized field retained in the Extra bag instead of dropped.

func fieldString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		// YAML numbers decode as float64; render whole values without a
		// trailing ".0" so years survive round-trips.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return ""
	}
}

func fieldFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func fieldSlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case nil:
		return nil
	default:
		return []any{v}
	}
}

// PersonFromFields builds a PersonRecord from an untyped field map. An empty
// id gets a fresh one minted. The conversion never fails: malformed values
// land in Extra where the quality analyzer can flag them.
func PersonFromFields(id PersonID, fields map[string]any) PersonRecord {
	if id == "" {
		id = NewPersonID()
	}
	p := PersonRecord{ID: id}
	for key, val := range fields {
		switch strings.ToLower(key) {
		case "id":
			// identity comes from the caller, not the field bag
		case "name":
			p.Name = fieldString(val)
		case "sex", "gender":
			p.Sex = fieldString(val)
		case "born", "birth_date":
			p.Born = fieldString(val)
		case "died", "death_date":
			p.Died = fieldString(val)
		case "collection":
			p.Collection = fieldString(val)
		case "universe":
			p.Universe = fieldString(val)
		case "father", "father_id":
			p.FatherID = PersonID(fieldString(val))
		case "stepfather", "stepfather_id":
			p.FatherID = PersonID(fieldString(val))
			p.FatherKind = ParentStep
		case "adoptive_father":
			p.FatherID = PersonID(fieldString(val))
			p.FatherKind = ParentAdoptive
		case "foster_father":
			p.FatherID = PersonID(fieldString(val))
			p.FatherKind = ParentFoster
		case "mother", "mother_id":
			p.MotherID = PersonID(fieldString(val))
		case "stepmother", "stepmother_id":
			p.MotherID = PersonID(fieldString(val))
			p.MotherKind = ParentStep
		case "adoptive_mother":
			p.MotherID = PersonID(fieldString(val))
			p.MotherKind = ParentAdoptive
		case "foster_mother":
			p.MotherID = PersonID(fieldString(val))
			p.MotherKind = ParentFoster
		case "spouse", "spouses", "spouse_ids":
			for _, item := range fieldSlice(val) {
				if s := fieldString(item); s != "" {
					p.SpouseIDs = append(p.SpouseIDs, PersonID(s))
				}
			}
		case "children", "child_ids":
			for _, item := range fieldSlice(val) {
				p.Children = append(p.Children, childLinkFromField(item))
			}
		case "events":
			for _, item := range fieldSlice(val) {
				if m, ok := item.(map[string]any); ok {
					p.Events = append(p.Events, eventFromFields(m))
				}
			}
		case "numbering":
			if m, ok := val.(map[string]any); ok {
				p.Numbering = make(map[string]string, len(m))
				for k, v := range m {
					p.Numbering[k] = fieldString(v)
				}
			}
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]any)
			}
			p.Extra[key] = val
		}
	}
	return p
}

func childLinkFromField(v any) ChildLink {
	switch t := v.(type) {
	case map[string]any:
		kind, _ := ParseParentKind(fieldString(t["kind"]))
		return ChildLink{ID: PersonID(fieldString(t["id"])), Kind: kind}
	default:
		return ChildLink{ID: PersonID(fieldString(v))}
	}
}

func eventFromFields(m map[string]any) Event {
	ev := Event{
		Type:    EventType(strings.ToLower(fieldString(m["type"]))),
		Date:    fieldString(m["date"]),
		Place:   fieldString(m["place"]),
		PlaceID: PlaceID(fieldString(m["place_id"])),
	}
	if ev.Type == "" {
		ev.Type = EventOther
	}
	return ev
}

// PlaceFromFields builds a PlaceRecord from an untyped field map.
func PlaceFromFields(id PlaceID, fields map[string]any) PlaceRecord {
	if id == "" {
		id = NewPlaceID()
	}
	p := PlaceRecord{ID: id, Category: CategoryReal}
	for key, val := range fields {
		switch strings.ToLower(key) {
		case "id":
		case "name":
			p.Name = fieldString(val)
		case "aliases":
			for _, item := range fieldSlice(val) {
				if s := fieldString(item); s != "" {
					p.Aliases = append(p.Aliases, s)
				}
			}
		case "category":
			p.Category = ParsePlaceCategory(fieldString(val))
		case "type", "place_type":
			p.Type = PlaceType(strings.ToLower(fieldString(val)))
		case "parent", "parent_id", "parent_place":
			p.ParentID = PlaceID(fieldString(val))
		case "coordinates", "coords":
			if m, ok := val.(map[string]any); ok {
				lat, okLat := fieldFloat(m["lat"])
				lon, okLon := fieldFloat(m["lon"])
				if !okLon {
					lon, okLon = fieldFloat(m["lng"])
				}
				if okLat && okLon {
					p.Coords = &GeoCoords{Lat: lat, Lon: lon}
				}
			}
		case "custom_coordinates", "custom_coords":
			if m, ok := val.(map[string]any); ok {
				x, okX := fieldFloat(m["x"])
				y, okY := fieldFloat(m["y"])
				if okX && okY {
					p.CustomCoords = &PixelCoords{X: x, Y: y}
				}
			}
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]any)
			}
			p.Extra[key] = val
		}
	}
	return p
}

// PersonFields flattens a PersonRecord back into a frontmatter-style map,
// Extra keys included. The inverse of PersonFromFields up to key spelling.
func PersonFields(p *PersonRecord) map[string]any {
	out := make(map[string]any)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Name != "" {
		out["name"] = p.Name
	}
	if p.Sex != "" {
		out["sex"] = p.Sex
	}
	if p.Born != "" {
		out["born"] = p.Born
	}
	if p.Died != "" {
		out["died"] = p.Died
	}
	if p.Collection != "" {
		out["collection"] = p.Collection
	}
	if p.Universe != "" {
		out["universe"] = p.Universe
	}
	if p.FatherID != "" {
		out[parentKey("father", p.FatherKind)] = string(p.FatherID)
	}
	if p.MotherID != "" {
		out[parentKey("mother", p.MotherKind)] = string(p.MotherID)
	}
	if len(p.SpouseIDs) > 0 {
		spouses := make([]any, len(p.SpouseIDs))
		for i, s := range p.SpouseIDs {
			spouses[i] = string(s)
		}
		out["spouses"] = spouses
	}
	if len(p.Children) > 0 {
		children := make([]any, len(p.Children))
		for i, c := range p.Children {
			if c.Kind == ParentBlood {
				children[i] = string(c.ID)
			} else {
				children[i] = map[string]any{"id": string(c.ID), "kind": c.Kind.String()}
			}
		}
		out["children"] = children
	}
	if len(p.Events) > 0 {
		events := make([]any, len(p.Events))
		for i, ev := range p.Events {
			m := map[string]any{"type": string(ev.Type)}
			if ev.Date != "" {
				m["date"] = ev.Date
			}
			if ev.Place != "" {
				m["place"] = ev.Place
			}
			if ev.PlaceID != "" {
				m["place_id"] = string(ev.PlaceID)
			}
			events[i] = m
		}
		out["events"] = events
	}
	if len(p.Numbering) > 0 {
		numbering := make(map[string]any, len(p.Numbering))
		for k, v := range p.Numbering {
			numbering[k] = v
		}
		out["numbering"] = numbering
	}
	return out
}

func parentKey(base string, kind ParentKind) string {
	switch kind {
	case ParentStep:
		return "step" + base
	case ParentAdoptive:
		return "adoptive_" + base
	case ParentFoster:
		return "foster_" + base
	default:
		return base
	}
}

// PlaceFields flattens a PlaceRecord back into a frontmatter-style map.
func PlaceFields(p *PlaceRecord) map[string]any {
	out := make(map[string]any)
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.Name != "" {
		out["name"] = p.Name
	}
	if len(p.Aliases) > 0 {
		aliases := make([]any, len(p.Aliases))
		for i, a := range p.Aliases {
			aliases[i] = a
		}
		out["aliases"] = aliases
	}
	if p.Category != "" && p.Category != CategoryReal {
		out["category"] = string(p.Category)
	}
	if p.Type != "" {
		out["type"] = string(p.Type)
	}
	if p.ParentID != "" {
		out["parent"] = string(p.ParentID)
	}
	if p.Coords != nil {
		out["coordinates"] = map[string]any{"lat": p.Coords.Lat, "lon": p.Coords.Lon}
	}
	if p.CustomCoords != nil {
		out["custom_coordinates"] = map[string]any{"x": p.CustomCoords.X, "y": p.CustomCoords.Y}
	}
	return out
}
