package records

import "strings"

// PlaceCategory classifies how literally a place exists. Geographic
// coordinates only make sense for the first three; the rest use pixel
// coordinates on a custom map canvas.
type PlaceCategory string

const (
	CategoryReal         PlaceCategory = "real"
	CategoryHistorical   PlaceCategory = "historical"
	CategoryDisputed     PlaceCategory = "disputed"
	CategoryLegendary    PlaceCategory = "legendary"
	CategoryMythological PlaceCategory = "mythological"
	CategoryFictional    PlaceCategory = "fictional"
)

// Geographic reports whether the category lives in lat/long space.
func (c PlaceCategory) Geographic() bool {
	switch c {
	case CategoryReal, CategoryHistorical, CategoryDisputed, "":
		return true
	}
	return false
}

// ParsePlaceCategory maps a raw string to a category, defaulting to real.
func ParsePlaceCategory(s string) PlaceCategory {
	switch PlaceCategory(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryHistorical:
		return CategoryHistorical
	case CategoryDisputed:
		return CategoryDisputed
	case CategoryLegendary:
		return CategoryLegendary
	case CategoryMythological:
		return CategoryMythological
	case CategoryFictional:
		return CategoryFictional
	default:
		return CategoryReal
	}
}

// PlaceType is a hierarchy-leveled place kind. Rank increases downward:
// a parent's rank must be numerically smaller than its child's.
type PlaceType string

const (
	TypePlanet       PlaceType = "planet"
	TypeContinent    PlaceType = "continent"
	TypeCountry      PlaceType = "country"
	TypeRegion       PlaceType = "region"
	TypeState        PlaceType = "state"
	TypeCounty       PlaceType = "county"
	TypeDistrict     PlaceType = "district"
	TypeCity         PlaceType = "city"
	TypeTown         PlaceType = "town"
	TypeVillage      PlaceType = "village"
	TypeNeighborhood PlaceType = "neighborhood"
	TypeBuilding     PlaceType = "building"

	// LeafRank is assigned to custom/unknown types, which sort below every
	// built-in level.
	LeafRank = 99
)

var placeTypeRanks = map[PlaceType]int{
	TypePlanet:       0,
	TypeContinent:    1,
	TypeCountry:      2,
	TypeRegion:       3,
	TypeState:        4,
	TypeCounty:       5,
	TypeDistrict:     6,
	TypeCity:         7,
	TypeTown:         8,
	TypeVillage:      9,
	TypeNeighborhood: 10,
	TypeBuilding:     11,
}

// Rank returns the numeric hierarchy level. Custom strings are leaves.
func (t PlaceType) Rank() int {
	if r, ok := placeTypeRanks[PlaceType(strings.ToLower(string(t)))]; ok {
		return r
	}
	return LeafRank
}

// Builtin reports whether the type is one of the leveled built-ins.
func (t PlaceType) Builtin() bool {
	_, ok := placeTypeRanks[PlaceType(strings.ToLower(string(t)))]
	return ok
}

// GeoCoords is a geographic coordinate pair (WGS84 degrees).
type GeoCoords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PixelCoords positions a place on a custom map image. Only meaningful for
// non-geographic categories.
type PixelCoords struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlaceRecord is the authoritative place entry. ParentID chains express
// containment (city inside county inside country); the chain is resolved,
// cycle-checked and rank-checked by the hierarchy resolver, never trusted.
type PlaceRecord struct {
	ID       PlaceID       `json:"id"`
	Name     string        `json:"name"`
	Aliases  []string      `json:"aliases,omitempty"`
	Category PlaceCategory `json:"category,omitempty"`
	Type     PlaceType     `json:"type,omitempty"`
	ParentID PlaceID       `json:"parentId,omitempty"`

	// Coords and CustomCoords are mutually exclusive per node; which one is
	// legal follows from Category. Violations are reported by the quality
	// analyzer, never auto-corrected.
	Coords       *GeoCoords   `json:"coords,omitempty"`
	CustomCoords *PixelCoords `json:"customCoords,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Clone returns a deep copy of the record.
func (p *PlaceRecord) Clone() PlaceRecord {
	out := *p
	out.Aliases = append([]string(nil), p.Aliases...)
	if p.Coords != nil {
		c := *p.Coords
		out.Coords = &c
	}
	if p.CustomCoords != nil {
		c := *p.CustomCoords
		out.CustomCoords = &c
	}
	if p.Extra != nil {
		out.Extra = make(map[string]any, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// RefType classifies a place mention extracted from a person record.
type RefType string

const (
	RefBirth     RefType = "birth"
	RefDeath     RefType = "death"
	RefMarriage  RefType = "marriage"
	RefResidence RefType = "residence"
	RefBurial    RefType = "burial"
	RefOther     RefType = "other"
)

// RefTypeForEvent maps an event type to the reference type it produces.
func RefTypeForEvent(t EventType) RefType {
	switch t {
	case EventBirth:
		return RefBirth
	case EventDeath:
		return RefDeath
	case EventMarriage:
		return RefMarriage
	case EventResidence:
		return RefResidence
	case EventBurial:
		return RefBurial
	default:
		return RefOther
	}
}

// PlaceReference is a place mention fact used by the quality analyzer to
// count unresolved mentions. It is not part of the authoritative graph.
type PlaceReference struct {
	PersonID PersonID `json:"personId"`
	Type     RefType  `json:"type"`
	RawValue string   `json:"rawValue"`
	PlaceID  PlaceID  `json:"placeId,omitempty"`
	IsLinked bool     `json:"isLinked"`
}
