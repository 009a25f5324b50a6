// SQLite-backed Storer using ncruces/go-sqlite3/driver, which provides a
// database/sql interface without cgo.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/prentissw/charted-roots/pkg/records"
)

// SQLiteStore is the SQLite-backed record store.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// schema defines the record tables. Relationship and event lists are stored
// as JSON text: the graph layer owns traversal, the store only round-trips.
// No foreign keys — dangling ids are data here, not integrity violations.
const schema = `
CREATE TABLE IF NOT EXISTS persons (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    sex TEXT NOT NULL DEFAULT '',
    born TEXT NOT NULL DEFAULT '',
    died TEXT NOT NULL DEFAULT '',
    collection TEXT NOT NULL DEFAULT '',
    universe TEXT NOT NULL DEFAULT '',
    father_id TEXT NOT NULL DEFAULT '',
    father_kind INTEGER NOT NULL DEFAULT 0,
    mother_id TEXT NOT NULL DEFAULT '',
    mother_kind INTEGER NOT NULL DEFAULT 0,
    spouse_ids TEXT NOT NULL DEFAULT '[]',
    children TEXT NOT NULL DEFAULT '[]',
    events TEXT NOT NULL DEFAULT '[]',
    numbering TEXT NOT NULL DEFAULT '{}',
    extra TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_persons_collection ON persons(collection);
CREATE INDEX IF NOT EXISTS idx_persons_father ON persons(father_id);
CREATE INDEX IF NOT EXISTS idx_persons_mother ON persons(mother_id);

CREATE TABLE IF NOT EXISTS places (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    aliases TEXT NOT NULL DEFAULT '[]',
    category TEXT NOT NULL DEFAULT 'real',
    type TEXT NOT NULL DEFAULT '',
    parent_id TEXT NOT NULL DEFAULT '',
    lat REAL,
    lon REAL,
    px REAL,
    py REAL,
    extra TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_places_parent ON places(parent_id);
CREATE INDEX IF NOT EXISTS idx_places_category ON places(category);
`

// NewSQLiteStore creates an in-memory SQLite store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func (s *SQLiteStore) UpsertPerson(p *records.PersonRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spouses := p.SpouseIDs
	if spouses == nil {
		spouses = []records.PersonID{}
	}
	children := p.Children
	if children == nil {
		children = []records.ChildLink{}
	}
	events := p.Events
	if events == nil {
		events = []records.Event{}
	}

	_, err := s.db.Exec(`
		INSERT INTO persons (id, name, sex, born, died, collection, universe,
			father_id, father_kind, mother_id, mother_kind,
			spouse_ids, children, events, numbering, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, sex=excluded.sex, born=excluded.born,
			died=excluded.died, collection=excluded.collection,
			universe=excluded.universe, father_id=excluded.father_id,
			father_kind=excluded.father_kind, mother_id=excluded.mother_id,
			mother_kind=excluded.mother_kind, spouse_ids=excluded.spouse_ids,
			children=excluded.children, events=excluded.events,
			numbering=excluded.numbering, extra=excluded.extra
	`, string(p.ID), p.Name, p.Sex, p.Born, p.Died, p.Collection, p.Universe,
		string(p.FatherID), int(p.FatherKind), string(p.MotherID), int(p.MotherKind),
		marshalJSON(spouses), marshalJSON(children), marshalJSON(events),
		marshalJSON(nonNilMap(p.Numbering)), marshalJSON(nonNilAnyMap(p.Extra)))
	return err
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func nonNilAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func (s *SQLiteStore) scanPerson(row *sql.Row) (*records.PersonRecord, error) {
	var p records.PersonRecord
	var fatherKind, motherKind int
	var spouses, children, events, numbering, extra string

	err := row.Scan(&p.ID, &p.Name, &p.Sex, &p.Born, &p.Died, &p.Collection, &p.Universe,
		&p.FatherID, &fatherKind, &p.MotherID, &motherKind,
		&spouses, &children, &events, &numbering, &extra)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodePerson(&p, fatherKind, motherKind, spouses, children, events, numbering, extra)
}

func decodePerson(p *records.PersonRecord, fatherKind, motherKind int, spouses, children, events, numbering, extra string) (*records.PersonRecord, error) {
	p.FatherKind = records.ParentKind(fatherKind)
	p.MotherKind = records.ParentKind(motherKind)
	if err := json.Unmarshal([]byte(spouses), &p.SpouseIDs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(children), &p.Children); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(events), &p.Events); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(numbering), &p.Numbering); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(extra), &p.Extra); err != nil {
		return nil, err
	}
	if len(p.SpouseIDs) == 0 {
		p.SpouseIDs = nil
	}
	if len(p.Children) == 0 {
		p.Children = nil
	}
	if len(p.Events) == 0 {
		p.Events = nil
	}
	if len(p.Numbering) == 0 {
		p.Numbering = nil
	}
	if len(p.Extra) == 0 {
		p.Extra = nil
	}
	return p, nil
}

const personColumns = `id, name, sex, born, died, collection, universe,
	father_id, father_kind, mother_id, mother_kind,
	spouse_ids, children, events, numbering, extra`

func (s *SQLiteStore) GetPerson(id records.PersonID) (*records.PersonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+personColumns+` FROM persons WHERE id = ?`, string(id))
	return s.scanPerson(row)
}

func (s *SQLiteStore) DeletePerson(id records.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM persons WHERE id = ?`, string(id))
	return err
}

func (s *SQLiteStore) ListPersons(collection string) ([]*records.PersonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + personColumns + ` FROM persons ORDER BY id`
	args := []any{}
	if collection != "" {
		query = `SELECT ` + personColumns + ` FROM persons WHERE collection = ? ORDER BY id`
		args = append(args, collection)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*records.PersonRecord
	for rows.Next() {
		var p records.PersonRecord
		var fatherKind, motherKind int
		var spouses, children, events, numbering, extra string
		err := rows.Scan(&p.ID, &p.Name, &p.Sex, &p.Born, &p.Died, &p.Collection, &p.Universe,
			&p.FatherID, &fatherKind, &p.MotherID, &motherKind,
			&spouses, &children, &events, &numbering, &extra)
		if err != nil {
			return nil, err
		}
		decoded, err := decodePerson(&p, fatherKind, motherKind, spouses, children, events, numbering, extra)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountPersons() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM persons`).Scan(&count)
	return count, err
}

func (s *SQLiteStore) UpsertPlace(p *records.PlaceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	aliases := p.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	var lat, lon, px, py any
	if p.Coords != nil {
		lat, lon = p.Coords.Lat, p.Coords.Lon
	}
	if p.CustomCoords != nil {
		px, py = p.CustomCoords.X, p.CustomCoords.Y
	}
	category := p.Category
	if category == "" {
		category = records.CategoryReal
	}

	_, err := s.db.Exec(`
		INSERT INTO places (id, name, aliases, category, type, parent_id, lat, lon, px, py, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, aliases=excluded.aliases,
			category=excluded.category, type=excluded.type,
			parent_id=excluded.parent_id, lat=excluded.lat, lon=excluded.lon,
			px=excluded.px, py=excluded.py, extra=excluded.extra
	`, string(p.ID), p.Name, marshalJSON(aliases), string(category), string(p.Type),
		string(p.ParentID), lat, lon, px, py, marshalJSON(nonNilAnyMap(p.Extra)))
	return err
}

func decodePlace(p *records.PlaceRecord, aliases string, lat, lon, px, py sql.NullFloat64, extra string) (*records.PlaceRecord, error) {
	if err := json.Unmarshal([]byte(aliases), &p.Aliases); err != nil {
		return nil, err
	}
	if len(p.Aliases) == 0 {
		p.Aliases = nil
	}
	if lat.Valid && lon.Valid {
		p.Coords = &records.GeoCoords{Lat: lat.Float64, Lon: lon.Float64}
	}
	if px.Valid && py.Valid {
		p.CustomCoords = &records.PixelCoords{X: px.Float64, Y: py.Float64}
	}
	if err := json.Unmarshal([]byte(extra), &p.Extra); err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		p.Extra = nil
	}
	return p, nil
}

func (s *SQLiteStore) GetPlace(id records.PlaceID) (*records.PlaceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p records.PlaceRecord
	var aliases, extra string
	var lat, lon, px, py sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT id, name, aliases, category, type, parent_id, lat, lon, px, py, extra
		FROM places WHERE id = ?
	`, string(id)).Scan(&p.ID, &p.Name, &aliases, &p.Category, &p.Type, &p.ParentID,
		&lat, &lon, &px, &py, &extra)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodePlace(&p, aliases, lat, lon, px, py, extra)
}

func (s *SQLiteStore) DeletePlace(id records.PlaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM places WHERE id = ?`, string(id))
	return err
}

func (s *SQLiteStore) ListPlaces(category string) ([]*records.PlaceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, aliases, category, type, parent_id, lat, lon, px, py, extra FROM places ORDER BY id`
	args := []any{}
	if category != "" {
		query = `SELECT id, name, aliases, category, type, parent_id, lat, lon, px, py, extra FROM places WHERE category = ? ORDER BY id`
		args = append(args, category)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*records.PlaceRecord
	for rows.Next() {
		var p records.PlaceRecord
		var aliases, extra string
		var lat, lon, px, py sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Name, &aliases, &p.Category, &p.Type, &p.ParentID,
			&lat, &lon, &px, &py, &extra); err != nil {
			return nil, err
		}
		decoded, err := decodePlace(&p, aliases, lat, lon, px, py, extra)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountPlaces() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM places`).Scan(&count)
	return count, err
}

// Records snapshots the whole store as a record set, id-sorted.
func (s *SQLiteStore) Records() (*records.RecordSet, error) {
	persons, err := s.ListPersons("")
	if err != nil {
		return nil, err
	}
	places, err := s.ListPlaces("")
	if err != nil {
		return nil, err
	}

	set := &records.RecordSet{}
	for _, p := range persons {
		set.Persons = append(set.Persons, *p)
	}
	for _, p := range places {
		set.Places = append(set.Places, *p)
	}
	return set, nil
}

// WritePerson adapts the store to the records.PersonWriter contract.
func (s *SQLiteStore) WritePerson(p records.PersonRecord) error {
	return s.UpsertPerson(&p)
}

// WritePlace adapts the store to the records.PlaceWriter contract.
func (s *SQLiteStore) WritePlace(p records.PlaceRecord) error {
	return s.UpsertPlace(&p)
}
