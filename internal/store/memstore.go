package store

import (
	"sort"
	"sync"

	"github.com/prentissw/charted-roots/pkg/records"
)

// MemStore is the in-memory Storer used in tests and for small vaults.
type MemStore struct {
	mu      sync.RWMutex
	persons map[records.PersonID]*records.PersonRecord
	places  map[records.PlaceID]*records.PlaceRecord
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		persons: make(map[records.PersonID]*records.PersonRecord),
		places:  make(map[records.PlaceID]*records.PlaceRecord),
	}
}

// Close is a no-op for MemStore.
func (s *MemStore) Close() error {
	return nil
}

func (s *MemStore) UpsertPerson(p *records.PersonRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Deep copy to avoid mutation aliasing
	cp := p.Clone()
	s.persons[p.ID] = &cp
	return nil
}

func (s *MemStore) GetPerson(id records.PersonID) (*records.PersonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.persons[id]; ok {
		cp := p.Clone()
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStore) DeletePerson(id records.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.persons, id)
	return nil
}

func (s *MemStore) ListPersons(collection string) ([]*records.PersonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*records.PersonRecord
	for _, p := range s.persons {
		if collection != "" && p.Collection != collection {
			continue
		}
		cp := p.Clone()
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) CountPersons() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.persons), nil
}

func (s *MemStore) UpsertPlace(p *records.PlaceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := p.Clone()
	s.places[p.ID] = &cp
	return nil
}

func (s *MemStore) GetPlace(id records.PlaceID) (*records.PlaceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.places[id]; ok {
		cp := p.Clone()
		return &cp, nil
	}
	return nil, nil
}

func (s *MemStore) DeletePlace(id records.PlaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.places, id)
	return nil
}

func (s *MemStore) ListPlaces(category string) ([]*records.PlaceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*records.PlaceRecord
	for _, p := range s.places {
		if category != "" && string(p.Category) != category {
			continue
		}
		cp := p.Clone()
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) CountPlaces() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.places), nil
}

// Records snapshots the whole store as a record set, id-sorted.
func (s *MemStore) Records() (*records.RecordSet, error) {
	persons, _ := s.ListPersons("")
	places, _ := s.ListPlaces("")

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
func (s *MemStore) WritePerson(p records.PersonRecord) error {
	return s.UpsertPerson(&p)
}

// WritePlace adapts the store to the records.PlaceWriter contract.
func (s *MemStore) WritePlace(p records.PlaceRecord) error {
	return s.UpsertPlace(&p)
}
