// Package store provides the normalized-record store behind the graph: a
// Storer interface with an in-memory implementation for tests and a
// SQLite-backed one for large vaults. The store is a cache over the vault's
// documents, not a second authority; it is rebuilt by sync, never merged.
package store

import (
	"github.com/prentissw/charted-roots/pkg/records"
)

// Storer persists normalized person and place records.
type Storer interface {
	// Persons
	UpsertPerson(p *records.PersonRecord) error
	GetPerson(id records.PersonID) (*records.PersonRecord, error)
	DeletePerson(id records.PersonID) error
	ListPersons(collection string) ([]*records.PersonRecord, error)
	CountPersons() (int, error)

	// Places
	UpsertPlace(p *records.PlaceRecord) error
	GetPlace(id records.PlaceID) (*records.PlaceRecord, error)
	DeletePlace(id records.PlaceID) error
	ListPlaces(category string) ([]*records.PlaceRecord, error)
	CountPlaces() (int, error)

	// Records snapshots the full set, making any Storer a graph record
	// source.
	Records() (*records.RecordSet, error)

	// Lifecycle
	Close() error
}

// Sync replaces the store's contents with a record set. Used after imports
// and vault scans; per-record failures are collected, not fatal.
func Sync(s Storer, set *records.RecordSet) records.BatchResult {
	var res records.BatchResult
	for i := range set.Persons {
		res.Processed++
		if err := s.UpsertPerson(&set.Persons[i]); err != nil {
			res.AddError(err.Error())
			continue
		}
		res.Modified++
	}
	for i := range set.Places {
		res.Processed++
		if err := s.UpsertPlace(&set.Places[i]); err != nil {
			res.AddError(err.Error())
			continue
		}
		res.Modified++
	}
	return res
}
