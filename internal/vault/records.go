package vault

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/prentissw/charted-roots/pkg/records"
)

// The vault doubles as the graph store's record source and as the
// PersonWriter/PlaceWriter the engines persist through. Document bodies are
// preserved across record writes; the engines only own the frontmatter.

// Records loads every person and place document into a normalized record
// set. Undecodable documents are skipped with a log entry; a partially
// readable vault still produces a usable set, matching the build-never-fails
// policy of the graph store.
func (v *Vault) Records() (*records.RecordSet, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	set := &records.RecordSet{}

	peopleIDs, err := v.list(KindPeople)
	if err != nil {
		return nil, err
	}
	for _, id := range peopleIDs {
		doc, err := v.read(KindPeople, id)
		if err != nil {
			v.log.Warn("skipping unreadable person document", zap.String("id", id), zap.Error(err))
			continue
		}
		set.Persons = append(set.Persons, records.PersonFromFields(records.PersonID(id), doc.Fields))
	}

	placeIDs, err := v.list(KindPlaces)
	if err != nil {
		return nil, err
	}
	for _, id := range placeIDs {
		doc, err := v.read(KindPlaces, id)
		if err != nil {
			v.log.Warn("skipping unreadable place document", zap.String("id", id), zap.Error(err))
			continue
		}
		set.Places = append(set.Places, records.PlaceFromFields(records.PlaceID(id), doc.Fields))
	}

	return set, nil
}

// WritePerson persists a person record into its document's frontmatter,
// keeping the markdown body intact.
func (v *Vault) WritePerson(p records.PersonRecord) error {
	if p.ID == "" {
		return fmt.Errorf("person record has no id")
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	body := ""
	if existing, err := v.read(KindPeople, string(p.ID)); err == nil {
		body = existing.Body
	}
	return v.write(KindPeople, string(p.ID), &Document{
		ID:     string(p.ID),
		Fields: records.PersonFields(&p),
		Body:   body,
	})
}

// WritePlace persists a place record into its document's frontmatter.
func (v *Vault) WritePlace(p records.PlaceRecord) error {
	if p.ID == "" {
		return fmt.Errorf("place record has no id")
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	body := ""
	if existing, err := v.read(KindPlaces, string(p.ID)); err == nil {
		body = existing.Body
	}
	return v.write(KindPlaces, string(p.ID), &Document{
		ID:     string(p.ID),
		Fields: records.PlaceFields(&p),
		Body:   body,
	})
}
