package vault

import (
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prentissw/charted-roots/pkg/records"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	fs, err := mem.NewFS()
	require.NoError(t, err)
	return Open(fs, nil)
}

func TestDocumentRoundTrip(t *testing.T) {
	v := newTestVault(t)

	doc := &Document{
		Fields: map[string]any{"name": "Flora MacDonald", "born": "1722"},
		Body:   "Helped the prince across to Skye.\n",
	}
	require.NoError(t, v.Write(KindPeople, "flora", doc))

	got, err := v.Read(KindPeople, "flora")
	require.NoError(t, err)
	assert.Equal(t, "flora", got.ID)
	assert.Equal(t, "Flora MacDonald", got.Fields["name"])
	assert.Equal(t, "1722", got.Fields["born"])
	assert.Equal(t, doc.Body, got.Body)
}

func TestDocumentWithoutFrontmatter(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.MkdirAll(fs, KindPeople, 0755))
	require.NoError(t, hackpadfs.WriteFullFile(fs, "people/plain.md", []byte("just notes\n"), 0644))

	v := Open(fs, nil)
	got, err := v.Read(KindPeople, "plain")
	require.NoError(t, err)
	assert.Nil(t, got.Fields)
	assert.Equal(t, "just notes\n", got.Body)
}

func TestListSortedAndMissingKind(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.Write(KindPeople, "zelda", &Document{Fields: map[string]any{"name": "Z"}}))
	require.NoError(t, v.Write(KindPeople, "angus", &Document{Fields: map[string]any{"name": "A"}}))

	ids, err := v.List(KindPeople)
	require.NoError(t, err)
	assert.Equal(t, []string{"angus", "zelda"}, ids)

	// A kind directory that was never written is just empty.
	ids, err = v.List(KindPlaces)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRecords(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.Write(KindPeople, "p1", &Document{
		Fields: map[string]any{"name": "Annie Lennox", "sex": "F", "mother": "p2"},
	}))
	require.NoError(t, v.Write(KindPeople, "p2", &Document{
		Fields: map[string]any{"name": "Dorothy", "sex": "F"},
	}))
	require.NoError(t, v.Write(KindPlaces, "aberdeen", &Document{
		Fields: map[string]any{
			"name":        "Aberdeen",
			"type":        "city",
			"coordinates": map[string]any{"lat": 57.15, "lon": -2.09},
		},
	}))

	set, err := v.Records()
	require.NoError(t, err)
	require.Len(t, set.Persons, 2)
	require.Len(t, set.Places, 1)

	p1 := set.Person("p1")
	require.NotNil(t, p1)
	assert.Equal(t, records.PersonID("p2"), p1.MotherID)

	aberdeen := set.Place("aberdeen")
	require.NotNil(t, aberdeen)
	assert.Equal(t, records.TypeCity, aberdeen.Type)
	require.NotNil(t, aberdeen.Coords)
	assert.InDelta(t, 57.15, aberdeen.Coords.Lat, 1e-9)
}

func TestWritePersonPreservesBody(t *testing.T) {
	v := newTestVault(t)

	require.NoError(t, v.Write(KindPeople, "p1", &Document{
		Fields: map[string]any{"name": "Old Name"},
		Body:   "A long biography that must survive edits.\n",
	}))

	rec := records.PersonRecord{ID: "p1", Name: "New Name", Sex: "F"}
	require.NoError(t, v.WritePerson(rec))

	got, err := v.Read(KindPeople, "p1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Fields["name"])
	assert.Equal(t, "A long biography that must survive edits.\n", got.Body)
}

func TestWritePersonRoundTripsRecord(t *testing.T) {
	v := newTestVault(t)

	rec := records.PersonRecord{
		ID:         "p1",
		Name:       "Mary Slessor",
		Sex:        "F",
		Born:       "1848-12-02",
		FatherID:   "robert",
		FatherKind: records.ParentBlood,
		SpouseIDs:  []records.PersonID{"none"},
		Events: []records.Event{
			{Type: records.EventBirth, Date: "1848-12-02", Place: "Aberdeen, Scotland"},
		},
	}
	require.NoError(t, v.WritePerson(rec))

	set, err := v.Records()
	require.NoError(t, err)
	got := set.Person("p1")
	require.NotNil(t, got)
	assert.Equal(t, rec.Name, got.Name)
	assert.Equal(t, rec.FatherID, got.FatherID)
	assert.Equal(t, rec.SpouseIDs, got.SpouseIDs)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "Aberdeen, Scotland", got.Events[0].Place)
}

func TestWritePlaceRoundTripsRecord(t *testing.T) {
	v := newTestVault(t)

	rec := records.PlaceRecord{
		ID:       "camelot",
		Name:     "Camelot",
		Category: records.CategoryLegendary,
		Type:     records.TypeCity,
		CustomCoords: &records.PixelCoords{
			X: 400, Y: 250,
		},
	}
	require.NoError(t, v.WritePlace(rec))

	set, err := v.Records()
	require.NoError(t, err)
	got := set.Place("camelot")
	require.NotNil(t, got)
	assert.Equal(t, records.CategoryLegendary, got.Category)
	require.NotNil(t, got.CustomCoords)
	assert.InDelta(t, 400, got.CustomCoords.X, 1e-9)
	assert.Nil(t, got.Coords)
}

func TestRecordsSkipsUnreadableDocs(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.MkdirAll(fs, KindPeople, 0755))
	require.NoError(t, hackpadfs.WriteFullFile(fs, "people/good.md",
		[]byte("---\nname: Good Record\n---\n"), 0644))
	require.NoError(t, hackpadfs.WriteFullFile(fs, "people/bad.md",
		[]byte("---\nname: [unclosed\n---\n"), 0644))

	v := Open(fs, nil)
	set, err := v.Records()
	require.NoError(t, err)
	require.Len(t, set.Persons, 1)
	assert.Equal(t, "Good Record", set.Persons[0].Name)
}
