// Package geo provides nearest-place lookup over geographic coordinates.
// Lat/long pairs are projected onto the unit sphere, where cosine distance
// is monotonic with great-circle distance, and indexed with HNSW. Places in
// non-geographic categories (pixel coordinates on a custom map) are never
// indexed; their distances have no geodesic meaning.
package geo

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"sync"

	"github.com/fogfish/hnsw"
	"github.com/fogfish/hnsw/vector"
	"github.com/hack-pad/hackpadfs"
	kvector "github.com/kshard/vector"

	"github.com/prentissw/charted-roots/pkg/graph"
	"github.com/prentissw/charted-roots/pkg/records"
)

// Index maps place ids to points on the unit sphere and answers k-nearest
// queries. Persistence is a gob snapshot on a hackpadfs filesystem.
type Index struct {
	index *hnsw.HNSW[vector.VF32]
	fs    hackpadfs.FS
	path  string
	mu    sync.RWMutex

	// HNSW keys are uint32; ids maps key -> place id, keyOf the reverse.
	ids   []records.PlaceID
	keyOf map[records.PlaceID]uint32
}

// snapshot is the persisted form of the index.
type snapshot struct {
	Nodes hnsw.Nodes[vector.VF32]
	IDs   []records.PlaceID
}

// NewIndex opens the index at path, loading a previous snapshot when one
// exists and starting empty otherwise.
func NewIndex(fs hackpadfs.FS, path string) (*Index, error) {
	idx := &Index{
		fs:    fs,
		path:  path,
		keyOf: make(map[records.PlaceID]uint32),
	}
	if err := idx.Load(); err != nil {
		idx.index = hnsw.New[vector.VF32](vector.SurfaceVF32(kvector.Cosine()))
		idx.ids = nil
		idx.keyOf = make(map[records.PlaceID]uint32)
	}
	return idx, nil
}

// embed projects a lat/long pair (degrees) onto the unit sphere.
func embed(lat, lon float64) []float32 {
	latR := lat * math.Pi / 180
	lonR := lon * math.Pi / 180
	// kshard/vector's cosine distance requires vector lengths that are a
	// multiple of 4; a trailing zero component leaves the distance unchanged.
	return []float32{
		float32(math.Cos(latR) * math.Cos(lonR)),
		float32(math.Cos(latR) * math.Sin(lonR)),
		float32(math.Sin(latR)),
		0,
	}
}

// Add indexes one place at the given coordinates. Re-adding an id inserts a
// new point; callers rebuild the index wholesale after batch edits, matching
// the graph store's rebuild lifecycle.
func (x *Index) Add(id records.PlaceID, lat, lon float64) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.index == nil {
		return fmt.Errorf("index not initialized")
	}
	key := uint32(len(x.ids))
	x.ids = append(x.ids, id)
	x.keyOf[id] = key
	x.index.Insert(vector.VF32{Key: key, Vec: embed(lat, lon)})
	return nil
}

// Size returns the number of indexed places.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Nearest returns up to k place ids closest to the given coordinates,
// nearest first.
func (x *Index) Nearest(lat, lon float64, k int) ([]records.PlaceID, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.index == nil {
		return nil, fmt.Errorf("index not initialized")
	}
	if len(x.ids) == 0 || k < 1 {
		return nil, nil
	}

	ef := k * 2
	if ef < 100 {
		ef = 100
	}
	results := x.index.Search(vector.VF32{Vec: embed(lat, lon)}, k, ef)

	out := make([]records.PlaceID, 0, len(results))
	for _, r := range results {
		if int(r.Key) < len(x.ids) {
			out = append(out, x.ids[r.Key])
		}
	}
	return out, nil
}

// Save persists the index snapshot.
func (x *Index) Save() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.index == nil {
		return nil
	}
	snap := snapshot{Nodes: x.index.Nodes(), IDs: x.ids}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("encode geo index: %w", err)
	}
	if err := hackpadfs.WriteFullFile(x.fs, x.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write geo index: %w", err)
	}
	return nil
}

// Load reads the snapshot from the filesystem.
func (x *Index) Load() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	content, err := hackpadfs.ReadFile(x.fs, x.path)
	if err != nil {
		return err
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(content)).Decode(&snap); err != nil {
		return fmt.Errorf("decode geo index: %w", err)
	}

	x.index = hnsw.FromNodes[vector.VF32](vector.SurfaceVF32(kvector.Cosine()), snap.Nodes)
	x.ids = snap.IDs
	x.keyOf = make(map[records.PlaceID]uint32, len(snap.IDs))
	for i, id := range snap.IDs {
		x.keyOf[id] = uint32(i)
	}
	return nil
}

// BuildFromStore indexes every geographic place in the store that carries
// coordinates. Returns the number indexed.
func (x *Index) BuildFromStore(store *graph.Store) (int, error) {
	count := 0
	for _, node := range store.Places() {
		rec := &node.Record
		if !rec.Category.Geographic() || rec.Coords == nil {
			continue
		}
		if err := x.Add(rec.ID, rec.Coords.Lat, rec.Coords.Lon); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
