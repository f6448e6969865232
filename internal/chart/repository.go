package chart

import (
	"fmt"
	"sort"
)

// Repository supplies entity identity and history to the builder. How it is
// persisted is up to the implementation.
type Repository interface {
	Get(id string) (*Track, bool)
	Add(t *Track) error
	IDs() []string
}

// MemoryRepository keeps tracks and collections in maps keyed by id.
type MemoryRepository struct {
	tracks      map[string]*Track
	collections map[string]*Collection
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tracks:      make(map[string]*Track),
		collections: make(map[string]*Collection),
	}
}

func (r *MemoryRepository) Get(id string) (*Track, bool) {
	t, ok := r.tracks[id]
	return t, ok
}

// Add stores t. Ids are permanent, so adding a second track with the same id
// is an error.
func (r *MemoryRepository) Add(t *Track) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("adding track: missing id")
	}
	if _, ok := r.tracks[t.ID]; ok {
		return fmt.Errorf("adding track: %q already exists", t.ID)
	}
	r.tracks[t.ID] = t
	return nil
}

// IDs returns every track id, sorted.
func (r *MemoryRepository) IDs() []string {
	ids := make([]string, 0, len(r.tracks))
	for id := range r.tracks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Tracks returns every track ordered by id.
func (r *MemoryRepository) Tracks() []*Track {
	tracks := make([]*Track, 0, len(r.tracks))
	for _, id := range r.IDs() {
		tracks = append(tracks, r.tracks[id])
	}
	return tracks
}

// HasHistory implements HistoryChecker.
func (r *MemoryRepository) HasHistory(id string) bool {
	t, ok := r.tracks[id]
	return ok && t.HasHistory()
}

// ClearEntries truncates every track and collection history for a full
// recompute. Entities themselves are kept.
func (r *MemoryRepository) ClearEntries() {
	for _, t := range r.tracks {
		t.ClearEntries()
	}
	for _, c := range r.collections {
		c.ClearEntries()
	}
}

// UpdatePlays sets each canonical track's lifetime plays to the sum of counts
// over every id that resolves to it. Absorbed tracks keep only their own count.
func (r *MemoryRepository) UpdatePlays(counts map[string]int64, res *Resolver) {
	for id, t := range r.tracks {
		if res.ResolveOrSelf(id) != id {
			t.Plays = counts[id]
			continue
		}
		var total int64
		for _, alias := range res.IDs(id) {
			total += counts[alias]
		}
		t.Plays = total
	}
}

func (r *MemoryRepository) AddCollection(c *Collection) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("adding collection: missing id")
	}
	if _, ok := r.collections[c.ID]; ok {
		return fmt.Errorf("adding collection: %q already exists", c.ID)
	}
	r.collections[c.ID] = c
	return nil
}

func (r *MemoryRepository) Collection(id string) (*Collection, bool) {
	c, ok := r.collections[id]
	return c, ok
}

// Collections returns every collection ordered by id.
func (r *MemoryRepository) Collections() []*Collection {
	ids := make([]string, 0, len(r.collections))
	for id := range r.collections {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	collections := make([]*Collection, 0, len(ids))
	for _, id := range ids {
		collections = append(collections, r.collections[id])
	}
	return collections
}
