package lists

import (
	"encoding/json"

	"github.com/mizukaze554/AnimeSearch/internal/domain"
)

// Jar record names for the two lists.
const (
	recordHistory   = "history"
	recordFavorites = "favs"
)

// DefaultHistoryMax caps the history list length.
const DefaultHistoryMax = 10

// History is the bounded, deduplicated, most-recent-first list of search
// queries. Pushing an existing entry promotes it to the front.
type History struct {
	jar     *Jar
	max     int
	entries []string
}

// NewHistory loads the history list from the jar.
func NewHistory(jar *Jar, max int) *History {
	if max <= 0 {
		max = DefaultHistoryMax
	}
	h := &History{jar: jar, max: max}
	if blob, ok := jar.Get(recordHistory); ok {
		// A blob that no longer parses starts the list over.
		json.Unmarshal([]byte(blob), &h.entries)
	}
	if len(h.entries) > max {
		h.entries = h.entries[:max]
	}
	return h
}

// Push records a search query: any existing occurrence is removed, the
// entry is prepended, and the list is truncated to its cap and persisted.
func (h *History) Push(entry string) error {
	next := make([]string, 0, len(h.entries)+1)
	next = append(next, entry)
	for _, e := range h.entries {
		if e != entry {
			next = append(next, e)
		}
	}
	if len(next) > h.max {
		next = next[:h.max]
	}
	h.entries = next

	blob, err := json.Marshal(h.entries)
	if err != nil {
		return err
	}
	return h.jar.Set(recordHistory, string(blob))
}

// Entries returns the history, most recent first.
func (h *History) Entries() []string {
	return h.entries
}

// Favorites is the deduplicated favorites list. Entries are append-only;
// there is no removal operation.
type Favorites struct {
	jar   *Jar
	items []domain.Favorite
}

// NewFavorites loads the favorites list from the jar.
func NewFavorites(jar *Jar) *Favorites {
	f := &Favorites{jar: jar}
	if blob, ok := jar.Get(recordFavorites); ok {
		json.Unmarshal([]byte(blob), &f.items)
	}
	return f
}

// Push appends the item unless an entry with the same ID already exists.
// The first push for an ID wins; later pushes are ignored.
func (f *Favorites) Push(item domain.Favorite) error {
	for _, existing := range f.items {
		if existing.ID == item.ID {
			return nil
		}
	}
	f.items = append(f.items, item)

	blob, err := json.Marshal(f.items)
	if err != nil {
		return err
	}
	return f.jar.Set(recordFavorites, string(blob))
}

// Items returns the favorites in insertion order.
func (f *Favorites) Items() []domain.Favorite {
	return f.items
}

// Has reports whether an item with the given ID is already a favorite.
func (f *Favorites) Has(id int) bool {
	for _, item := range f.items {
		if item.ID == id {
			return true
		}
	}
	return false
}
