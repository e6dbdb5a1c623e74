package domain

import "sort"

// Genre is one selectable genre filter.
type Genre struct {
	Name string
	ID   int
}

// Genres lists the selectable genre filters with their upstream IDs.
var Genres = []Genre{
	{"Action", 1},
	{"Adventure", 2},
	{"Comedy", 4},
	{"Drama", 8},
	{"Fantasy", 10},
	{"Horror", 14},
	{"Mystery", 7},
	{"Romance", 22},
	{"Sci-Fi", 24},
	{"Slice of Life", 36},
	{"Sports", 30},
	{"Thriller", 41},
}

// SortGenres returns a sorted copy of the genre ID set. Search cache keys are
// built from the sorted set so selection order never changes the key.
func SortGenres(ids []int) []int {
	sorted := make([]int, len(ids))
	copy(sorted, ids)
	sort.Ints(sorted)
	return sorted
}
