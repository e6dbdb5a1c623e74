package cache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mizukaze554/AnimeSearch/internal/domain"
)

// SearchKey builds the composite key for one page of search results. The
// genre set is sorted before joining so the same filter combination always
// maps to the same entry regardless of selection order.
func SearchKey(query string, page int, genreIDs []int) string {
	ids := domain.SortGenres(genreIDs)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("%s-page%d-genres%s", query, page, strings.Join(parts, ","))
}

// DetailKey builds the key for a per-item detail record. Details live in
// their own namespace because they are fetched and reused independently of
// whichever search surfaced the item.
func DetailKey(id int) string {
	return fmt.Sprintf("details-%d", id)
}
