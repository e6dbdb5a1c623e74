package tui

import (
	"github.com/sahilm/fuzzy"

	"github.com/mizukaze554/AnimeSearch/internal/domain"
)

// resultSource adapts loaded results for fuzzy matching on title.
type resultSource []domain.Anime

func (s resultSource) String(i int) string { return s[i].Title }
func (s resultSource) Len() int            { return len(s) }

// filterResults returns indexes of results whose titles fuzzy-match input,
// best match first. An empty input keeps every result in loaded order.
func filterResults(results []domain.Anime, input string) []int {
	if input == "" {
		out := make([]int, len(results))
		for i := range results {
			out[i] = i
		}
		return out
	}

	matches := fuzzy.FindFrom(input, resultSource(results))
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Index)
	}
	return out
}
