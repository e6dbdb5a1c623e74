package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MinSuggestLen is the shortest input that produces suggestions.
const MinSuggestLen = 2

// Suggest ranks prior history entries against the partial input, best match
// first. Inputs shorter than MinSuggestLen yield nothing.
func Suggest(history []string, input string) []string {
	input = strings.TrimSpace(input)
	if len(input) < MinSuggestLen || len(history) == 0 {
		return nil
	}

	matches := fuzzy.RankFindFold(input, history)
	sort.Sort(matches)

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Target)
	}
	return out
}
