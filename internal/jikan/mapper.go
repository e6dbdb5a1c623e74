package jikan

import (
	"github.com/mizukaze554/AnimeSearch/internal/domain"
)

// maxCharacters caps how many character names a detail record keeps.
const maxCharacters = 5

// MapAnime converts upstream items to normalized search results.
func MapAnime(items []Item) []domain.Anime {
	out := make([]domain.Anime, 0, len(items))
	for _, item := range items {
		out = append(out, mapAnime(item))
	}
	return out
}

// mapAnime converts a single upstream item. The English title is preferred
// with the primary title as fallback; absent optional fields stay nil.
func mapAnime(item Item) domain.Anime {
	title := item.Title
	if item.TitleEnglish != nil && *item.TitleEnglish != "" {
		title = *item.TitleEnglish
	}

	return domain.Anime{
		ID:       item.MalID,
		Title:    title,
		Synopsis: item.Synopsis,
		Episodes: item.Episodes,
		Status:   item.Status,
		Score:    item.Score,
		ImageURL: item.Images.JPG.LargeImageURL,
	}
}

// MapDetail converts a full upstream record to a detail record.
func MapDetail(item Item) domain.AnimeDetail {
	detail := domain.AnimeDetail{Anime: mapAnime(item)}

	for _, g := range item.Genres {
		if g.Name != "" {
			detail.Genres = append(detail.Genres, g.Name)
		}
	}

	if item.Characters != nil {
		for _, c := range item.Characters.Data {
			if c.Character.Name == "" {
				continue
			}
			detail.Characters = append(detail.Characters, c.Character.Name)
			if len(detail.Characters) == maxCharacters {
				break
			}
		}
	}

	if item.Trailer != nil {
		detail.TrailerYouTubeID = item.Trailer.YouTubeID
	}

	return detail
}
