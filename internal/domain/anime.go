package domain

import (
	"fmt"
	"strings"
)

// Anime is the normalized shape of one search result. It is produced by the
// jikan mapper and never mutated afterwards. Optional upstream fields are
// pointers so "absent" survives serialization instead of collapsing to zero.
type Anime struct {
	ID       int      `json:"mal_id"`
	Title    string   `json:"title"`
	Synopsis *string  `json:"synopsis,omitempty"`
	Episodes *int     `json:"episodes,omitempty"`
	Status   *string  `json:"status,omitempty"`
	Score    *float64 `json:"score,omitempty"`
	ImageURL string   `json:"image_url"`
}

// AnimeDetail is the full record shown in the details modal. The cached copy
// always holds the untranslated synopsis; translation happens per view.
type AnimeDetail struct {
	Anime
	Genres           []string `json:"genres,omitempty"`
	Characters       []string `json:"characters,omitempty"`
	TrailerYouTubeID string   `json:"trailer_youtube_id,omitempty"`
}

// Favorite is one entry in the favorites list.
type Favorite struct {
	ID    int    `json:"mal_id"`
	Title string `json:"title"`
}

// SynopsisText returns the synopsis or "N/A" when absent.
func (a Anime) SynopsisText() string {
	if a.Synopsis == nil || *a.Synopsis == "" {
		return "N/A"
	}
	return *a.Synopsis
}

// EpisodesText returns the episode count or "N/A" when absent.
func (a Anime) EpisodesText() string {
	if a.Episodes == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *a.Episodes)
}

// StatusText returns the airing status or "N/A" when absent.
func (a Anime) StatusText() string {
	if a.Status == nil || *a.Status == "" {
		return "N/A"
	}
	return *a.Status
}

// ScoreText returns the community score or "N/A" when absent.
func (a Anime) ScoreText() string {
	if a.Score == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *a.Score)
}

// GenresText returns the comma-joined genre names or "N/A".
func (d AnimeDetail) GenresText() string {
	if len(d.Genres) == 0 {
		return "N/A"
	}
	return strings.Join(d.Genres, ", ")
}

// CharactersText returns the comma-joined character names or "N/A".
func (d AnimeDetail) CharactersText() string {
	if len(d.Characters) == 0 {
		return "N/A"
	}
	return strings.Join(d.Characters, ", ")
}

// TrailerURL returns the full YouTube watch URL, or empty when no trailer.
func (d AnimeDetail) TrailerURL() string {
	if d.TrailerYouTubeID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + d.TrailerYouTubeID
}
