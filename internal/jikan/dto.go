package jikan

// Wire types for the anime metadata API. Optional fields are pointers so
// JSON null survives decoding and the mapper can mark them absent.

// SearchResponse is the paged envelope returned by GET /anime.
type SearchResponse struct {
	Data       []Item     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// DetailResponse is the envelope returned by GET /anime/{id}/full.
type DetailResponse struct {
	Data Item `json:"data"`
}

// Pagination carries paging metadata from the search endpoint.
type Pagination struct {
	LastVisiblePage int  `json:"last_visible_page"`
	HasNextPage     bool `json:"has_next_page"`
}

// Item is one upstream anime record.
type Item struct {
	MalID        int       `json:"mal_id"`
	Title        string    `json:"title"`
	TitleEnglish *string   `json:"title_english"`
	Synopsis     *string   `json:"synopsis"`
	Episodes     *int      `json:"episodes"`
	Status       *string   `json:"status"`
	Score        *float64  `json:"score"`
	Images       Images    `json:"images"`
	Genres       []NamedRef `json:"genres"`
	Trailer      *Trailer   `json:"trailer"`
	Characters   *Characters `json:"characters"`
}

// Images nests the cover image URLs.
type Images struct {
	JPG ImageSet `json:"jpg"`
}

// ImageSet holds the JPEG variants of a cover image.
type ImageSet struct {
	ImageURL      string `json:"image_url"`
	LargeImageURL string `json:"large_image_url"`
}

// NamedRef is a reference with a display name (genres, studios).
type NamedRef struct {
	Name string `json:"name"`
}

// Trailer holds the promotional video reference.
type Trailer struct {
	YouTubeID string `json:"youtube_id"`
}

// Characters nests the character list of a full detail record.
type Characters struct {
	Data []CharacterEntry `json:"data"`
}

// CharacterEntry is one cast entry.
type CharacterEntry struct {
	Character CharacterRef `json:"character"`
}

// CharacterRef identifies a character by name.
type CharacterRef struct {
	Name string `json:"name"`
}
