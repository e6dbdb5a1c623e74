package tui

import (
	"github.com/mizukaze554/AnimeSearch/internal/domain"
	"github.com/mizukaze554/AnimeSearch/internal/search"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ResultsMsg carries one loaded page of search results
type ResultsMsg struct {
	Page *search.Page
}

// DetailLoadedMsg carries the full record for the detail modal
type DetailLoadedMsg struct {
	Detail *domain.AnimeDetail
}

// SuggestTickMsg fires when the suggestion debounce window closes. Only the
// tick matching the latest input sequence is acted on.
type SuggestTickMsg struct {
	Seq int
}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
