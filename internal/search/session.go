package search

import (
	"errors"
	"sync"
)

// ErrInFlight reports that a page load is already running for the session.
// A fresh search is rejected without touching the session; scroll-triggered
// append loads treat it as a no-op.
var ErrInFlight = errors.New("search already in flight")

// Session carries the mutable state of one logical search: the active query,
// the genre filter, the last loaded page, and the in-flight guard that keeps
// scroll-triggered page loads from overlapping.
type Session struct {
	mu       sync.Mutex
	query    string
	genreIDs []int
	page     int
	inFlight bool
}

// NewSession returns an idle session with no active query.
func NewSession() *Session {
	return &Session{}
}

// Reset points the session at a new query and genre set, starting over at
// page zero (nothing loaded yet).
func (s *Session) Reset(query string, genreIDs []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
	s.genreIDs = genreIDs
	s.page = 0
}

// Query returns the active query text.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// GenreIDs returns the active genre filter.
func (s *Session) GenreIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.genreIDs
}

// Page returns the last successfully loaded page number (0 when idle).
func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Active reports whether the session has a query or genre filter to page
// through.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query != "" || len(s.genreIDs) > 0
}

// begin claims the in-flight guard. It must be paired with end in a
// deferred call so a failed fetch can never wedge the flag.
func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
}

// Loading reports whether a page fetch is currently running.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

func (s *Session) setPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
}
