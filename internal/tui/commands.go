package tui

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mizukaze554/AnimeSearch/internal/search"
)

// Command factories for async operations

const (
	searchTimeout = 30 * time.Second
	detailTimeout = 30 * time.Second

	// SuggestDebounce is how long input must be idle before suggestions
	// are recomputed.
	SuggestDebounce = 250 * time.Millisecond
)

// SearchCmd starts a fresh text/genre search
func SearchCmd(svc *search.Service, sess *search.Session, query string, genreIDs []int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		page, err := svc.Start(ctx, sess, query, genreIDs)
		if err != nil {
			return ErrMsg{Err: err, Context: "searching"}
		}
		return ResultsMsg{Page: page}
	}
}

// NextPageCmd loads the next page of the active search. Append failures
// are silent: the results already on screen stay put, and the next scroll
// retries.
func NextPageCmd(svc *search.Service, sess *search.Session) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		page, err := svc.NextPage(ctx, sess)
		if err != nil {
			return nil
		}
		return ResultsMsg{Page: page}
	}
}

// ImageSearchCmd identifies the image at path and searches for the match
func ImageSearchCmd(svc *search.Service, sess *search.Session, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()

		f, err := os.Open(path)
		if err != nil {
			return ErrMsg{Err: err, Context: "opening image"}
		}
		defer f.Close()

		page, err := svc.StartImage(ctx, sess, filepath.Base(path), f)
		if err != nil {
			return ErrMsg{Err: err, Context: "image search"}
		}
		return ResultsMsg{Page: page}
	}
}

// DetailsCmd loads the full record for one anime
func DetailsCmd(svc *search.Service, id int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), detailTimeout)
		defer cancel()

		detail, err := svc.Details(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading details"}
		}
		return DetailLoadedMsg{Detail: detail}
	}
}

// SuggestTickCmd schedules a debounce tick for suggestion recomputation
func SuggestTickCmd(seq int) tea.Cmd {
	return tea.Tick(SuggestDebounce, func(time.Time) tea.Msg {
		return SuggestTickMsg{Seq: seq}
	})
}

// ClearStatusCmd clears the status bar after a delay
func ClearStatusCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
