// Package search orchestrates queries against the upstream APIs through the
// result cache: cache hits render without a network call, misses fetch,
// normalize, and cache one page at a time.
package search

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/mizukaze554/AnimeSearch/internal/cache"
	"github.com/mizukaze554/AnimeSearch/internal/domain"
	"github.com/mizukaze554/AnimeSearch/internal/metrics"
)

// DefaultPageLimit is how many results one page requests.
const DefaultPageLimit = 12

// MetadataClient is the anime metadata API surface the orchestrator needs.
type MetadataClient interface {
	Search(ctx context.Context, query string, page, limit int, genreIDs []int) ([]domain.Anime, error)
	Detail(ctx context.Context, id int) (*domain.AnimeDetail, error)
}

// ImageClient resolves an uploaded image to an anime identifier.
type ImageClient interface {
	Identify(ctx context.Context, filename string, image io.Reader) (int, error)
}

// Translator translates text to English, best-effort.
type Translator interface {
	ToEnglish(ctx context.Context, text string) (string, error)
}

// Page is one loaded page of results.
type Page struct {
	Items     []domain.Anime
	Query     string
	Page      int
	Append    bool
	FromCache bool
}

// Service orchestrates search, image lookup, and detail fetches.
type Service struct {
	metadata   MetadataClient
	images     ImageClient
	translator Translator
	store      cache.Store
	logger     *slog.Logger
	limit      int

	// Concurrent detail views of the same item share one fetch.
	detailGroup singleflight.Group
}

// NewService creates a search orchestrator.
func NewService(metadata MetadataClient, images ImageClient, translator Translator, store cache.Store, limit int, logger *slog.Logger) *Service {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		metadata:   metadata,
		images:     images,
		translator: translator,
		store:      store,
		logger:     logger,
		limit:      limit,
	}
}

// Start points the session at a fresh query and loads page one. A query
// with neither text nor genres is rejected before any network traffic.
// The guard is claimed before the session is repointed: while an earlier
// fetch is still running the session stays untouched, so that fetch can
// never record its page against a query it did not load.
func (s *Service) Start(ctx context.Context, sess *Session, query string, genreIDs []int) (*Page, error) {
	if query == "" && len(genreIDs) == 0 {
		return nil, domain.ErrEmptyQuery
	}
	if !sess.begin() {
		return nil, ErrInFlight
	}
	defer sess.end()
	sess.Reset(query, genreIDs)
	return s.loadPage(ctx, sess, 1, false)
}

// NextPage loads the page after the last loaded one in append mode. When a
// fetch is already in flight it returns ErrInFlight and does nothing.
func (s *Service) NextPage(ctx context.Context, sess *Session) (*Page, error) {
	if !sess.Active() {
		return nil, domain.ErrEmptyQuery
	}
	if !sess.begin() {
		return nil, ErrInFlight
	}
	defer sess.end()
	return s.loadPage(ctx, sess, sess.Page()+1, true)
}

// loadPage runs with the session's in-flight guard already held by the
// caller.
func (s *Service) loadPage(ctx context.Context, sess *Session, page int, appendMode bool) (*Page, error) {
	query := sess.Query()
	genreIDs := sess.GenreIDs()
	key := cache.SearchKey(query, page, genreIDs)

	// Cache hits render immediately and never re-validate upstream.
	var cached []domain.Anime
	if s.store.Get(ctx, key, &cached) {
		s.logger.Debug("search cache hit", "key", key)
		sess.setPage(page)
		return &Page{Items: cached, Query: query, Page: page, Append: appendMode, FromCache: true}, nil
	}

	items, err := s.metadata.Search(ctx, query, page, s.limit, genreIDs)
	if err != nil {
		s.logger.Error("search failed", "query", query, "page", page, "error", err)
		return nil, err
	}

	if err := s.store.Set(ctx, key, items); err != nil {
		s.logger.Warn("failed to cache search page", "key", key, "error", err)
	}
	sess.setPage(page)

	s.logger.Debug("search fetched", "query", query, "page", page, "count", len(items))
	return &Page{Items: items, Query: query, Page: page, Append: appendMode}, nil
}

// StartImage resolves an image to an identifier via the reverse image
// search API and runs a fresh text search for it. No match surfaces as
// domain.ErrNoMatch; multiple candidates beyond the first are ignored.
func (s *Service) StartImage(ctx context.Context, sess *Session, filename string, image io.Reader) (*Page, error) {
	id, err := s.images.Identify(ctx, filename, image)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("image identified", "id", id)
	return s.Start(ctx, sess, strconv.Itoa(id), nil)
}

// Details returns the full record for one anime. The canonical
// (untranslated) record is cached; the synopsis of the returned copy is
// translated per call and falls back to the original text when the
// translation service fails.
func (s *Service) Details(ctx context.Context, id int) (*domain.AnimeDetail, error) {
	key := cache.DetailKey(id)

	var detail domain.AnimeDetail
	if !s.store.Get(ctx, key, &detail) {
		fetched, err, shared := s.detailGroup.Do(key, func() (any, error) {
			d, err := s.metadata.Detail(ctx, id)
			if err != nil {
				return nil, err
			}
			if err := s.store.Set(ctx, key, d); err != nil {
				s.logger.Warn("failed to cache detail", "key", key, "error", err)
			}
			return d, nil
		})
		if shared {
			metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
		} else {
			metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
		}
		if err != nil {
			s.logger.Error("detail fetch failed", "id", id, "error", err)
			return nil, err
		}
		detail = *fetched.(*domain.AnimeDetail)
	}

	view := detail
	view.Synopsis = s.translateSynopsis(ctx, detail.Synopsis)
	return &view, nil
}

// translateSynopsis translates the synopsis best-effort; any failure keeps
// the original text.
func (s *Service) translateSynopsis(ctx context.Context, synopsis *string) *string {
	if synopsis == nil || *synopsis == "" {
		return synopsis
	}
	translated, err := s.translator.ToEnglish(ctx, *synopsis)
	if err != nil {
		s.logger.Debug("translation failed, keeping original", "error", err)
		return synopsis
	}
	return &translated
}
