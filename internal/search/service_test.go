package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mizukaze554/AnimeSearch/internal/cache"
	"github.com/mizukaze554/AnimeSearch/internal/domain"
	"github.com/mizukaze554/AnimeSearch/internal/log"
)

type fakeMetadata struct {
	searchCalls int
	detailCalls int
	searchFn    func(query string, page int, genreIDs []int) ([]domain.Anime, error)
	detailFn    func(id int) (*domain.AnimeDetail, error)
}

func (f *fakeMetadata) Search(_ context.Context, query string, page, _ int, genreIDs []int) ([]domain.Anime, error) {
	f.searchCalls++
	return f.searchFn(query, page, genreIDs)
}

func (f *fakeMetadata) Detail(_ context.Context, id int) (*domain.AnimeDetail, error) {
	f.detailCalls++
	return f.detailFn(id)
}

type fakeImages struct {
	id  int
	err error
}

func (f *fakeImages) Identify(context.Context, string, io.Reader) (int, error) {
	return f.id, f.err
}

type fakeTranslator struct {
	calls int
	fn    func(text string) (string, error)
}

func (f *fakeTranslator) ToEnglish(_ context.Context, text string) (string, error) {
	f.calls++
	return f.fn(text)
}

func okTranslator() *fakeTranslator {
	return &fakeTranslator{fn: func(text string) (string, error) { return "translated: " + text, nil }}
}

func failingTranslator() *fakeTranslator {
	return &fakeTranslator{fn: func(string) (string, error) { return "", errors.New("translation down") }}
}

func newTestService(t *testing.T, meta *fakeMetadata, images *fakeImages, tr *fakeTranslator) *Service {
	t.Helper()

	store, err := cache.NewBoltStore("", cache.DefaultTTL)
	if err != nil {
		t.Fatalf("cache store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewService(meta, images, tr, store, DefaultPageLimit, log.NullLogger())
}

func oneResult(title string) []domain.Anime {
	return []domain.Anime{{ID: 5, Title: title, ImageURL: "u"}}
}

func TestService_Start_FetchesAndCaches(t *testing.T) {
	meta := &fakeMetadata{searchFn: func(query string, page int, _ []int) ([]domain.Anime, error) {
		return oneResult("X"), nil
	}}
	svc := newTestService(t, meta, nil, okTranslator())
	ctx := context.Background()

	sess := NewSession()
	page, err := svc.Start(ctx, sess, "x", nil)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if page.FromCache {
		t.Error("first load reported FromCache")
	}
	if len(page.Items) != 1 || page.Items[0].Title != "X" {
		t.Errorf("Items = %+v, want one X", page.Items)
	}
	if page.Page != 1 || page.Append {
		t.Errorf("Page/Append = %d/%v, want 1/false", page.Page, page.Append)
	}

	// Identical search in a new session must be served from cache with no
	// further upstream call.
	page2, err := svc.Start(ctx, NewSession(), "x", nil)
	if err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	if !page2.FromCache {
		t.Error("second load not served from cache")
	}
	if meta.searchCalls != 1 {
		t.Errorf("searchCalls = %d, want 1", meta.searchCalls)
	}
}

func TestService_Start_EmptyQueryRejected(t *testing.T) {
	meta := &fakeMetadata{searchFn: func(string, int, []int) ([]domain.Anime, error) {
		t.Fatal("unexpected upstream call")
		return nil, nil
	}}
	svc := newTestService(t, meta, nil, okTranslator())

	if _, err := svc.Start(context.Background(), NewSession(), "", nil); err != domain.ErrEmptyQuery {
		t.Fatalf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestService_Start_GenreOnlyAllowed(t *testing.T) {
	meta := &fakeMetadata{searchFn: func(query string, _ int, genreIDs []int) ([]domain.Anime, error) {
		if query != "" {
			t.Errorf("query = %q, want empty", query)
		}
		if len(genreIDs) != 2 {
			t.Errorf("genreIDs = %v, want two", genreIDs)
		}
		return oneResult("G"), nil
	}}
	svc := newTestService(t, meta, nil, okTranslator())

	if _, err := svc.Start(context.Background(), NewSession(), "", []int{1, 4}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func TestService_NextPage_Appends(t *testing.T) {
	meta := &fakeMetadata{searchFn: func(_ string, page int, _ []int) ([]domain.Anime, error) {
		return []domain.Anime{{ID: page, Title: fmt.Sprintf("page-%d", page)}}, nil
	}}
	svc := newTestService(t, meta, nil, okTranslator())
	ctx := context.Background()

	sess := NewSession()
	if _, err := svc.Start(ctx, sess, "x", nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	page, err := svc.NextPage(ctx, sess)
	if err != nil {
		t.Fatalf("NextPage failed: %v", err)
	}
	if page.Page != 2 || !page.Append {
		t.Errorf("Page/Append = %d/%v, want 2/true", page.Page, page.Append)
	}
	if sess.Page() != 2 {
		t.Errorf("session page = %d, want 2", sess.Page())
	}
}

func TestService_NextPage_GuardedWhileInFlight(t *testing.T) {
	meta := &fakeMetadata{searchFn: func(string, int, []int) ([]domain.Anime, error) {
		return oneResult("X"), nil
	}}
	svc := newTestService(t, meta, nil, okTranslator())
	ctx := context.Background()

	sess := NewSession()
	if _, err := svc.Start(ctx, sess, "x", nil); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Hold the guard as a concurrent fetch would.
	if !sess.begin() {
		t.Fatal("could not claim guard")
	}
	if _, err := svc.NextPage(ctx, sess); err != ErrInFlight {
		t.Fatalf("err = %v, want ErrInFlight", err)
	}
	sess.end()
}

func TestService_Start_WhileInFlightLeavesSessionUntouched(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	meta := &fakeMetadata{searchFn: func(query string, _ int, _ []int) ([]domain.Anime, error) {
		close(started)
		<-block
		return oneResult(query), nil
	}}
	svc := newTestService(t, meta, nil, okTranslator())
	ctx := context.Background()

	sess := NewSession()
	done := make(chan error, 1)
	go func() {
		_, err := svc.Start(ctx, sess, "old", nil)
		done <- err
	}()
	<-started

	// A second search while the first fetch is running must be rejected
	// with the session still pointing at the running query; otherwise the
	// in-flight fetch would record its page against the new query.
	if _, err := svc.Start(ctx, sess, "new", nil); err != ErrInFlight {
		t.Fatalf("err = %v, want ErrInFlight", err)
	}
	if got := sess.Query(); got != "old" {
		t.Errorf("session query = %q, want old", got)
	}
	if sess.Page() != 0 {
		t.Errorf("session page = %d, want 0 while the fetch is running", sess.Page())
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if sess.Query() != "old" || sess.Page() != 1 {
		t.Errorf("session = %q page %d, want old page 1", sess.Query(), sess.Page())
	}
	if meta.searchCalls != 1 {
		t.Errorf("searchCalls = %d, want 1 (rejected search must not fetch)", meta.searchCalls)
	}
}

func TestService_GuardReleasedAfterFailure(t *testing.T) {
	fail := true
	meta := &fakeMetadata{searchFn: func(string, int, []int) ([]domain.Anime, error) {
		if fail {
			return nil, domain.ErrServiceUnavailable
		}
		return oneResult("X"), nil
	}}
	svc := newTestService(t, meta, nil, okTranslator())
	ctx := context.Background()

	sess := NewSession()
	if _, err := svc.Start(ctx, sess, "x", nil); err == nil {
		t.Fatal("expected failure")
	}
	if sess.Loading() {
		t.Fatal("guard still held after failed fetch")
	}

	// The same session must be able to retry.
	fail = false
	if _, err := svc.Start(ctx, sess, "x", nil); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestService_Details_TranslationFailureKeepsOriginal(t *testing.T) {
	synopsis := "original text"
	meta := &fakeMetadata{detailFn: func(id int) (*domain.AnimeDetail, error) {
		return &domain.AnimeDetail{Anime: domain.Anime{ID: id, Title: "T", Synopsis: &synopsis}}, nil
	}}
	svc := newTestService(t, meta, nil, failingTranslator())

	detail, err := svc.Details(context.Background(), 21)
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}
	if detail.Synopsis == nil || *detail.Synopsis != synopsis {
		t.Errorf("Synopsis = %v, want original %q", detail.Synopsis, synopsis)
	}
}

func TestService_Details_CachesCanonicalAndRetranslates(t *testing.T) {
	synopsis := "texte original"
	meta := &fakeMetadata{detailFn: func(id int) (*domain.AnimeDetail, error) {
		return &domain.AnimeDetail{Anime: domain.Anime{ID: id, Title: "T", Synopsis: &synopsis}}, nil
	}}
	tr := okTranslator()
	svc := newTestService(t, meta, nil, tr)
	ctx := context.Background()

	first, err := svc.Details(ctx, 21)
	if err != nil {
		t.Fatalf("Details failed: %v", err)
	}
	if *first.Synopsis != "translated: texte original" {
		t.Errorf("Synopsis = %q, want translated text", *first.Synopsis)
	}

	// A repeat view is a detail cache hit, but translates again from the
	// canonical untranslated text.
	if _, err := svc.Details(ctx, 21); err != nil {
		t.Fatalf("second Details failed: %v", err)
	}
	if meta.detailCalls != 1 {
		t.Errorf("detailCalls = %d, want 1", meta.detailCalls)
	}
	if tr.calls != 2 {
		t.Errorf("translator calls = %d, want 2", tr.calls)
	}
}

func TestService_Details_FetchFailureNotCached(t *testing.T) {
	meta := &fakeMetadata{detailFn: func(int) (*domain.AnimeDetail, error) {
		return nil, domain.ErrItemNotFound
	}}
	svc := newTestService(t, meta, nil, okTranslator())
	ctx := context.Background()

	if _, err := svc.Details(ctx, 404); err != domain.ErrItemNotFound {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}

	// The failure must not leave a cached record behind; the next call
	// fetches again.
	if _, err := svc.Details(ctx, 404); err != domain.ErrItemNotFound {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}
	if meta.detailCalls != 2 {
		t.Errorf("detailCalls = %d, want 2", meta.detailCalls)
	}
}

func TestService_StartImage_UsesMatchID(t *testing.T) {
	meta := &fakeMetadata{searchFn: func(query string, _ int, _ []int) ([]domain.Anime, error) {
		if query != "21" {
			t.Errorf("query = %q, want 21", query)
		}
		return oneResult("One Piece"), nil
	}}
	svc := newTestService(t, meta, &fakeImages{id: 21}, okTranslator())

	sess := NewSession()
	page, err := svc.StartImage(context.Background(), sess, "frame.png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("StartImage failed: %v", err)
	}
	if len(page.Items) != 1 {
		t.Errorf("got %d items, want 1", len(page.Items))
	}
	if sess.Query() != "21" {
		t.Errorf("session query = %q, want 21", sess.Query())
	}
}

func TestService_StartImage_NoMatch(t *testing.T) {
	meta := &fakeMetadata{searchFn: func(string, int, []int) ([]domain.Anime, error) {
		t.Fatal("unexpected search call")
		return nil, nil
	}}
	svc := newTestService(t, meta, &fakeImages{err: domain.ErrNoMatch}, okTranslator())

	if _, err := svc.StartImage(context.Background(), NewSession(), "frame.png", strings.NewReader("img")); err != domain.ErrNoMatch {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestSuggest(t *testing.T) {
	history := []string{"naruto", "one piece", "noragami"}

	got := Suggest(history, "nar")
	if len(got) == 0 || got[0] != "naruto" {
		t.Errorf("Suggest(nar) = %v, want naruto first", got)
	}

	if got := Suggest(history, "n"); got != nil {
		t.Errorf("Suggest below min length = %v, want nil", got)
	}

	if got := Suggest(nil, "naruto"); got != nil {
		t.Errorf("Suggest with empty history = %v, want nil", got)
	}
}
