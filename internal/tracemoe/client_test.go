package tracemoe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mizukaze554/AnimeSearch/internal/domain"
	"github.com/mizukaze554/AnimeSearch/internal/log"
)

func TestClient_Identify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/search" || !r.URL.Query().Has("anilistInfo") {
			t.Errorf("URL = %s, want /search?anilistInfo", r.URL.String())
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not a multipart request: %v", err)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("missing image field: %v", err)
		}
		defer file.Close()
		if header.Filename != "frame.png" {
			t.Errorf("filename = %q, want frame.png", header.Filename)
		}
		w.Write([]byte(`{"result":[
			{"anilist":{"id":21},"similarity":0.97},
			{"anilist":{"id":99},"similarity":0.41}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, log.NullLogger())
	id, err := c.Identify(context.Background(), "frame.png", strings.NewReader("fake-image-bytes"))
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if id != 21 {
		t.Errorf("id = %d, want the first (highest-confidence) match 21", id)
	}
}

func TestClient_Identify_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, log.NullLogger())
	if _, err := c.Identify(context.Background(), "frame.png", strings.NewReader("x")); err != domain.ErrNoMatch {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestClient_Identify_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, log.NullLogger())
	if _, err := c.Identify(context.Background(), "frame.png", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
