package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/tunebot/internal/shared"
)

func TestITunesProvider(t *testing.T) {
	t.Run("Search", func(t *testing.T) {
		t.Run("Maps Results", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("term"); got != "numb" {
					t.Errorf("expected term numb, got %s", got)
				}
				if got := r.URL.Query().Get("media"); got != "music" {
					t.Errorf("expected media music, got %s", got)
				}

				w.Header().Set("Content-Type", "text/javascript")
				fmt.Fprint(w, `{
					"resultCount": 2,
					"results": [
						{"trackName": "Numb", "artistName": "Linkin Park", "trackViewUrl": "https://music.apple.com/1", "previewUrl": "https://audio.itunes.apple.com/1.m4a"},
						{"trackName": "", "artistName": "", "trackViewUrl": "https://music.apple.com/2", "previewUrl": ""}
					]
				}`)
			}))
			defer server.Close()

			p := NewITunesProvider(server.URL, nil)
			candidates, err := p.Search(context.Background(), "numb", 5)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(candidates) != 2 {
				t.Fatalf("expected 2 candidates, got %d", len(candidates))
			}
			if candidates[0].Artist != "Linkin Park" {
				t.Errorf("unexpected artist: %s", candidates[0].Artist)
			}
			if candidates[1].Title != UnknownTitle || candidates[1].Artist != UnknownArtist {
				t.Errorf("expected placeholders, got %+v", candidates[1])
			}
		})

		t.Run("Non-2xx Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}))
			defer server.Close()

			p := NewITunesProvider(server.URL, nil)
			if _, err := p.Search(context.Background(), "numb", 5); !errors.Is(err, shared.ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
		})

		t.Run("Malformed Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "not json")
			}))
			defer server.Close()

			p := NewITunesProvider(server.URL, nil)
			if _, err := p.Search(context.Background(), "numb", 5); !errors.Is(err, shared.ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
		})
	})
}
