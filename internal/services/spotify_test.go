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

func TestSpotifyProvider(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Missing Credentials", func(t *testing.T) {
			if _, err := NewSpotifyProvider("", "secret", ""); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
			if _, err := NewSpotifyProvider("id", "", ""); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Valid Credentials", func(t *testing.T) {
			p, err := NewSpotifyProvider("id", "secret", "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if p.baseURL != spotifyBaseURL {
				t.Errorf("expected default base URL, got %s", p.baseURL)
			}
			if p.Name() != "Spotify" {
				t.Errorf("expected name Spotify, got %s", p.Name())
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		// The oauth2 token exchange is bypassed by injecting a plain client;
		// only the search request/response mapping is under test here.
		t.Run("Maps Results", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("type"); got != "track" {
					t.Errorf("expected type track, got %s", got)
				}

				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{
					"tracks": {
						"items": [
							{"name": "Numb", "artists": [{"name": "Linkin Park"}], "external_urls": {"spotify": "https://open.spotify.com/track/1"}, "preview_url": "https://p.scdn.co/1.mp3"},
							{"name": "Faint", "artists": [], "external_urls": {"spotify": "https://open.spotify.com/track/2"}, "preview_url": null}
						],
						"total": 2
					}
				}`)
			}))
			defer server.Close()

			p := &SpotifyProvider{baseURL: server.URL, httpClient: server.Client()}
			candidates, err := p.Search(context.Background(), "numb", 5)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(candidates) != 2 {
				t.Fatalf("expected 2 candidates, got %d", len(candidates))
			}
			if candidates[0].Link != "https://open.spotify.com/track/1" {
				t.Errorf("unexpected link: %s", candidates[0].Link)
			}
			if candidates[1].Artist != UnknownArtist {
				t.Errorf("expected placeholder artist, got %s", candidates[1].Artist)
			}
		})

		t.Run("Error Response Detail", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				fmt.Fprint(w, `{"error": {"status": 429, "message": "API rate limit exceeded"}}`)
			}))
			defer server.Close()

			p := &SpotifyProvider{baseURL: server.URL, httpClient: server.Client()}
			_, err := p.Search(context.Background(), "numb", 5)
			if !errors.Is(err, shared.ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
		})
	})
}
