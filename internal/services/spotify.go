// Spotify API implementation of [Provider]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/tunebot/internal/models"
	"github.com/desertthunder/tunebot/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	ExternalURLs externalURLs    `json:"external_urls"`
	PreviewURL   string          `json:"preview_url"`
	URI          string          `json:"uri"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// SpotifyProvider implements the Provider interface for Spotify search.
// Uses the [clientcredentials] OAuth2 grant; the token source refreshes
// expired tokens automatically.
type SpotifyProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyProvider creates a new Spotify provider with the given credential pair.
func NewSpotifyProvider(clientID, clientSecret, baseURL string) (*SpotifyProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	client := config.Client(context.Background())
	client.Timeout = searchTimeoutSeconds * time.Second

	return &SpotifyProvider{
		baseURL:    baseURL,
		httpClient: client,
	}, nil
}

// Name returns the provider name.
func (s *SpotifyProvider) Name() string {
	return "Spotify"
}

// Search queries GET /search?type=track and maps items into candidates.
func (s *SpotifyProvider) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	limit = clampLimit(limit)

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprintf("%d", limit))
	endpoint := fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: spotify request failed: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("%w: spotify API error (status %d): %s", shared.ErrUpstream, resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("%w: spotify API error: status %d", shared.ErrUpstream, resp.StatusCode)
	}

	var result spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode spotify response: %v", shared.ErrUpstream, err)
	}

	items := result.Tracks.Items
	if len(items) > limit {
		items = items[:limit]
	}

	candidates := make([]models.Candidate, len(items))
	for i, track := range items {
		artist := ""
		if len(track.Artists) > 0 {
			artist = track.Artists[0].Name
		}

		candidates[i] = models.Candidate{
			Title:      orPlaceholder(track.Name, UnknownTitle),
			Artist:     orPlaceholder(artist, UnknownArtist),
			Link:       track.ExternalURLs.Spotify,
			PreviewURL: track.PreviewURL,
		}
	}

	return candidates, nil
}
