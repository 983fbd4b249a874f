// iTunes Search API [Provider] implementation
//
// Used as the regional-availability fallback when the primary catalog
// returns nothing for a storefront.
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
)

const defaultITunesBaseURL = "https://itunes.apple.com"

// ITunesTrack represents a song record in iTunes search responses.
type ITunesTrack struct {
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	TrackViewURL string `json:"trackViewUrl"`
	PreviewURL   string `json:"previewUrl"`
}

type itunesSearchResponse struct {
	ResultCount int           `json:"resultCount"`
	Results     []ITunesTrack `json:"results"`
}

// ITunesProvider implements the Provider interface for the iTunes Search API.
type ITunesProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewITunesProvider creates a new iTunes provider instance.
func NewITunesProvider(baseURL string, client *http.Client) *ITunesProvider {
	if baseURL == "" {
		baseURL = defaultITunesBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: searchTimeoutSeconds * time.Second}
	}

	return &ITunesProvider{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Name returns the provider name.
func (p *ITunesProvider) Name() string {
	return "iTunes"
}

// Search queries GET /search with media=music and maps songs into candidates.
func (p *ITunesProvider) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	limit = clampLimit(limit)

	params := url.Values{}
	params.Set("term", query)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", fmt.Sprintf("%d", limit))
	endpoint := fmt.Sprintf("%s/search?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrUpstream, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: itunes request failed: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: itunes API error: status %d", shared.ErrUpstream, resp.StatusCode)
	}

	var result itunesSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode itunes response: %v", shared.ErrUpstream, err)
	}

	records := result.Results
	if len(records) > limit {
		records = records[:limit]
	}

	candidates := make([]models.Candidate, len(records))
	for i, track := range records {
		candidates[i] = models.Candidate{
			Title:      orPlaceholder(track.TrackName, UnknownTitle),
			Artist:     orPlaceholder(track.ArtistName, UnknownArtist),
			Link:       track.TrackViewURL,
			PreviewURL: track.PreviewURL,
		}
	}

	return candidates, nil
}
