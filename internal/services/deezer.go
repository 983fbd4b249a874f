// Deezer API [Provider] implementation
//
// Response types based on https://developers.deezer.com/api/search
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

const defaultDeezerBaseURL = "https://api.deezer.com"

// DeezerArtist represents an artist in Deezer responses.
type DeezerArtist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DeezerTrack represents a track record in Deezer search responses.
type DeezerTrack struct {
	ID      int64        `json:"id"`
	Title   string       `json:"title"`
	Link    string       `json:"link"`
	Preview string       `json:"preview"`
	Artist  DeezerArtist `json:"artist"`
}

type deezerSearchResponse struct {
	Data  []DeezerTrack `json:"data"`
	Total int           `json:"total"`
	Error *deezerError  `json:"error,omitempty"`
}

type deezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// DeezerProvider implements the Provider interface for the public Deezer search API.
// No credentials are required.
type DeezerProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewDeezerProvider creates a new Deezer provider instance.
func NewDeezerProvider(baseURL string, client *http.Client) *DeezerProvider {
	if baseURL == "" {
		baseURL = defaultDeezerBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: searchTimeoutSeconds * time.Second}
	}

	return &DeezerProvider{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Name returns the provider name.
func (d *DeezerProvider) Name() string {
	return "Deezer"
}

// Search queries GET /search and maps the response into candidates.
//
// Deezer reports some failures as a 200 with an error object in the body;
// those surface as [shared.ErrUpstream] like any non-2xx status.
func (d *DeezerProvider) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	limit = clampLimit(limit)

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	endpoint := fmt.Sprintf("%s/search?%s", d.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrUpstream, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: deezer request failed: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: deezer API error: status %d", shared.ErrUpstream, resp.StatusCode)
	}

	var result deezerSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode deezer response: %v", shared.ErrUpstream, err)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("%w: deezer API error (code %d): %s", shared.ErrUpstream, result.Error.Code, result.Error.Message)
	}

	records := result.Data
	if len(records) > limit {
		records = records[:limit]
	}

	candidates := make([]models.Candidate, len(records))
	for i, track := range records {
		candidates[i] = models.Candidate{
			Title:      orPlaceholder(track.Title, UnknownTitle),
			Artist:     orPlaceholder(track.Artist.Name, UnknownArtist),
			Link:       track.Link,
			PreviewURL: track.Preview,
		}
	}

	return candidates, nil
}
