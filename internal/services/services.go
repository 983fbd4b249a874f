// package services defines interface Provider for music catalog search APIs
//
// Deezer, iTunes, Spotify (client credentials)
package services

import (
	"context"

	"github.com/desertthunder/tunebot/internal/models"
)

const (
	// MaxResults bounds every candidate list rendered to a user.
	MaxResults = 5

	// Placeholder values for fields the upstream omits.
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"

	searchTimeoutSeconds = 10
)

// Provider defines the interface for music catalog search backends.
type Provider interface {
	// Search issues a single search query and returns at most limit
	// normalized candidates in the upstream's native order. Failures wrap
	// [shared.ErrUpstream]; an empty result set is not an error.
	Search(ctx context.Context, query string, limit int) ([]models.Candidate, error)

	// Name returns the name of the provider (e.g., "Deezer", "Spotify")
	Name() string
}

// clampLimit bounds a requested result count to 1..MaxResults.
func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxResults {
		return MaxResults
	}
	return limit
}

// orPlaceholder substitutes the placeholder when the upstream omits a field.
func orPlaceholder(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
