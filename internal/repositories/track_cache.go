package repositories

import (
	"fmt"
	"strings"

	"github.com/desertthunder/tunebot/internal/models"
	"github.com/desertthunder/tunebot/internal/shared"
)

// CacheAdapter implements tasks.TrackCacher using TrackRepository.
//
// Provides automatic track caching with deduplication via the
// (provider, link) unique constraint. Duplicate tracks are silently ignored.
type CacheAdapter struct {
	repo *TrackRepository
}

// NewCacheAdapter creates a new CacheAdapter with the given repository
func NewCacheAdapter(repo *TrackRepository) *CacheAdapter {
	return &CacheAdapter{repo: repo}
}

// MarkFetched records a successfully fetched candidate.
// Returns nil if the track is already cached (deduplication).
func (a *CacheAdapter) MarkFetched(provider string, c models.Candidate, fileName string) error {
	if c.Link == "" {
		return nil
	}

	existing, err := a.repo.GetByLink(provider, c.Link)
	if err == nil && existing != nil {
		return nil
	}

	err = a.repo.Create(models.NewCachedTrack(provider, c, fileName))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache track: %w", err)
	}

	return nil
}

// KnownFileName reports the file name recorded for a previously fetched
// candidate, if any. Link-less candidates fall back to a normalized
// title/artist match, since the link is the cache's natural key.
func (a *CacheAdapter) KnownFileName(provider string, c models.Candidate) (string, bool) {
	if c.Link != "" {
		track, err := a.repo.GetByLink(provider, c.Link)
		if err != nil || track == nil {
			return "", false
		}
		return track.FileName, true
	}

	want := shared.NormalizeTrackKey(c.Title, c.Artist)
	tracks, err := a.repo.List(map[string]any{"provider": provider})
	if err != nil {
		return "", false
	}
	for _, track := range tracks {
		if shared.NormalizeTrackKey(track.Title, track.Artist) == want {
			return track.FileName, true
		}
	}
	return "", false
}
