// Package repositories provides the persistence layer for the fetched-track cache.
//
// [TrackRepository] implements models.Repository[*models.CachedTrack],
// handling CRUD operations, soft deletes, and sequence generation.
// [CacheAdapter] wraps it with the small interface the orchestration layer
// consumes.
package repositories
