package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunebot/internal/models"
	"github.com/desertthunder/tunebot/internal/shared"
)

// TrackRepository implements models.Repository[*models.CachedTrack] for the fetched-track cache.
//
// Tracks are recorded after every successful fetch so repeated selections of
// the same candidate can reuse the known file name. Uniqueness is enforced
// on (provider, link).
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Create inserts a new [models.CachedTrack] into the database with generated ID and sequence
func (r *TrackRepository) Create(track *models.CachedTrack) error {
	sequence, err := NextSequence(r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	track.SetID(id)
	track.Sequence = sequence

	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO tracks (id, sequence, provider, link, title, artist, file_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		track.Provider,
		track.Link,
		track.Title,
		track.Artist,
		track.FileName,
		track.CreatedAt(),
		track.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	return nil
}

// Get retrieves a track by ID, excluding soft-deleted tracks
func (r *TrackRepository) Get(id string) (*models.CachedTrack, error) {
	query := `
		SELECT id, sequence, provider, link, title, artist, file_name, created_at, updated_at, deleted_at
		FROM tracks
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByLink retrieves a track by provider and canonical link
func (r *TrackRepository) GetByLink(provider, link string) (*models.CachedTrack, error) {
	query := `
		SELECT id, sequence, provider, link, title, artist, file_name, created_at, updated_at, deleted_at
		FROM tracks
		WHERE provider = ? AND link = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, provider, link))
}

// Update modifies an existing track in the database
func (r *TrackRepository) Update(track *models.CachedTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	track.SetUpdatedAt(now)

	query := `
		UPDATE tracks
		SET title = ?, artist = ?, file_name = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		track.Title,
		track.Artist,
		track.FileName,
		now,
		track.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: track %s", shared.ErrTrackNotFound, track.ID())
	}

	return nil
}

// Delete soft-deletes a track by setting its deleted_at timestamp
func (r *TrackRepository) Delete(id string) error {
	query := `UPDATE tracks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: track %s", shared.ErrTrackNotFound, id)
	}

	return nil
}

// List retrieves cached tracks matching the given criteria.
//
// Supported criteria keys: provider, artist.
func (r *TrackRepository) List(criteria map[string]any) ([]*models.CachedTrack, error) {
	query := `
		SELECT id, sequence, provider, link, title, artist, file_name, created_at, updated_at, deleted_at
		FROM tracks
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if provider, ok := criteria["provider"]; ok {
		query += " AND provider = ?"
		args = append(args, provider)
	}
	if artist, ok := criteria["artist"]; ok {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	query += " ORDER BY sequence"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.CachedTrack
	for rows.Next() {
		track, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	return tracks, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *TrackRepository) scanOne(row *sql.Row) (*models.CachedTrack, error) {
	track, err := r.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w", shared.ErrTrackNotFound)
	}
	return track, err
}

func (r *TrackRepository) scanRow(row scannable) (*models.CachedTrack, error) {
	var (
		track     models.CachedTrack
		id        string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(
		&id,
		&track.Sequence,
		&track.Provider,
		&track.Link,
		&track.Title,
		&track.Artist,
		&track.FileName,
		&createdAt,
		&updatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	track.SetID(id)
	track.SetTimestamps(createdAt, updatedAt)
	if deletedAt.Valid {
		track.DeletedAt = &deletedAt.Time
	}

	return &track, nil
}
