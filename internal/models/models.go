// package models defines the data model for the tunebot music search bot
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models in the bot.
// Implementations include CachedTrack.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Candidate represents one normalized search result from a catalog provider.
//
// Title and Artist are always present after normalization (providers fill
// placeholders for absent fields). Link may be empty. PreviewURL is set only
// when the provider exposes a short playable preview.
type Candidate struct {
	Title      string
	Artist     string
	Link       string
	PreviewURL string
}

// CachedTrack records a track that was fetched successfully, so repeated
// selections of the same candidate can reuse its known file name.
//
// Implements [Model]. Uniqueness is enforced on (provider, link).
type CachedTrack struct {
	id        string
	Sequence  int
	Provider  string
	Link      string
	Title     string
	Artist    string
	FileName  string
	createdAt time.Time
	updatedAt time.Time
	DeletedAt *time.Time
}

// NewCachedTrack creates a CachedTrack from a fetched candidate.
// The ID is assigned by the repository on Create.
func NewCachedTrack(provider string, c Candidate, fileName string) *CachedTrack {
	now := time.Now()
	return &CachedTrack{
		Provider:  provider,
		Link:      c.Link,
		Title:     c.Title,
		Artist:    c.Artist,
		FileName:  fileName,
		createdAt: now,
		updatedAt: now,
	}
}

func (t *CachedTrack) ID() string           { return t.id }
func (t *CachedTrack) CreatedAt() time.Time { return t.createdAt }
func (t *CachedTrack) UpdatedAt() time.Time { return t.updatedAt }

// SetID assigns the unique identifier. Called by repositories on Create.
func (t *CachedTrack) SetID(id string) { t.id = id }

// SetTimestamps restores persisted timestamps when scanning rows.
func (t *CachedTrack) SetTimestamps(created, updated time.Time) {
	t.createdAt = created
	t.updatedAt = updated
}

// SetUpdatedAt marks the model as modified.
func (t *CachedTrack) SetUpdatedAt(at time.Time) { t.updatedAt = at }

// Validate checks that the cached track carries the fields the cache is keyed on.
func (t *CachedTrack) Validate() error {
	if t.Provider == "" {
		return fmt.Errorf("cached track missing provider")
	}
	if t.Link == "" {
		return fmt.Errorf("cached track missing link")
	}
	if t.Title == "" {
		return fmt.Errorf("cached track missing title")
	}
	return nil
}
