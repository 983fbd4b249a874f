package repositories

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/tunebot/internal/models"
	"github.com/desertthunder/tunebot/internal/shared"
)

func setupTestDB(t *testing.T) *TrackRepository {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return NewTrackRepository(db)
}

func testCandidate() models.Candidate {
	return models.Candidate{
		Title:      "Paranoid Android",
		Artist:     "Radiohead",
		Link:       "https://example.com/track/1",
		PreviewURL: "https://example.com/preview/1.mp3",
	}
}

func TestTrackRepository(t *testing.T) {
	t.Run("Create assigns ID and sequence", func(t *testing.T) {
		repo := setupTestDB(t)

		track := models.NewCachedTrack("deezer", testCandidate(), "Radiohead - Paranoid Android.mp3")
		if err := repo.Create(track); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if track.ID() == "" {
			t.Error("expected generated ID")
		}
		if track.Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", track.Sequence)
		}

		second := models.NewCachedTrack("deezer", models.Candidate{
			Title:  "Karma Police",
			Artist: "Radiohead",
			Link:   "https://example.com/track/2",
		}, "Radiohead - Karma Police.mp3")
		if err := repo.Create(second); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if second.Sequence != 2 {
			t.Errorf("expected sequence 2, got %d", second.Sequence)
		}
	})

	t.Run("Create rejects invalid tracks", func(t *testing.T) {
		repo := setupTestDB(t)

		track := models.NewCachedTrack("deezer", models.Candidate{Title: "No Link"}, "x.mp3")
		if err := repo.Create(track); err == nil {
			t.Error("expected validation error for missing link")
		}
	})

	t.Run("Create enforces provider+link uniqueness", func(t *testing.T) {
		repo := setupTestDB(t)

		if err := repo.Create(models.NewCachedTrack("deezer", testCandidate(), "a.mp3")); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		err := repo.Create(models.NewCachedTrack("deezer", testCandidate(), "b.mp3"))
		if err == nil {
			t.Error("expected unique constraint violation")
		}

		// same link under a different provider is a distinct cache entry
		if err := repo.Create(models.NewCachedTrack("itunes", testCandidate(), "c.mp3")); err != nil {
			t.Errorf("expected insert under other provider to succeed: %v", err)
		}
	})

	t.Run("Get retrieves a created track", func(t *testing.T) {
		repo := setupTestDB(t)

		track := models.NewCachedTrack("deezer", testCandidate(), "a.mp3")
		if err := repo.Create(track); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		got, err := repo.Get(track.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Title != "Paranoid Android" || got.Artist != "Radiohead" {
			t.Errorf("unexpected track: %q by %q", got.Title, got.Artist)
		}
		if got.FileName != "a.mp3" {
			t.Errorf("expected file name a.mp3, got %q", got.FileName)
		}
	})

	t.Run("Get returns ErrTrackNotFound for unknown ID", func(t *testing.T) {
		repo := setupTestDB(t)

		_, err := repo.Get("missing")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("GetByLink retrieves by provider and link", func(t *testing.T) {
		repo := setupTestDB(t)

		track := models.NewCachedTrack("deezer", testCandidate(), "a.mp3")
		if err := repo.Create(track); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		got, err := repo.GetByLink("deezer", track.Link)
		if err != nil {
			t.Fatalf("GetByLink failed: %v", err)
		}
		if got.ID() != track.ID() {
			t.Errorf("expected track %s, got %s", track.ID(), got.ID())
		}

		if _, err := repo.GetByLink("itunes", track.Link); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound for other provider, got %v", err)
		}
	})

	t.Run("Update modifies stored fields", func(t *testing.T) {
		repo := setupTestDB(t)

		track := models.NewCachedTrack("deezer", testCandidate(), "a.mp3")
		if err := repo.Create(track); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		track.FileName = "b.mp3"
		if err := repo.Update(track); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		got, err := repo.Get(track.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.FileName != "b.mp3" {
			t.Errorf("expected updated file name, got %q", got.FileName)
		}
	})

	t.Run("Update on missing track returns ErrTrackNotFound", func(t *testing.T) {
		repo := setupTestDB(t)

		track := models.NewCachedTrack("deezer", testCandidate(), "a.mp3")
		track.SetID("missing")
		if err := repo.Update(track); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Delete soft-deletes", func(t *testing.T) {
		repo := setupTestDB(t)

		track := models.NewCachedTrack("deezer", testCandidate(), "a.mp3")
		if err := repo.Create(track); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := repo.Delete(track.ID()); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		if _, err := repo.Get(track.ID()); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound after delete, got %v", err)
		}

		if err := repo.Delete(track.ID()); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound on double delete, got %v", err)
		}
	})

	t.Run("List filters by criteria and orders by sequence", func(t *testing.T) {
		repo := setupTestDB(t)

		for i, c := range []models.Candidate{
			{Title: "One", Artist: "A", Link: "https://example.com/1"},
			{Title: "Two", Artist: "B", Link: "https://example.com/2"},
			{Title: "Three", Artist: "A", Link: "https://example.com/3"},
		} {
			provider := "deezer"
			if i == 1 {
				provider = "itunes"
			}
			if err := repo.Create(models.NewCachedTrack(provider, c, "f.mp3")); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(all))
		}
		if all[0].Title != "One" || all[2].Title != "Three" {
			t.Error("expected sequence ordering")
		}

		deezer, err := repo.List(map[string]any{"provider": "deezer"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(deezer) != 2 {
			t.Errorf("expected 2 deezer tracks, got %d", len(deezer))
		}

		byArtist, err := repo.List(map[string]any{"artist": "A"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(byArtist) != 2 {
			t.Errorf("expected 2 tracks by artist A, got %d", len(byArtist))
		}
	})
}

func TestCacheAdapter(t *testing.T) {
	t.Run("MarkFetched records and deduplicates", func(t *testing.T) {
		repo := setupTestDB(t)
		cache := NewCacheAdapter(repo)

		c := testCandidate()
		if err := cache.MarkFetched("deezer", c, "a.mp3"); err != nil {
			t.Fatalf("MarkFetched failed: %v", err)
		}
		if err := cache.MarkFetched("deezer", c, "b.mp3"); err != nil {
			t.Fatalf("duplicate MarkFetched should be a no-op: %v", err)
		}

		name, ok := cache.KnownFileName("deezer", c)
		if !ok {
			t.Fatal("expected cached file name")
		}
		if name != "a.mp3" {
			t.Errorf("expected first recorded name to win, got %q", name)
		}
	})

	t.Run("MarkFetched skips candidates without links", func(t *testing.T) {
		repo := setupTestDB(t)
		cache := NewCacheAdapter(repo)

		if err := cache.MarkFetched("deezer", models.Candidate{Title: "No Link"}, "a.mp3"); err != nil {
			t.Fatalf("MarkFetched failed: %v", err)
		}

		tracks, err := repo.List(nil)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(tracks) != 0 {
			t.Errorf("expected no cached tracks, got %d", len(tracks))
		}
	})

	t.Run("KnownFileName misses for unfetched candidates", func(t *testing.T) {
		repo := setupTestDB(t)
		cache := NewCacheAdapter(repo)

		if _, ok := cache.KnownFileName("deezer", testCandidate()); ok {
			t.Error("expected cache miss")
		}
	})

	t.Run("KnownFileName matches link-less candidates by title and artist", func(t *testing.T) {
		repo := setupTestDB(t)
		cache := NewCacheAdapter(repo)

		c := testCandidate()
		if err := cache.MarkFetched("deezer", c, "a.mp3"); err != nil {
			t.Fatalf("MarkFetched failed: %v", err)
		}

		lookup := models.Candidate{Title: "  " + strings.ToUpper(c.Title), Artist: c.Artist}
		name, ok := cache.KnownFileName("deezer", lookup)
		if !ok {
			t.Fatal("expected a match on normalized title/artist")
		}
		if name != "a.mp3" {
			t.Errorf("unexpected file name %q", name)
		}

		if _, ok := cache.KnownFileName("itunes", lookup); ok {
			t.Error("match must be scoped to the provider")
		}
	})
}
