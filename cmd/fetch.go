package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebot/internal/shared"
)

// Fetch extracts audio for a known artist/title pair and writes it to the
// output directory.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFlag(cmd); err != nil {
		return err
	}

	artist := cmd.String("artist")
	title := cmd.String("title")

	fetcher := r.buildFetcher()
	r.logger.Info("fetching", "artist", artist, "title", title)

	audio, err := fetcher.Extract(ctx, artist, title)
	switch {
	case errors.Is(err, shared.ErrTrackNotFound):
		return fmt.Errorf("nothing found for %q by %q", title, artist)
	case errors.Is(err, shared.ErrExtractionTimeout):
		return fmt.Errorf("extraction timed out for %q by %q", title, artist)
	case err != nil:
		return fmt.Errorf("fetch failed: %w", err)
	}

	path, err := saveAudio(cmd.String("output"), audio.FileName, audio.Data)
	if err != nil {
		return err
	}

	r.writePlain("✓ Saved %s (%d bytes)\n", path, len(audio.Data))
	return nil
}

// saveAudio writes fetched audio under dir, creating it as needed.
func saveAudio(dir, fileName string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, shared.SanitizeFileName(fileName))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	return path, nil
}
