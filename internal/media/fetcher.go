package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunebot/internal/shared"
)

const (
	defaultBinary         = "yt-dlp"
	defaultAudioFormat    = "mp3"
	defaultTimeout        = 120 * time.Second
	defaultPreviewTimeout = 15 * time.Second

	// maxAudioBytes caps what a single fetch will hold in memory.
	maxAudioBytes = 50 * 1024 * 1024
)

// Audio is a fetched track ready to hand to the chat transport.
type Audio struct {
	Data      []byte
	FileName  string
	Title     string
	Performer string
}

// Fetcher obtains audio either from a preview URL or via the extraction tool.
type Fetcher struct {
	httpClient     *http.Client
	binary         string
	audioFormat    string
	timeout        time.Duration
	previewTimeout time.Duration
	logger         *log.Logger
}

// FetcherOpts contains configuration options for creating a Fetcher.
type FetcherOpts struct {
	HTTPClient     *http.Client
	Binary         string
	AudioFormat    string
	Timeout        time.Duration
	PreviewTimeout time.Duration
	Logger         *log.Logger
}

// NewFetcher creates a Fetcher, filling unset options with defaults.
func NewFetcher(opts FetcherOpts) *Fetcher {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Binary == "" {
		opts.Binary = defaultBinary
	}
	if opts.AudioFormat == "" {
		opts.AudioFormat = defaultAudioFormat
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.PreviewTimeout <= 0 {
		opts.PreviewTimeout = defaultPreviewTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Fetcher{
		httpClient:     opts.HTTPClient,
		binary:         opts.Binary,
		audioFormat:    opts.AudioFormat,
		timeout:        opts.Timeout,
		previewTimeout: opts.PreviewTimeout,
		logger:         opts.Logger,
	}
}

// Preview downloads a short preview clip with a single GET.
//
// Any non-2xx status or transport failure wraps [shared.ErrUpstream]; a 2xx
// body is returned unmodified.
func (f *Fetcher) Preview(ctx context.Context, previewURL string) (*Audio, error) {
	if previewURL == "" {
		return nil, fmt.Errorf("%w: candidate has no preview URL", shared.ErrUpstream)
	}

	ctx, cancel := context.WithTimeout(ctx, f.previewTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, previewURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrUpstream, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: preview request failed: %v", shared.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: preview fetch: status %d", shared.ErrUpstream, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read preview body: %v", shared.ErrUpstream, err)
	}

	return &Audio{Data: data}, nil
}

// Extract runs the extraction tool against a search expression built from
// artist and title, and reads the produced audio file into memory.
//
// The tool writes into a private temporary directory that is removed before
// Extract returns, on every path. The process is killed once the configured
// wall-clock bound elapses, which surfaces as [shared.ErrExtractionTimeout].
// A clean exit that produced no file is [shared.ErrTrackNotFound]; a nonzero
// exit with no file carries the tool's stderr wrapped in [shared.ErrUpstream].
func (f *Fetcher) Extract(ctx context.Context, artist, title string) (*Audio, error) {
	query := strings.TrimSpace(artist + " " + title)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search expression", shared.ErrUpstream)
	}

	dir, err := os.MkdirTemp("", "tunebot-fetch-")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create working directory: %v", shared.ErrUpstream, err)
	}
	defer os.RemoveAll(dir)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := []string{
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		"-x",
		"--audio-format", f.audioFormat,
		"-o", filepath.Join(dir, "%(title)s.%(ext)s"),
		"ytsearch1:" + query,
	}

	cmd := exec.CommandContext(ctx, f.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	f.logger.Debug("extraction finished", "query", query, "elapsed", time.Since(start), "error", runErr)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s exceeded %s for %q", shared.ErrExtractionTimeout, f.binary, f.timeout, query)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: extraction cancelled: %v", shared.ErrUpstream, ctx.Err())
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*."+f.audioFormat))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list working directory: %v", shared.ErrUpstream, err)
	}

	if len(matches) == 0 {
		if runErr != nil {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				detail = runErr.Error()
			}
			return nil, fmt.Errorf("%w: %s: %s", shared.ErrUpstream, f.binary, detail)
		}
		return nil, fmt.Errorf("%w: no %s produced for %q", shared.ErrTrackNotFound, f.audioFormat, query)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", shared.ErrUpstream, filepath.Base(matches[0]), err)
	}

	return &Audio{
		Data:      data,
		FileName:  shared.SanitizeFileName(filepath.Base(matches[0])),
		Title:     title,
		Performer: artist,
	}, nil
}
