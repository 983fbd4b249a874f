package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/tunebot/internal/formatter"
	"github.com/desertthunder/tunebot/internal/media"
	"github.com/desertthunder/tunebot/internal/models"
	"github.com/desertthunder/tunebot/internal/services"
	"github.com/desertthunder/tunebot/internal/session"
	"github.com/desertthunder/tunebot/internal/shared"
)

// Fetch strategies. Preview downloads the provider's short clip; Full runs
// the extraction tool for the complete track.
const (
	StrategyPreview = "preview"
	StrategyFull    = "full"
)

const (
	defaultSearchRate = 5 // searches per second across all conversations
	defaultWorkers    = 3 // concurrent extractions

	searchFailedText = "Search failed, please try again in a moment."
	noResultsText    = "No tracks found. Try different keywords."
	staleText        = "That list is no longer active. Send a new search."
	fetchFailedText  = "Couldn't fetch that track, please try again."
	fetchTimeoutText = "Fetching took too long and was cancelled."
	linkOnlyText     = "Couldn't get the audio, but here's the track:"
	notAvailableText = "That track isn't available right now."
)

// Fetcher obtains audio for a resolved candidate. Implemented by
// [media.Fetcher]; mocked in tests.
type Fetcher interface {
	Preview(ctx context.Context, previewURL string) (*media.Audio, error)
	Extract(ctx context.Context, artist, title string) (*media.Audio, error)
}

// TrackCacher records successful fetches so the result of an expensive
// extraction is remembered across selections. Implementations must tolerate
// duplicate records.
type TrackCacher interface {
	MarkFetched(provider string, c models.Candidate, fileName string) error
	KnownFileName(provider string, c models.Candidate) (string, bool)
}

// SearchItem pairs one candidate's button label with its callback token.
type SearchItem struct {
	Label string
	Token string
}

// SearchResult is everything the transport needs to present one search:
// the message body and, when the search succeeded, one item per candidate.
type SearchResult struct {
	Text       string
	Items      []SearchItem
	Candidates []models.Candidate
}

// DeliveryStatus classifies the outcome of a selection.
type DeliveryStatus int

const (
	// StatusDelivered means audio was fetched and is ready to send.
	StatusDelivered DeliveryStatus = iota
	// StatusLinkOnly means the fetch found nothing, but the candidate's
	// catalog link can be sent instead.
	StatusLinkOnly
	// StatusFailed means nothing can be delivered; Message explains why
	// in user-facing terms, and the detail went to the log.
	StatusFailed
)

// SelectResult is the outcome of resolving and fetching one selection.
type SelectResult struct {
	Status    DeliveryStatus
	Audio     *media.Audio
	Candidate models.Candidate
	Message   string
}

// Engine orchestrates the two bot flows: free-text search and callback
// selection. It owns the cross-conversation policies, the outbound search
// rate limit and the extraction concurrency bound.
type Engine struct {
	provider services.Provider
	store    *session.Store
	fetcher  Fetcher
	cache    TrackCacher
	logger   *log.Logger
	strategy string
	limit    int
	limiter  *rate.Limiter
	slots    chan struct{}
}

// EngineOpts contains configuration options for creating an Engine.
// Provider, Store, and Fetcher are required; everything else has defaults.
type EngineOpts struct {
	Provider  services.Provider
	Store     *session.Store
	Fetcher   Fetcher
	Cache     TrackCacher // nil disables fetch caching
	Logger    *log.Logger
	Strategy  string  // StrategyPreview or StrategyFull
	Limit     int     // candidates per search, clamped to services.MaxResults
	RateLimit float64 // searches per second
	Workers   int     // concurrent extractions
}

// NewEngine creates an Engine, filling unset options with defaults.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("%w: provider", shared.ErrMissingArgument)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: session store", shared.ErrMissingArgument)
	}
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher", shared.ErrMissingArgument)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyPreview
	}
	if opts.Strategy != StrategyPreview && opts.Strategy != StrategyFull {
		return nil, fmt.Errorf("%w: unknown fetch strategy %q", shared.ErrInvalidConfig, opts.Strategy)
	}
	if opts.Limit <= 0 || opts.Limit > services.MaxResults {
		opts.Limit = services.MaxResults
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultSearchRate
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}

	return &Engine{
		provider: opts.Provider,
		store:    opts.Store,
		fetcher:  opts.Fetcher,
		cache:    opts.Cache,
		logger:   opts.Logger,
		strategy: opts.Strategy,
		limit:    opts.Limit,
		limiter:  rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Workers+1),
		slots:    make(chan struct{}, opts.Workers),
	}, nil
}

// Search runs one free-text query for the conversation identified by key.
//
// Blank input returns (nil, nil): nothing to search, nothing to change.
// Upstream failures and empty result sets both come back as a renderable
// SearchResult with no items; neither touches the conversation's existing
// candidate list, so earlier buttons stay valid. Only a non-empty result
// replaces the list, and its items carry tokens bound to the new
// generation.
func (e *Engine) Search(ctx context.Context, key session.Key, text string) (*SearchResult, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return nil, nil
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", shared.ErrUpstream, err)
	}

	requestID := shared.GenerateID()
	logger := e.logger.With("request_id", requestID, "session", key, "provider", e.provider.Name())

	candidates, err := e.provider.Search(ctx, query, e.limit)
	if err != nil {
		logger.Error("search failed", "query", query, "error", err)
		return &SearchResult{Text: searchFailedText}, nil
	}

	if len(candidates) == 0 {
		logger.Info("search returned nothing", "query", query)
		return &SearchResult{Text: noResultsText}, nil
	}

	generation := e.store.Put(key, candidates)
	logger.Info("search succeeded", "query", query, "results", len(candidates), "generation", generation)

	items := make([]SearchItem, len(candidates))
	for i, c := range candidates {
		items[i] = SearchItem{
			Label: formatter.ButtonLabel(c),
			Token: EncodeToken(generation, i),
		}
	}

	return &SearchResult{
		Text:       formatter.RenderResults(candidates),
		Items:      items,
		Candidates: candidates,
	}, nil
}

// Select resolves a callback token for the conversation identified by key
// and fetches the selected candidate's audio.
//
// Every outcome is a SelectResult; Select never returns an error to the
// transport. Stale, out-of-range, malformed, and no-active-search tokens
// fail fast without touching the fetcher. Panics escaping the fetch path
// are contained here.
func (e *Engine) Select(ctx context.Context, key session.Key, token string) (result *SelectResult) {
	requestID := shared.GenerateID()
	logger := e.logger.With("request_id", requestID, "session", key)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("selection panicked", "token", token, "panic", r)
			result = &SelectResult{Status: StatusFailed, Message: fetchFailedText}
		}
	}()

	sel, err := ParseToken(token)
	if err != nil {
		logger.Warn("rejected callback payload", "token", token, "error", err)
		return &SelectResult{Status: StatusFailed, Message: staleText}
	}

	candidate, err := e.store.Resolve(key, sel)
	if err != nil {
		logger.Info("selection not resolvable", "token", token, "error", err)
		return &SelectResult{Status: StatusFailed, Message: staleText}
	}

	logger = logger.With("title", candidate.Title, "artist", candidate.Artist)

	knownName, cached := e.knownFileName(candidate)
	if cached {
		logger.Debug("candidate delivered before", "file", knownName)
	}

	audio, err := e.fetch(ctx, candidate)
	switch {
	case err == nil:
		if cached {
			audio.FileName = knownName
		} else {
			audio.FileName = sanitizeAttachmentName(audio, candidate)
			e.recordFetch(logger, candidate, audio.FileName)
		}
		audio.Title = candidate.Title
		audio.Performer = candidate.Artist
		logger.Info("delivered audio", "file", audio.FileName, "bytes", len(audio.Data))
		return &SelectResult{Status: StatusDelivered, Audio: audio, Candidate: candidate}

	case errors.Is(err, shared.ErrTrackNotFound):
		if candidate.Link == "" {
			logger.Warn("no audio and no link", "error", err)
			return &SelectResult{Status: StatusFailed, Candidate: candidate, Message: notAvailableText}
		}
		logger.Info("degrading to link-only delivery", "error", err)
		return &SelectResult{
			Status:    StatusLinkOnly,
			Candidate: candidate,
			Message:   fmt.Sprintf("%s\n%s", linkOnlyText, candidate.Link),
		}

	case errors.Is(err, shared.ErrExtractionTimeout):
		logger.Error("fetch timed out", "error", err)
		return &SelectResult{Status: StatusFailed, Candidate: candidate, Message: fetchTimeoutText}

	default:
		logger.Error("fetch failed", "error", err)
		return &SelectResult{Status: StatusFailed, Candidate: candidate, Message: fetchFailedText}
	}
}

// fetch obtains audio per the configured strategy, falling back to the
// other strategy when the preferred one cannot produce anything for this
// candidate.
func (e *Engine) fetch(ctx context.Context, c models.Candidate) (*media.Audio, error) {
	if e.strategy == StrategyPreview {
		if c.PreviewURL != "" {
			return e.fetcher.Preview(ctx, c.PreviewURL)
		}
		return e.extract(ctx, c)
	}

	audio, err := e.extract(ctx, c)
	if errors.Is(err, shared.ErrTrackNotFound) && c.PreviewURL != "" {
		return e.fetcher.Preview(ctx, c.PreviewURL)
	}
	return audio, err
}

// extract runs the extraction tool under a worker slot so at most Workers
// subprocesses run at once.
func (e *Engine) extract(ctx context.Context, c models.Candidate) (*media.Audio, error) {
	select {
	case e.slots <- struct{}{}:
		defer func() { <-e.slots }()
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for extraction slot: %v", shared.ErrUpstream, ctx.Err())
	}

	return e.fetcher.Extract(ctx, c.Artist, c.Title)
}

// knownFileName asks the cache whether this candidate was delivered before,
// so repeat deliveries keep the file name the first one used.
func (e *Engine) knownFileName(c models.Candidate) (string, bool) {
	if e.cache == nil {
		return "", false
	}
	return e.cache.KnownFileName(e.provider.Name(), c)
}

// recordFetch notes a successful fetch in the cache, when one is configured.
// Cache failures are logged and otherwise ignored.
func (e *Engine) recordFetch(logger *log.Logger, c models.Candidate, fileName string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.MarkFetched(e.provider.Name(), c, fileName); err != nil {
		logger.Warn("failed to cache fetched track", "error", err)
	}
}

// sanitizeAttachmentName produces the transport-safe file name for fetched
// audio, deriving one from the candidate when the fetch didn't supply any.
func sanitizeAttachmentName(audio *media.Audio, c models.Candidate) string {
	if audio.FileName == "" {
		return formatter.AttachmentName(c, "mp3")
	}
	return shared.SanitizeFileName(filepath.Base(audio.FileName))
}
