package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebot/internal/media"
	"github.com/desertthunder/tunebot/internal/repositories"
	"github.com/desertthunder/tunebot/internal/services"
	"github.com/desertthunder/tunebot/internal/session"
	"github.com/desertthunder/tunebot/internal/shared"
	"github.com/desertthunder/tunebot/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	provider   services.Provider
	store      *session.Store
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Provider   services.Provider
	Store      *session.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Store == nil {
		opts.Store = session.NewStore(0)
	}
	if opts.Provider == nil {
		opts.Provider = BuildProvider(opts.Config, opts.Logger)
	}

	return &Runner{
		config:     opts.Config,
		provider:   opts.Provider,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the Runner's logger, e.g. to redirect output to a file
// while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// loadConfigFlag applies the --config flag: when the file exists, the
// Runner's config and provider chain are rebuilt from it. A missing file at
// an explicitly requested path is an error; the default path keeps whatever
// config the Runner was built with.
func (r *Runner) loadConfigFlag(cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err != nil {
		if path == defaultConfigPath {
			return nil
		}
		return fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	r.config = config
	r.provider = BuildProvider(config, r.logger)
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, searchCommand, fetchCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// BuildProvider assembles the catalog provider stack the config asks for.
// Spotify becomes the primary provider when its credential pair is present;
// Deezer and iTunes always back the chain since they need no credentials.
func BuildProvider(config *shared.Config, logger *log.Logger) services.Provider {
	deezer := services.NewDeezerProvider("", nil)
	itunes := services.NewITunesProvider("", nil)

	chain := []services.Provider{}
	creds := config.Credentials.Spotify
	if creds.ClientID != "" && creds.ClientSecret != "" {
		spotify, err := services.NewSpotifyProvider(creds.ClientID, creds.ClientSecret, "")
		if err != nil {
			logger.Warn("skipping Spotify provider", "error", err)
		} else {
			chain = append(chain, spotify)
		}
	}

	switch config.Search.Provider {
	case "itunes":
		chain = append(chain, itunes, deezer)
	default:
		chain = append(chain, deezer, itunes)
	}

	return services.NewChain(logger, chain...)
}

// buildFetcher constructs the media fetcher from the fetch config section.
func (r *Runner) buildFetcher() *media.Fetcher {
	return media.NewFetcher(media.FetcherOpts{
		HTTPClient:     r.httpClient,
		Binary:         r.config.Fetch.Binary,
		AudioFormat:    r.config.Fetch.AudioFormat,
		Timeout:        secondsOrZero(r.config.Fetch.TimeoutSeconds),
		PreviewTimeout: secondsOrZero(r.config.Fetch.PreviewTimeoutSeconds),
		Logger:         r.logger,
	})
}

// buildEngine wires the orchestration engine, opening the fetched-track
// cache when a path is configured. The returned closer releases the cache
// database; it is a no-op when caching is disabled.
func (r *Runner) buildEngine() (*tasks.Engine, func(), error) {
	var cache tasks.TrackCacher
	closer := func() {}

	if r.config.Cache.Path != "" {
		db, err := r.openCache()
		if err != nil {
			return nil, nil, err
		}
		cache = repositories.NewCacheAdapter(repositories.NewTrackRepository(db))
		closer = func() { db.Close() }
	}

	engine, err := tasks.NewEngine(tasks.EngineOpts{
		Provider:  r.provider,
		Store:     r.store,
		Fetcher:   r.buildFetcher(),
		Cache:     cache,
		Logger:    r.logger,
		Strategy:  r.config.Fetch.Strategy,
		Limit:     r.config.Search.Limit,
		RateLimit: r.config.Search.RateLimit,
		Workers:   r.config.Fetch.Workers,
	})
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("failed to build engine: %w", err)
	}

	return engine, closer, nil
}

func (r *Runner) openCache() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track cache: %w", err)
	}
	if r.config.Cache.MaxOpenConns > 0 {
		shared.ConfigureDatabase(db, r.config.Cache.MaxOpenConns, r.config.Cache.MaxIdleConns)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate track cache: %w", err)
	}
	return db, nil
}

func secondsOrZero(s int) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s) * time.Second
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
