package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebot/internal/server"
	"github.com/desertthunder/tunebot/internal/shared"
	"github.com/desertthunder/tunebot/internal/telegram"
)

// Run starts the bot: it validates the config, wires the engine and the
// Telegram transport, optionally starts the health server, and polls until
// interrupted.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFlag(cmd); err != nil {
		return err
	}
	if err := r.config.ValidateForBot(); err != nil {
		return err
	}

	engine, closeCache, err := r.buildEngine()
	if err != nil {
		return err
	}
	defer closeCache()

	api, err := telegram.NewBotAPI(telegram.BotAPIOpts{
		HTTPClient: &http.Client{Timeout: 90 * time.Second},
		BaseURL:    r.config.Telegram.APIBaseURL,
		Token:      r.config.BotToken(),
	})
	if err != nil {
		return err
	}

	bot, err := telegram.NewBot(telegram.BotOpts{
		API:         api,
		Engine:      engine,
		Logger:      r.logger,
		PollTimeout: secondsOrZero(r.config.Telegram.PollTimeoutSeconds),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if r.config.Server.Enabled {
		go r.serveHealth(ctx)
	}

	return bot.Run(ctx)
}

// serveHealth runs the health endpoint until ctx is cancelled. Failures are
// logged rather than fatal; the bot keeps polling without its probe.
func (r *Runner) serveHealth(ctx context.Context) {
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(server.NewHealthHandler(r.store))

	srv := server.NewServer(server.ServerOpts{
		Host:   r.config.Server.Host,
		Port:   r.config.Server.Port,
		Router: router,
		Logger: r.logger,
	})

	if err := srv.Start(ctx); err != nil {
		r.logger.Error("health server stopped", "error", err)
	}
}

// Setup creates the config file when missing and initializes the track
// cache database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file already present", "path", configPath)
	} else {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	r.config = config

	if r.config.Cache.Path == "" {
		r.writePlain("Track cache disabled (cache.path is empty); nothing to initialize.\n")
		return nil
	}

	r.logger.Info("initializing track cache", "path", r.config.Cache.Path)
	db, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	r.writePlain("✓ Track cache ready at %s\n", r.config.Cache.Path)
	return nil
}
