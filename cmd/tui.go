package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebot/internal/shared"
	"github.com/desertthunder/tunebot/internal/tasks"
	"github.com/desertthunder/tunebot/internal/ui"
)

// Search launches the interactive picker for a query, mirroring the chat
// flow locally, and saves the fetched audio.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFlag(cmd); err != nil {
		return err
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tunebot-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, closeCache, err := r.buildEngine()
	if err != nil {
		return err
	}
	defer closeCache()

	model := ui.NewModel(ctx, engine, query)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	if err := model.Err(); err != nil {
		return err
	}

	outcome := model.Outcome()
	if outcome == nil {
		return nil
	}

	switch outcome.Status {
	case tasks.StatusDelivered:
		path, err := saveAudio(cmd.String("output"), outcome.Audio.FileName, outcome.Audio.Data)
		if err != nil {
			return err
		}
		r.writePlain("✓ Saved %s (%d bytes)\n", path, len(outcome.Audio.Data))
	case tasks.StatusLinkOnly, tasks.StatusFailed:
		r.writePlainln("%s", outcome.Message)
	}
	return nil
}
