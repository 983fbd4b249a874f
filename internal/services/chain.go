package services

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunebot/internal/models"
	"github.com/desertthunder/tunebot/internal/shared"
)

// Chain tries providers in a fixed order and returns the first non-empty
// result set. Providers are never blended: a result list always comes from
// exactly one upstream.
type Chain struct {
	providers []Provider
	logger    *log.Logger
}

// NewChain creates a Chain that queries providers in the given order.
func NewChain(logger *log.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Chain{providers: providers, logger: logger}
}

// Name returns the provider name.
func (c *Chain) Name() string {
	return "Chain"
}

// Search queries each provider in order. A provider that errors or returns
// an empty list is skipped in favor of the next; an empty list from every
// provider is an empty (non-error) result. If every provider fails, the
// last failure is returned.
func (c *Chain) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	if len(c.providers) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", shared.ErrUpstream)
	}

	var lastErr error
	for _, p := range c.providers {
		candidates, err := p.Search(ctx, query, limit)
		if err != nil {
			c.logger.Warn("provider search failed", "provider", p.Name(), "error", err)
			lastErr = err
			continue
		}
		if len(candidates) > 0 {
			return candidates, nil
		}
		c.logger.Debug("provider returned no results", "provider", p.Name(), "query", query)
		lastErr = nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}
