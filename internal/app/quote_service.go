// Package app contains application services that orchestrate use cases.
// This is the application layer - it coordinates domain logic and
// infrastructure through ports and knows nothing about HTTP or SQL.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/platform/logging"
	"github.com/jsamuelsen/quotes-service/internal/ports"
)

// QuoteService orchestrates quote use cases.
// Each use case results in exactly one repository call.
type QuoteService struct {
	repo   ports.QuoteRepository
	logger *slog.Logger
	now    func() time.Time
}

// QuoteServiceConfig contains the dependencies of the quote service.
type QuoteServiceConfig struct {
	Repository ports.QuoteRepository
	Logger     *slog.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// QuoteInput carries the client supplied fields of a quote.
type QuoteInput struct {
	Author string
	Text   string
}

// NewQuoteService creates a new quote service.
// It panics if no repository is provided, since the service cannot work without one.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Repository == nil {
		panic("app: NewQuoteService requires a Repository")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &QuoteService{
		repo:   cfg.Repository,
		logger: logger.With(slog.String("component", "app.QuoteService")),
		now:    clock,
	}
}

// CreateQuote assigns a new ID and timestamps and persists the quote.
func (s *QuoteService) CreateQuote(ctx context.Context, in QuoteInput) (*domain.Quote, error) {
	logger := s.loggerFrom(ctx)

	quote := domain.NewQuote(in.Author, in.Text, s.now())

	if err := s.repo.Create(ctx, quote); err != nil {
		logger.ErrorContext(ctx, "failed to create quote",
			slog.String("quote_id", quote.ID.String()),
			slog.Any("error", err),
		)

		return nil, fmt.Errorf("creating quote: %w", err)
	}

	logger.InfoContext(ctx, "created quote",
		slog.String("quote_id", quote.ID.String()),
		slog.String("author", quote.Author),
	)

	return quote, nil
}

// ListQuotes returns every stored quote.
func (s *QuoteService) ListQuotes(ctx context.Context) ([]*domain.Quote, error) {
	quotes, err := s.repo.List(ctx)
	if err != nil {
		s.loggerFrom(ctx).ErrorContext(ctx, "failed to list quotes", slog.Any("error", err))
		return nil, fmt.Errorf("listing quotes: %w", err)
	}

	return quotes, nil
}

// UpdateQuote replaces author and text of the quote identified by rawID and
// refreshes its updated_at. The ID and insertion time are never touched.
// Returns a domain validation error for a malformed ID and
// domain.ErrNotFound when no quote matched.
func (s *QuoteService) UpdateQuote(ctx context.Context, rawID string, in QuoteInput) error {
	id, err := domain.ParseQuoteID(rawID)
	if err != nil {
		return fmt.Errorf("validating input: %w", err)
	}

	logger := s.loggerFrom(ctx).With(slog.String("quote_id", id.String()))

	err = s.repo.Update(ctx, id, domain.QuoteChanges{
		Author:    in.Author,
		Text:      in.Text,
		UpdatedAt: domain.Timestamp(s.now()),
	})
	if err != nil {
		if domain.IsNotFound(err) {
			logger.InfoContext(ctx, "quote to update not found")
		} else {
			logger.ErrorContext(ctx, "failed to update quote", slog.Any("error", err))
		}

		return fmt.Errorf("updating quote: %w", err)
	}

	logger.InfoContext(ctx, "updated quote")

	return nil
}

// DeleteQuote removes the quote identified by rawID.
func (s *QuoteService) DeleteQuote(ctx context.Context, rawID string) error {
	id, err := domain.ParseQuoteID(rawID)
	if err != nil {
		return fmt.Errorf("validating input: %w", err)
	}

	logger := s.loggerFrom(ctx).With(slog.String("quote_id", id.String()))

	if err := s.repo.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			logger.InfoContext(ctx, "quote to delete not found")
		} else {
			logger.ErrorContext(ctx, "failed to delete quote", slog.Any("error", err))
		}

		return fmt.Errorf("deleting quote: %w", err)
	}

	logger.InfoContext(ctx, "deleted quote")

	return nil
}

// loggerFrom prefers the request-scoped logger carried by ctx.
func (s *QuoteService) loggerFrom(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.logger)
}
