package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/mocks"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedClock returns a clock that always reports t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(t *testing.T, repo *mocks.MockQuoteRepository, now time.Time) *QuoteService {
	t.Helper()

	return NewQuoteService(QuoteServiceConfig{
		Repository: repo,
		Logger:     discardLogger(),
		Clock:      fixedClock(now),
	})
}

func TestNewQuoteService_PanicsWithoutRepository(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteService(QuoteServiceConfig{
			Repository: nil,
			Logger:     slog.Default(),
		})
	})
}

func TestNewQuoteService_Defaults(t *testing.T) {
	repo := mocks.NewMockQuoteRepository(t)

	svc := NewQuoteService(QuoteServiceConfig{Repository: repo})

	require.NotNil(t, svc)
	assert.NotNil(t, svc.logger)
	assert.NotNil(t, svc.now)
}

func TestQuoteService_CreateQuote(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 0, 987654321, time.UTC)

	t.Run("success", func(t *testing.T) {
		repo := mocks.NewMockQuoteRepository(t)
		repo.EXPECT().Create(mock.Anything, mock.AnythingOfType("*domain.Quote")).Return(nil)

		svc := newTestService(t, repo, now)

		quote, err := svc.CreateQuote(context.Background(), QuoteInput{
			Author: "Ada",
			Text:   "It is not the language.",
		})

		require.NoError(t, err)
		require.NotNil(t, quote)
		assert.NotEqual(t, uuid.Nil, quote.ID)
		assert.Equal(t, "Ada", quote.Author)
		assert.Equal(t, "It is not the language.", quote.Text)
		assert.Equal(t, domain.Timestamp(now), quote.InsertedAt)
		assert.Equal(t, quote.InsertedAt, quote.UpdatedAt)
	})

	t.Run("persists what it returns", func(t *testing.T) {
		repo := mocks.NewMockQuoteRepository(t)

		var persisted *domain.Quote
		repo.EXPECT().Create(mock.Anything, mock.Anything).
			Run(func(_ context.Context, q *domain.Quote) { persisted = q }).
			Return(nil)

		svc := newTestService(t, repo, now)

		quote, err := svc.CreateQuote(context.Background(), QuoteInput{Author: "", Text: ""})

		require.NoError(t, err)
		assert.Same(t, persisted, quote)
	})

	t.Run("store failure", func(t *testing.T) {
		storeErr := errors.New("connection refused")
		repo := mocks.NewMockQuoteRepository(t)
		repo.EXPECT().Create(mock.Anything, mock.Anything).Return(storeErr)

		svc := newTestService(t, repo, now)

		quote, err := svc.CreateQuote(context.Background(), QuoteInput{Author: "a", Text: "b"})

		require.Error(t, err)
		require.ErrorIs(t, err, storeErr)
		assert.Nil(t, quote)
	})
}

func TestQuoteService_ListQuotes(t *testing.T) {
	stored := []*domain.Quote{
		domain.NewQuote("a", "one", time.Now()),
		domain.NewQuote("b", "two", time.Now()),
	}

	tests := []struct {
		name      string
		setupMock func(*mocks.MockQuoteRepository)
		expected  []*domain.Quote
		wantErr   bool
	}{
		{
			name: "success",
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().List(mock.Anything).Return(stored, nil)
			},
			expected: stored,
		},
		{
			name: "empty",
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().List(mock.Anything).Return([]*domain.Quote{}, nil)
			},
			expected: []*domain.Quote{},
		},
		{
			name: "store failure",
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().List(mock.Anything).Return(nil, errors.New("boom"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockQuoteRepository(t)
			tt.setupMock(repo)

			svc := newTestService(t, repo, time.Now())

			quotes, err := svc.ListQuotes(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, quotes)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, quotes)
		})
	}
}

func TestQuoteService_UpdateQuote(t *testing.T) {
	id := uuid.New()
	now := time.Date(2024, 6, 16, 9, 0, 0, 500, time.UTC)

	tests := []struct {
		name      string
		rawID     string
		setupMock func(*mocks.MockQuoteRepository)
		errCheck  func(error) bool
	}{
		{
			name:  "success",
			rawID: id.String(),
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Update(mock.Anything, id, domain.QuoteChanges{
					Author:    "Ada Lovelace",
					Text:      "Updated.",
					UpdatedAt: domain.Timestamp(now),
				}).Return(nil)
			},
		},
		{
			name:  "not found",
			rawID: id.String(),
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Update(mock.Anything, id, mock.Anything).
					Return(domain.NewNotFoundError(domain.QuoteEntity, id.String()))
			},
			errCheck: domain.IsNotFound,
		},
		{
			name:  "store failure",
			rawID: id.String(),
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Update(mock.Anything, id, mock.Anything).Return(errors.New("boom"))
			},
			errCheck: func(err error) bool {
				return err != nil && !domain.IsNotFound(err) && !domain.IsValidation(err)
			},
		},
		{
			name:      "malformed id never reaches the store",
			rawID:     "not-a-uuid",
			setupMock: func(*mocks.MockQuoteRepository) {},
			errCheck:  domain.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockQuoteRepository(t)
			tt.setupMock(repo)

			svc := newTestService(t, repo, now)

			err := svc.UpdateQuote(context.Background(), tt.rawID, QuoteInput{
				Author: "Ada Lovelace",
				Text:   "Updated.",
			})

			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestQuoteService_DeleteQuote(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		rawID     string
		setupMock func(*mocks.MockQuoteRepository)
		errCheck  func(error) bool
	}{
		{
			name:  "success",
			rawID: id.String(),
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Delete(mock.Anything, id).Return(nil)
			},
		},
		{
			name:  "not found",
			rawID: id.String(),
			setupMock: func(m *mocks.MockQuoteRepository) {
				m.EXPECT().Delete(mock.Anything, id).
					Return(domain.NewNotFoundError(domain.QuoteEntity, id.String()))
			},
			errCheck: domain.IsNotFound,
		},
		{
			name:      "malformed id",
			rawID:     "123",
			setupMock: func(*mocks.MockQuoteRepository) {},
			errCheck:  domain.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewMockQuoteRepository(t)
			tt.setupMock(repo)

			svc := newTestService(t, repo, time.Now())

			err := svc.DeleteQuote(context.Background(), tt.rawID)

			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err))

				return
			}

			require.NoError(t, err)
		})
	}
}
