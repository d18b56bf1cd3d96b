//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type quoteJSON struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Quote      string    `json:"quote"`
	InsertedAt time.Time `json:"inserted_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func postQuote(ctx context.Context, client *http.Client, baseURL, author, text string) (*quoteJSON, error) {
	body := fmt.Sprintf(`{"author":%q,"quote":%q}`, author, text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/quotes", strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var q quoteJSON
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, err
	}

	return &q, nil
}

func listQuotes(ctx context.Context, client *http.Client, baseURL string) ([]quoteJSON, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/quotes", nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var quotes []quoteJSON
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, err
	}

	return quotes, nil
}

// More concurrent creates than pooled connections: the surplus waits for a
// free connection instead of failing.
func TestConcurrent_CreatesBeyondPoolSize(t *testing.T) {
	truncateQuotes(t)

	server := httptest.NewServer(newEngine())
	defer server.Close()

	const numRequests = 40

	var (
		mu  sync.Mutex
		ids = make(map[string]struct{}, numRequests)
	)

	g, ctx := errgroup.WithContext(context.Background())
	for i := range numRequests {
		g.Go(func() error {
			q, err := postQuote(ctx, server.Client(), server.URL, fmt.Sprintf("author-%d", i), "concurrent")
			if err != nil {
				return err
			}

			mu.Lock()
			ids[q.ID] = struct{}{}
			mu.Unlock()

			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Len(t, ids, numRequests, "every create must get a distinct id")

	quotes, err := listQuotes(context.Background(), server.Client(), server.URL)
	require.NoError(t, err)
	require.Len(t, quotes, numRequests)

	for _, q := range quotes {
		_, ok := ids[q.ID]
		assert.True(t, ok, "unexpected id %s", q.ID)
	}
}

// Concurrent deletes of the same quote: exactly one wins, the rest see 404.
func TestConcurrent_DeleteSameQuote(t *testing.T) {
	truncateQuotes(t)

	server := httptest.NewServer(newEngine())
	defer server.Close()

	q, err := postQuote(context.Background(), server.Client(), server.URL, "Ada", "once")
	require.NoError(t, err)

	const numRequests = 10

	var (
		mu       sync.Mutex
		statuses = make(map[int]int)
	)

	var g errgroup.Group
	for range numRequests {
		g.Go(func() error {
			req, err := http.NewRequest(http.MethodDelete, server.URL+"/quotes/"+q.ID, nil)
			if err != nil {
				return err
			}

			resp, err := server.Client().Do(req)
			if err != nil {
				return err
			}
			resp.Body.Close()

			mu.Lock()
			statuses[resp.StatusCode]++
			mu.Unlock()

			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, map[int]int{
		http.StatusOK:       1,
		http.StatusNotFound: numRequests - 1,
	}, statuses)
}
