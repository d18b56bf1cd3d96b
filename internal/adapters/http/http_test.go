package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotes-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotes-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotes-service/internal/app"
	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/mocks"
	"github.com/jsamuelsen/quotes-service/internal/platform/config"
	"github.com/jsamuelsen/quotes-service/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testServerConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxRequestSize:  1 << 20,
	}
}

func TestServerNew(t *testing.T) {
	cfg := testServerConfig()
	logger := discardLogger()

	srv := New(cfg, logger)

	require.NotNil(t, srv)
	assert.NotNil(t, srv.Engine())
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"localhost", 8080, "localhost:8080"},
		{"0.0.0.0", 3000, "0.0.0.0:3000"},
		{"::1", 3000, "[::1]:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cfg := testServerConfig()
			cfg.Host = tt.host
			cfg.Port = tt.port

			assert.Equal(t, tt.want, New(cfg, discardLogger()).Addr())
		})
	}
}

func TestServerStartShutdown(t *testing.T) {
	srv := New(testServerConfig(), discardLogger())
	srv.Engine().GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	errCh, err := srv.Start()
	require.NoError(t, err)
	assert.NotEqual(t, "127.0.0.1:0", srv.Addr())

	resp, err := http.Get("http://" + srv.Addr() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err, ok := <-errCh:
		assert.False(t, ok, "error channel should be closed, got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for server to stop")
	}
}

func TestServerStart_AddressInUse(t *testing.T) {
	first := New(testServerConfig(), discardLogger())
	_, err := first.Start()
	require.NoError(t, err)

	t.Cleanup(func() { _ = first.Shutdown(context.Background()) })

	cfg := testServerConfig()
	host, port := splitAddr(t, first.Addr())
	cfg.Host = host
	cfg.Port = port

	_, err = New(cfg, discardLogger()).Start()
	require.Error(t, err)
}

func splitAddr(t *testing.T, addr string) (string, int) {
	t.Helper()

	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return host, port
}

func TestMaxBodySizeMiddleware(t *testing.T) {
	cfg := testServerConfig()
	cfg.MaxRequestSize = 16

	srv := New(cfg, discardLogger())
	srv.Engine().POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}

		c.String(http.StatusOK, string(body))
	})

	t.Run("under limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("short")))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "short", w.Body.String())
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		srv.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(make([]byte, 64))))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestServer_OversizedQuoteBody(t *testing.T) {
	cfg := testServerConfig()
	cfg.MaxRequestSize = 64

	logger := discardLogger()
	repo := mocks.NewMockQuoteRepository(t)
	service := app.NewQuoteService(app.QuoteServiceConfig{Repository: repo, Logger: logger})

	srv := New(cfg, logger)
	SetupRouter(srv.Engine(), RouterConfig{
		Logger:        logger,
		ServiceName:   "quotes-service-test",
		HealthHandler: handlers.NewHealthHandler(mocks.NewMockHealthRegistry(t), handlers.NewBuildInfo("test", "none", "unknown")),
		QuoteHandler:  handlers.NewQuoteHandler(service),
	})

	body := `{"author":"Ada","quote":"` + strings.Repeat("x", 200) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/quotes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodePayloadTooLarge, resp.Error.Code)
	assert.Equal(t, "request body exceeds 64 bytes", resp.Error.Message)
}

// newTestRouter builds the full middleware chain and route table around a
// mock repository and a mock health registry.
func newTestRouter(t *testing.T, logger *slog.Logger) (*gin.Engine, *mocks.MockQuoteRepository, *mocks.MockHealthRegistry) {
	t.Helper()

	repo := mocks.NewMockQuoteRepository(t)
	registry := mocks.NewMockHealthRegistry(t)

	service := app.NewQuoteService(app.QuoteServiceConfig{Repository: repo, Logger: logger})

	engine := gin.New()
	SetupRouter(engine, RouterConfig{
		Logger:        logger,
		ServiceName:   "quotes-service-test",
		HealthHandler: handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "unknown")),
		QuoteHandler:  handlers.NewQuoteHandler(service),
	})

	return engine, repo, registry
}

func TestSetupRouter_Routes(t *testing.T) {
	engine, _, _ := newTestRouter(t, discardLogger())

	got := make(map[string]bool)
	for _, r := range engine.Routes() {
		got[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /",
		"GET /-/live",
		"GET /-/ready",
		"GET /-/build",
		"GET /-/metrics",
		"POST /quotes",
		"GET /quotes",
		"PUT /quotes/:id",
		"DELETE /quotes/:id",
	} {
		assert.True(t, got[want], "missing route: %s", want)
	}
}

func TestSetupRouter_IDHeaders(t *testing.T) {
	engine, repo, _ := newTestRouter(t, discardLogger())
	repo.EXPECT().List(mock.Anything).Return([]*domain.Quote{}, nil).Twice()

	t.Run("generated when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quotes", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.NotEmpty(t, w.Header().Get("X-Correlation-ID"))
	})

	t.Run("echoed when present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quotes", nil)
		req.Header.Set("X-Request-ID", "req-42")
		req.Header.Set("X-Correlation-ID", "corr-7")

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "corr-7", w.Header().Get("X-Correlation-ID"))
	})
}

func TestSetupRouter_RootIgnoresStore(t *testing.T) {
	// Neither the repository nor the registry may be touched.
	engine, _, _ := newTestRouter(t, discardLogger())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestSetupRouter_Readiness(t *testing.T) {
	engine, _, registry := newTestRouter(t, discardLogger())
	registry.EXPECT().CheckAll(mock.Anything).Return(&ports.HealthResult{
		Status: ports.HealthStatusUnhealthy,
		Checks: map[string]*ports.CheckResult{
			"postgres": {Status: ports.HealthStatusUnhealthy, Message: "connection refused"},
		},
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "postgres")
}

func TestSetupRouter_AccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	engine, repo, _ := newTestRouter(t, logger)
	repo.EXPECT().Delete(mock.Anything, mock.Anything).
		Return(domain.NewNotFoundError(domain.QuoteEntity, "x"))

	req := httptest.NewRequest(http.MethodDelete, "/quotes/9f1c3c8e-3d47-4a55-9d7b-2f1f3d0a6b11", nil)
	req.Header.Set("X-Request-ID", "req-log")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Body.String())

	out := buf.String()
	assert.Contains(t, out, `"msg":"request completed"`)
	assert.Contains(t, out, `"route":"/quotes/:id"`)
	assert.Contains(t, out, `"request_id":"req-log"`)
}
