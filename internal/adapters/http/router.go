package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotes-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotes-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotes-service/internal/platform/telemetry"
)

// RouterConfig contains what SetupRouter needs to build the route table.
type RouterConfig struct {
	Logger *slog.Logger

	// ServiceName names the server spans.
	ServiceName string

	HealthHandler *handlers.HealthHandler
	QuoteHandler  *handlers.QuoteHandler
}

// SetupRouter installs the global middleware and registers every route.
// Middleware runs in this order:
//  1. Recovery, so a panic anywhere below becomes a 500
//  2. ContextLogger, seeding the request logger
//  3. RequestID and CorrelationID
//  4. OpenTelemetry tracing and metrics
//  5. Logging, which skips the /-/ health checks
//
// Routes:
//   - GET / and /-/ health checks
//   - /quotes CRUD
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	handlersChain := []gin.HandlerFunc{
		middleware.Recovery(cfg.Logger),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	}
	handlersChain = append(handlersChain, telemetry.Middleware(cfg.ServiceName)...)
	handlersChain = append(handlersChain, middleware.Logging(cfg.Logger))

	engine.Use(handlersChain...)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(&engine.RouterGroup)
	}
}
