package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotes-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotes-service/internal/app"
	"github.com/jsamuelsen/quotes-service/internal/domain"
)

// QuoteHandler handles the quote CRUD endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// QuoteResponse is the HTTP representation of a stored quote.
type QuoteResponse struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Quote      string    `json:"quote"`
	InsertedAt time.Time `json:"inserted_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toQuoteResponse(q *domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:         q.ID.String(),
		Author:     q.Author,
		Quote:      q.Text,
		InsertedAt: q.InsertedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

func toQuoteInput(req *dto.QuoteRequest) app.QuoteInput {
	author, text := req.Values()
	return app.QuoteInput{Author: author, Text: text}
}

// CreateQuote handles POST /quotes.
//
// @Summary Create a quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body dto.QuoteRequest true "Quote"
// @Success 201 {object} QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500
// @Router /quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	quote, err := h.service.CreateQuote(c.Request.Context(), toQuoteInput(&req))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toQuoteResponse(quote))
}

// ListQuotes handles GET /quotes. An empty store yields [] rather than null.
//
// @Summary List all quotes
// @Tags quotes
// @Produce json
// @Success 200 {array} QuoteResponse
// @Failure 500
// @Router /quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.service.ListQuotes(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		resp = append(resp, toQuoteResponse(q))
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateQuote handles PUT /quotes/:id.
//
// @Summary Replace author and text of a quote
// @Tags quotes
// @Accept json
// @Param id path string true "Quote ID"
// @Param quote body dto.QuoteRequest true "Quote"
// @Success 200
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404
// @Failure 500
// @Router /quotes/{id} [put]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	var req dto.QuoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	if err := h.service.UpdateQuote(c.Request.Context(), c.Param("id"), toQuoteInput(&req)); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// DeleteQuote handles DELETE /quotes/:id.
//
// @Summary Delete a quote
// @Tags quotes
// @Param id path string true "Quote ID"
// @Success 200
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404
// @Failure 500
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	if err := h.service.DeleteQuote(c.Request.Context(), c.Param("id")); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// RegisterQuoteRoutes registers the quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.POST("", h.CreateQuote)
	quotes.GET("", h.ListQuotes)
	quotes.PUT("/:id", h.UpdateQuote)
	quotes.DELETE("/:id", h.DeleteQuote)
}
