package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/platform/telemetry"
	"github.com/jsamuelsen/quotes-service/internal/ports"
)

// Operation names used for metrics and spans.
const (
	OpCreate = "create"
	OpList   = "list"
	OpUpdate = "update"
	OpDelete = "delete"
)

// QuoteRepository implements ports.QuoteRepository on a GORM pool.
// Every method issues exactly one statement.
type QuoteRepository struct {
	db      *gorm.DB
	metrics *Metrics
	tracer  trace.Tracer
}

var _ ports.QuoteRepository = (*QuoteRepository)(nil)

// NewQuoteRepository creates a repository over db. metrics may be nil.
func NewQuoteRepository(db *gorm.DB, metrics *Metrics) *QuoteRepository {
	return &QuoteRepository{
		db:      db,
		metrics: metrics,
		tracer:  telemetry.Tracer(),
	}
}

// Create inserts all five columns of quote.
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) (err error) {
	ctx, done := r.begin(ctx, OpCreate, quote.ID)
	defer func() { done(err) }()

	if err := r.db.WithContext(ctx).Create(toModel(quote)).Error; err != nil {
		return fmt.Errorf("inserting quote: %w", err)
	}

	return nil
}

// List returns every row in storage order. It never returns a nil slice.
func (r *QuoteRepository) List(ctx context.Context) (_ []*domain.Quote, err error) {
	ctx, done := r.begin(ctx, OpList, uuid.Nil)
	defer func() { done(err) }()

	var rows []QuoteModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("selecting quotes: %w", err)
	}

	quotes := make([]*domain.Quote, 0, len(rows))
	for i := range rows {
		quotes = append(quotes, rows[i].toDomain())
	}

	return quotes, nil
}

// Update overwrites author, quote and updated_at. It returns a
// *domain.NotFoundError when no row matched id.
func (r *QuoteRepository) Update(ctx context.Context, id uuid.UUID, changes domain.QuoteChanges) (err error) {
	ctx, done := r.begin(ctx, OpUpdate, id)
	defer func() { done(err) }()

	result := r.db.WithContext(ctx).
		Model(&QuoteModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"author":     changes.Author,
			"quote":      changes.Text,
			"updated_at": changes.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("updating quote: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError(domain.QuoteEntity, id.String())
	}

	return nil
}

// Delete removes the row with id. It returns a *domain.NotFoundError when
// nothing was removed.
func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, done := r.begin(ctx, OpDelete, id)
	defer func() { done(err) }()

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&QuoteModel{})
	if result.Error != nil {
		return fmt.Errorf("deleting quote: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError(domain.QuoteEntity, id.String())
	}

	return nil
}

// begin starts a span for operation and returns a func that ends it and
// records metrics with the final error.
func (r *QuoteRepository) begin(ctx context.Context, operation string, id uuid.UUID) (context.Context, func(error)) {
	start := time.Now()

	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", QuoteModel{}.TableName()),
	}
	if id != uuid.Nil {
		attrs = append(attrs, attribute.String("quote.id", id.String()))
	}

	ctx, span := r.tracer.Start(ctx, "quotes."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, func(err error) {
		if err != nil && !domain.IsNotFound(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
		r.metrics.observe(operation, start, err)
	}
}
