// Package domain contains core business entities and rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuoteEntity is the entity name used in domain errors.
const QuoteEntity = "quote"

// TimestampPrecision is the resolution kept for quote timestamps.
// PostgreSQL timestamptz stores microseconds, so values are truncated
// to that before they are persisted or returned.
const TimestampPrecision = time.Microsecond

// Quote represents a stored quotation with its author.
// This is a domain entity - it has no knowledge of external systems.
type Quote struct {
	// ID is generated by the service when the quote is created and never changes.
	ID uuid.UUID

	// Author is who said or wrote the quote.
	Author string

	// Text is the quotation itself.
	Text string

	// InsertedAt is set once at creation.
	InsertedAt time.Time

	// UpdatedAt is set at creation and refreshed on every update.
	UpdatedAt time.Time
}

// NewQuote creates a quote with a fresh ID, using now for both timestamps.
func NewQuote(author, text string, now time.Time) *Quote {
	ts := Timestamp(now)

	return &Quote{
		ID:         uuid.New(),
		Author:     author,
		Text:       text,
		InsertedAt: ts,
		UpdatedAt:  ts,
	}
}

// QuoteChanges holds the mutable fields of an existing quote.
type QuoteChanges struct {
	Author    string
	Text      string
	UpdatedAt time.Time
}

// Timestamp normalizes t to UTC at the precision the store keeps.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(TimestampPrecision)
}

// quoteIDLength is the length of the canonical hyphenated UUID form.
const quoteIDLength = 36

// ParseQuoteID parses a client supplied quote identifier. Only the canonical
// hyphenated form is accepted, in either case; the braced, urn:uuid: and
// bare hex forms uuid.Parse also understands are rejected.
func ParseQuoteID(raw string) (uuid.UUID, error) {
	if len(raw) != quoteIDLength {
		return uuid.Nil, NewValidationErrorWithValue("id", "must be a valid UUID", raw)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, NewValidationErrorWithValue("id", "must be a valid UUID", raw)
	}

	return id, nil
}
