package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuote(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 0, 123456789, time.FixedZone("CEST", 2*60*60))

	q := NewQuote("Ada", "It is not the language.", now)

	require.NotNil(t, q)
	assert.NotEqual(t, uuid.Nil, q.ID)
	assert.Equal(t, "Ada", q.Author)
	assert.Equal(t, "It is not the language.", q.Text)
	assert.Equal(t, q.InsertedAt, q.UpdatedAt)
	assert.Equal(t, time.UTC, q.InsertedAt.Location())
	assert.Equal(t, 123456000, q.InsertedAt.Nanosecond())
	assert.True(t, q.InsertedAt.Equal(now.Truncate(time.Microsecond)))
}

func TestNewQuote_UniqueIDs(t *testing.T) {
	seen := make(map[uuid.UUID]struct{})
	now := time.Now()

	for range 1000 {
		q := NewQuote("a", "b", now)
		_, dup := seen[q.ID]
		require.False(t, dup, "duplicate id %s", q.ID)
		seen[q.ID] = struct{}{}
	}
}

func TestNewQuote_AcceptsEmptyStrings(t *testing.T) {
	q := NewQuote("", "", time.Now())

	assert.Empty(t, q.Author)
	assert.Empty(t, q.Text)
}

func TestParseQuoteID(t *testing.T) {
	valid := uuid.New()

	tests := []struct {
		name    string
		input   string
		want    uuid.UUID
		wantErr bool
	}{
		{name: "valid uuid", input: valid.String(), want: valid},
		{name: "empty", input: "", wantErr: true},
		{name: "uppercase", input: strings.ToUpper(valid.String()), want: valid},
		{name: "garbage", input: "not-a-uuid", wantErr: true},
		{name: "braced", input: "{" + valid.String() + "}", wantErr: true},
		{name: "urn", input: "urn:uuid:" + valid.String(), wantErr: true},
		{name: "bare hex", input: strings.ReplaceAll(valid.String(), "-", ""), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuoteID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))

				var validation *ValidationError
				require.ErrorAs(t, err, &validation)
				assert.Equal(t, "id", validation.Field)
				assert.Equal(t, tt.input, validation.Value)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
