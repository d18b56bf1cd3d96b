package dto

import (
	"encoding/json"
	"errors"
)

// QuoteRequest is the body of create and update requests.
//
// Both fields must be present and be JSON strings; an explicit null counts
// as absent. Empty strings are accepted. Keys match exactly, so "Author" is
// not "author". Unknown keys are ignored.
type QuoteRequest struct {
	Author *string `json:"author" validate:"required"`
	Quote  *string `json:"quote"  validate:"required"`
}

// UnmarshalJSON decodes the body with case-sensitive key matching.
func (r *QuoteRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	author, err := stringField(fields, "author")
	if err != nil {
		return err
	}

	quote, err := stringField(fields, "quote")
	if err != nil {
		return err
	}

	r.Author, r.Quote = author, quote

	return nil
}

// Values returns the author and quote text. Call only after validation.
func (r *QuoteRequest) Values() (author, quote string) {
	return *r.Author, *r.Quote
}

func stringField(fields map[string]json.RawMessage, name string) (*string, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, nil
	}

	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			typeErr.Field = name
		}

		return nil, err
	}

	return s, nil
}
