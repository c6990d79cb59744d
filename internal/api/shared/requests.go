package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Request body errors. The API maps both to fixed client messages.
var (
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrInvalidJSON     = errors.New("invalid JSON")
)

// Global validator instance for reuse
var validate = validator.New()

// DecodeJSON reads the whole request body and decodes it into v. An empty or
// whitespace-only body leaves v untouched, so it behaves like {}. Bodies cut
// off by http.MaxBytesReader yield ErrPayloadTooLarge and malformed bodies
// yield ErrInvalidJSON.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: limit %d bytes", ErrPayloadTooLarge, maxErr.Limit)
		}
		return fmt.Errorf("read request body: %w", err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}

	// Otherwise, use the struct validator
	return validate.Struct(v)
}
