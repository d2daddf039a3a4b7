package feedmeta

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch marks transport failures and HTTP error statuses.
	ErrFetch = errors.New("feed fetch failed")
	// ErrMalformed marks documents that parsed badly or lack required fields.
	ErrMalformed = errors.New("feed document malformed")
)

// MalformedError carries the parser diagnostic for a rejected document.
type MalformedError struct {
	URL    string
	Reason string
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed %s malformed: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("feed %s malformed: %s", e.URL, e.Reason)
}

func (e *MalformedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformed}
	}
	return []error{ErrMalformed, e.Err}
}

func fetchError(url, operation string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %s: %w", ErrFetch, url, operation, err)
	}
	return fmt.Errorf("%w: %s: %s", ErrFetch, url, operation)
}
