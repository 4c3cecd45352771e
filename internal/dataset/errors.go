package dataset

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrMissingColumn is wrapped by an AccessError when a required column is absent.
var ErrMissingColumn = errors.New("missing column")

// AccessError reports an input source that is missing, unreadable or does not
// carry the expected schema. It is always fatal for a run.
type AccessError struct {
	Source string
	Column string
	Err    error
}

func (e *AccessError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("data access %s: column %q: %v", e.Source, e.Column, e.Err)
	}
	return fmt.Sprintf("data access %s: %v", e.Source, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

func accessError(source string, err error) error {
	return &AccessError{Source: source, Err: err}
}

func columnError(source, column string, err error) error {
	return &AccessError{Source: source, Column: column, Err: err}
}
