package pgn

import "errors"

var (
	// ErrNotFound marks input that parsed cleanly but carried no content.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPgn marks input that could not be tokenized or a rejected tag value.
	ErrInvalidPgn = errors.New("invalid pgn")
)

type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string        { return "not found: " + e.Reason }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type InvalidPgnError struct {
	Err error
}

func (e *InvalidPgnError) Error() string {
	if e.Err == nil {
		return "invalid pgn"
	}
	return "invalid pgn: " + e.Err.Error()
}

func (e *InvalidPgnError) Unwrap() error        { return e.Err }
func (e *InvalidPgnError) Is(target error) bool { return target == ErrInvalidPgn }

func invalid(msg string) error { return &InvalidPgnError{Err: errors.New(msg)} }
