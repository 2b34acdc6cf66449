package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidPagination     = errors.New("invalid pagination")
	ErrIngestionFailed       = errors.New("ingestion failed")
	ErrGenerationUnavailable = errors.New("text generation unavailable")
)

// IngestionError is returned when the article store fails mid-run.
// Result holds the counts committed before the failure.
type IngestionError struct {
	Result IngestionResult
	Err    error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("%v: %v", ErrIngestionFailed, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

func (e *IngestionError) Is(target error) bool {
	return target == ErrIngestionFailed
}
