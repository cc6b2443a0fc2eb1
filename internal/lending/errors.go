package lending

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers match with errors.Is against the category sentinels;
// the specific errors below wrap one of them.
var (
	// ErrInvalidArgument marks missing or malformed input. Not retryable as is.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStaleState marks a version mismatch. Re-read the entity and retry.
	ErrStaleState      = errors.New("stale state")
	// ErrForbidden marks a borrowing policy violation.
	ErrForbidden       = errors.New("lending forbidden")
	// ErrNilReference marks a required entity that was not supplied.
	ErrNilReference    = errors.New("nil reference")
)

var (
	ErrBookRequired     = fmt.Errorf("%w: book is required", ErrInvalidArgument)
	ErrReaderRequired   = fmt.Errorf("%w: reader is required", ErrInvalidArgument)
	ErrInvalidSequence  = fmt.Errorf("%w: sequence must be positive", ErrInvalidArgument)
	ErrInvalidDuration  = fmt.Errorf("%w: duration in days must be positive", ErrInvalidArgument)
	ErrNegativeFineRate = fmt.Errorf("%w: fine value per day must not be negative", ErrInvalidArgument)
	ErrAlreadyReturned  = fmt.Errorf("%w: lending has already been returned", ErrInvalidArgument)
	ErrNotOverdue       = fmt.Errorf("%w: lending is not overdue", ErrInvalidArgument)
	ErrInvalidNumber    = fmt.Errorf("%w: lending number must have the form {year}/{sequence}", ErrInvalidArgument)
	ErrLendingRequired  = fmt.Errorf("%w: lending is required", ErrNilReference)
	ErrReaderHasOverdue = fmt.Errorf("%w: reader has overdue lendings", ErrForbidden)
	ErrOutstandingLimit = fmt.Errorf("%w: reader has reached the outstanding lendings limit", ErrForbidden)
)
