package services

import (
	"time"

	"github.com/mrlokans/librarian/internal/database/lendings"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/lending"
)

// BookFinder looks books up by ISBN.
type BookFinder interface {
	GetByISBN(isbn string) (*entities.Book, error)
}

// ReaderFinder looks readers up by reader number.
type ReaderFinder interface {
	GetByReaderNumber(readerNumber string) (*entities.Reader, error)
}

// LendingStore persists lendings. SaveReturn must fail with
// lending.ErrStaleState when the stored version is not expectedVersion.
type LendingStore interface {
	Create(l *lending.Lending) error
	SaveReturn(l *lending.Lending, expectedVersion int64, fine *lending.Fine) error
	FindByLendingNumber(number string) (*lending.Lending, error)
	ListOutstandingByReaderNumber(readerNumber string) ([]*lending.Lending, error)
	ListByReaderNumberAndISBN(readerNumber, isbn string, returned *bool) ([]*lending.Lending, error)
	MaxSequenceForYear(year int) (int, error)
	ReturnedDurations(isbn string) ([]int, error)
	Overdue(today time.Time, limit, offset int) ([]*lending.Lending, int64, error)
	Search(f lendings.Filter, limit, offset int) ([]*lending.Lending, int64, error)
	Delete(number string) error
}

// FineReader reads stored fines.
type FineReader interface {
	GetByLending(l *lending.Lending) (*lending.Fine, error)
}

// LendingAuditor records lending events. Implementations must not block.
type LendingAuditor interface {
	LogIssued(correlationID string, l *lending.Lending)
	LogReturned(correlationID string, l *lending.Lending, fine *lending.Fine)
	LogRejected(correlationID, readerNumber, isbn string, reason error)
	LogDeleted(correlationID, lendingNumber string)
}
