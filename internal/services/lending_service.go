package services

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/clock"
	"github.com/mrlokans/librarian/internal/database/lendings"
	"github.com/mrlokans/librarian/internal/lending"
)

// ErrNotFound is returned when a book, reader, lending or fine does not exist.
var ErrNotFound = errors.New("not found")

const (
	DefaultPageNumber = 1
	DefaultPageLimit  = 10
)

var (
	isbnPattern   = regexp.MustCompile(`^[0-9X-]{10,17}$`)
	numberPattern = regexp.MustCompile(`^[0-9]{4}/[0-9]+$`)
)

// Page selects a 1-based page. Zero values select DefaultPageNumber and DefaultPageLimit.
type Page struct {
	Number int
	Limit  int
}

func (p Page) normalized() Page {
	if p.Number <= 0 {
		p.Number = DefaultPageNumber
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Limit
}

// PageResult is one page of lendings plus the total number of matches.
type PageResult struct {
	Lendings []*lending.Lending
	Total    int64
	Page     Page
}

// CreateLendingRequest asks to lend the book with ISBN to a reader.
type CreateLendingRequest struct {
	ISBN         string
	ReaderNumber string
}

func (r CreateLendingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ISBN, validation.Required, validation.Match(isbnPattern).Error("must be an ISBN-10 or ISBN-13")),
		validation.Field(&r.ReaderNumber, validation.Required, validation.Match(numberPattern).Error("must have the form {year}/{sequence}")),
	)
}

// SearchQuery filters Search. Dates use the ISO layout 2006-01-02; empty
// fields do not filter.
type SearchQuery struct {
	ReaderNumber string
	ISBN         string
	Returned     *bool
	StartDate    string
	EndDate      string
}

func (q SearchQuery) filter() (lendings.Filter, error) {
	f := lendings.Filter{ReaderNumber: q.ReaderNumber, ISBN: q.ISBN, Returned: q.Returned}
	var err error
	if f.StartFrom, err = parseDate("start date", q.StartDate); err != nil {
		return lendings.Filter{}, err
	}
	if f.StartTo, err = parseDate("end date", q.EndDate); err != nil {
		return lendings.Filter{}, err
	}
	if f.StartFrom != nil && f.StartTo != nil && f.StartTo.Before(*f.StartFrom) {
		return lendings.Filter{}, fmt.Errorf("%w: end date is before start date", lending.ErrInvalidArgument)
	}
	return f, nil
}

func parseDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a valid YYYY-MM-DD date", lending.ErrInvalidArgument, field, value)
	}
	return &t, nil
}

// LendingConfig carries the lending terms applied to new lendings.
type LendingConfig struct {
	DurationInDays         int
	FineValuePerDayInCents int
	Policy                 lending.Policy
}

// LendingService is the entry point for every lending operation.
//
// Creation runs the policy check, the sequence allocation and the insert
// inside a per-reader critical section, so concurrent requests of one reader
// cannot both pass the outstanding-lendings check.
type LendingService struct {
	books    BookFinder
	readers  ReaderFinder
	lendings LendingStore
	fines    FineReader
	audit    LendingAuditor
	clock    clock.Clock
	config   LendingConfig

	readerLocks *keyedMutex
	sequenceMu  sync.Mutex
}

// NewLendingService wires the service. audit may be nil.
func NewLendingService(books BookFinder, readers ReaderFinder, lendingStore LendingStore, fines FineReader, audit LendingAuditor, c clock.Clock, cfg LendingConfig) *LendingService {
	return &LendingService{
		books:       books,
		readers:     readers,
		lendings:    lendingStore,
		fines:       fines,
		audit:       audit,
		clock:       c,
		config:      cfg,
		readerLocks: newKeyedMutex(),
	}
}

// Create lends a book to a reader under the configured terms.
func (s *LendingService) Create(req CreateLendingRequest) (*lending.Lending, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", lending.ErrInvalidArgument, err)
	}
	correlationID := uuid.NewString()

	unlock := s.readerLocks.Lock(req.ReaderNumber)
	defer unlock()

	outstanding, err := s.lendings.ListOutstandingByReaderNumber(req.ReaderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list outstanding lendings: %w", err)
	}
	if err := s.config.Policy.CheckCanBorrow(outstanding); err != nil {
		log.Warn().Err(err).Str("reader_number", req.ReaderNumber).Str("isbn", req.ISBN).Msg("Lending refused")
		if s.audit != nil {
			s.audit.LogRejected(correlationID, req.ReaderNumber, req.ISBN, err)
		}
		return nil, err
	}

	book, err := s.books.GetByISBN(req.ISBN)
	if err != nil {
		return nil, notFound(err, "book with ISBN %s", req.ISBN)
	}
	reader, err := s.readers.GetByReaderNumber(req.ReaderNumber)
	if err != nil {
		return nil, notFound(err, "reader %s", req.ReaderNumber)
	}

	s.sequenceMu.Lock()
	defer s.sequenceMu.Unlock()

	year := s.clock.Today().Year()
	last, err := s.lendings.MaxSequenceForYear(year)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate lending number: %w", err)
	}

	l, err := lending.New(s.clock, book, reader, last+1, s.config.DurationInDays, s.config.FineValuePerDayInCents)
	if err != nil {
		return nil, err
	}
	if err := s.lendings.Create(l); err != nil {
		return nil, err
	}

	log.Info().
		Str("correlation_id", correlationID).
		Str("lending_number", l.LendingNumber()).
		Str("reader_number", req.ReaderNumber).
		Str("isbn", req.ISBN).
		Msg("Lending created")
	if s.audit != nil {
		s.audit.LogIssued(correlationID, l)
	}
	return l, nil
}

// SetReturned closes a lending. expectedVersion is the version the caller
// last saw; a mismatch fails with lending.ErrStaleState. When the lending is
// overdue its fine is stored together with the return and handed back.
func (s *LendingService) SetReturned(lendingNumber string, expectedVersion int64, commentary string) (*lending.Lending, *lending.Fine, error) {
	if _, err := lending.ParseNumber(lendingNumber); err != nil {
		return nil, nil, err
	}

	l, err := s.lendings.FindByLendingNumber(lendingNumber)
	if err != nil {
		return nil, nil, notFound(err, "lending %s", lendingNumber)
	}
	if err := l.Return(expectedVersion, commentary); err != nil {
		return nil, nil, err
	}

	var fine *lending.Fine
	if l.DaysDelayed() > 0 {
		if fine, err = lending.NewFine(l); err != nil {
			return nil, nil, err
		}
	}

	if err := s.lendings.SaveReturn(l, expectedVersion, fine); err != nil {
		return nil, nil, err
	}

	event := log.Info().
		Str("lending_number", lendingNumber).
		Int64("version", l.Version()).
		Int("days_delayed", l.DaysDelayed())
	if fine != nil {
		event = event.Int("fine_cents", fine.CentsValue())
	}
	event.Msg("Lending returned")

	if s.audit != nil {
		s.audit.LogReturned(uuid.NewString(), l, fine)
	}
	return l, fine, nil
}

// FindByLendingNumber returns one lending.
func (s *LendingService) FindByLendingNumber(lendingNumber string) (*lending.Lending, error) {
	if _, err := lending.ParseNumber(lendingNumber); err != nil {
		return nil, err
	}
	l, err := s.lendings.FindByLendingNumber(lendingNumber)
	if err != nil {
		return nil, notFound(err, "lending %s", lendingNumber)
	}
	return l, nil
}

// ListByReaderNumberAndISBN lists the lendings of one book to one reader.
// A nil returned does not filter on the return state.
func (s *LendingService) ListByReaderNumberAndISBN(readerNumber, isbn string, returned *bool) ([]*lending.Lending, error) {
	if _, err := s.readers.GetByReaderNumber(readerNumber); err != nil {
		return nil, notFound(err, "reader %s", readerNumber)
	}
	if _, err := s.books.GetByISBN(isbn); err != nil {
		return nil, notFound(err, "book with ISBN %s", isbn)
	}
	return s.lendings.ListByReaderNumberAndISBN(readerNumber, isbn, returned)
}

// AverageDuration is the mean length in days of returned lendings, rounded
// half up to one decimal. Zero when nothing has been returned.
func (s *LendingService) AverageDuration() (decimal.Decimal, error) {
	durations, err := s.lendings.ReturnedDurations("")
	if err != nil {
		return decimal.Zero, err
	}
	return average(durations), nil
}

// AverageDurationByISBN is AverageDuration restricted to one book.
func (s *LendingService) AverageDurationByISBN(isbn string) (decimal.Decimal, error) {
	if _, err := s.books.GetByISBN(isbn); err != nil {
		return decimal.Zero, notFound(err, "book with ISBN %s", isbn)
	}
	durations, err := s.lendings.ReturnedDurations(isbn)
	if err != nil {
		return decimal.Zero, err
	}
	return average(durations), nil
}

// Overdue pages through unreturned lendings past their limit date, the most
// overdue first.
func (s *LendingService) Overdue(page Page) (PageResult, error) {
	page = page.normalized()
	items, total, err := s.lendings.Overdue(s.clock.Today(), page.Limit, page.offset())
	if err != nil {
		return PageResult{}, err
	}
	return PageResult{Lendings: items, Total: total, Page: page}, nil
}

// Search pages through lendings matching query.
func (s *LendingService) Search(page Page, query SearchQuery) (PageResult, error) {
	f, err := query.filter()
	if err != nil {
		return PageResult{}, err
	}
	page = page.normalized()
	items, total, err := s.lendings.Search(f, page.Limit, page.offset())
	if err != nil {
		return PageResult{}, err
	}
	return PageResult{Lendings: items, Total: total, Page: page}, nil
}

// FineFor returns the fine stored for a returned lending.
func (s *LendingService) FineFor(lendingNumber string) (*lending.Fine, error) {
	l, err := s.FindByLendingNumber(lendingNumber)
	if err != nil {
		return nil, err
	}
	fine, err := s.fines.GetByLending(l)
	if err != nil {
		return nil, notFound(err, "fine for lending %s", lendingNumber)
	}
	return fine, nil
}

// Delete removes a lending together with its fine.
func (s *LendingService) Delete(lendingNumber string) error {
	if _, err := lending.ParseNumber(lendingNumber); err != nil {
		return err
	}
	if err := s.lendings.Delete(lendingNumber); err != nil {
		return notFound(err, "lending %s", lendingNumber)
	}
	log.Info().Str("lending_number", lendingNumber).Msg("Lending deleted")
	if s.audit != nil {
		s.audit.LogDeleted(uuid.NewString(), lendingNumber)
	}
	return nil
}

func average(durations []int) decimal.Decimal {
	if len(durations) == 0 {
		return decimal.Zero
	}
	sum := int64(0)
	for _, d := range durations {
		sum += int64(d)
	}
	// DivRound rounds half away from zero; durations are never negative.
	return decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(int64(len(durations))), 1)
}

// notFound maps a missing record to ErrNotFound and passes other errors through.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
