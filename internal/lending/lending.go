// Package lending implements the loan lifecycle of a physical book: issuing,
// returning, overdue projections and the one-off fine taken when an overdue
// lending is closed.
//
// A Lending is Active until Return succeeds, then Returned for good. Every
// mutation goes through the optimistic concurrency check in CheckVersion and is
// serialized per instance.
//
// All date arithmetic is done on calendar dates taken from a clock.Clock.
package lending

import (
	"reflect"
	"sync"
	"time"

	"github.com/mrlokans/librarian/internal/clock"
)

// Book is the lendable item as seen by a Lending.
type Book interface {
	LendableID() int64
	DisplayTitle() string
}

// Reader is the borrower as seen by a Lending.
type Reader interface {
	BorrowerID() int64
	BorrowerNumber() string
}

type Lending struct {
	mu    sync.Mutex
	clock clock.Clock

	id     int64
	book   Book
	reader Reader
	number Number

	startDate    time.Time
	limitDate    time.Time
	returnedDate *time.Time
	commentary   string

	fineValuePerDayInCents int
	version                int64
}

// New issues a lending starting today. The year of the lending number is the
// current year; sequence allocation belongs to the caller.
func New(c clock.Clock, book Book, reader Reader, sequence, durationDays, fineValuePerDayInCents int) (*Lending, error) {
	today := c.Today()
	return Bootstrap(c, book, reader, today.Year(), sequence, today, nil, durationDays, fineValuePerDayInCents)
}

// Bootstrap builds a lending with an explicit start date and, optionally, a
// return date. Used for historical imports and fixtures.
func Bootstrap(c clock.Clock, book Book, reader Reader, year, sequence int, startDate time.Time, returnedDate *time.Time, durationDays, fineValuePerDayInCents int) (*Lending, error) {
	if isNil(book) {
		return nil, ErrBookRequired
	}
	if isNil(reader) {
		return nil, ErrReaderRequired
	}
	if year <= 0 || sequence <= 0 {
		return nil, ErrInvalidSequence
	}
	if durationDays <= 0 {
		return nil, ErrInvalidDuration
	}
	if fineValuePerDayInCents < 0 {
		return nil, ErrNegativeFineRate
	}

	start := clock.Date(startDate)
	l := &Lending{
		clock:                  c,
		book:                   book,
		reader:                 reader,
		number:                 Number{Year: year, Sequence: sequence},
		startDate:              start,
		limitDate:              start.AddDate(0, 0, durationDays),
		fineValuePerDayInCents: fineValuePerDayInCents,
	}
	if returnedDate != nil {
		returned := clock.Date(*returnedDate)
		l.returnedDate = &returned
	}
	return l, nil
}

// RestoreParams carries a stored lending back into memory.
type RestoreParams struct {
	ID                     int64
	Book                   Book
	Reader                 Reader
	Number                 Number
	StartDate              time.Time
	LimitDate              time.Time
	ReturnedDate           *time.Time
	Commentary             string
	FineValuePerDayInCents int
	Version                int64
}

// Restore rebuilds a lending from persisted state, including its version.
func Restore(c clock.Clock, p RestoreParams) (*Lending, error) {
	if isNil(p.Book) {
		return nil, ErrBookRequired
	}
	if isNil(p.Reader) {
		return nil, ErrReaderRequired
	}
	if p.FineValuePerDayInCents < 0 {
		return nil, ErrNegativeFineRate
	}

	l := &Lending{
		clock:                  c,
		id:                     p.ID,
		book:                   p.Book,
		reader:                 p.Reader,
		number:                 p.Number,
		startDate:              clock.Date(p.StartDate),
		limitDate:              clock.Date(p.LimitDate),
		commentary:             p.Commentary,
		fineValuePerDayInCents: p.FineValuePerDayInCents,
		version:                p.Version,
	}
	if p.ReturnedDate != nil {
		returned := clock.Date(*p.ReturnedDate)
		l.returnedDate = &returned
	}
	return l, nil
}

// Return closes the lending today. It fails with ErrStaleState when
// expectedVersion is not the current version and with ErrAlreadyReturned on a
// second return; in both cases nothing changes.
func (l *Lending) Return(expectedVersion int64, commentary string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := CheckVersion(l.version, expectedVersion); err != nil {
		return err
	}
	if l.returnedDate != nil {
		return ErrAlreadyReturned
	}

	today := l.clock.Today()
	l.returnedDate = &today
	if commentary != "" {
		l.commentary = commentary
	}
	l.version++
	return nil
}

// DaysDelayed is the number of days past the limit date: up to the return date
// when returned, up to today otherwise. Never negative.
func (l *Lending) DaysDelayed() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.daysDelayed()
}

// DaysUntilReturn reports the days left before the limit date while the
// lending is active and not overdue.
func (l *Lending) DaysUntilReturn() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.returnedDate != nil {
		return 0, false
	}
	days := clock.DaysBetween(l.clock.Today(), l.limitDate)
	if days < 0 {
		return 0, false
	}
	return days, true
}

// DaysOverdue reports how many days an active lending is past its limit date.
func (l *Lending) DaysOverdue() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.returnedDate != nil {
		return 0, false
	}
	days := clock.DaysBetween(l.limitDate, l.clock.Today())
	if days <= 0 {
		return 0, false
	}
	return days, true
}

// FineValueInCents is the live fine projection. Absent when there is no delay.
func (l *Lending) FineValueInCents() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delayed := l.daysDelayed()
	if delayed <= 0 {
		return 0, false
	}
	return l.fineValuePerDayInCents * delayed, true
}

func (l *Lending) daysDelayed() int {
	end := l.clock.Today()
	if l.returnedDate != nil {
		end = *l.returnedDate
	}
	return max(0, clock.DaysBetween(l.limitDate, end))
}

// fineBasis reads the rate and the delay atomically.
func (l *Lending) fineBasis() (rate, delayed int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fineValuePerDayInCents, l.daysDelayed()
}

// AssignID sets the identifier of a lending that has none yet.
func (l *Lending) AssignID(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.id == 0 {
		l.id = id
	}
}

func (l *Lending) ID() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.id
}

func (l *Lending) Version() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

func (l *Lending) Book() Book     { return l.book }
func (l *Lending) Reader() Reader { return l.reader }
func (l *Lending) Number() Number { return l.number }

// LendingNumber is the "{year}/{sequence}" business key.
func (l *Lending) LendingNumber() string { return l.number.String() }

// Title is the display title of the lent book.
func (l *Lending) Title() string { return l.book.DisplayTitle() }

func (l *Lending) StartDate() time.Time        { return l.startDate }
func (l *Lending) LimitDate() time.Time        { return l.limitDate }
func (l *Lending) FineValuePerDayInCents() int { return l.fineValuePerDayInCents }

// DurationDays is the agreed lending period.
func (l *Lending) DurationDays() int {
	return clock.DaysBetween(l.startDate, l.limitDate)
}

func (l *Lending) ReturnedDate() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.returnedDate == nil {
		return time.Time{}, false
	}
	return *l.returnedDate, true
}

func (l *Lending) IsReturned() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.returnedDate != nil
}

func (l *Lending) Commentary() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commentary
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
