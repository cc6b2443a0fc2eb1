package cli

import (
	"fmt"
	"time"

	"github.com/mrlokans/librarian/internal/clock"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/database/lendings"
	"github.com/mrlokans/librarian/internal/database/readers"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/lending"
)

// ImportResult summarizes one bootstrap run.
type ImportResult struct {
	Books    int
	Readers  int
	Lendings int
	Fines    int
	Errors   []string
}

// Importer writes a validated Fixture through the repositories. Books and
// readers are matched on ISBN and reader number; lendings returned late get
// their fine stored alongside.
type Importer struct {
	Books    *books.Repository
	Readers  *readers.Repository
	Lendings *lendings.Repository
	Clock    clock.Clock

	DurationInDays         int
	FineValuePerDayInCents int
}

func (im *Importer) Import(fx Fixture) (ImportResult, error) {
	var res ImportResult

	bookByISBN := make(map[string]*entities.Book, len(fx.Books))
	for _, b := range fx.Books {
		stored, err := im.Books.GetOrCreate(&entities.Book{
			ISBN:        b.ISBN,
			Title:       b.Title,
			Author:      b.Author,
			Genre:       b.Genre,
			Description: b.Description,
		})
		if err != nil {
			return res, fmt.Errorf("failed to import book %s: %w", b.ISBN, err)
		}
		bookByISBN[b.ISBN] = stored
		res.Books++
	}

	readerByNumber := make(map[string]*entities.Reader, len(fx.Readers))
	for _, r := range fx.Readers {
		stored, err := im.Readers.GetOrCreate(&entities.Reader{
			ReaderNumber: r.ReaderNumber,
			Name:         r.Name,
			Email:        r.Email,
			PhoneNumber:  r.PhoneNumber,
		})
		if err != nil {
			return res, fmt.Errorf("failed to import reader %s: %w", r.ReaderNumber, err)
		}
		readerByNumber[r.ReaderNumber] = stored
		res.Readers++
	}

	for _, fl := range fx.Lendings {
		fined, err := im.importLending(fl, bookByISBN, readerByNumber)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		res.Lendings++
		if fined {
			res.Fines++
		}
	}
	return res, nil
}

func (im *Importer) importLending(fl FixtureLending, bookByISBN map[string]*entities.Book, readerByNumber map[string]*entities.Reader) (bool, error) {
	book, err := im.book(fl.ISBN, bookByISBN)
	if err != nil {
		return false, err
	}
	reader, err := im.reader(fl.ReaderNumber, readerByNumber)
	if err != nil {
		return false, err
	}

	start, err := time.Parse(time.DateOnly, fl.StartDate)
	if err != nil {
		return false, fmt.Errorf("lending %d: %w", fl.Sequence, err)
	}
	var returned *time.Time
	if fl.ReturnedDate != "" {
		d, err := time.Parse(time.DateOnly, fl.ReturnedDate)
		if err != nil {
			return false, fmt.Errorf("lending %d: %w", fl.Sequence, err)
		}
		returned = &d
	}

	year := fl.Year
	if year == 0 {
		year = start.Year()
	}
	duration := fl.DurationDays
	if duration == 0 {
		duration = im.DurationInDays
	}
	rate := im.FineValuePerDayInCents
	if fl.FineValuePerDayInCents != nil {
		rate = *fl.FineValuePerDayInCents
	}

	l, err := lending.Bootstrap(im.Clock, book, reader, year, fl.Sequence, start, returned, duration, rate)
	if err != nil {
		return false, fmt.Errorf("lending %d/%d: %w", year, fl.Sequence, err)
	}

	var fine *lending.Fine
	if l.IsReturned() && l.DaysDelayed() > 0 {
		if fine, err = lending.NewFine(l); err != nil {
			return false, fmt.Errorf("fine for %s: %w", l.LendingNumber(), err)
		}
	}
	if err := im.Lendings.CreateWithFine(l, fine); err != nil {
		return false, fmt.Errorf("lending %s: %w", l.LendingNumber(), err)
	}
	return fine != nil, nil
}

// book resolves books declared in the fixture first, then the database.
func (im *Importer) book(isbn string, known map[string]*entities.Book) (*entities.Book, error) {
	if b, ok := known[isbn]; ok {
		return b, nil
	}
	b, err := im.Books.GetByISBN(isbn)
	if err != nil {
		return nil, fmt.Errorf("book %s: %w", isbn, err)
	}
	known[isbn] = b
	return b, nil
}

func (im *Importer) reader(number string, known map[string]*entities.Reader) (*entities.Reader, error) {
	if r, ok := known[number]; ok {
		return r, nil
	}
	r, err := im.Readers.GetByReaderNumber(number)
	if err != nil {
		return nil, fmt.Errorf("reader %s: %w", number, err)
	}
	known[number] = r
	return r, nil
}
