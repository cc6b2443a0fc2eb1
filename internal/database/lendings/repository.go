// Package lendings stores lending.Lending values and answers the queries of
// the lending service.
//
// Returns are written with a compare-and-swap on the version column, so two
// writers that read the same version cannot both close a lending.
package lendings

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/librarian/internal/clock"
	"github.com/mrlokans/librarian/internal/database/fines"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/lending"
)

// Filter narrows Search. Zero fields do not filter.
type Filter struct {
	ReaderNumber string
	ISBN         string
	Returned     *bool
	StartFrom    *time.Time // inclusive
	StartTo      *time.Time // inclusive
}

type Repository struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewRepository(db *gorm.DB, c clock.Clock) *Repository {
	return &Repository{db: db, clock: c}
}

// Create inserts a new lending and assigns its identifier.
func (r *Repository) Create(l *lending.Lending) error {
	rec := toRecord(l)
	if err := r.db.Omit(clause.Associations).Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to create lending %s: %w", rec.LendingNumber, err)
	}
	l.AssignID(rec.ID)
	return nil
}

// CreateWithFine inserts a lending and, when fine is not nil, its fine in one
// transaction. Identifiers are assigned only once both rows are committed.
func (r *Repository) CreateWithFine(l *lending.Lending, fine *lending.Fine) error {
	rec := toRecord(l)
	var fineID int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create lending %s: %w", rec.LendingNumber, err)
		}
		if fine == nil {
			return nil
		}
		var err error
		fineID, err = fines.Insert(tx, rec.ID, fine)
		return err
	})
	if err != nil {
		return err
	}

	l.AssignID(rec.ID)
	if fine != nil {
		fine.AssignID(fineID)
	}
	return nil
}

// SaveReturn persists a returned lending that was read at expectedVersion,
// together with its fine when there is one. Nothing is written when the stored
// version moved in the meantime; the error then wraps lending.ErrStaleState.
func (r *Repository) SaveReturn(l *lending.Lending, expectedVersion int64, fine *lending.Fine) error {
	returned, ok := l.ReturnedDate()
	if !ok {
		return fmt.Errorf("lending %s has not been returned", l.LendingNumber())
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.LendingRecord{}).
			Where("id = ? AND version = ?", l.ID(), expectedVersion).
			Updates(map[string]interface{}{
				"returned_date": returned,
				"commentary":    l.Commentary(),
				"version":       l.Version(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: lending %s changed since version %d", lending.ErrStaleState, l.LendingNumber(), expectedVersion)
		}

		if fine == nil {
			return nil
		}
		id, err := fines.Insert(tx, l.ID(), fine)
		if err != nil {
			return err
		}
		fine.AssignID(id)
		return nil
	})
}

// FindByLendingNumber returns gorm.ErrRecordNotFound for an unknown number.
func (r *Repository) FindByLendingNumber(number string) (*lending.Lending, error) {
	var rec entities.LendingRecord
	err := r.withRefs().Where("lending_number = ?", number).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return fromRecord(r.clock, &rec)
}

// ListOutstandingByReaderNumber returns the reader's unreturned lendings.
func (r *Repository) ListOutstandingByReaderNumber(readerNumber string) ([]*lending.Lending, error) {
	var recs []entities.LendingRecord
	query := returnedIs(r.byReaderNumber(r.withRefs(), readerNumber), false)
	err := query.Order("start_date ASC, id ASC").Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return fromRecords(r.clock, recs)
}

// ListByReaderNumberAndISBN returns every lending of one book to one reader,
// optionally restricted to returned or unreturned ones.
func (r *Repository) ListByReaderNumberAndISBN(readerNumber, isbn string, returned *bool) ([]*lending.Lending, error) {
	query := r.byISBN(r.byReaderNumber(r.withRefs(), readerNumber), isbn)
	if returned != nil {
		query = returnedIs(query, *returned)
	}

	var recs []entities.LendingRecord
	if err := query.Order("start_date ASC, id ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return fromRecords(r.clock, recs)
}

// MaxSequenceForYear is the highest sequence used in year, or 0.
func (r *Repository) MaxSequenceForYear(year int) (int, error) {
	var seq int
	err := r.db.Model(&entities.LendingRecord{}).
		Select("COALESCE(MAX(sequence), 0)").
		Where("year = ?", year).
		Scan(&seq).Error
	return seq, err
}

// ReturnedDurations lists, in days, how long each returned lending lasted.
// An empty isbn covers every book.
func (r *Repository) ReturnedDurations(isbn string) ([]int, error) {
	query := returnedIs(r.db.Model(&entities.LendingRecord{}).Select("start_date", "returned_date"), true)
	if isbn != "" {
		query = r.byISBN(query, isbn)
	}

	var recs []entities.LendingRecord
	if err := query.Find(&recs).Error; err != nil {
		return nil, err
	}

	durations := make([]int, 0, len(recs))
	for _, rec := range recs {
		durations = append(durations, clock.DaysBetween(rec.StartDate, *rec.ReturnedDate))
	}
	return durations, nil
}

// Overdue pages through unreturned lendings whose limit date is before today,
// oldest limit date first.
func (r *Repository) Overdue(today time.Time, limit, offset int) ([]*lending.Lending, int64, error) {
	query := returnedIs(r.db.Model(&entities.LendingRecord{}), false).
		Where("limit_date < ?", clock.Date(today))
	return r.page(query, "limit_date ASC, id ASC", limit, offset)
}

// Search pages through lendings matching f, most recent start date first.
func (r *Repository) Search(f Filter, limit, offset int) ([]*lending.Lending, int64, error) {
	query := r.db.Model(&entities.LendingRecord{})
	if f.ReaderNumber != "" {
		query = r.byReaderNumber(query, f.ReaderNumber)
	}
	if f.ISBN != "" {
		query = r.byISBN(query, f.ISBN)
	}
	if f.Returned != nil {
		query = returnedIs(query, *f.Returned)
	}
	if f.StartFrom != nil {
		query = query.Where("start_date >= ?", clock.Date(*f.StartFrom))
	}
	if f.StartTo != nil {
		query = query.Where("start_date <= ?", clock.Date(*f.StartTo))
	}
	return r.page(query, "start_date DESC, id DESC", limit, offset)
}

// Delete removes a lending and its fine.
func (r *Repository) Delete(number string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var rec entities.LendingRecord
		if err := tx.Select("id").Where("lending_number = ?", number).First(&rec).Error; err != nil {
			return err
		}
		if err := tx.Where("lending_id = ?", rec.ID).Delete(&entities.FineRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.LendingRecord{}, rec.ID).Error
	})
}

func (r *Repository) page(query *gorm.DB, order string, limit, offset int) ([]*lending.Lending, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var recs []entities.LendingRecord
	err := query.Preload("Book").Preload("Reader").
		Order(order).Limit(limit).Offset(offset).
		Find(&recs).Error
	if err != nil {
		return nil, 0, err
	}

	out, err := fromRecords(r.clock, recs)
	return out, total, err
}

func (r *Repository) withRefs() *gorm.DB {
	return r.db.Preload("Book").Preload("Reader")
}

func (r *Repository) byReaderNumber(query *gorm.DB, readerNumber string) *gorm.DB {
	return query.Where("reader_id IN (?)",
		r.db.Model(&entities.Reader{}).Select("id").Where("reader_number = ?", readerNumber))
}

func (r *Repository) byISBN(query *gorm.DB, isbn string) *gorm.DB {
	return query.Where("book_id IN (?)",
		r.db.Model(&entities.Book{}).Select("id").Where("isbn = ?", isbn))
}

func returnedIs(query *gorm.DB, returned bool) *gorm.DB {
	if returned {
		return query.Where("returned_date IS NOT NULL")
	}
	return query.Where("returned_date IS NULL")
}
