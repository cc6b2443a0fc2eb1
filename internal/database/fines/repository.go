package fines

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/lending"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a fine for an already persisted lending.
func (r *Repository) Create(f *lending.Fine) error {
	id, err := Insert(r.db, f.Lending().ID(), f)
	if err != nil {
		return err
	}
	f.AssignID(id)
	return nil
}

// Insert writes the fine row of lendingID through db, which may be a
// transaction, and returns the new row id. The fine itself is left untouched
// so callers can assign the id once their transaction commits.
func Insert(db *gorm.DB, lendingID int64, f *lending.Fine) (int64, error) {
	rec := entities.FineRecord{
		LendingID:              lendingID,
		FineValuePerDayInCents: f.FineValuePerDayInCents(),
		CentsValue:             f.CentsValue(),
	}
	if err := db.Omit(clause.Associations).Create(&rec).Error; err != nil {
		return 0, fmt.Errorf("failed to store fine for lending %s: %w", f.Lending().LendingNumber(), err)
	}
	return rec.ID, nil
}

// GetByLending rebuilds the stored fine of l. Returns gorm.ErrRecordNotFound
// when the lending was not fined.
func (r *Repository) GetByLending(l *lending.Lending) (*lending.Fine, error) {
	var rec entities.FineRecord
	if err := r.db.Where("lending_id = ?", l.ID()).First(&rec).Error; err != nil {
		return nil, err
	}
	return lending.RestoreFine(rec.ID, l, rec.FineValuePerDayInCents, rec.CentsValue)
}

// TotalCents sums every stored fine.
func (r *Repository) TotalCents() (int64, error) {
	var total int64
	err := r.db.Model(&entities.FineRecord{}).Select("COALESCE(SUM(cents_value), 0)").Scan(&total).Error
	return total, err
}
