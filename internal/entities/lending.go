package entities

import "time"

// LendingRecord is the stored form of a lending.Lending.
type LendingRecord struct {
	ID            int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	LendingNumber string `gorm:"uniqueIndex;size:32" json:"lending_number"`
	Year          int    `gorm:"index:idx_lending_year_seq" json:"year"`
	Sequence      int    `gorm:"index:idx_lending_year_seq" json:"sequence"`

	BookID   int64  `gorm:"index" json:"book_id"`
	Book     Book   `gorm:"foreignKey:BookID" json:"book"`
	ReaderID int64  `gorm:"index" json:"reader_id"`
	Reader   Reader `gorm:"foreignKey:ReaderID" json:"reader"`

	StartDate    time.Time  `gorm:"index" json:"start_date"`
	LimitDate    time.Time  `gorm:"index" json:"limit_date"`
	ReturnedDate *time.Time `gorm:"index" json:"returned_date,omitempty"`
	Commentary   string     `gorm:"size:1024" json:"commentary,omitempty"`

	FineValuePerDayInCents int   `json:"fine_value_per_day_in_cents"`
	Version                int64 `gorm:"not null;default:0" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LendingRecord) TableName() string {
	return "lendings"
}

// FineRecord is the stored form of a lending.Fine. It lives and dies with its lending.
type FineRecord struct {
	ID                     int64         `gorm:"primaryKey;autoIncrement:false" json:"id"`
	LendingID              int64         `gorm:"uniqueIndex" json:"lending_id"`
	Lending                LendingRecord `gorm:"foreignKey:LendingID;constraint:OnDelete:CASCADE" json:"-"`
	FineValuePerDayInCents int           `json:"fine_value_per_day_in_cents"`
	CentsValue             int           `json:"cents_value"`
	CreatedAt              time.Time     `json:"created_at"`
}

func (FineRecord) TableName() string {
	return "fines"
}
