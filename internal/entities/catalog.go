package entities

import "time"

// Book is a lendable title held by the library.
type Book struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ISBN        string    `gorm:"uniqueIndex;size:20" json:"isbn"`
	Title       string    `gorm:"index;size:512" json:"title"`
	Author      string    `gorm:"size:256" json:"author,omitempty"`
	Genre       string    `gorm:"size:100" json:"genre,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// LendableID and DisplayTitle expose the book to the lending domain.
func (b *Book) LendableID() int64    { return b.ID }
func (b *Book) DisplayTitle() string { return b.Title }

// Reader is a registered borrower. ReaderNumber has the form "{year}/{sequence}".
type Reader struct {
	ID           int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ReaderNumber string    `gorm:"uniqueIndex;size:20" json:"reader_number"`
	Name         string    `gorm:"size:256" json:"name"`
	Email        string    `gorm:"index;size:255" json:"email,omitempty"`
	PhoneNumber  string    `gorm:"size:32" json:"phone_number,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Reader) TableName() string {
	return "readers"
}

func (r *Reader) BorrowerID() int64      { return r.ID }
func (r *Reader) BorrowerNumber() string { return r.ReaderNumber }
