// Package books provides catalog look-ups for the lending service.
//
// # Interface Implementation
//
//	var _ services.BookFinder = (*Repository)(nil)
package books

import (
	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new book. The identifier is assigned on insert.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// GetByISBN returns gorm.ErrRecordNotFound when no book carries the ISBN.
func (r *Repository) GetByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetOrCreate returns the book with the same ISBN, creating it when absent.
func (r *Repository) GetOrCreate(book *entities.Book) (*entities.Book, error) {
	err := r.db.Where("isbn = ?", book.ISBN).FirstOrCreate(book).Error
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}
