package readers

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

func (r *Repository) Create(reader *entities.Reader) error {
	return r.db.Create(reader).Error
}

// GetByReaderNumber returns gorm.ErrRecordNotFound for an unknown number.
func (r *Repository) GetByReaderNumber(readerNumber string) (*entities.Reader, error) {
	var reader entities.Reader
	err := r.db.Where("reader_number = ?", readerNumber).First(&reader).Error
	if err != nil {
		return nil, err
	}
	return &reader, nil
}

// GetOrCreate returns the reader with the same number, creating it when absent.
func (r *Repository) GetOrCreate(reader *entities.Reader) (*entities.Reader, error) {
	err := r.db.Where("reader_number = ?", reader.ReaderNumber).FirstOrCreate(reader).Error
	if err != nil {
		return nil, err
	}
	return reader, nil
}
