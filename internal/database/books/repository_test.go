package books

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/idgen"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.NewDatabase(":memory:", idgen.NewAllocator(idgen.CounterPrefixed))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.DB
}

func TestRepository_CreateAndGetByISBN(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	book := &entities.Book{ISBN: "9780262033848", Title: "Introduction to Algorithms", Author: "Cormen"}
	require.NoError(t, repo.Create(book))
	assert.NotZero(t, book.ID)

	found, err := repo.GetByISBN("9780262033848")
	require.NoError(t, err)
	assert.Equal(t, book.ID, found.ID)
	assert.Equal(t, "Introduction to Algorithms", found.DisplayTitle())
	assert.Equal(t, book.ID, found.LendableID())
}

func TestRepository_GetByISBN_NotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	found, err := repo.GetByISBN("0000000000")

	assert.Nil(t, found)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_Create_DuplicateISBN(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Create(&entities.Book{ISBN: "9780132350884", Title: "Clean Code"}))
	assert.Error(t, repo.Create(&entities.Book{ISBN: "9780132350884", Title: "Clean Code, again"}))
}

func TestRepository_GetOrCreate(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	first, err := repo.GetOrCreate(&entities.Book{ISBN: "9780596007126", Title: "Head First Design Patterns"})
	require.NoError(t, err)

	second, err := repo.GetOrCreate(&entities.Book{ISBN: "9780596007126", Title: "ignored"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Head First Design Patterns", second.Title)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
