package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/clock"
	"github.com/mrlokans/librarian/internal/database"
	dbaudit "github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/database/fines"
	"github.com/mrlokans/librarian/internal/database/lendings"
	"github.com/mrlokans/librarian/internal/database/readers"
	"github.com/mrlokans/librarian/internal/idgen"
)

// store bundles the repositories a command works with.
type store struct {
	db       *database.Database
	books    *books.Repository
	readers  *readers.Repository
	lendings *lendings.Repository
	fines    *fines.Repository
	audit    *audit.Service
}

func openStore(dbPath, strategyName string, c clock.Clock) (*store, error) {
	strategy, err := idgen.ParseStrategy(strategyName)
	if err != nil {
		return nil, err
	}

	absDBPath := dbPath
	if dbPath != ":memory:" {
		if absDBPath, err = filepath.Abs(dbPath); err != nil {
			return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
		}
	}

	db, err := database.NewDatabase(absDBPath, idgen.NewAllocator(strategy))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &store{
		db:       db,
		books:    books.NewRepository(db.DB),
		readers:  readers.NewRepository(db.DB),
		lendings: lendings.NewRepository(db.DB, c),
		fines:    fines.NewRepository(db.DB),
		audit:    audit.NewService(dbaudit.NewRepository(db.DB)),
	}, nil
}

// Close flushes pending audit writes before closing the database.
func (s *store) Close() error {
	s.audit.Wait()
	return s.db.Close()
}
