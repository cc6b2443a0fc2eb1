// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, id assignment hook
//	├── books/           # Catalog look-ups by ISBN
//	├── readers/         # Reader look-ups by reader number
//	├── lendings/        # Lending persistence, version checked returns, statistics
//	├── fines/           # Fine snapshots
//	└── audit/           # Audit trail
//
// # Identifiers
//
// Rows are never numbered by SQLite. NewDatabase registers a create callback
// that takes the next value from the injected IDSource (an *idgen.Allocator in
// production) whenever a model is created with a zero primary key:
//
//	ids := idgen.NewAllocator(idgen.CounterPrefixed)
//	db, err := database.NewDatabase("./librarian.db", ids)
//
//	lendingsRepo := lendings.NewRepository(db.DB, clock.System{})
//	err = lendingsRepo.Create(l) // l.ID() is now set
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the store interface declared in internal/services
//  5. Add compile-time interface check in internal/interfaces/checks.go
package database
