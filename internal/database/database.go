package database

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/mrlokans/librarian/internal/entities"
)

const memoryPath = ":memory:"

// IDSource hands out primary keys for new rows.
type IDSource interface {
	Next() int64
}

type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the SQLite database at dbPath, migrates the schema and
// installs the identifier assignment hook backed by ids.
func NewDatabase(dbPath string, ids IDSource) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dbPath == memoryPath {
		// every pooled connection to :memory: would see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := RegisterIDAssignment(db, ids); err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&entities.Book{},
		&entities.Reader{},
		&entities.LendingRecord{},
		&entities.FineRecord{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("Database initialized")

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_foreign_keys=1&_busy_timeout=5000"
}

// RegisterIDAssignment installs a create callback that fills a zero int64
// primary key from ids before the row is inserted.
func RegisterIDAssignment(db *gorm.DB, ids IDSource) error {
	if ids == nil {
		return fmt.Errorf("identifier source is required")
	}
	err := db.Callback().Create().Before("gorm:create").Register("librarian:assign_id", func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement.Schema == nil {
			return
		}
		field := tx.Statement.Schema.PrioritizedPrimaryField
		if field == nil || field.FieldType.Kind() != reflect.Int64 {
			return
		}

		ctx := tx.Statement.Context
		rv := tx.Statement.ReflectValue
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				assignID(ctx, tx, field, reflect.Indirect(rv.Index(i)), ids)
			}
		case reflect.Struct:
			assignID(ctx, tx, field, rv, ids)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register id callback: %w", err)
	}
	return nil
}

func assignID(ctx context.Context, tx *gorm.DB, field *schema.Field, rv reflect.Value, ids IDSource) {
	if _, zero := field.ValueOf(ctx, rv); !zero {
		return
	}
	if err := field.Set(ctx, rv, ids.Next()); err != nil {
		tx.AddError(err)
	}
}
