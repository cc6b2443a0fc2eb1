package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/shopspring/decimal"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/lending"
	"github.com/mrlokans/librarian/internal/services"
)

// Each controller depends on the narrow slice of the service layer it calls.

// LendingOperations is the lending surface exposed over HTTP.
type LendingOperations interface {
	Create(req services.CreateLendingRequest) (*lending.Lending, error)
	SetReturned(lendingNumber string, expectedVersion int64, commentary string) (*lending.Lending, *lending.Fine, error)
	FindByLendingNumber(lendingNumber string) (*lending.Lending, error)
	ListByReaderNumberAndISBN(readerNumber, isbn string, returned *bool) ([]*lending.Lending, error)
	AverageDuration() (decimal.Decimal, error)
	AverageDurationByISBN(isbn string) (decimal.Decimal, error)
	Overdue(page services.Page) (services.PageResult, error)
	Search(page services.Page, query services.SearchQuery) (services.PageResult, error)
	FineFor(lendingNumber string) (*lending.Fine, error)
	Delete(lendingNumber string) error
}

// OverdueReporter computes the overdue report on demand.
type OverdueReporter interface {
	OverdueReport() (services.OverdueReport, error)
}

// ReportRunner dispatches an asynchronous report run.
type ReportRunner interface {
	RunNow() (string, error)
	NextRunTime() *time.Time
}

// TaskStatusReader looks up queued task state.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// AuditReader lists recorded audit events.
type AuditReader interface {
	GetEvents(entityKey string, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, entityKey string, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// Pinger reports storage connectivity.
type Pinger interface {
	Ping() error
}
