package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/librarian/internal/audit"
	"github.com/mrlokans/librarian/internal/clock"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/database/books"
	"github.com/mrlokans/librarian/internal/database/fines"
	"github.com/mrlokans/librarian/internal/database/lendings"
	"github.com/mrlokans/librarian/internal/database/readers"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/http"
	"github.com/mrlokans/librarian/internal/idgen"
	"github.com/mrlokans/librarian/internal/lending"
	"github.com/mrlokans/librarian/internal/scheduler"
	"github.com/mrlokans/librarian/internal/services"
	"github.com/mrlokans/librarian/internal/tasks"
)

// =============================================================================
// Domain
// =============================================================================

var _ lending.Book = (*entities.Book)(nil)
var _ lending.Reader = (*entities.Reader)(nil)
var _ lending.Versioned = (*lending.Lending)(nil)

var _ clock.Clock = clock.System{}
var _ clock.Clock = (*clock.Fixed)(nil)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ database.IDSource = (*idgen.Allocator)(nil)

var _ services.BookFinder = (*books.Repository)(nil)
var _ services.ReaderFinder = (*readers.Repository)(nil)
var _ services.LendingStore = (*lendings.Repository)(nil)
var _ services.FineReader = (*fines.Repository)(nil)

// =============================================================================
// Services
// =============================================================================

var _ services.LendingAuditor = (*audit.Service)(nil)

var _ http.LendingOperations = (*services.LendingService)(nil)
var _ http.OverdueReporter = (*services.LendingService)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.OverdueReporter = (*services.LendingService)(nil)
var _ tasks.OverdueReportAuditor = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

var _ scheduler.Dispatcher = (*tasks.Client)(nil)
var _ scheduler.Dispatcher = tasks.Inline{}

var _ http.ReportRunner = (*scheduler.OverdueScheduler)(nil)
var _ http.TaskStatusReader = (*tasks.Client)(nil)
