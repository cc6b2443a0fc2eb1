// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Domain Interfaces
//
//   - lending.Book, lending.Reader: what the lending state machine needs from
//     catalog entities (internal/lending/lending.go)
//   - lending.Versioned: optimistic version carried by mutable aggregates
//     (internal/lending/version.go)
//   - clock.Clock: calendar-date source for every date-dependent rule
//     (internal/clock/clock.go)
//
// ## Data Access Interfaces
//
//   - database.IDSource: primary keys for new rows (internal/database/database.go)
//   - BookFinder, ReaderFinder, LendingStore, FineReader
//     (internal/services/interfaces.go)
//
// ## HTTP Interfaces
//
//   - LendingOperations, OverdueReporter, ReportRunner, TaskStatusReader,
//     AuditReader, Pinger (internal/http/interfaces.go)
//
// ## Background Work Interfaces
//
//   - scheduler.Dispatcher: queues or runs scheduled jobs (internal/scheduler/overdue.go)
//   - tasks.OverdueReporter, tasks.OverdueReportAuditor, tasks.AuditEventCleaner
//     (internal/tasks)
//
// # Adding a New Scheduled Job
//
//  1. Define the task and its processor in internal/tasks/:
//
//     type ReminderTask struct {
//         ReaderNumber string `json:"reader_number"`
//     }
//
//     func (t ReminderTask) Config() backlite.QueueConfig {
//         return backlite.QueueConfig{Name: "reminder", MaxAttempts: 3}
//     }
//
//  2. Register the queue in entrypoint.go and expose an Enqueue method on
//     tasks.Client and tasks.Inline.
//
//  3. Add the method to scheduler.Dispatcher and a cron entry in OverdueScheduler.
//
// # Adding a New Lending Store
//
//  1. Implement services.LendingStore. SaveReturn must compare the stored
//     version with expectedVersion and fail with lending.ErrStaleState.
//
//  2. Add a compile-time check:
//
//     var _ services.LendingStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
