package http

// RouterConfig carries the dependencies of NewRouter. Optional fields may be
// nil; their routes are then not registered.
type RouterConfig struct {
	Version  string
	Database Pinger

	Lendings LendingOperations

	// Overdue reporting
	Reporter     OverdueReporter
	ReportRunner ReportRunner
	TaskStatus   TaskStatusReader

	Audit AuditReader
}
