package tasks

import "context"

// EnqueueOverdueReport queues an overdue report run.
func (c *Client) EnqueueOverdueReport(runID string) error {
	_, err := c.client.Add(OverdueReportTask{RunID: runID}).Save()
	return err
}

// EnqueueAuditCleanup queues removal of audit events older than retentionDays.
func (c *Client) EnqueueAuditCleanup(retentionDays int) error {
	_, err := c.client.Add(CleanupAuditEventsTask{RetentionDays: retentionDays}).Save()
	return err
}

// Inline runs jobs synchronously in the caller's goroutine. It stands in for
// the queue when background tasks are disabled.
type Inline struct {
	Reporter OverdueReporter
	Auditor  OverdueReportAuditor
	Cleaner  AuditEventCleaner
}

func (i Inline) EnqueueOverdueReport(runID string) error {
	return OverdueReportProcessor(i.Reporter, i.Auditor)(context.Background(), OverdueReportTask{RunID: runID})
}

func (i Inline) EnqueueAuditCleanup(retentionDays int) error {
	return CleanupAuditEventsProcessor(i.Cleaner)(context.Background(), CleanupAuditEventsTask{RetentionDays: retentionDays})
}
