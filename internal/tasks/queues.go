package tasks

import (
	"errors"
	"time"

	"github.com/mikestefanello/backlite"
)

// ErrNotConfigured is returned by a processor built without its collaborator.
var ErrNotConfigured = errors.New("task dependency not configured")

// queueSpec describes one backlite queue. Finished tasks are kept for keep,
// with their payload only when they failed, so a broken run can be inspected
// through /api/tasks/:id.
type queueSpec struct {
	name     string
	attempts int
	backoff  time.Duration
	timeout  time.Duration
	keep     time.Duration
}

func (q queueSpec) config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        q.name,
		MaxAttempts: q.attempts,
		Backoff:     q.backoff,
		Timeout:     q.timeout,
		Retention: &backlite.Retention{
			Duration: q.keep,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

var (
	overdueReportQueue = queueSpec{
		name:     "overdue_report",
		attempts: 3,
		backoff:  time.Minute,
		timeout:  5 * time.Minute,
		keep:     7 * 24 * time.Hour,
	}
	auditRetentionQueue = queueSpec{
		name:     "cleanup_audit_events",
		attempts: 3,
		backoff:  5 * time.Minute,
		timeout:  2 * time.Minute,
		keep:     24 * time.Hour,
	}
)
