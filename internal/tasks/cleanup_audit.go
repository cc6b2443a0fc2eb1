package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"
)

// DefaultAuditRetentionDays applies when a cleanup task carries no window.
const DefaultAuditRetentionDays = 30

// AuditEventCleaner prunes the lending audit trail.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupAuditEventsTask prunes issue, return, fine and report events older
// than RetentionDays.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return auditRetentionQueue.config()
}

func (t CleanupAuditEventsTask) window() (days int, retention time.Duration) {
	days = t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return days, time.Duration(days) * 24 * time.Hour
}

func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(_ context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("%w: audit event cleaner", ErrNotConfigured)
		}

		days, retention := task.window()
		pruned, err := cleaner.DeleteOldEvents(retention)
		if err != nil {
			return fmt.Errorf("prune audit trail older than %d days: %w", days, err)
		}

		log.Info().
			Str("queue", auditRetentionQueue.name).
			Int64("pruned", pruned).
			Int("retention_days", days).
			Msg("Audit trail pruned")
		return nil
	}
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}
