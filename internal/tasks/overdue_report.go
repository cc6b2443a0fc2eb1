package tasks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librarian/internal/services"
)

// OverdueReporter produces the current overdue report.
type OverdueReporter interface {
	OverdueReport() (services.OverdueReport, error)
}

// OverdueReportAuditor records the outcome of a report run.
type OverdueReportAuditor interface {
	LogOverdueReport(runID string, overdue int, projectedCents int64, err error)
}

// OverdueReportTask computes the overdue report and logs every entry.
type OverdueReportTask struct {
	RunID string `json:"run_id"`
}

func (t OverdueReportTask) Config() backlite.QueueConfig {
	return overdueReportQueue.config()
}

// OverdueReportProcessor builds the queue processor for OverdueReportTask.
// A nil auditor skips auditing.
func OverdueReportProcessor(reporter OverdueReporter, auditor OverdueReportAuditor) backlite.QueueProcessor[OverdueReportTask] {
	return func(ctx context.Context, task OverdueReportTask) error {
		if reporter == nil {
			return fmt.Errorf("%w: overdue reporter", ErrNotConfigured)
		}
		runID := task.RunID
		if runID == "" {
			runID = uuid.NewString()
		}

		report, err := reporter.OverdueReport()
		if auditor != nil {
			auditor.LogOverdueReport(runID, len(report.Entries), report.TotalProjectedCents, err)
		}
		if err != nil {
			return fmt.Errorf("overdue report %s: %w", runID, err)
		}

		for _, e := range report.Entries {
			log.Warn().
				Str("run_id", runID).
				Str("lending_number", e.LendingNumber).
				Str("reader_number", e.ReaderNumber).
				Str("title", e.Title).
				Int("days_overdue", e.DaysOverdue).
				Int("projected_fine_cents", e.ProjectedFineCents).
				Msg("Lending overdue")
		}
		log.Info().
			Str("run_id", runID).
			Int("overdue", len(report.Entries)).
			Str("projected_total", report.TotalProjected().StringFixed(2)).
			Msg("Overdue report finished")
		return nil
	}
}

func NewOverdueReportQueue(reporter OverdueReporter, auditor OverdueReportAuditor) backlite.Queue {
	return backlite.NewQueue(OverdueReportProcessor(reporter, auditor))
}
