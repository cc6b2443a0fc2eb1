package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarian/internal/services"
)

type fakeCleaner struct {
	retention time.Duration
	deleted   int64
	err       error
}

func (f *fakeCleaner) DeleteOldEvents(retention time.Duration) (int64, error) {
	f.retention = retention
	return f.deleted, f.err
}

type fakeReporter struct {
	report services.OverdueReport
	err    error
}

func (f fakeReporter) OverdueReport() (services.OverdueReport, error) {
	return f.report, f.err
}

type reportRun struct {
	runID          string
	overdue        int
	projectedCents int64
	err            error
}

type fakeReportAuditor struct {
	runs []reportRun
}

func (f *fakeReportAuditor) LogOverdueReport(runID string, overdue int, projectedCents int64, err error) {
	f.runs = append(f.runs, reportRun{runID, overdue, projectedCents, err})
}

func TestCleanupAuditEventsTaskConfig(t *testing.T) {
	cfg := CleanupAuditEventsTask{}.Config()

	assert.Equal(t, "cleanup_audit_events", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Backoff)
	require.NotNil(t, cfg.Retention)
	assert.Equal(t, 24*time.Hour, cfg.Retention.Duration)
	require.NotNil(t, cfg.Retention.Data)
	assert.True(t, cfg.Retention.Data.OnlyFailed)
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	tests := []struct {
		name          string
		retentionDays int
		want          time.Duration
	}{
		{"explicit retention", 7, 7 * 24 * time.Hour},
		{"zero falls back to default", 0, 30 * 24 * time.Hour},
		{"negative falls back to default", -1, 30 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaner := &fakeCleaner{deleted: 4}
			process := CleanupAuditEventsProcessor(cleaner)

			require.NoError(t, process(context.Background(), CleanupAuditEventsTask{RetentionDays: tt.retentionDays}))
			assert.Equal(t, tt.want, cleaner.retention)
		})
	}
}

func TestCleanupAuditEventsProcessor_Errors(t *testing.T) {
	err := CleanupAuditEventsProcessor(nil)(context.Background(), CleanupAuditEventsTask{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	boom := errors.New("disk full")
	err = CleanupAuditEventsProcessor(&fakeCleaner{err: boom})(context.Background(), CleanupAuditEventsTask{})
	assert.ErrorIs(t, err, boom)
}

func TestOverdueReportTaskConfig(t *testing.T) {
	cfg := OverdueReportTask{}.Config()

	assert.Equal(t, "overdue_report", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	require.NotNil(t, cfg.Retention)
	assert.Equal(t, 7*24*time.Hour, cfg.Retention.Duration)
}

func TestOverdueReportProcessor(t *testing.T) {
	report := services.OverdueReport{
		GeneratedOn: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Entries: []services.OverdueEntry{
			{LendingNumber: "2024/1", ReaderNumber: "2024/7", Title: "SICP", DaysOverdue: 3, ProjectedFineCents: 150},
			{LendingNumber: "2024/2", ReaderNumber: "2024/8", Title: "TAOCP", DaysOverdue: 1, ProjectedFineCents: 50},
		},
		TotalProjectedCents: 200,
	}
	auditor := &fakeReportAuditor{}
	process := OverdueReportProcessor(fakeReporter{report: report}, auditor)

	require.NoError(t, process(context.Background(), OverdueReportTask{RunID: "run-1"}))

	require.Len(t, auditor.runs, 1)
	assert.Equal(t, reportRun{"run-1", 2, 200, nil}, auditor.runs[0])
}

func TestOverdueReportProcessor_GeneratesRunID(t *testing.T) {
	auditor := &fakeReportAuditor{}
	process := OverdueReportProcessor(fakeReporter{}, auditor)

	require.NoError(t, process(context.Background(), OverdueReportTask{}))

	require.Len(t, auditor.runs, 1)
	assert.NotEmpty(t, auditor.runs[0].runID)
}

func TestOverdueReportProcessor_Failure(t *testing.T) {
	boom := errors.New("database locked")
	auditor := &fakeReportAuditor{}
	process := OverdueReportProcessor(fakeReporter{err: boom}, auditor)

	err := process(context.Background(), OverdueReportTask{RunID: "run-2"})

	assert.ErrorIs(t, err, boom)
	require.Len(t, auditor.runs, 1)
	assert.ErrorIs(t, auditor.runs[0].err, boom)
}

func TestOverdueReportProcessor_NilAuditor(t *testing.T) {
	process := OverdueReportProcessor(fakeReporter{}, nil)
	assert.NoError(t, process(context.Background(), OverdueReportTask{}))

	assert.ErrorIs(t, OverdueReportProcessor(nil, nil)(context.Background(), OverdueReportTask{}), ErrNotConfigured)
}

func TestInline(t *testing.T) {
	auditor := &fakeReportAuditor{}
	cleaner := &fakeCleaner{}
	inline := Inline{Reporter: fakeReporter{}, Auditor: auditor, Cleaner: cleaner}

	require.NoError(t, inline.EnqueueOverdueReport("inline-1"))
	require.NoError(t, inline.EnqueueAuditCleanup(10))

	require.Len(t, auditor.runs, 1)
	assert.Equal(t, "inline-1", auditor.runs[0].runID)
	assert.Equal(t, 10*24*time.Hour, cleaner.retention)
}
