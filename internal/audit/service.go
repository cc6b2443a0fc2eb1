package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/lending"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Error().Err(err).Str("action", event.Action).Msg("Failed to log audit event")
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogIssued records a new lending.
func (s *Service) LogIssued(correlationID string, l *lending.Lending) {
	id := l.ID()
	s.LogAsync(&entities.AuditEvent{
		CorrelationID: correlationID,
		EventType:     entities.AuditEventLendingIssued,
		Action:        "lending_create",
		Description:   fmt.Sprintf("Lent %q to reader %s until %s", l.Title(), l.Reader().BorrowerNumber(), l.LimitDate().Format(time.DateOnly)),
		EntityType:    "lending",
		EntityID:      &id,
		EntityKey:     l.LendingNumber(),
		Metadata: metadata(map[string]any{
			"title":                       l.Title(),
			"reader_number":               l.Reader().BorrowerNumber(),
			"duration_days":               l.DurationDays(),
			"fine_value_per_day_in_cents": l.FineValuePerDayInCents(),
		}),
		Status: entities.AuditStatusSuccess,
	})
}

// LogReturned records a return and, when the lending was late, its fine.
func (s *Service) LogReturned(correlationID string, l *lending.Lending, fine *lending.Fine) {
	id := l.ID()
	s.LogAsync(&entities.AuditEvent{
		CorrelationID: correlationID,
		EventType:     entities.AuditEventLendingReturned,
		Action:        "lending_return",
		Description:   fmt.Sprintf("Reader %s returned %q", l.Reader().BorrowerNumber(), l.Title()),
		EntityType:    "lending",
		EntityID:      &id,
		EntityKey:     l.LendingNumber(),
		Metadata: metadata(map[string]any{
			"days_delayed": l.DaysDelayed(),
			"version":      l.Version(),
		}),
		Status: entities.AuditStatusSuccess,
	})

	if fine == nil {
		return
	}
	fineID := fine.ID()
	s.LogAsync(&entities.AuditEvent{
		CorrelationID: correlationID,
		EventType:     entities.AuditEventFineAssessed,
		Action:        "fine_create",
		Description:   fmt.Sprintf("Fined reader %s %d cents for lending %s", l.Reader().BorrowerNumber(), fine.CentsValue(), l.LendingNumber()),
		EntityType:    "fine",
		EntityID:      &fineID,
		EntityKey:     l.LendingNumber(),
		Metadata: metadata(map[string]any{
			"cents_value":                 fine.CentsValue(),
			"fine_value_per_day_in_cents": fine.FineValuePerDayInCents(),
		}),
		Status: entities.AuditStatusSuccess,
	})
}

// LogRejected records a lending refused by the borrowing policy.
func (s *Service) LogRejected(correlationID, readerNumber, isbn string, reason error) {
	event := &entities.AuditEvent{
		CorrelationID: correlationID,
		EventType:     entities.AuditEventLendingRejected,
		Action:        "lending_create",
		Description:   fmt.Sprintf("Refused lending of %s to reader %s", isbn, readerNumber),
		EntityType:    "reader",
		EntityKey:     readerNumber,
		Metadata:      metadata(map[string]any{"isbn": isbn}),
		Status:        entities.AuditStatusFailed,
	}
	if reason != nil {
		event.ErrorMsg = truncate(reason.Error(), 500)
	}
	s.LogAsync(event)
}

// LogDeleted records the removal of a lending.
func (s *Service) LogDeleted(correlationID, lendingNumber string) {
	s.LogAsync(&entities.AuditEvent{
		CorrelationID: correlationID,
		EventType:     entities.AuditEventLendingDeleted,
		Action:        "lending_delete",
		Description:   "Deleted lending " + lendingNumber,
		EntityType:    "lending",
		EntityKey:     lendingNumber,
		Status:        entities.AuditStatusSuccess,
	})
}

// LogOverdueReport records one run of the overdue report.
func (s *Service) LogOverdueReport(runID string, overdue int, projectedCents int64, err error) {
	event := &entities.AuditEvent{
		CorrelationID: runID,
		EventType:     entities.AuditEventOverdueReport,
		Action:        "overdue_report",
		Description:   fmt.Sprintf("%d overdue lendings, %d cents in projected fines", overdue, projectedCents),
		Metadata: metadata(map[string]any{
			"overdue_count":   overdue,
			"projected_cents": projectedCents,
		}),
		Status: entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

// LogImport records a bootstrap import.
func (s *Service) LogImport(description string, lendingsCount, finesCount int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      "bootstrap_import",
		Description: description,
		EntityType:  "lending",
		Metadata: metadata(map[string]any{
			"lendings_count": lendingsCount,
			"fines_count":    finesCount,
		}),
		Status: entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(entityKey string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(entityKey, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, entityKey string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, entityKey, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

func metadata(fields map[string]any) string {
	b, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
