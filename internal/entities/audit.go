package entities

import "time"

type AuditEventType string

const (
	AuditEventLendingIssued   AuditEventType = "lending_issued"
	AuditEventLendingReturned AuditEventType = "lending_returned"
	AuditEventFineAssessed    AuditEventType = "fine_assessed"
	AuditEventLendingRejected AuditEventType = "lending_rejected"
	AuditEventLendingDeleted  AuditEventType = "lending_deleted"
	AuditEventOverdueReport   AuditEventType = "overdue_report"
	AuditEventImport          AuditEventType = "import"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID            int64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CorrelationID string         `gorm:"index;size:36" json:"correlation_id,omitempty"`
	EventType     AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action        string         `gorm:"size:100" json:"action"`      // e.g., "lending_create", "lending_return"
	Description   string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType    string         `gorm:"size:50" json:"entity_type"`  // "lending", "fine", "reader"
	EntityID      *int64         `gorm:"index" json:"entity_id,omitempty"`
	EntityKey     string         `gorm:"index;size:64" json:"entity_key,omitempty"` // lending or reader number
	Metadata      string         `gorm:"type:text" json:"metadata,omitempty"`       // JSON for extra data
	Status        AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg      string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
