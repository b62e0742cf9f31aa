package entities

import "time"

type AuditEventType string

const (
	AuditEventAdd      AuditEventType = "add"
	AuditEventLoan     AuditEventType = "loan"
	AuditEventReturn   AuditEventType = "return"
	AuditEventReminder AuditEventType = "reminder"
	AuditEventExport   AuditEventType = "export"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one recorded change to the catalog. Events written by the
// same workflow run share a BatchID.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BatchID     string         `gorm:"index;size:36" json:"batch_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "book_add", "book_loan"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	Title       string         `gorm:"index;size:255" json:"title,omitempty"`
	Borrower    string         `gorm:"size:255" json:"borrower,omitempty"`
	DueAt       *time.Time     `json:"due_at,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
