package models

import "time"

// History actions. One row is appended per document event; rows are never
// updated and are removed only when a draft document is deleted.
const (
	ActionCreated          = "created"
	ActionUpdated          = "updated"
	ActionSubmitted        = "submitted"
	ActionReviewed         = "reviewed"
	ActionApproved         = "approved"
	ActionRejected         = "rejected"
	ActionUploadAttachment = "upload_attachment"
	ActionDeleteAttachment = "delete_attachment"
)

// HistoryEntry is one immutable audit row for a receipt document.
// StatusBefore is nil for the creation entry.
type HistoryEntry struct {
	ID           int       `gorm:"primaryKey;column:id" json:"id"`
	DocumentKind string    `gorm:"column:document_kind;index:idx_history_document" json:"document_kind"`
	DocumentID   int       `gorm:"column:document_id;index:idx_history_document" json:"document_id"`
	ActorRole    string    `gorm:"column:actor_role" json:"actor_role"`
	ActorID      int       `gorm:"column:actor_id" json:"actor_id"`
	ActorName    string    `gorm:"column:actor_name" json:"actor_name"`
	Action       string    `gorm:"column:action" json:"action"`
	Note         string    `gorm:"column:note" json:"note"`
	StatusBefore *string   `gorm:"column:status_before" json:"status_before"`
	StatusAfter  string    `gorm:"column:status_after" json:"status_after"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (HistoryEntry) TableName() string { return "document_history" }
