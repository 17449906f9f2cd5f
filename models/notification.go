package models

import "time"

// Notification types.
const (
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationError   = "error"
)

// Notification is one in-app message addressed to a single account.
// Recipient identity is (RecipientRole, RecipientID) because the three
// role tables have independent id sequences.
type Notification struct {
	ID            int       `gorm:"primaryKey;column:id" json:"id"`
	RecipientID   int       `gorm:"column:recipient_id;index:idx_notifications_recipient" json:"-"`
	RecipientRole string    `gorm:"column:recipient_role;index:idx_notifications_recipient" json:"-"`
	Title         string    `gorm:"column:title" json:"title"`
	Description   string    `gorm:"column:description" json:"message"`
	Type          string    `gorm:"column:notification_type" json:"type"`
	DocumentKind  *string   `gorm:"column:document_kind" json:"document_type,omitempty"`
	DocumentID    *int      `gorm:"column:document_id" json:"document_id,omitempty"`
	IsRead        bool      `gorm:"column:is_read" json:"is_read"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
