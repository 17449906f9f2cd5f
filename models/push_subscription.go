package models

import "time"

// PushSubscription is one Web Push endpoint registered by an account.
// Endpoint is unique per recipient; a permanently-gone endpoint (HTTP 410)
// is pruned by the push sender.
type PushSubscription struct {
	ID            int       `gorm:"primaryKey;column:id" json:"id"`
	RecipientID   int       `gorm:"column:recipient_id;uniqueIndex:idx_push_endpoint" json:"recipient_id"`
	RecipientRole string    `gorm:"column:recipient_role;uniqueIndex:idx_push_endpoint" json:"recipient_role"`
	Endpoint      string    `gorm:"column:endpoint;uniqueIndex:idx_push_endpoint,length:255" json:"endpoint"`
	Subscription  string    `gorm:"column:subscription" json:"subscription"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

func (PushSubscription) TableName() string { return "push_subscriptions" }
