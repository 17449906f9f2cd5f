package models

import "time"

// Attachment is one uploaded evidence file belonging to a receipt
// document. Rows may be added or removed only while the owning document
// is still in draft.
type Attachment struct {
	ID           int       `gorm:"primaryKey;column:id" json:"id"`
	DocumentKind string    `gorm:"column:document_kind;index:idx_attachments_document" json:"document_kind"`
	DocumentID   int       `gorm:"column:document_id;index:idx_attachments_document" json:"document_id"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	StoredName   string    `gorm:"column:stored_name" json:"-"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	Size         int64     `gorm:"column:size" json:"size"`
	Caption      string    `gorm:"column:caption" json:"caption"`
	UploaderID   int       `gorm:"column:uploader_id" json:"uploader_id"`
	UploaderName string    `gorm:"column:uploader_name" json:"uploader_name"`
	UploadedAt   time.Time `gorm:"column:uploaded_at;autoCreateTime" json:"uploaded_at"`
}

func (Attachment) TableName() string { return "attachments" }
