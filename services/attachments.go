package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"procurement-receipt-api/models"
)

// AttachmentService manages evidence files. Rows change only while the
// owning document is in draft; blobs live under storageDir with
// generated names so uploads can never collide or traverse paths.
type AttachmentService struct {
	db         *gorm.DB
	storageDir string
	hist       *HistoryService
	log        *logrus.Logger
}

func NewAttachmentService(db *gorm.DB, storageDir string, hist *HistoryService, log *logrus.Logger) *AttachmentService {
	return &AttachmentService{db: db, storageDir: storageDir, hist: hist, log: log}
}

// documentHead is the slice of a receipt row that attachment and
// transition guards need.
type documentHead struct {
	ID       int
	Number   string
	VendorID int
	Status   string
}

// loadDocumentHead reads ownership and status for either kind, with a
// row lock when the caller runs inside a transaction that will mutate
// the document.
func loadDocumentHead(tx *gorm.DB, kind DocumentKind, documentID int, forUpdate bool) (*documentHead, *Error) {
	var head documentHead
	query := tx.Table(documentTable(kind)).Select("id, number, vendor_id, status")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := query.Where("id = ?", documentID).Take(&head).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NotFound("document not found")
	}
	if err != nil {
		return nil, Unavailable("failed to load document", err)
	}
	return &head, nil
}

func documentTable(kind DocumentKind) string {
	if kind == KindWorkReceipt {
		return models.WorkReceipt{}.TableName()
	}
	return models.GoodsReceipt{}.TableName()
}

// List returns the attachments of one document, oldest first.
func (s *AttachmentService) List(kind DocumentKind, documentID int) ([]models.Attachment, *Error) {
	var rows []models.Attachment
	err := s.db.
		Where("document_kind = ? AND document_id = ?", string(kind), documentID).
		Order("uploaded_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, Unavailable("failed to load attachments", err)
	}
	return rows, nil
}

// Get returns one attachment by id.
func (s *AttachmentService) Get(attachmentID int) (*models.Attachment, *Error) {
	var row models.Attachment
	err := s.db.Take(&row, attachmentID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, NotFound("attachment not found")
	}
	if err != nil {
		return nil, Unavailable("failed to load attachment", err)
	}
	return &row, nil
}

// FilePath resolves the on-disk location of an attachment blob.
func (s *AttachmentService) FilePath(a *models.Attachment) string {
	return filepath.Join(s.storageDir, a.StoredName)
}

// Upload describes one already-stored file to register.
type Upload struct {
	OriginalName string
	StoredName   string
	MimeType     string
	Size         int64
	Caption      string
}

// Add registers uploaded files against a draft document owned by the
// acting vendor. Rows and the history entry land in one transaction.
func (s *AttachmentService) Add(kind DocumentKind, documentID int, actor Actor, uploads []Upload) ([]models.Attachment, *Error) {
	if actor.Role != models.RoleVendor {
		return nil, Forbidden("only the vendor may manage attachments")
	}
	if len(uploads) == 0 {
		return nil, ValidationFailed("no files provided")
	}

	var saved []models.Attachment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		head, herr := loadDocumentHead(tx, kind, documentID, true)
		if herr != nil {
			return herr
		}
		if head.VendorID != actor.ID {
			return Forbidden("document belongs to another vendor")
		}
		if head.Status != StatusDraft {
			return InvalidState("attachments can only change while the document is in draft")
		}

		for _, up := range uploads {
			row := models.Attachment{
				DocumentKind: string(kind),
				DocumentID:   documentID,
				OriginalName: up.OriginalName,
				StoredName:   up.StoredName,
				MimeType:     up.MimeType,
				Size:         up.Size,
				Caption:      up.Caption,
				UploaderID:   actor.ID,
				UploaderName: actor.DisplayName(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return Unavailable("failed to save attachment", err)
			}
			saved = append(saved, row)
		}

		status := head.Status
		return s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: string(kind),
			DocumentID:   documentID,
			ActorRole:    actor.Role,
			ActorID:      actor.ID,
			ActorName:    actor.DisplayName(),
			Action:       models.ActionUploadAttachment,
			Note:         fmt.Sprintf("uploaded %d attachment(s) to %s", len(uploads), head.Number),
			StatusBefore: &status,
			StatusAfter:  head.Status,
		})
	})
	if err != nil {
		return nil, AsError(err)
	}
	return saved, nil
}

// Remove deletes one attachment row and its history entry, then the
// blob. A blob that cannot be removed is logged and leaked rather than
// failing the already-committed row deletion.
func (s *AttachmentService) Remove(actor Actor, attachmentID int) *Error {
	if actor.Role != models.RoleVendor {
		return Forbidden("only the vendor may manage attachments")
	}

	var stored string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var row models.Attachment
		err := tx.Take(&row, attachmentID).Error
		if err == gorm.ErrRecordNotFound {
			return NotFound("attachment not found")
		}
		if err != nil {
			return Unavailable("failed to load attachment", err)
		}
		stored = row.StoredName

		kind, kerr := ParseDocumentKind(row.DocumentKind)
		if kerr != nil {
			return Unavailable("attachment references an unknown document kind", kerr)
		}
		head, herr := loadDocumentHead(tx, kind, row.DocumentID, true)
		if herr != nil {
			return herr
		}
		if head.VendorID != actor.ID {
			return Forbidden("document belongs to another vendor")
		}
		if head.Status != StatusDraft {
			return InvalidState("attachments can only change while the document is in draft")
		}

		if err := tx.Delete(&models.Attachment{}, row.ID).Error; err != nil {
			return Unavailable("failed to delete attachment", err)
		}

		status := head.Status
		return s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: row.DocumentKind,
			DocumentID:   row.DocumentID,
			ActorRole:    actor.Role,
			ActorID:      actor.ID,
			ActorName:    actor.DisplayName(),
			Action:       models.ActionDeleteAttachment,
			Note:         fmt.Sprintf("removed attachment %s from %s", row.OriginalName, head.Number),
			StatusBefore: &status,
			StatusAfter:  head.Status,
		})
	})
	if err != nil {
		return AsError(err)
	}

	if rmErr := os.Remove(filepath.Join(s.storageDir, stored)); rmErr != nil && !os.IsNotExist(rmErr) {
		s.log.WithError(rmErr).WithField("file", stored).Warn("attachment blob not removed")
	}
	return nil
}

// removeBlobs deletes the stored files of already-deleted attachment
// rows. Used by document deletion after its transaction commits.
func (s *AttachmentService) removeBlobs(rows []models.Attachment) {
	for _, row := range rows {
		if err := os.Remove(filepath.Join(s.storageDir, row.StoredName)); err != nil && !os.IsNotExist(err) {
			s.log.WithError(err).WithField("file", row.StoredName).Warn("attachment blob not removed")
		}
	}
}

// Count returns the attachment count of one document, used by the
// submit gate.
func countAttachments(tx *gorm.DB, kind DocumentKind, documentID int) (int64, *Error) {
	var n int64
	err := tx.Model(&models.Attachment{}).
		Where("document_kind = ? AND document_id = ?", string(kind), documentID).
		Count(&n).Error
	if err != nil {
		return 0, Unavailable("failed to count attachments", err)
	}
	return n, nil
}
