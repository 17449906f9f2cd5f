package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"procurement-receipt-api/models"
)

// WorkReceiptService implements the work-receipt ("bapp") workflow. The
// executive decides directly: approval and rejection are allowed from
// draft, submitted, or reviewed_pic, and the history row records the
// status the document actually left.
type WorkReceiptService struct {
	db          *gorm.DB
	hist        *HistoryService
	attachments *AttachmentService
	notify      *Dispatcher
	caps        *SchemaCapabilities
	validate    *validator.Validate
	log         *logrus.Logger
}

func NewWorkReceiptService(
	db *gorm.DB,
	hist *HistoryService,
	attachments *AttachmentService,
	notify *Dispatcher,
	caps *SchemaCapabilities,
	log *logrus.Logger,
) *WorkReceiptService {
	return &WorkReceiptService{
		db:          db,
		hist:        hist,
		attachments: attachments,
		notify:      notify,
		caps:        caps,
		validate:    validator.New(),
		log:         log,
	}
}

// WorkReceiptInput carries the vendor-editable fields.
type WorkReceiptInput struct {
	Number           string                `json:"number" validate:"required"`
	ContractNumber   string                `json:"contract_number" validate:"required"`
	ContractDate     time.Time             `json:"contract_date" validate:"required"`
	ContractValue    float64               `json:"contract_value" validate:"gte=0"`
	WorkLocation     string                `json:"work_location" validate:"required"`
	LineItems        []models.WorkLineItem `json:"line_items" validate:"required,min=1,dive"`
	InspectionResult string                `json:"inspection_result"`
	Note             *string               `json:"note"`
	Deadline         *time.Time            `json:"deadline"`
}

// WorkReceiptDetail is the full read model of one document.
type WorkReceiptDetail struct {
	models.WorkReceipt
	Attachments []models.Attachment   `json:"attachments"`
	History     []models.HistoryEntry `json:"history"`
}

func (s *WorkReceiptService) validateInput(in *WorkReceiptInput) *Error {
	if err := s.validate.Struct(in); err != nil {
		return ValidationFailed(validationMessage(err))
	}
	return nil
}

// List returns documents visible to the actor, optionally filtered by
// statuses and search text.
func (s *WorkReceiptService) List(actor Actor, q ListQuery) ([]models.WorkReceipt, Pagination, *Error) {
	q.Normalize()

	query := s.db.Model(&models.WorkReceipt{})
	if actor.Role == models.RoleVendor {
		query = query.Where("vendor_id = ?", actor.ID)
	}
	if len(q.Statuses) > 0 {
		query = query.Where("status IN ?", q.Statuses)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("number LIKE ? OR work_location LIKE ? OR contract_number LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, Unavailable("failed to count documents", err)
	}

	var rows []models.WorkReceipt
	err := query.
		Preload("Vendor").
		Order("created_at DESC").
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, Pagination{}, Unavailable("failed to load documents", err)
	}
	return rows, paginationFor(q, total), nil
}

// OverviewDecided lists already-decided work receipts for the executive
// dashboard, newest decision first.
func (s *WorkReceiptService) OverviewDecided(q ListQuery) ([]models.WorkReceipt, Pagination, *Error) {
	q.Normalize()
	q.Statuses = []string{StatusApprovedDireksi, StatusRejected}

	query := s.db.Model(&models.WorkReceipt{}).Where("status IN ?", q.Statuses)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, Unavailable("failed to count documents", err)
	}

	var rows []models.WorkReceipt
	err := query.
		Preload("Vendor").
		Order("updated_at DESC").
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, Pagination{}, Unavailable("failed to load documents", err)
	}
	return rows, paginationFor(q, total), nil
}

// Get loads one document by id or number with attachments and timeline.
func (s *WorkReceiptService) Get(actor Actor, ref string) (*WorkReceiptDetail, *Error) {
	var doc models.WorkReceipt
	query := s.db.Preload("Vendor")
	if id, err := strconv.Atoi(ref); err == nil {
		query = query.Where("id = ?", id)
	} else {
		query = query.Where("number = ?", ref)
	}
	if err := query.Take(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NotFound("document not found")
		}
		return nil, Unavailable("failed to load document", err)
	}
	if actor.Role == models.RoleVendor && doc.VendorID != actor.ID {
		return nil, Forbidden("document belongs to another vendor")
	}

	attachments, aerr := s.attachments.List(KindWorkReceipt, doc.ID)
	if aerr != nil {
		return nil, aerr
	}
	timeline, terr := s.hist.Timeline(KindWorkReceipt, doc.ID)
	if terr != nil {
		return nil, terr
	}

	return &WorkReceiptDetail{
		WorkReceipt: doc,
		Attachments: attachments,
		History:     timeline,
	}, nil
}

// Create inserts a new draft owned by the acting vendor.
func (s *WorkReceiptService) Create(actor Actor, in WorkReceiptInput) (*models.WorkReceipt, *Error) {
	if actor.Role != models.RoleVendor {
		return nil, Forbidden("only vendors may create documents")
	}
	if verr := s.validateInput(&in); verr != nil {
		return nil, verr
	}

	doc := models.WorkReceipt{
		Number:           strings.TrimSpace(in.Number),
		VendorID:         actor.ID,
		ContractNumber:   in.ContractNumber,
		ContractDate:     in.ContractDate,
		ContractValue:    in.ContractValue,
		WorkLocation:     in.WorkLocation,
		LineItems:        in.LineItems,
		InspectionResult: in.InspectionResult,
		Note:             in.Note,
		Deadline:         in.Deadline,
		Status:           StatusDraft,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict(fmt.Sprintf("document number %s already exists", doc.Number))
			}
			return Unavailable("failed to create document", err)
		}
		return s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: string(KindWorkReceipt),
			DocumentID:   doc.ID,
			ActorRole:    actor.Role,
			ActorID:      actor.ID,
			ActorName:    actor.DisplayName(),
			Action:       models.ActionCreated,
			Note:         fmt.Sprintf("created %s", doc.Number),
			StatusAfter:  StatusDraft,
		})
	})
	if err != nil {
		return nil, AsError(err)
	}
	return &doc, nil
}

// Update rewrites the vendor-editable fields of a draft.
func (s *WorkReceiptService) Update(actor Actor, documentID int, in WorkReceiptInput) (*models.WorkReceipt, *Error) {
	if actor.Role != models.RoleVendor {
		return nil, Forbidden("only vendors may edit documents")
	}
	if verr := s.validateInput(&in); verr != nil {
		return nil, verr
	}

	var doc models.WorkReceipt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", documentID).Take(&doc).Error
		if err == gorm.ErrRecordNotFound {
			return NotFound("document not found")
		}
		if err != nil {
			return Unavailable("failed to load document", err)
		}
		if doc.VendorID != actor.ID {
			return Forbidden("document belongs to another vendor")
		}
		if doc.Status != StatusDraft {
			return InvalidState("only draft documents can be edited")
		}

		doc.Number = strings.TrimSpace(in.Number)
		doc.ContractNumber = in.ContractNumber
		doc.ContractDate = in.ContractDate
		doc.ContractValue = in.ContractValue
		doc.WorkLocation = in.WorkLocation
		doc.LineItems = in.LineItems
		doc.InspectionResult = in.InspectionResult
		doc.Note = in.Note
		doc.Deadline = in.Deadline

		if err := tx.Save(&doc).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict(fmt.Sprintf("document number %s already exists", doc.Number))
			}
			return Unavailable("failed to update document", err)
		}

		status := doc.Status
		return s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: string(KindWorkReceipt),
			DocumentID:   doc.ID,
			ActorRole:    actor.Role,
			ActorID:      actor.ID,
			ActorName:    actor.DisplayName(),
			Action:       models.ActionUpdated,
			Note:         fmt.Sprintf("updated %s", doc.Number),
			StatusBefore: &status,
			StatusAfter:  doc.Status,
		})
	})
	if err != nil {
		return nil, AsError(err)
	}
	return &doc, nil
}

// Delete removes a draft with its history and attachment rows; blob
// cleanup runs after commit.
func (s *WorkReceiptService) Delete(actor Actor, documentID int) *Error {
	if actor.Role != models.RoleVendor {
		return Forbidden("only vendors may delete documents")
	}

	var orphaned []models.Attachment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		head, herr := loadDocumentHead(tx, KindWorkReceipt, documentID, true)
		if herr != nil {
			return herr
		}
		if head.VendorID != actor.ID {
			return Forbidden("document belongs to another vendor")
		}
		if head.Status != StatusDraft {
			return InvalidState("only draft documents can be deleted")
		}

		if err := tx.Where("document_kind = ? AND document_id = ?", string(KindWorkReceipt), documentID).
			Find(&orphaned).Error; err != nil {
			return Unavailable("failed to load attachments", err)
		}
		if err := tx.Where("document_kind = ? AND document_id = ?", string(KindWorkReceipt), documentID).
			Delete(&models.Attachment{}).Error; err != nil {
			return Unavailable("failed to delete attachments", err)
		}
		if err := tx.Where("document_kind = ? AND document_id = ?", string(KindWorkReceipt), documentID).
			Delete(&models.HistoryEntry{}).Error; err != nil {
			return Unavailable("failed to delete history", err)
		}
		if err := tx.Delete(&models.WorkReceipt{}, documentID).Error; err != nil {
			return Unavailable("failed to delete document", err)
		}
		return nil
	})
	if err != nil {
		return AsError(err)
	}

	s.attachments.removeBlobs(orphaned)
	return nil
}

// Submit moves a draft to submitted. The attachment gate applies; no
// fan-out happens because the executive works from the overview list.
func (s *WorkReceiptService) Submit(actor Actor, documentID int) (*models.WorkReceipt, *Error) {
	rule, aerr := AuthorizeTransition(KindWorkReceipt, TransitionSubmit, actor)
	if aerr != nil {
		return nil, aerr
	}

	var doc models.WorkReceipt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", documentID).Take(&doc).Error
		if err == gorm.ErrRecordNotFound {
			return NotFound("document not found")
		}
		if err != nil {
			return Unavailable("failed to load document", err)
		}
		if doc.VendorID != actor.ID {
			return Forbidden("document belongs to another vendor")
		}
		if gerr := rule.GuardStatus(doc.Status); gerr != nil {
			return gerr
		}

		n, cerr := countAttachments(tx, KindWorkReceipt, documentID)
		if cerr != nil {
			return cerr
		}
		if n == 0 {
			return PreconditionFailed("at least one attachment is required before submitting")
		}

		before := doc.Status
		doc.Status = rule.Target()
		if err := tx.Model(&doc).Update("status", doc.Status).Error; err != nil {
			return Unavailable("failed to update document", err)
		}
		return s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: string(KindWorkReceipt),
			DocumentID:   doc.ID,
			ActorRole:    actor.Role,
			ActorID:      actor.ID,
			ActorName:    actor.DisplayName(),
			Action:       models.ActionSubmitted,
			Note:         fmt.Sprintf("submitted %s for approval", doc.Number),
			StatusBefore: &before,
			StatusAfter:  doc.Status,
		})
	})
	if err != nil {
		return nil, AsError(err)
	}
	return &doc, nil
}

// Approve records the executive's decision. The history row keeps the
// status the document actually had, since approval may happen from more
// than one state.
func (s *WorkReceiptService) Approve(actor Actor, documentID int, in DecisionInput) (*models.WorkReceipt, *Error) {
	rule, aerr := AuthorizeTransition(KindWorkReceipt, TransitionApprove, actor)
	if aerr != nil {
		return nil, aerr
	}

	note := strings.TrimSpace(in.Note)
	if note == "" {
		note = fmt.Sprintf("Approved by %s", actor.DisplayName())
	}

	var doc models.WorkReceipt
	var jobs []DeliveryJob
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", documentID).Take(&doc).Error
		if err == gorm.ErrRecordNotFound {
			return NotFound("document not found")
		}
		if err != nil {
			return Unavailable("failed to load document", err)
		}
		if gerr := rule.GuardStatus(doc.Status); gerr != nil {
			return gerr
		}

		before := doc.Status
		now := time.Now()
		updates := map[string]any{
			"status":              rule.Target(),
			"executive_signed_at": now,
		}
		if s.caps.Has("work_receipts", "approval_note") {
			updates["approval_note"] = note
			doc.ApprovalNote = &note
		}
		if err := tx.Model(&doc).Updates(updates).Error; err != nil {
			return Unavailable("failed to update document", err)
		}
		doc.Status = rule.Target()
		doc.ExecutiveSignedAt = &now

		if herr := s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: string(KindWorkReceipt),
			DocumentID:   doc.ID,
			ActorRole:    actor.Role,
			ActorID:      actor.ID,
			ActorName:    actor.DisplayName(),
			Action:       models.ActionApproved,
			Note:         note,
			StatusBefore: &before,
			StatusAfter:  doc.Status,
		}); herr != nil {
			return herr
		}

		var vendor models.Vendor
		if err := tx.Take(&vendor, doc.VendorID).Error; err != nil && err != gorm.ErrRecordNotFound {
			return Unavailable("failed to load vendor", err)
		}

		kind := string(KindWorkReceipt)
		title := "Work receipt approved"
		body := fmt.Sprintf("Work receipt %s was approved by %s", doc.Number, actor.DisplayName())
		if nerr := s.notify.Create(tx, &models.Notification{
			RecipientID:   doc.VendorID,
			RecipientRole: models.RoleVendor,
			Title:         title,
			Description:   body,
			Type:          models.NotificationSuccess,
			DocumentKind:  &kind,
			DocumentID:    &doc.ID,
		}); nerr != nil {
			return nerr
		}
		jobs = append(jobs, DeliveryJob{
			RecipientID:   doc.VendorID,
			RecipientRole: models.RoleVendor,
			Email:         vendor.Email,
			Payload:       pushFor(title, body, kind, doc.ID),
		})
		return nil
	})
	if err != nil {
		return nil, AsError(err)
	}

	s.notify.DeliverAll(jobs)
	return &doc, nil
}

// Reject records the executive's rejection with a mandatory reason.
func (s *WorkReceiptService) Reject(actor Actor, documentID int, in DecisionInput) (*models.WorkReceipt, *Error) {
	rule, aerr := AuthorizeTransition(KindWorkReceipt, TransitionReject, actor)
	if aerr != nil {
		return nil, aerr
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, ValidationFailed("a rejection reason is required")
	}

	var doc models.WorkReceipt
	var jobs []DeliveryJob
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", documentID).Take(&doc).Error
		if err == gorm.ErrRecordNotFound {
			return NotFound("document not found")
		}
		if err != nil {
			return Unavailable("failed to load document", err)
		}
		if gerr := rule.GuardStatus(doc.Status); gerr != nil {
			return gerr
		}

		before := doc.Status
		updates := map[string]any{"status": rule.Target()}
		if s.caps.Has("work_receipts", "rejection_reason") {
			updates["rejection_reason"] = reason
			doc.RejectionReason = &reason
		}
		if err := tx.Model(&doc).Updates(updates).Error; err != nil {
			return Unavailable("failed to update document", err)
		}
		doc.Status = rule.Target()

		if herr := s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: string(KindWorkReceipt),
			DocumentID:   doc.ID,
			ActorRole:    actor.Role,
			ActorID:      actor.ID,
			ActorName:    actor.DisplayName(),
			Action:       models.ActionRejected,
			Note:         reason,
			StatusBefore: &before,
			StatusAfter:  doc.Status,
		}); herr != nil {
			return herr
		}

		kind := string(KindWorkReceipt)
		title := "Work receipt rejected"
		body := fmt.Sprintf("Work receipt %s was rejected: %s", doc.Number, reason)
		if nerr := s.notify.Create(tx, &models.Notification{
			RecipientID:   doc.VendorID,
			RecipientRole: models.RoleVendor,
			Title:         title,
			Description:   body,
			Type:          models.NotificationError,
			DocumentKind:  &kind,
			DocumentID:    &doc.ID,
		}); nerr != nil {
			return nerr
		}
		jobs = append(jobs, DeliveryJob{
			RecipientID:   doc.VendorID,
			RecipientRole: models.RoleVendor,
			Payload:       pushFor(title, body, kind, doc.ID),
		})
		return nil
	})
	if err != nil {
		return nil, AsError(err)
	}

	s.notify.DeliverAll(jobs)
	return &doc, nil
}
