package services

import (
	"encoding/json"
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

// GoodsReceiptService implements the goods-receipt ("bapb") workflow:
// vendor drafts and submits, inspector reviews, then approves or
// rejects. Every transition re-checks status under a row lock inside its
// transaction; notifications are delivered only after commit.
type GoodsReceiptService struct {
	db          *gorm.DB
	hist        *HistoryService
	attachments *AttachmentService
	notify      *Dispatcher
	caps        *SchemaCapabilities
	validate    *validator.Validate
	log         *logrus.Logger
}

func NewGoodsReceiptService(
	db *gorm.DB,
	hist *HistoryService,
	attachments *AttachmentService,
	notify *Dispatcher,
	caps *SchemaCapabilities,
	log *logrus.Logger,
) *GoodsReceiptService {
	return &GoodsReceiptService{
		db:          db,
		hist:        hist,
		attachments: attachments,
		notify:      notify,
		caps:        caps,
		validate:    validator.New(),
		log:         log,
	}
}

// GoodsReceiptInput carries the vendor-editable fields for create and
// update. LineItemsText is a legacy plain-text item list accepted as a
// fallback when LineItems is empty.
type GoodsReceiptInput struct {
	Number           string                 `json:"number" validate:"required"`
	ContractNumber   string                 `json:"contract_number" validate:"required"`
	ProjectName      string                 `json:"project_name" validate:"required"`
	ContractValue    float64                `json:"contract_value" validate:"gte=0"`
	WorkDescription  string                 `json:"work_description"`
	IssuedDate       time.Time              `json:"issued_date" validate:"required"`
	Deadline         *time.Time             `json:"deadline"`
	DeliveryDate     time.Time              `json:"delivery_date" validate:"required"`
	Courier          *string                `json:"courier"`
	LineItems        []models.GoodsLineItem `json:"line_items" validate:"dive"`
	LineItemsText    string                 `json:"line_items_text"`
	InspectionResult string                 `json:"inspection_result"`
	ExtraNote        *string                `json:"extra_note"`
}

// ReviewInput carries the inspector's review: optionally revised items
// and a note.
type ReviewInput struct {
	LineItems []models.GoodsLineItem `json:"line_items" validate:"omitempty,dive"`
	Note      string                 `json:"note"`
}

// DecisionInput carries an approval note or a rejection reason.
type DecisionInput struct {
	Note   string `json:"note"`
	Reason string `json:"reason"`
}

// GoodsReceiptDetail is the full read model of one document.
type GoodsReceiptDetail struct {
	models.GoodsReceipt
	Attachments   []models.Attachment   `json:"attachments"`
	History       []models.HistoryEntry `json:"history"`
	LastInspector string                `json:"last_inspector,omitempty"`
}

func (s *GoodsReceiptService) resolveItems(in *GoodsReceiptInput) ([]models.GoodsLineItem, *Error) {
	items := in.LineItems
	if len(items) == 0 && strings.TrimSpace(in.LineItemsText) != "" {
		items = ParseLineItemText(in.LineItemsText)
	}
	if len(items) == 0 {
		return nil, ValidationFailed("at least one line item is required")
	}
	for i := range items {
		if items[i].InspectionStatus == "" {
			items[i].InspectionStatus = models.InspectionUnchecked
		}
	}
	return items, nil
}

func (s *GoodsReceiptService) validateInput(in *GoodsReceiptInput) *Error {
	if err := s.validate.Struct(in); err != nil {
		return ValidationFailed(validationMessage(err))
	}
	return nil
}

// validationMessage flattens the first validator failure into a
// client-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("field %s failed validation (%s)", fe.Field(), fe.Tag())
	}
	return "invalid request body"
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		*target = verrs
		return true
	}
	return false
}

// List returns documents visible to the actor: vendors see their own,
// inspectors and executives see everything.
func (s *GoodsReceiptService) List(actor Actor, q ListQuery) ([]models.GoodsReceipt, Pagination, *Error) {
	q.Normalize()

	query := s.db.Model(&models.GoodsReceipt{})
	if actor.Role == models.RoleVendor {
		query = query.Where("vendor_id = ?", actor.ID)
	}
	if len(q.Statuses) > 0 {
		query = query.Where("status IN ?", q.Statuses)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("number LIKE ? OR project_name LIKE ? OR contract_number LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, Unavailable("failed to count documents", err)
	}

	var rows []models.GoodsReceipt
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

// Get loads one document by numeric id or by document number, with its
// attachments and timeline. Vendors can only read their own documents.
func (s *GoodsReceiptService) Get(actor Actor, ref string) (*GoodsReceiptDetail, *Error) {
	var doc models.GoodsReceipt
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

	attachments, aerr := s.attachments.List(KindGoodsReceipt, doc.ID)
	if aerr != nil {
		return nil, aerr
	}
	timeline, terr := s.hist.Timeline(KindGoodsReceipt, doc.ID)
	if terr != nil {
		return nil, terr
	}

	return &GoodsReceiptDetail{
		GoodsReceipt:  doc,
		Attachments:   attachments,
		History:       timeline,
		LastInspector: LastInspector(timeline),
	}, nil
}

// Create inserts a new draft owned by the acting vendor. Number
// uniqueness is enforced by the database constraint; a duplicate races
// surface as conflict.
func (s *GoodsReceiptService) Create(actor Actor, in GoodsReceiptInput) (*models.GoodsReceipt, *Error) {
	if actor.Role != models.RoleVendor {
		return nil, Forbidden("only vendors may create documents")
	}
	if verr := s.validateInput(&in); verr != nil {
		return nil, verr
	}
	items, ierr := s.resolveItems(&in)
	if ierr != nil {
		return nil, ierr
	}

	doc := models.GoodsReceipt{
		Number:           strings.TrimSpace(in.Number),
		VendorID:         actor.ID,
		ContractNumber:   in.ContractNumber,
		ProjectName:      in.ProjectName,
		ContractValue:    in.ContractValue,
		WorkDescription:  in.WorkDescription,
		IssuedDate:       in.IssuedDate,
		Deadline:         in.Deadline,
		DeliveryDate:     in.DeliveryDate,
		Courier:          in.Courier,
		LineItems:        items,
		InspectionResult: in.InspectionResult,
		ExtraNote:        in.ExtraNote,
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
			DocumentKind: string(KindGoodsReceipt),
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
func (s *GoodsReceiptService) Update(actor Actor, documentID int, in GoodsReceiptInput) (*models.GoodsReceipt, *Error) {
	if actor.Role != models.RoleVendor {
		return nil, Forbidden("only vendors may edit documents")
	}
	if verr := s.validateInput(&in); verr != nil {
		return nil, verr
	}
	items, ierr := s.resolveItems(&in)
	if ierr != nil {
		return nil, ierr
	}

	var doc models.GoodsReceipt
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
		doc.ProjectName = in.ProjectName
		doc.ContractValue = in.ContractValue
		doc.WorkDescription = in.WorkDescription
		doc.IssuedDate = in.IssuedDate
		doc.Deadline = in.Deadline
		doc.DeliveryDate = in.DeliveryDate
		doc.Courier = in.Courier
		doc.LineItems = items
		doc.InspectionResult = in.InspectionResult
		doc.ExtraNote = in.ExtraNote

		if err := tx.Save(&doc).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict(fmt.Sprintf("document number %s already exists", doc.Number))
			}
			return Unavailable("failed to update document", err)
		}

		status := doc.Status
		return s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: string(KindGoodsReceipt),
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

// Delete removes a draft along with its history and attachment rows.
// Blob cleanup runs after the transaction commits.
func (s *GoodsReceiptService) Delete(actor Actor, documentID int) *Error {
	if actor.Role != models.RoleVendor {
		return Forbidden("only vendors may delete documents")
	}

	var orphaned []models.Attachment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		head, herr := loadDocumentHead(tx, KindGoodsReceipt, documentID, true)
		if herr != nil {
			return herr
		}
		if head.VendorID != actor.ID {
			return Forbidden("document belongs to another vendor")
		}
		if head.Status != StatusDraft {
			return InvalidState("only draft documents can be deleted")
		}

		if err := tx.Where("document_kind = ? AND document_id = ?", string(KindGoodsReceipt), documentID).
			Find(&orphaned).Error; err != nil {
			return Unavailable("failed to load attachments", err)
		}
		if err := tx.Where("document_kind = ? AND document_id = ?", string(KindGoodsReceipt), documentID).
			Delete(&models.Attachment{}).Error; err != nil {
			return Unavailable("failed to delete attachments", err)
		}
		if err := tx.Where("document_kind = ? AND document_id = ?", string(KindGoodsReceipt), documentID).
			Delete(&models.HistoryEntry{}).Error; err != nil {
			return Unavailable("failed to delete history", err)
		}
		if err := tx.Delete(&models.GoodsReceipt{}, documentID).Error; err != nil {
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

// Submit moves a draft to submitted. Requires at least one attachment;
// on success every inspector is notified and the vendor gets a
// confirmation push.
func (s *GoodsReceiptService) Submit(actor Actor, documentID int) (*models.GoodsReceipt, *Error) {
	rule, aerr := AuthorizeTransition(KindGoodsReceipt, TransitionSubmit, actor)
	if aerr != nil {
		return nil, aerr
	}

	var doc models.GoodsReceipt
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
		if doc.VendorID != actor.ID {
			return Forbidden("document belongs to another vendor")
		}
		if gerr := rule.GuardStatus(doc.Status); gerr != nil {
			return gerr
		}

		n, cerr := countAttachments(tx, KindGoodsReceipt, documentID)
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
		if herr := s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: string(KindGoodsReceipt),
			DocumentID:   doc.ID,
			ActorRole:    actor.Role,
			ActorID:      actor.ID,
			ActorName:    actor.DisplayName(),
			Action:       models.ActionSubmitted,
			Note:         fmt.Sprintf("submitted %s for review", doc.Number),
			StatusBefore: &before,
			StatusAfter:  doc.Status,
		}); herr != nil {
			return herr
		}

		var inspectors []models.Inspector
		if err := tx.Find(&inspectors).Error; err != nil {
			return Unavailable("failed to load inspectors", err)
		}
		kind := string(KindGoodsReceipt)
		for _, ins := range inspectors {
			title := "New goods receipt submitted"
			body := fmt.Sprintf("%s submitted goods receipt %s for review", actor.DisplayName(), doc.Number)
			if nerr := s.notify.Create(tx, &models.Notification{
				RecipientID:   ins.ID,
				RecipientRole: models.RoleInspector,
				Title:         title,
				Description:   body,
				Type:          models.NotificationInfo,
				DocumentKind:  &kind,
				DocumentID:    &doc.ID,
			}); nerr != nil {
				return nerr
			}
			jobs = append(jobs, DeliveryJob{
				RecipientID:   ins.ID,
				RecipientRole: models.RoleInspector,
				Payload:       pushFor(title, body, kind, doc.ID),
			})
		}
		// Vendor confirmation is push only, no notification row.
		jobs = append(jobs, DeliveryJob{
			RecipientID:   actor.ID,
			RecipientRole: models.RoleVendor,
			Payload: pushFor(
				"Document submitted",
				fmt.Sprintf("Goods receipt %s was submitted for review", doc.Number),
				kind, doc.ID,
			),
		})
		return nil
	})
	if err != nil {
		return nil, AsError(err)
	}

	s.notify.DeliverAll(jobs)
	return &doc, nil
}

// Review records the inspector's check: item inspection statuses may be
// revised and a note attached. The vendor is notified.
func (s *GoodsReceiptService) Review(actor Actor, documentID int, in ReviewInput) (*models.GoodsReceipt, *Error) {
	rule, aerr := AuthorizeTransition(KindGoodsReceipt, TransitionReview, actor)
	if aerr != nil {
		return nil, aerr
	}
	for i := range in.LineItems {
		if err := s.validate.Struct(&in.LineItems[i]); err != nil {
			return nil, ValidationFailed(validationMessage(err))
		}
	}

	var doc models.GoodsReceipt
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
			"status":      rule.Target(),
			"reviewed_at": now,
		}
		if len(in.LineItems) > 0 {
			// Map-valued updates bypass the field serializer, so the
			// JSON column value has to be encoded here.
			encoded, merr := json.Marshal(in.LineItems)
			if merr != nil {
				return Unavailable("failed to encode line items", merr)
			}
			doc.LineItems = in.LineItems
			updates["line_items"] = string(encoded)
		}
		if in.Note != "" && s.caps.Has("goods_receipts", "inspector_note") {
			updates["inspector_note"] = in.Note
			doc.InspectorNote = &in.Note
		}
		if err := tx.Model(&doc).Updates(updates).Error; err != nil {
			return Unavailable("failed to update document", err)
		}
		doc.Status = rule.Target()
		doc.ReviewedAt = &now

		if herr := s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: string(KindGoodsReceipt),
			DocumentID:   doc.ID,
			ActorRole:    actor.Role,
			ActorID:      actor.ID,
			ActorName:    actor.DisplayName(),
			Action:       models.ActionReviewed,
			Note:         in.Note,
			StatusBefore: &before,
			StatusAfter:  doc.Status,
		}); herr != nil {
			return herr
		}

		kind := string(KindGoodsReceipt)
		title := "Goods receipt reviewed"
		body := fmt.Sprintf("Goods receipt %s was reviewed by %s", doc.Number, actor.DisplayName())
		if nerr := s.notify.Create(tx, &models.Notification{
			RecipientID:   doc.VendorID,
			RecipientRole: models.RoleVendor,
			Title:         title,
			Description:   body,
			Type:          models.NotificationInfo,
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

// Approve finalizes a reviewed document. The inspector's signature
// timestamp is recorded, the vendor is notified (and emailed when the
// mailer is configured), and the inspector gets a success notification.
func (s *GoodsReceiptService) Approve(actor Actor, documentID int, in DecisionInput) (*models.GoodsReceipt, *Error) {
	rule, aerr := AuthorizeTransition(KindGoodsReceipt, TransitionApprove, actor)
	if aerr != nil {
		return nil, aerr
	}

	var doc models.GoodsReceipt
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
			"inspector_signed_at": now,
		}
		if in.Note != "" && s.caps.Has("goods_receipts", "approval_note") {
			updates["approval_note"] = in.Note
			doc.ApprovalNote = &in.Note
		}
		if err := tx.Model(&doc).Updates(updates).Error; err != nil {
			return Unavailable("failed to update document", err)
		}
		doc.Status = rule.Target()
		doc.InspectorSignedAt = &now

		if herr := s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: string(KindGoodsReceipt),
			DocumentID:   doc.ID,
			ActorRole:    actor.Role,
			ActorID:      actor.ID,
			ActorName:    actor.DisplayName(),
			Action:       models.ActionApproved,
			Note:         in.Note,
			StatusBefore: &before,
			StatusAfter:  doc.Status,
		}); herr != nil {
			return herr
		}

		var vendor models.Vendor
		if err := tx.Take(&vendor, doc.VendorID).Error; err != nil && err != gorm.ErrRecordNotFound {
			return Unavailable("failed to load vendor", err)
		}

		kind := string(KindGoodsReceipt)
		title := "Goods receipt approved"
		body := fmt.Sprintf("Goods receipt %s was approved by %s", doc.Number, actor.DisplayName())
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

		selfBody := fmt.Sprintf("You approved goods receipt %s", doc.Number)
		if nerr := s.notify.Create(tx, &models.Notification{
			RecipientID:   actor.ID,
			RecipientRole: models.RoleInspector,
			Title:         "Approval recorded",
			Description:   selfBody,
			Type:          models.NotificationSuccess,
			DocumentKind:  &kind,
			DocumentID:    &doc.ID,
		}); nerr != nil {
			return nerr
		}
		return nil
	})
	if err != nil {
		return nil, AsError(err)
	}

	s.notify.DeliverAll(jobs)
	return &doc, nil
}

// Reject returns a reviewed document to the vendor with a mandatory
// reason.
func (s *GoodsReceiptService) Reject(actor Actor, documentID int, in DecisionInput) (*models.GoodsReceipt, *Error) {
	rule, aerr := AuthorizeTransition(KindGoodsReceipt, TransitionReject, actor)
	if aerr != nil {
		return nil, aerr
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, ValidationFailed("a rejection reason is required")
	}

	var doc models.GoodsReceipt
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
		if s.caps.Has("goods_receipts", "rejection_reason") {
			updates["rejection_reason"] = reason
			doc.RejectionReason = &reason
		}
		if err := tx.Model(&doc).Updates(updates).Error; err != nil {
			return Unavailable("failed to update document", err)
		}
		doc.Status = rule.Target()

		if herr := s.hist.Record(tx, &models.HistoryEntry{
			DocumentKind: string(KindGoodsReceipt),
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

		kind := string(KindGoodsReceipt)
		title := "Goods receipt rejected"
		body := fmt.Sprintf("Goods receipt %s was rejected: %s", doc.Number, reason)
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

		if nerr := s.notify.Create(tx, &models.Notification{
			RecipientID:   actor.ID,
			RecipientRole: models.RoleInspector,
			Title:         "Rejection recorded",
			Description:   fmt.Sprintf("You rejected goods receipt %s", doc.Number),
			Type:          models.NotificationError,
			DocumentKind:  &kind,
			DocumentID:    &doc.ID,
		}); nerr != nil {
			return nerr
		}
		return nil
	})
	if err != nil {
		return nil, AsError(err)
	}

	s.notify.DeliverAll(jobs)
	return &doc, nil
}

func pushFor(title, body, kind string, documentID int) PushPayload {
	return PushPayload{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"document_type": kind,
			"document_id":   strconv.Itoa(documentID),
		},
	}
}
