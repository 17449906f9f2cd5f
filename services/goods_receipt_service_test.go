package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	sqlmysql "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"procurement-receipt-api/config"
	"procurement-receipt-api/models"
)

func newGoodsService(db *gorm.DB) *GoodsReceiptService {
	log := logrus.New()
	hist := NewHistoryService(db)
	return &GoodsReceiptService{
		db:          db,
		hist:        hist,
		attachments: NewAttachmentService(db, "testdata", hist, log),
		notify:      NewDispatcher(db, nil, config.MailerConfig{}, log),
		validate:    validator.New(),
		log:         log,
	}
}

func goodsInput(number string) GoodsReceiptInput {
	return GoodsReceiptInput{
		Number:         number,
		ContractNumber: "CT-2024-001",
		ProjectName:    "Warehouse extension",
		ContractValue:  1500000,
		IssuedDate:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DeliveryDate:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		LineItems: []models.GoodsLineItem{
			{Name: "Cable", Quantity: 5, Unit: "pcs"},
		},
	}
}

func vendorActor() Actor {
	return Actor{ID: 7, Role: models.RoleVendor, Name: "Acme Supplies", Email: "acme@example.com"}
}

func inspectorActor() Actor {
	return Actor{ID: 3, Role: models.RoleInspector, Name: "Dana", Email: "dana@example.com"}
}

func TestRejectWithoutReasonFailsBeforeStorage(t *testing.T) {
	// No scripted steps: validation must fail before any query runs.
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := newGoodsService(db)
	_, err := svc.Reject(inspectorActor(), 1, DecisionInput{Reason: "   "})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != KindValidationFailed {
		t.Fatalf("kind = %s, want %s", err.Kind, KindValidationFailed)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

func TestSubmitWithoutAttachmentsFailsPrecondition(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `goods_receipts`.*FOR UPDATE"),
			columns: []string{"id", "number", "vendor_id", "status"},
			rows:    [][]driver.Value{{int64(10), "GR-001", int64(7), StatusDraft}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT count.* FROM `attachments`"),
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(0)}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := newGoodsService(db)
	_, err := svc.Submit(vendorActor(), 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != KindPreconditionFailed {
		t.Fatalf("kind = %s, want %s", err.Kind, KindPreconditionFailed)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

func TestSubmitStaleTransitionFailsInvalidState(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `goods_receipts`.*FOR UPDATE"),
			columns: []string{"id", "number", "vendor_id", "status"},
			rows:    [][]driver.Value{{int64(10), "GR-001", int64(7), StatusSubmitted}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := newGoodsService(db)
	_, err := svc.Submit(vendorActor(), 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != KindInvalidState {
		t.Fatalf("kind = %s, want %s", err.Kind, KindInvalidState)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

func TestSubmitSucceedsWithAttachmentAndFansOut(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `goods_receipts`.*FOR UPDATE"),
			columns: []string{"id", "number", "vendor_id", "status"},
			rows:    [][]driver.Value{{int64(10), "GR-001", int64(7), StatusDraft}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT count.* FROM `attachments`"),
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(1)}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `goods_receipts` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `document_history`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `inspectors`"),
			columns: []string{"id", "name", "email"},
			rows:    [][]driver.Value{{int64(3), "Dana", "dana@example.com"}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `notifications`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := newGoodsService(db)
	doc, err := svc.Submit(vendorActor(), 10)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if doc.Status != StatusSubmitted {
		t.Fatalf("status = %s, want %s", doc.Status, StatusSubmitted)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

func TestSubmitByNonOwnerFailsForbidden(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `goods_receipts`.*FOR UPDATE"),
			columns: []string{"id", "number", "vendor_id", "status"},
			rows:    [][]driver.Value{{int64(10), "GR-001", int64(99), StatusDraft}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := newGoodsService(db)
	_, err := svc.Submit(vendorActor(), 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != KindForbidden {
		t.Fatalf("kind = %s, want %s", err.Kind, KindForbidden)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

func TestCreateDuplicateNumberMapsToConflict(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `goods_receipts`"),
			err:     &sqlmysql.MySQLError{Number: 1062, Message: "Duplicate entry 'GR-001'"},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := newGoodsService(db)
	_, err := svc.Create(vendorActor(), goodsInput("GR-001"))
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != KindConflict {
		t.Fatalf("kind = %s, want %s", err.Kind, KindConflict)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

func TestCreateRejectedForNonVendor(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := newGoodsService(db)
	_, err := svc.Create(inspectorActor(), goodsInput("GR-001"))
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != KindForbidden {
		t.Fatalf("kind = %s, want %s", err.Kind, KindForbidden)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

// Revising items during review must store the revised list on the JSON
// column rather than failing at the SQL layer.
func TestReviewStoresRevisedLineItems(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `goods_receipts`.*FOR UPDATE"),
			columns: []string{"id", "number", "vendor_id", "status"},
			rows:    [][]driver.Value{{int64(10), "GR-001", int64(7), StatusSubmitted}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `goods_receipts` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `document_history`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `notifications`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := newGoodsService(db)
	doc, err := svc.Review(inspectorActor(), 10, ReviewInput{
		LineItems: []models.GoodsLineItem{
			{Name: "Cable", Quantity: 5, Unit: "pcs", InspectionStatus: models.InspectionConforming},
		},
		Note: "all items conform",
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if doc.Status != StatusReviewed {
		t.Fatalf("status = %s, want %s", doc.Status, StatusReviewed)
	}
	if doc.ReviewedAt == nil {
		t.Fatal("review timestamp not set")
	}
	if len(doc.LineItems) != 1 || doc.LineItems[0].InspectionStatus != models.InspectionConforming {
		t.Fatalf("line items not revised: %+v", doc.LineItems)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

func TestRejectRecordsReasonAndNotifiesVendor(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `goods_receipts`.*FOR UPDATE"),
			columns: []string{"id", "number", "vendor_id", "status"},
			rows:    [][]driver.Value{{int64(10), "GR-001", int64(7), StatusReviewed}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `goods_receipts` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `document_history`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `notifications`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `notifications`"),
			result:  scriptedResult{lastInsertID: 2, rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := newGoodsService(db)
	doc, err := svc.Reject(inspectorActor(), 10, DecisionInput{Reason: "damaged goods"})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if doc.Status != StatusRejected {
		t.Fatalf("status = %s, want %s", doc.Status, StatusRejected)
	}
	if doc.RejectionReason == nil || *doc.RejectionReason != "damaged goods" {
		t.Fatalf("rejection reason not recorded: %v", doc.RejectionReason)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

// Deleting a draft must remove its attachment and history rows in the
// same transaction as the document itself.
func TestDeleteDraftCascadesHistoryAndAttachments(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `goods_receipts`.*FOR UPDATE"),
			columns: []string{"id", "number", "vendor_id", "status"},
			rows:    [][]driver.Value{{int64(10), "GR-001", int64(7), StatusDraft}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `attachments`"),
			columns: []string{"id", "document_kind", "document_id", "stored_name"},
			rows:    [][]driver.Value{{int64(1), "bapb", int64(10), "evidence-1.pdf"}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("DELETE FROM `attachments`"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("DELETE FROM `document_history`"),
			result:  scriptedResult{rowsAffected: 2},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("DELETE FROM `goods_receipts`"),
			result:  scriptedResult{rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := newGoodsService(db)
	if err := svc.Delete(vendorActor(), 10); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

func TestCreateWithoutItemsFailsValidation(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	in := goodsInput("GR-001")
	in.LineItems = nil

	svc := newGoodsService(db)
	_, err := svc.Create(vendorActor(), in)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Kind != KindValidationFailed {
		t.Fatalf("kind = %s, want %s", err.Kind, KindValidationFailed)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}
