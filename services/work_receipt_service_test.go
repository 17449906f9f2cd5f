package services

import (
	"database/sql/driver"
	"regexp"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"procurement-receipt-api/config"
	"procurement-receipt-api/models"
)

func newWorkService(db *gorm.DB) *WorkReceiptService {
	log := logrus.New()
	hist := NewHistoryService(db)
	return &WorkReceiptService{
		db:          db,
		hist:        hist,
		attachments: NewAttachmentService(db, "testdata", hist, log),
		notify:      NewDispatcher(db, nil, config.MailerConfig{}, log),
		validate:    validator.New(),
		log:         log,
	}
}

func executiveActor() Actor {
	return Actor{ID: 5, Role: models.RoleExecutive, Name: "Kim", Email: "kim@example.com"}
}

// The executive may decide directly from draft; the transition must
// still notify the owning vendor.
func TestWorkReceiptApproveFromDraft(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `work_receipts`.*FOR UPDATE"),
			columns: []string{"id", "number", "vendor_id", "status"},
			rows:    [][]driver.Value{{int64(20), "WR-001", int64(7), StatusDraft}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `work_receipts` SET"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `document_history`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `vendors`"),
			columns: []string{"id", "name", "email"},
			rows:    [][]driver.Value{{int64(7), "Acme Supplies", "acme@example.com"}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `notifications`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 1},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := newWorkService(db)
	doc, err := svc.Approve(executiveActor(), 20, DecisionInput{})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if doc.Status != StatusApprovedDireksi {
		t.Fatalf("status = %s, want %s", doc.Status, StatusApprovedDireksi)
	}
	if doc.ExecutiveSignedAt == nil {
		t.Fatal("executive signing timestamp not set")
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

func TestWorkReceiptApproveFromTerminalFails(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `work_receipts`.*FOR UPDATE"),
			columns: []string{"id", "number", "vendor_id", "status"},
			rows:    [][]driver.Value{{int64(20), "WR-001", int64(7), StatusRejected}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := newWorkService(db)
	_, err := svc.Approve(executiveActor(), 20, DecisionInput{})
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

func TestWorkReceiptRejectRequiresReason(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := newWorkService(db)
	_, err := svc.Reject(executiveActor(), 20, DecisionInput{})
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

func TestWorkReceiptApproveWrongRole(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := newWorkService(db)
	_, err := svc.Approve(vendorActor(), 20, DecisionInput{})
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
