package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
)

func TestCombinedAppliesSearchFilter(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `goods_receipts` WHERE .*LIKE"),
			columns: []string{"id"},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `work_receipts` WHERE .*LIKE"),
			columns: []string{"id", "number", "vendor_id", "contract_number", "work_location", "status"},
			rows:    [][]driver.Value{{int64(2), "WR-002", int64(7), "CT-9", "Depot", StatusSubmitted}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `vendors`"),
			columns: []string{"id", "name"},
			rows:    [][]driver.Value{{int64(7), "Acme Supplies"}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewDocumentService(db)
	rows, _, err := svc.Combined(inspectorActor(), ListQuery{Search: "WR-002"})
	if err != nil {
		t.Fatalf("combined failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Kind != string(KindWorkReceipt) || rows[0].Number != "WR-002" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if rows[0].VendorName != "Acme Supplies" {
		t.Fatalf("vendor name = %q", rows[0].VendorName)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}

func TestStatsSplitsPendingFromDecided(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT status, COUNT\\(\\*\\) AS total FROM `goods_receipts`"),
			columns: []string{"status", "total"},
			rows: [][]driver.Value{
				{StatusSubmitted, int64(2)},
				{StatusApproved, int64(3)},
			},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewDocumentService(db)
	stats, err := svc.Stats(inspectorActor())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.GoodsReceipts[StatusSubmitted] != 2 || stats.GoodsReceipts[StatusApproved] != 3 {
		t.Fatalf("unexpected counts: %+v", stats.GoodsReceipts)
	}
	if stats.Pending != 2 {
		t.Fatalf("pending = %d, want 2", stats.Pending)
	}
	if stats.Decided != 3 {
		t.Fatalf("decided = %d, want 3", stats.Decided)
	}
	if verr := state.verifyComplete(); verr != nil {
		t.Fatal(verr)
	}
}
