package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement-receipt-api/models"
)

func TestParseDocumentKind(t *testing.T) {
	kind, err := ParseDocumentKind("bapb")
	require.NoError(t, err)
	assert.Equal(t, KindGoodsReceipt, kind)

	kind, err = ParseDocumentKind("bapp")
	require.NoError(t, err)
	assert.Equal(t, KindWorkReceipt, kind)

	_, err = ParseDocumentKind("invoice")
	assert.Error(t, err)
}

func TestAuthorizeTransitionRoles(t *testing.T) {
	vendor := Actor{ID: 1, Role: models.RoleVendor, Name: "Acme"}
	inspector := Actor{ID: 2, Role: models.RoleInspector, Name: "Dana"}
	executive := Actor{ID: 3, Role: models.RoleExecutive, Name: "Kim"}

	cases := []struct {
		name    string
		kind    DocumentKind
		t       Transition
		actor   Actor
		allowed bool
	}{
		{"vendor submits goods", KindGoodsReceipt, TransitionSubmit, vendor, true},
		{"inspector cannot submit goods", KindGoodsReceipt, TransitionSubmit, inspector, false},
		{"inspector reviews goods", KindGoodsReceipt, TransitionReview, inspector, true},
		{"vendor cannot review goods", KindGoodsReceipt, TransitionReview, vendor, false},
		{"inspector approves goods", KindGoodsReceipt, TransitionApprove, inspector, true},
		{"executive cannot approve goods", KindGoodsReceipt, TransitionApprove, executive, false},
		{"vendor submits work", KindWorkReceipt, TransitionSubmit, vendor, true},
		{"executive approves work", KindWorkReceipt, TransitionApprove, executive, true},
		{"inspector cannot approve work", KindWorkReceipt, TransitionApprove, inspector, false},
		{"executive rejects work", KindWorkReceipt, TransitionReject, executive, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := AuthorizeTransition(tc.kind, tc.t, tc.actor)
			if tc.allowed {
				require.Nil(t, err)
				require.NotNil(t, rule)
			} else {
				require.NotNil(t, err)
				assert.Equal(t, KindForbidden, err.Kind)
			}
		})
	}
}

func TestAuthorizeTransitionUndefined(t *testing.T) {
	// Work receipts have no review transition.
	_, err := AuthorizeTransition(KindWorkReceipt, TransitionReview, Actor{Role: models.RoleInspector})
	require.NotNil(t, err)
	assert.Equal(t, KindValidationFailed, err.Kind)
}

func TestGuardStatusGoodsReceipt(t *testing.T) {
	inspector := Actor{ID: 2, Role: models.RoleInspector}

	approve, err := AuthorizeTransition(KindGoodsReceipt, TransitionApprove, inspector)
	require.Nil(t, err)

	assert.Nil(t, approve.GuardStatus(StatusReviewed))
	assert.Equal(t, StatusApproved, approve.Target())

	for _, from := range []string{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected} {
		gerr := approve.GuardStatus(from)
		require.NotNil(t, gerr, "approve from %s should fail", from)
		assert.Equal(t, KindInvalidState, gerr.Kind)
	}
}

func TestGuardStatusWorkReceiptApprove(t *testing.T) {
	executive := Actor{ID: 3, Role: models.RoleExecutive}

	approve, err := AuthorizeTransition(KindWorkReceipt, TransitionApprove, executive)
	require.Nil(t, err)

	for _, from := range []string{StatusDraft, StatusSubmitted, StatusReviewedPIC} {
		assert.Nil(t, approve.GuardStatus(from), "approve from %s should pass", from)
	}
	for _, from := range []string{StatusApprovedDireksi, StatusRejected} {
		gerr := approve.GuardStatus(from)
		require.NotNil(t, gerr)
		assert.Equal(t, KindInvalidState, gerr.Kind)
	}
	assert.Equal(t, StatusApprovedDireksi, approve.Target())
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IsTerminal(KindGoodsReceipt, StatusApproved))
	assert.True(t, IsTerminal(KindGoodsReceipt, StatusRejected))
	assert.False(t, IsTerminal(KindGoodsReceipt, StatusDraft))
	assert.False(t, IsTerminal(KindGoodsReceipt, StatusSubmitted))
	assert.False(t, IsTerminal(KindGoodsReceipt, StatusReviewed))

	assert.True(t, IsTerminal(KindWorkReceipt, StatusApprovedDireksi))
	assert.True(t, IsTerminal(KindWorkReceipt, StatusRejected))
	assert.False(t, IsTerminal(KindWorkReceipt, StatusDraft))
	assert.False(t, IsTerminal(KindWorkReceipt, StatusReviewedPIC))
}

func TestActorDisplayName(t *testing.T) {
	assert.Equal(t, "Acme", Actor{Name: "Acme", Email: "a@b.c"}.DisplayName())
	assert.Equal(t, "a@b.c", Actor{Email: "a@b.c"}.DisplayName())
}
