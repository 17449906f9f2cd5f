package services

import (
	"fmt"

	"procurement-receipt-api/models"
)

// DocumentKind identifies one of the two receipt document kinds. The
// values double as URL path segments and history/attachment foreign keys.
type DocumentKind string

const (
	KindGoodsReceipt DocumentKind = "bapb"
	KindWorkReceipt  DocumentKind = "bapp"
)

// ParseDocumentKind validates a kind path segment.
func ParseDocumentKind(s string) (DocumentKind, error) {
	switch DocumentKind(s) {
	case KindGoodsReceipt, KindWorkReceipt:
		return DocumentKind(s), nil
	}
	return "", ValidationFailed(fmt.Sprintf("unknown document kind %q", s))
}

// Document statuses. Transitions are monotonic along the graph below;
// the only backward-looking move is an explicit rejection.
const (
	StatusDraft           = "draft"
	StatusSubmitted       = "submitted"
	StatusReviewed        = "reviewed"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusReviewedPIC     = "reviewed_pic"
	StatusApprovedDireksi = "approved_direksi"
)

// Transition is one status-changing operation of the workflow.
type Transition string

const (
	TransitionSubmit  Transition = "submit"
	TransitionReview  Transition = "review"
	TransitionApprove Transition = "approve"
	TransitionReject  Transition = "reject"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID    int
	Role  string
	Name  string
	Email string
}

// DisplayName is the name recorded in history rows, falling back to the
// email when the account has no name.
func (a Actor) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

// transitionRule is one edge set of the state machine: who may perform
// the transition, from which statuses, and where it lands.
type transitionRule struct {
	role string
	from []string
	to   string
}

// The full transition graph, fixed per document kind.
//
// Goods-receipt: draft -> submitted -> reviewed -> approved|rejected,
// with the vendor submitting and the inspector doing the rest.
//
// Work-receipt: draft -> submitted, then the executive may approve or
// reject from draft, submitted, or reviewed_pic.
var transitionRules = map[DocumentKind]map[Transition]transitionRule{
	KindGoodsReceipt: {
		TransitionSubmit:  {role: models.RoleVendor, from: []string{StatusDraft}, to: StatusSubmitted},
		TransitionReview:  {role: models.RoleInspector, from: []string{StatusSubmitted}, to: StatusReviewed},
		TransitionApprove: {role: models.RoleInspector, from: []string{StatusReviewed}, to: StatusApproved},
		TransitionReject:  {role: models.RoleInspector, from: []string{StatusReviewed}, to: StatusRejected},
	},
	KindWorkReceipt: {
		TransitionSubmit:  {role: models.RoleVendor, from: []string{StatusDraft}, to: StatusSubmitted},
		TransitionApprove: {role: models.RoleExecutive, from: []string{StatusDraft, StatusSubmitted, StatusReviewedPIC}, to: StatusApprovedDireksi},
		TransitionReject:  {role: models.RoleExecutive, from: []string{StatusDraft, StatusSubmitted, StatusReviewedPIC}, to: StatusRejected},
	},
}

// AuthorizeTransition checks the actor's role against the transition
// rule without touching document state. It fails with forbidden before
// any datastore access happens.
func AuthorizeTransition(kind DocumentKind, t Transition, actor Actor) (*transitionRule, *Error) {
	rules, ok := transitionRules[kind]
	if !ok {
		return nil, ValidationFailed(fmt.Sprintf("unknown document kind %q", kind))
	}
	rule, ok := rules[t]
	if !ok {
		return nil, ValidationFailed(fmt.Sprintf("transition %q is not defined for %s documents", t, kind))
	}
	if actor.Role != rule.role {
		return nil, Forbidden(fmt.Sprintf("only role %q may %s a %s document", rule.role, t, kind))
	}
	return &rule, nil
}

// GuardStatus verifies the persisted status satisfies the transition
// precondition. Callers run this against a row-locked re-read inside the
// transaction, so a stale transition fails instead of overwriting a
// racing actor's work.
func (r *transitionRule) GuardStatus(current string) *Error {
	for _, s := range r.from {
		if s == current {
			return nil
		}
	}
	return InvalidState(fmt.Sprintf("transition not allowed from status %q", current))
}

// Target returns the destination status of the rule.
func (r *transitionRule) Target() string { return r.to }

// NextStatuses lists the statuses reachable from current for a kind.
// The stats tally uses it, through IsTerminal, to split pending
// documents from decided ones.
func NextStatuses(kind DocumentKind, current string) []string {
	var next []string
	for _, rule := range transitionRules[kind] {
		for _, s := range rule.from {
			if s == current {
				next = append(next, rule.to)
				break
			}
		}
	}
	return next
}

// IsTerminal reports whether no transition leaves the given status.
func IsTerminal(kind DocumentKind, status string) bool {
	return len(NextStatuses(kind, status)) == 0
}
