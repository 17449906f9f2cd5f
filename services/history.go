package services

import (
	"gorm.io/gorm"

	"procurement-receipt-api/models"
)

// Cap on the global audit feed.
const historyFeedLimit = 100

// HistoryService owns the append-only audit log. Entries are written
// inside the caller's transaction so a failed transition leaves no trace.
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record appends one entry inside tx. Returns a plain error so
// transaction closures can return the result directly.
func (s *HistoryService) Record(tx *gorm.DB, entry *models.HistoryEntry) error {
	if err := tx.Create(entry).Error; err != nil {
		return Unavailable("failed to record document history", err)
	}
	return nil
}

// Timeline returns the full ascending history of one document.
func (s *HistoryService) Timeline(kind DocumentKind, documentID int) ([]models.HistoryEntry, *Error) {
	var entries []models.HistoryEntry
	err := s.db.
		Where("document_kind = ? AND document_id = ?", string(kind), documentID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, Unavailable("failed to load document history", err)
	}
	return entries, nil
}

// Feed returns the global audit feed, newest first, optionally narrowed
// to a kind and/or document id.
func (s *HistoryService) Feed(kind *DocumentKind, documentID *int) ([]models.HistoryEntry, *Error) {
	query := s.db.Model(&models.HistoryEntry{})
	if kind != nil {
		query = query.Where("document_kind = ?", string(*kind))
	}
	if documentID != nil {
		query = query.Where("document_id = ?", *documentID)
	}

	var entries []models.HistoryEntry
	if err := query.Order("created_at DESC").Limit(historyFeedLimit).Find(&entries).Error; err != nil {
		return nil, Unavailable("failed to load audit feed", err)
	}
	return entries, nil
}

// LastInspector derives the most recent inspector to touch a document
// from its ascending timeline. Empty when no inspector acted yet.
func LastInspector(timeline []models.HistoryEntry) string {
	for i := len(timeline) - 1; i >= 0; i-- {
		if timeline[i].ActorRole == models.RoleInspector {
			return timeline[i].ActorName
		}
	}
	return ""
}
