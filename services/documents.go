package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"procurement-receipt-api/models"
)

// DocumentSummary is one row of the combined cross-kind list.
type DocumentSummary struct {
	Kind           string    `json:"document_type"`
	ID             int       `json:"id"`
	Number         string    `json:"number"`
	VendorID       int       `json:"vendor_id"`
	VendorName     string    `json:"vendor_name"`
	ContractNumber string    `json:"contract_number"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// StatusCounts maps document status to row count.
type StatusCounts map[string]int64

// DocumentStats is the role-scoped dashboard summary. Pending counts
// documents some transition can still move; Decided counts terminal
// ones.
type DocumentStats struct {
	GoodsReceipts StatusCounts `json:"bapb,omitempty"`
	WorkReceipts  StatusCounts `json:"bapp,omitempty"`
	Pending       int64        `json:"pending"`
	Decided       int64        `json:"decided"`
}

// DocumentService provides the read models that span both document
// kinds: the combined list and the dashboard stats.
type DocumentService struct {
	db *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService {
	return &DocumentService{db: db}
}

// Combined merges both kinds into one list, newest first. The two
// tables have independent sort keys, so both matching sets are loaded
// and paginated in memory; list sizes are bounded by the per-vendor
// document count.
func (s *DocumentService) Combined(actor Actor, q ListQuery) ([]DocumentSummary, Pagination, *Error) {
	q.Normalize()

	var goods []models.GoodsReceipt
	goodsQuery := s.db.Preload("Vendor")
	if actor.Role == models.RoleVendor {
		goodsQuery = goodsQuery.Where("vendor_id = ?", actor.ID)
	}
	if len(q.Statuses) > 0 {
		goodsQuery = goodsQuery.Where("status IN ?", q.Statuses)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		goodsQuery = goodsQuery.Where("number LIKE ? OR project_name LIKE ? OR contract_number LIKE ?", like, like, like)
	}
	if err := goodsQuery.Find(&goods).Error; err != nil {
		return nil, Pagination{}, Unavailable("failed to load goods receipts", err)
	}

	var work []models.WorkReceipt
	workQuery := s.db.Preload("Vendor")
	if actor.Role == models.RoleVendor {
		workQuery = workQuery.Where("vendor_id = ?", actor.ID)
	}
	if len(q.Statuses) > 0 {
		workQuery = workQuery.Where("status IN ?", q.Statuses)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		workQuery = workQuery.Where("number LIKE ? OR work_location LIKE ? OR contract_number LIKE ?", like, like, like)
	}
	if err := workQuery.Find(&work).Error; err != nil {
		return nil, Pagination{}, Unavailable("failed to load work receipts", err)
	}

	merged := make([]DocumentSummary, 0, len(goods)+len(work))
	for _, d := range goods {
		merged = append(merged, DocumentSummary{
			Kind:           string(KindGoodsReceipt),
			ID:             d.ID,
			Number:         d.Number,
			VendorID:       d.VendorID,
			VendorName:     d.Vendor.Name,
			ContractNumber: d.ContractNumber,
			Title:          d.ProjectName,
			Status:         d.Status,
			CreatedAt:      d.CreatedAt,
			UpdatedAt:      d.UpdatedAt,
		})
	}
	for _, d := range work {
		merged = append(merged, DocumentSummary{
			Kind:           string(KindWorkReceipt),
			ID:             d.ID,
			Number:         d.Number,
			VendorID:       d.VendorID,
			VendorName:     d.Vendor.Name,
			ContractNumber: d.ContractNumber,
			Title:          d.WorkLocation,
			Status:         d.Status,
			CreatedAt:      d.CreatedAt,
			UpdatedAt:      d.UpdatedAt,
		})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	total := int64(len(merged))
	start := q.Offset()
	if start > len(merged) {
		start = len(merged)
	}
	end := start + q.Limit
	if end > len(merged) {
		end = len(merged)
	}
	return merged[start:end], paginationFor(q, total), nil
}

// Stats returns status counts scoped by role: inspectors see goods
// receipts, executives see work receipts, vendors see both of their
// own.
func (s *DocumentService) Stats(actor Actor) (*DocumentStats, *Error) {
	stats := &DocumentStats{}

	countGoods := actor.Role == models.RoleInspector || actor.Role == models.RoleVendor
	countWork := actor.Role == models.RoleExecutive || actor.Role == models.RoleVendor

	if countGoods {
		counts, err := s.statusCounts(&models.GoodsReceipt{}, actor)
		if err != nil {
			return nil, err
		}
		stats.GoodsReceipts = counts
		stats.tally(KindGoodsReceipt, counts)
	}
	if countWork {
		counts, err := s.statusCounts(&models.WorkReceipt{}, actor)
		if err != nil {
			return nil, err
		}
		stats.WorkReceipts = counts
		stats.tally(KindWorkReceipt, counts)
	}
	return stats, nil
}

func (st *DocumentStats) tally(kind DocumentKind, counts StatusCounts) {
	for status, n := range counts {
		if IsTerminal(kind, status) {
			st.Decided += n
		} else {
			st.Pending += n
		}
	}
}

func (s *DocumentService) statusCounts(model any, actor Actor) (StatusCounts, *Error) {
	type row struct {
		Status string
		Total  int64
	}
	query := s.db.Model(model).Select("status, COUNT(*) AS total").Group("status")
	if actor.Role == models.RoleVendor {
		query = query.Where("vendor_id = ?", actor.ID)
	}
	var rows []row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, Unavailable("failed to load document stats", err)
	}
	counts := make(StatusCounts, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
