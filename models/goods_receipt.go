package models

import "time"

// Goods line-item inspection statuses.
const (
	InspectionUnchecked     = "unchecked"
	InspectionConforming    = "conforming"
	InspectionNonconforming = "nonconforming"
)

// GoodsLineItem is one row of the goods-receipt item list. The list is
// persisted as a JSON column, never as free text.
type GoodsLineItem struct {
	Name             string `json:"name" binding:"required" validate:"required"`
	Quantity         int    `json:"qty" binding:"required,min=1" validate:"required,min=1"`
	Unit             string `json:"unit"`
	Note             string `json:"note,omitempty"`
	InspectionStatus string `json:"inspection_status" validate:"omitempty,oneof=unchecked conforming nonconforming"`
}

// GoodsReceipt is a record of physical goods delivered against a contract
// (the "bapb" document kind).
type GoodsReceipt struct {
	ID                int             `gorm:"primaryKey;column:id" json:"id"`
	Number            string          `gorm:"column:number;uniqueIndex" json:"number"`
	VendorID          int             `gorm:"column:vendor_id" json:"vendor_id"`
	ContractNumber    string          `gorm:"column:contract_number" json:"contract_number"`
	ProjectName       string          `gorm:"column:project_name" json:"project_name"`
	ContractValue     float64         `gorm:"column:contract_value" json:"contract_value"`
	WorkDescription   string          `gorm:"column:work_description" json:"work_description"`
	IssuedDate        time.Time       `gorm:"column:issued_date" json:"issued_date"`
	Deadline          *time.Time      `gorm:"column:deadline" json:"deadline,omitempty"`
	DeliveryDate      time.Time       `gorm:"column:delivery_date" json:"delivery_date"`
	Courier           *string         `gorm:"column:courier" json:"courier,omitempty"`
	LineItems         []GoodsLineItem `gorm:"column:line_items;serializer:json" json:"line_items"`
	InspectionResult  string          `gorm:"column:inspection_result" json:"inspection_result"`
	ExtraNote         *string         `gorm:"column:extra_note" json:"extra_note,omitempty"`
	Status            string          `gorm:"column:status" json:"status"`
	InspectorNote     *string         `gorm:"column:inspector_note" json:"inspector_note,omitempty"`
	ApprovalNote      *string         `gorm:"column:approval_note" json:"approval_note,omitempty"`
	RejectionReason   *string         `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	ReviewedAt        *time.Time      `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	InspectorSignedAt *time.Time      `gorm:"column:inspector_signed_at" json:"inspector_signed_at,omitempty"`
	CreatedAt         time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at" json:"updated_at"`

	Vendor Vendor `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}

func (GoodsReceipt) TableName() string { return "goods_receipts" }
