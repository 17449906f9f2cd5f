package models

import "time"

// WorkLineItem is one row of the work-receipt item list.
type WorkLineItem struct {
	Item      string  `json:"item" binding:"required" validate:"required"`
	Quantity  float64 `json:"qty" binding:"required,gt=0" validate:"required,gt=0"`
	Unit      string  `json:"unit" binding:"required" validate:"required"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0" validate:"required,gt=0"`
	Total     float64 `json:"total" binding:"required,gt=0" validate:"required,gt=0"`
}

// WorkReceipt is a record of contracted work performed, subject to
// executive approval (the "bapp" document kind).
type WorkReceipt struct {
	ID                int            `gorm:"primaryKey;column:id" json:"id"`
	Number            string         `gorm:"column:number;uniqueIndex" json:"number"`
	VendorID          int            `gorm:"column:vendor_id" json:"vendor_id"`
	ContractNumber    string         `gorm:"column:contract_number" json:"contract_number"`
	ContractDate      time.Time      `gorm:"column:contract_date" json:"contract_date"`
	ContractValue     float64        `gorm:"column:contract_value" json:"contract_value"`
	WorkLocation      string         `gorm:"column:work_location" json:"work_location"`
	LineItems         []WorkLineItem `gorm:"column:line_items;serializer:json" json:"line_items"`
	InspectionResult  string         `gorm:"column:inspection_result" json:"inspection_result"`
	Note              *string        `gorm:"column:note" json:"note,omitempty"`
	Deadline          *time.Time     `gorm:"column:deadline" json:"deadline,omitempty"`
	Status            string         `gorm:"column:status" json:"status"`
	ApprovalNote      *string        `gorm:"column:approval_note" json:"approval_note,omitempty"`
	RejectionReason   *string        `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	ExecutiveSignedAt *time.Time     `gorm:"column:executive_signed_at" json:"executive_signed_at,omitempty"`
	CreatedAt         time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at" json:"updated_at"`

	Vendor Vendor `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}

func (WorkReceipt) TableName() string { return "work_receipts" }
