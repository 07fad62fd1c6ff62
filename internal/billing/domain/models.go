// Package domain contains the billing aggregate and its line items.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BillStatus represents the bill lifecycle states.
type BillStatus string

const (
	BillStatusDraft         BillStatus = "DRAFT"
	BillStatusSent          BillStatus = "SENT"
	BillStatusPartiallyPaid BillStatus = "PARTIALLY_PAID"
	BillStatusPaid          BillStatus = "PAID"
	BillStatusOverdue       BillStatus = "OVERDUE"
	BillStatusCancelled     BillStatus = "CANCELLED"
	BillStatusRefunded      BillStatus = "REFUNDED"
)

// Frozen reports whether the bill no longer accepts item or amount edits.
func (s BillStatus) Frozen() bool {
	switch s {
	case BillStatusPaid, BillStatusCancelled, BillStatusRefunded:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status is sticky and never re-derived.
func (s BillStatus) Terminal() bool {
	return s == BillStatusCancelled || s == BillStatusRefunded
}

// Bill is the financial record for one episode of care. All monetary fields
// are minor units at scale 2. Version is the optimistic-concurrency key:
// every write must compare-and-swap against it.
type Bill struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	BillNumber    string        `json:"bill_number" gorm:"type:text;not null;uniqueIndex"`
	BillSeq       int64         `json:"-" gorm:"not null;uniqueIndex"`
	PatientID     snowflake.ID  `json:"patient_id" gorm:"not null;index"`
	HospitalID    snowflake.ID  `json:"hospital_id" gorm:"not null;index"`
	AppointmentID *snowflake.ID `json:"appointment_id,omitempty" gorm:"index"`

	BillDate time.Time  `json:"bill_date" gorm:"not null"`
	DueDate  *time.Time `json:"due_date,omitempty"`

	TotalAmount       int64 `json:"total_amount" gorm:"not null;default:0"`
	DiscountAmount    int64 `json:"discount_amount" gorm:"not null;default:0"`
	TaxAmount         int64 `json:"tax_amount" gorm:"not null;default:0"`
	NetAmount         int64 `json:"net_amount" gorm:"not null;default:0"`
	PaidAmount        int64 `json:"paid_amount" gorm:"not null;default:0"`
	OutstandingAmount int64 `json:"outstanding_amount" gorm:"not null;default:0"`

	Status  BillStatus `json:"status" gorm:"type:text;not null;default:'DRAFT'"`
	Version int64      `json:"version" gorm:"not null;default:0"`
	Notes   string     `json:"notes,omitempty" gorm:"type:text"`
	Active  bool       `json:"active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null"`
}

func (Bill) TableName() string { return "bills" }

// BillItem is one chargeable line on a bill. LineTotal is always
// UnitPrice * Quantity; items never exist without their bill.
type BillItem struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	BillID      snowflake.ID `json:"bill_id" gorm:"not null;index"`
	ServiceType string       `json:"service_type" gorm:"type:text;not null"`
	Description string       `json:"description" gorm:"type:text"`
	Quantity    int64        `json:"quantity" gorm:"not null"`
	UnitPrice   int64        `json:"unit_price" gorm:"not null"`
	LineTotal   int64        `json:"line_total" gorm:"not null"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
}

func (BillItem) TableName() string { return "bill_items" }
