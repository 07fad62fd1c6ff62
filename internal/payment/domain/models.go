// Package domain defines the payment records the ledger keeps against bills.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Payment records money received against a bill. Voiding flips Active to
// false and reverses the effect on the bill; the row itself is never deleted.
type Payment struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	BillID      snowflake.ID `json:"bill_id" gorm:"not null;index"`
	PatientID   snowflake.ID `json:"patient_id" gorm:"not null;index"`
	HospitalID  snowflake.ID `json:"hospital_id" gorm:"not null;index"`
	Amount      int64        `json:"amount" gorm:"not null"`
	Method      string       `json:"method" gorm:"type:text;not null"`
	ReferenceNo string       `json:"reference_no" gorm:"type:text;not null"`
	PaymentDate time.Time    `json:"payment_date" gorm:"not null"`
	Active      bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;index"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (Payment) TableName() string {
	return "payments"
}
