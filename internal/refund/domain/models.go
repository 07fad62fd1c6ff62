// Package domain defines refund records, the reversals of money previously
// recorded against a bill.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Refund struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	BillID    snowflake.ID `json:"bill_id" gorm:"not null;index"`
	Amount    int64        `json:"amount" gorm:"not null"`
	Reason    string       `json:"reason" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;index"`
}

func (Refund) TableName() string {
	return "refunds"
}
