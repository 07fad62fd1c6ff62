// Package domain defines insurance policies, the claims raised against
// bills, and the settlements that pay claims out.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type ClaimStatus string

const (
	ClaimStatusSubmitted ClaimStatus = "SUBMITTED"
	ClaimStatusPending   ClaimStatus = "PENDING"
	ClaimStatusApproved  ClaimStatus = "APPROVED"
	ClaimStatusRejected  ClaimStatus = "REJECTED"
	ClaimStatusSettled   ClaimStatus = "SETTLED"
	ClaimStatusCancelled ClaimStatus = "CANCELLED"
)

// Terminal reports whether the claim can no longer change status.
func (s ClaimStatus) Terminal() bool {
	switch s {
	case ClaimStatusSettled, ClaimStatusRejected, ClaimStatusCancelled:
		return true
	}
	return false
}

// rank orders the forward path SUBMITTED -> PENDING -> APPROVED -> SETTLED.
// REJECTED and CANCELLED sit outside the path and are reachable from any
// non-terminal state.
func (s ClaimStatus) rank() (int, bool) {
	switch s {
	case ClaimStatusSubmitted:
		return 0, true
	case ClaimStatusPending:
		return 1, true
	case ClaimStatusApproved:
		return 2, true
	case ClaimStatusSettled:
		return 3, true
	}
	return 0, false
}

// CanTransition reports whether moving from s to next is a legal claim
// status change.
func (s ClaimStatus) CanTransition(next ClaimStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == ClaimStatusRejected || next == ClaimStatusCancelled {
		return true
	}
	from, ok := s.rank()
	if !ok {
		return false
	}
	to, ok := next.rank()
	if !ok {
		return false
	}
	return to > from
}

// InsurancePolicy is a time-bounded coverage record; claims are only
// accepted while the current date falls inside its validity window.
type InsurancePolicy struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	PolicyNumber string       `json:"policy_number" gorm:"type:text;not null;uniqueIndex"`
	Provider     string       `json:"provider" gorm:"type:text;not null"`
	HolderName   string       `json:"holder_name" gorm:"type:text;not null"`
	ValidFrom    time.Time    `json:"valid_from" gorm:"not null"`
	ValidTo      time.Time    `json:"valid_to" gorm:"not null"`
	Active       bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null"`
}

func (InsurancePolicy) TableName() string {
	return "insurance_policies"
}

// EffectiveAt reports whether the policy covers the given instant.
func (p InsurancePolicy) EffectiveAt(t time.Time) bool {
	return p.Active && !t.Before(p.ValidFrom) && !t.After(p.ValidTo)
}

// InsuranceClaim is raised against a bill; at most one claim that is not
// rejected or cancelled may exist per bill.
type InsuranceClaim struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	BillID      snowflake.ID `json:"bill_id" gorm:"not null;index"`
	PolicyID    snowflake.ID `json:"policy_id" gorm:"not null;index"`
	ClaimAmount int64        `json:"claim_amount" gorm:"not null"`
	Status      ClaimStatus  `json:"status" gorm:"type:text;not null;index"`
	SubmittedAt time.Time    `json:"submitted_at" gorm:"not null"`
	SettledAt   *time.Time   `json:"settled_at,omitempty"`
	Notes       string       `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null;index"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (InsuranceClaim) TableName() string {
	return "insurance_claims"
}

// InsuranceSettlement is the insurer's recorded payout against a claim.
type InsuranceSettlement struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	ClaimID       snowflake.ID `json:"claim_id" gorm:"not null;index"`
	AmountSettled int64        `json:"amount_settled" gorm:"not null"`
	Remarks       string       `json:"remarks,omitempty" gorm:"type:text"`
	SettledAt     time.Time    `json:"settled_at" gorm:"not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null"`
}

func (InsuranceSettlement) TableName() string {
	return "insurance_settlements"
}
