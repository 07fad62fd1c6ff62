package domain

import (
	"context"
	"errors"
)

type CreateClaimRequest struct {
	BillID      string `json:"bill_id"`
	PolicyID    string `json:"policy_id"`
	ClaimAmount int64  `json:"claim_amount"`
	Notes       string `json:"notes,omitempty"`
}

type CreateSettlementRequest struct {
	ClaimID       string `json:"claim_id"`
	AmountSettled int64  `json:"amount_settled"`
	Remarks       string `json:"remarks,omitempty"`
}

// Service submits claims against bills and applies settlements. A settlement
// moves money exactly like a payment: it increases the owning bill's paid
// amount under the same version guard.
type Service interface {
	CreateClaim(ctx context.Context, req CreateClaimRequest) (InsuranceClaim, error)
	GetClaim(ctx context.Context, id string) (InsuranceClaim, error)
	UpdateClaimStatus(ctx context.Context, id string, status ClaimStatus) (InsuranceClaim, error)
	CreateSettlement(ctx context.Context, req CreateSettlementRequest) (InsuranceSettlement, error)
	ListSettlementsByClaim(ctx context.Context, claimID string) ([]InsuranceSettlement, error)
	ListClaimsByStatus(ctx context.Context, status ClaimStatus) ([]InsuranceClaim, error)
	ListClaimsByPatient(ctx context.Context, patientID string) ([]InsuranceClaim, error)
	ListClaimsByPolicy(ctx context.Context, policyID string) ([]InsuranceClaim, error)
	GetPolicy(ctx context.Context, id string) (InsurancePolicy, error)
}

var (
	ErrClaimNotFound            = errors.New("claim_not_found")
	ErrPolicyNotFound           = errors.New("policy_not_found")
	ErrInvalidClaimID           = errors.New("invalid_claim_id")
	ErrInvalidAmount            = errors.New("invalid_amount")
	ErrInvalidStatus            = errors.New("invalid_claim_status")
	ErrDuplicateClaim           = errors.New("duplicate_claim")
	ErrPolicyNotEffective       = errors.New("policy_not_effective")
	ErrAmountExceedsNet         = errors.New("amount_exceeds_net")
	ErrAmountExceedsClaim       = errors.New("amount_exceeds_claim")
	ErrAmountExceedsOutstanding = errors.New("amount_exceeds_outstanding")
)
