package domain

import (
	"context"
	"errors"
)

type ProcessRefundRequest struct {
	BillID string `json:"bill_id"`
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// Service reverses recorded payments. Process is single-shot on a version
// conflict: a refund amount derived from a stale paid balance must be
// re-derived by the caller, so the conflict is surfaced instead of retried.
type Service interface {
	Process(ctx context.Context, req ProcessRefundRequest) (Refund, error)
	ListByBill(ctx context.Context, billID string) ([]Refund, error)
}

var (
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrAmountExceedsPaid = errors.New("amount_exceeds_paid")
)
