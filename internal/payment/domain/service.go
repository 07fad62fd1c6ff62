package domain

import (
	"context"
	"errors"

	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/db/pagination"
)

type ProcessPaymentRequest struct {
	BillID      string `json:"bill_id"`
	Amount      int64  `json:"amount"`
	Method      string `json:"method"`
	ReferenceNo string `json:"reference_no,omitempty"`
}

type ListPaymentsRequest struct {
	pagination.Pagination
	BillID string
}

type ListPaymentsResponse struct {
	pagination.PageInfo
	Payments []Payment `json:"payments"`
}

// Service records and reverses payments. Process retries internally on a
// version conflict because a fixed amount is always safe to re-apply against
// a fresh read of the bill.
type Service interface {
	Process(ctx context.Context, req ProcessPaymentRequest) (Payment, error)
	Void(ctx context.Context, paymentID string) (Payment, error)
	GetByID(ctx context.Context, id string) (Payment, error)
	ListByBill(ctx context.Context, billID string) ([]Payment, error)
	ListByBillPaged(ctx context.Context, req ListPaymentsRequest) (ListPaymentsResponse, error)
	ListByPatient(ctx context.Context, patientID string) ([]Payment, error)
	ListByHospital(ctx context.Context, hospitalID string) ([]Payment, error)
}

var (
	ErrPaymentNotFound          = errors.New("payment_not_found")
	ErrInvalidPaymentID         = errors.New("invalid_payment_id")
	ErrInvalidAmount            = errors.New("invalid_amount")
	ErrAmountExceedsOutstanding = errors.New("amount_exceeds_outstanding")
	ErrAlreadyVoided            = errors.New("payment_already_voided")
	ErrInvalidPageToken         = errors.New("invalid_page_token")
)
