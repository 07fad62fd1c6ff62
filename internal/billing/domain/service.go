package domain

import (
	"context"
	"errors"
	"time"

	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/db/pagination"
)

// ItemInput is a chargeable line supplied by the caller. UnitPrice is in
// minor units.
type ItemInput struct {
	ServiceType string `json:"service_type"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

type CreateBillRequest struct {
	PatientID      string      `json:"patient_id"`
	HospitalID     string      `json:"hospital_id"`
	AppointmentID  *string     `json:"appointment_id,omitempty"`
	Items          []ItemInput `json:"items"`
	DiscountAmount int64       `json:"discount_amount"`
	TaxAmount      int64       `json:"tax_amount"`
	DueDate        *time.Time  `json:"due_date,omitempty"`
	Notes          string      `json:"notes,omitempty"`
}

type UpdateBillRequest struct {
	BillID         string
	Version        int64       `json:"version"`
	PatientID      string      `json:"patient_id"`
	HospitalID     string      `json:"hospital_id"`
	AppointmentID  *string     `json:"appointment_id,omitempty"`
	Items          []ItemInput `json:"items"`
	DiscountAmount int64       `json:"discount_amount"`
	TaxAmount      int64       `json:"tax_amount"`
	Notes          string      `json:"notes,omitempty"`
}

type ListBillsRequest struct {
	pagination.Pagination
}

type ListBillsResponse struct {
	pagination.PageInfo
	Bills []Bill `json:"bills"`
}

// Service is the billing aggregate's public contract. Mutations that take a
// Version fail with ErrConcurrentModification when the stored version has
// advanced past it.
type Service interface {
	Create(ctx context.Context, req CreateBillRequest) (Bill, error)
	Update(ctx context.Context, req UpdateBillRequest) (Bill, error)
	GetByID(ctx context.Context, id string) (Bill, error)
	ListByPatient(ctx context.Context, patientID string) ([]Bill, error)
	ListByHospital(ctx context.Context, hospitalID string) ([]Bill, error)
	ListActive(ctx context.Context, req ListBillsRequest) (ListBillsResponse, error)

	AddItem(ctx context.Context, billID string, version int64, item ItemInput) (Bill, error)
	RemoveItem(ctx context.Context, billID string, version int64, itemID string) (Bill, error)
	ListItems(ctx context.Context, billID string) ([]BillItem, error)

	MarkSent(ctx context.Context, billID string, version int64) (Bill, error)
	Cancel(ctx context.Context, billID string, version int64) (Bill, error)
	Deactivate(ctx context.Context, billID string, version int64) error
}

var (
	ErrBillNotFound           = errors.New("bill_not_found")
	ErrItemNotFound           = errors.New("bill_item_not_found")
	ErrInvalidBillID          = errors.New("invalid_bill_id")
	ErrInvalidAmount          = errors.New("invalid_amount")
	ErrInvalidState           = errors.New("invalid_state")
	ErrHasDependents          = errors.New("has_dependents")
	ErrConcurrentModification = errors.New("concurrent_modification")
	ErrAppointmentMismatch    = errors.New("appointment_mismatch")
	ErrInvalidPageToken       = errors.New("invalid_page_token")
)
