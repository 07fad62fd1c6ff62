package domain

import (
	"context"
	"errors"
)

// Service exposes the reference lookups consumed by the billing ledger.
type Service interface {
	PatientExists(ctx context.Context, id string) (bool, error)
	GetPatient(ctx context.Context, id string) (Patient, error)
	HospitalExists(ctx context.Context, id string) (bool, error)
	GetAppointment(ctx context.Context, id string) (Appointment, error)
}

var (
	ErrPatientNotFound     = errors.New("patient_not_found")
	ErrHospitalNotFound    = errors.New("hospital_not_found")
	ErrAppointmentNotFound = errors.New("appointment_not_found")
	ErrInvalidID           = errors.New("invalid_id")
)
