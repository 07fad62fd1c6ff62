// Package domain contains the patient, hospital, and appointment reference
// records the billing ledger validates against.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Patient is the minimal patient record the ledger needs.
type Patient struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	FirstName string       `json:"first_name" gorm:"type:text;not null"`
	LastName  string       `json:"last_name" gorm:"type:text;not null"`
	Active    bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (Patient) TableName() string { return "patients" }

// Hospital is the facility a bill is issued by.
type Hospital struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Active    bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

func (Hospital) TableName() string { return "hospitals" }

// Appointment links a bill to the clinical visit it originated from.
type Appointment struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	PatientID   snowflake.ID `json:"patient_id" gorm:"not null;index"`
	HospitalID  snowflake.ID `json:"hospital_id" gorm:"not null;index"`
	ScheduledAt time.Time    `json:"scheduled_at" gorm:"not null"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
}

func (Appointment) TableName() string { return "appointments" }
