package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	directorydomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/directory/domain"
)

type directoryFixture struct {
	svc directorydomain.Service

	patient     directorydomain.Patient
	hospital    directorydomain.Hospital
	appointment directorydomain.Appointment
	inactive    directorydomain.Patient
}

func newDirectoryFixture(t *testing.T) *directoryFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&directorydomain.Patient{},
		&directorydomain.Hospital{},
		&directorydomain.Appointment{},
	))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	f := &directoryFixture{
		patient: directorydomain.Patient{
			ID: node.Generate(), FirstName: "Asha", LastName: "Rahman",
			Active: true, CreatedAt: now,
		},
		hospital: directorydomain.Hospital{
			ID: node.Generate(), Name: "City General", Active: true, CreatedAt: now,
		},
		inactive: directorydomain.Patient{
			ID: node.Generate(), FirstName: "Gone", LastName: "Away",
			Active: false, CreatedAt: now,
		},
	}
	f.appointment = directorydomain.Appointment{
		ID:          node.Generate(),
		PatientID:   f.patient.ID,
		HospitalID:  f.hospital.ID,
		ScheduledAt: now.Add(24 * time.Hour),
		CreatedAt:   now,
	}

	require.NoError(t, db.Create(&f.patient).Error)
	require.NoError(t, db.Create(&f.hospital).Error)
	require.NoError(t, db.Create(&f.inactive).Error)
	require.NoError(t, db.Create(&f.appointment).Error)

	f.svc = NewService(Params{DB: db, Log: zap.NewNop()})
	return f
}

func TestPatientExists(t *testing.T) {
	f := newDirectoryFixture(t)
	ctx := context.Background()

	ok, err := f.svc.PatientExists(ctx, f.patient.ID.String())
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.svc.PatientExists(ctx, "999999999999999999")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = f.svc.PatientExists(ctx, "not-an-id")
	require.ErrorIs(t, err, directorydomain.ErrInvalidID)
}

func TestInactivePatientHidden(t *testing.T) {
	f := newDirectoryFixture(t)

	ok, err := f.svc.PatientExists(context.Background(), f.inactive.ID.String())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetPatient(t *testing.T) {
	f := newDirectoryFixture(t)

	got, err := f.svc.GetPatient(context.Background(), f.patient.ID.String())
	require.NoError(t, err)
	require.Equal(t, "Asha", got.FirstName)

	_, err = f.svc.GetPatient(context.Background(), "999999999999999999")
	require.ErrorIs(t, err, directorydomain.ErrPatientNotFound)
}

func TestHospitalExists(t *testing.T) {
	f := newDirectoryFixture(t)

	ok, err := f.svc.HospitalExists(context.Background(), f.hospital.ID.String())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGetAppointment(t *testing.T) {
	f := newDirectoryFixture(t)

	got, err := f.svc.GetAppointment(context.Background(), f.appointment.ID.String())
	require.NoError(t, err)
	require.Equal(t, f.patient.ID, got.PatientID)
	require.Equal(t, f.hospital.ID, got.HospitalID)

	_, err = f.svc.GetAppointment(context.Background(), "999999999999999999")
	require.ErrorIs(t, err, directorydomain.ErrAppointmentNotFound)
}
