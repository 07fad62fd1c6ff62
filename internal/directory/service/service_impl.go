package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	directorydomain "github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/internal/directory/domain"
	"github.com/TamimaMostafaMonisha/HMS-With-Docker-sub000/pkg/repository"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	patients     repository.Repository[directorydomain.Patient]
	hospitals    repository.Repository[directorydomain.Hospital]
	appointments repository.Repository[directorydomain.Appointment]
}

func NewService(p Params) directorydomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("directory.service"),

		patients:     repository.ProvideStore[directorydomain.Patient](p.DB),
		hospitals:    repository.ProvideStore[directorydomain.Hospital](p.DB),
		appointments: repository.ProvideStore[directorydomain.Appointment](p.DB),
	}
}

func (s *Service) PatientExists(ctx context.Context, id string) (bool, error) {
	patientID, err := parseID(id)
	if err != nil {
		return false, directorydomain.ErrInvalidID
	}
	patient, err := s.patients.FindOne(ctx, &directorydomain.Patient{ID: patientID, Active: true})
	if err != nil {
		return false, err
	}
	return patient != nil, nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (directorydomain.Patient, error) {
	patientID, err := parseID(id)
	if err != nil {
		return directorydomain.Patient{}, directorydomain.ErrInvalidID
	}
	patient, err := s.patients.FindOne(ctx, &directorydomain.Patient{ID: patientID})
	if err != nil {
		return directorydomain.Patient{}, err
	}
	if patient == nil {
		return directorydomain.Patient{}, directorydomain.ErrPatientNotFound
	}
	return *patient, nil
}

func (s *Service) HospitalExists(ctx context.Context, id string) (bool, error) {
	hospitalID, err := parseID(id)
	if err != nil {
		return false, directorydomain.ErrInvalidID
	}
	hospital, err := s.hospitals.FindOne(ctx, &directorydomain.Hospital{ID: hospitalID, Active: true})
	if err != nil {
		return false, err
	}
	return hospital != nil, nil
}

func (s *Service) GetAppointment(ctx context.Context, id string) (directorydomain.Appointment, error) {
	appointmentID, err := parseID(id)
	if err != nil {
		return directorydomain.Appointment{}, directorydomain.ErrInvalidID
	}
	appointment, err := s.appointments.FindOne(ctx, &directorydomain.Appointment{ID: appointmentID})
	if err != nil {
		return directorydomain.Appointment{}, err
	}
	if appointment == nil {
		return directorydomain.Appointment{}, directorydomain.ErrAppointmentNotFound
	}
	return *appointment, nil
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}
