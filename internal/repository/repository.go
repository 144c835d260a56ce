// Package repository persists the clinic documents. Each collection has an
// interface so services can run against MongoDB or the in-memory store.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type DoctorRepository interface {
	Create(ctx context.Context, d *models.Doctor) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	// GetByLogin matches either the username or the email.
	GetByLogin(ctx context.Context, login string) (*models.Doctor, error)
	Exists(ctx context.Context, email, username string) (bool, error)
	List(ctx context.Context) ([]*models.Doctor, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Doctor, error)
	// UpdateProfile overwrites profile fields and availability; reference lists are untouched.
	UpdateProfile(ctx context.Context, d *models.Doctor) error
	AddAppointment(ctx context.Context, doctorID, appointmentID primitive.ObjectID) error
	RemoveAppointment(ctx context.Context, doctorID, appointmentID primitive.ObjectID) error
	AddPatient(ctx context.Context, doctorID, patientID primitive.ObjectID) error
	// ClaimSlot removes the slot if it is still published. ErrNotFound means
	// another booking got it first or it never existed.
	ClaimSlot(ctx context.Context, doctorID primitive.ObjectID, slot models.AvailabilitySlot) error
	ReleaseSlot(ctx context.Context, doctorID primitive.ObjectID, slot models.AvailabilitySlot) error
}

type PatientRepository interface {
	Create(ctx context.Context, p *models.Patient) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
	GetByLogin(ctx context.Context, login string) (*models.Patient, error)
	Exists(ctx context.Context, email, username string) (bool, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Patient, error)
	UpdateProfile(ctx context.Context, p *models.Patient) error
	AddAppointment(ctx context.Context, patientID, appointmentID primitive.ObjectID) error
	RemoveAppointment(ctx context.Context, patientID, appointmentID primitive.ObjectID) error
	AddDoctor(ctx context.Context, patientID, doctorID primitive.ObjectID) error
	AddHealthRecord(ctx context.Context, patientID, recordID primitive.ObjectID) error
}

// AppointmentFilter narrows Find. Zero fields are ignored; From is
// inclusive and Until exclusive.
type AppointmentFilter struct {
	PatientID       *primitive.ObjectID
	DoctorID        *primitive.ObjectID
	From            *time.Time
	Until           *time.Time
	Status          models.AppointmentStatus
	WithAttachments bool
	Newest          bool
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	Update(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Find(ctx context.Context, f AppointmentFilter) ([]*models.Appointment, error)
}

type HealthRecordRepository interface {
	Create(ctx context.Context, r *models.HealthRecord) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.HealthRecord, error)
	Update(ctx context.Context, r *models.HealthRecord) error
	ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*models.HealthRecord, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.HealthRecord, error)
}

type BillingRepository interface {
	Create(ctx context.Context, b *models.Billing) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Billing, error)
	Update(ctx context.Context, b *models.Billing) error
	ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*models.Billing, error)
}

// Store groups the repositories a running server needs.
type Store struct {
	Doctors       DoctorRepository
	Patients      PatientRepository
	Appointments  AppointmentRepository
	HealthRecords HealthRecordRepository
	Billings      BillingRepository
}
