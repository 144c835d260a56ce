package services

import (
	"context"
	"strings"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/repository"
	"github.com/aarogyam/aarogyam/internal/storage"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SlotInput is one row of the availability editor.
type SlotInput struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// DoctorProfileInput holds the editable doctor fields. Empty values keep
// the stored ones; a nil Slots keeps the current availability.
type DoctorProfileInput struct {
	FullName       string   `form:"fullName" json:"fullName" validate:"max=100"`
	Qualification  string   `form:"qualification" json:"qualification"`
	Specialization string   `form:"specialization" json:"specialization"`
	Hospital       string   `form:"hospital" json:"hospital"`
	Phone          string   `form:"phone" json:"phone"`
	Experience     *int     `form:"experience" json:"experience" validate:"omitempty,gte=0,lte=80"`
	ConsultantFees *float64 `form:"consultantFees" json:"consultantFees" validate:"omitempty,gte=0"`

	Slots   []SlotInput    `form:"-" json:"availabilitySlots" validate:"-"`
	Picture storage.Upload `form:"-" json:"-" validate:"-"`
}

type PatientProfileInput struct {
	FullName  string   `form:"fullName" json:"fullName" validate:"max=100"`
	Phone     string   `form:"phone" json:"phone"`
	Gender    string   `form:"gender" json:"gender" validate:"omitempty,oneof=male female other"`
	BloodType string   `form:"bloodType" json:"bloodType" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Age       *int     `form:"age" json:"age" validate:"omitempty,gte=0,lte=150"`
	Height    *float64 `form:"height" json:"height" validate:"omitempty,gte=0"`
	Weight    *float64 `form:"weight" json:"weight" validate:"omitempty,gte=0"`
}

type ProfileService struct {
	store    *repository.Store
	uploader *storage.Uploader
	loc      *time.Location
	logger   zerolog.Logger
	Now      func() time.Time
}

func NewProfileService(store *repository.Store, uploader *storage.Uploader, loc *time.Location, logger zerolog.Logger) *ProfileService {
	return &ProfileService{
		store:    store,
		uploader: uploader,
		loc:      loc,
		logger:   logger.With().Str("component", "profiles").Logger(),
		Now:      time.Now,
	}
}

func (s *ProfileService) Doctor(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	return s.store.Doctors.GetByID(ctx, id)
}

func (s *ProfileService) Patient(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	return s.store.Patients.GetByID(ctx, id)
}

// DoctorsForBooking lists every doctor with only the slots still bookable.
func (s *ProfileService) DoctorsForBooking(ctx context.Context) ([]*models.Doctor, error) {
	doctors, err := s.store.Doctors.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	for _, d := range doctors {
		d.AvailabilitySlots = models.FutureSlots(d.AvailabilitySlots, now, s.loc)
	}
	return doctors, nil
}

// Slots returns a doctor's future slots, optionally limited to one day.
func (s *ProfileService) Slots(ctx context.Context, doctorID primitive.ObjectID, date string) ([]models.AvailabilitySlot, error) {
	d, err := s.store.Doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	slots := models.FutureSlots(d.AvailabilitySlots, s.Now(), s.loc)
	if date = strings.TrimSpace(date); date == "" {
		return slots, nil
	}
	day, err := models.ParseDay(date, s.loc)
	if err != nil {
		return nil, invalid("date must be a date (YYYY-MM-DD)")
	}
	out := make([]models.AvailabilitySlot, 0, len(slots))
	for _, slot := range slots {
		if models.StartOfDay(slot.Date, s.loc).Equal(day) {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (s *ProfileService) DoctorsOfPatient(ctx context.Context, patientID primitive.ObjectID) ([]*models.Doctor, error) {
	p, err := s.store.Patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(p.Doctors) == 0 {
		return []*models.Doctor{}, nil
	}
	return s.store.Doctors.ListByIDs(ctx, p.Doctors)
}

func (s *ProfileService) PatientsOfDoctor(ctx context.Context, doctorID primitive.ObjectID) ([]*models.Patient, error) {
	d, err := s.store.Doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if len(d.Patients) == 0 {
		return []*models.Patient{}, nil
	}
	return s.store.Patients.ListByIDs(ctx, d.Patients)
}

// UpdateDoctor applies a profile edit. Only the doctor may edit their own profile.
func (s *ProfileService) UpdateDoctor(ctx context.Context, actorID, doctorID primitive.ObjectID, in DoctorProfileInput) (*models.Doctor, error) {
	if actorID != doctorID {
		return nil, ErrForbidden
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	d, err := s.store.Doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	setIfPresent(&d.FullName, in.FullName)
	setIfPresent(&d.Qualification, in.Qualification)
	setIfPresent(&d.Specialization, in.Specialization)
	setIfPresent(&d.Hospital, in.Hospital)
	setIfPresent(&d.Phone, in.Phone)
	if in.Experience != nil {
		d.Experience = *in.Experience
	}
	if in.ConsultantFees != nil {
		d.ConsultantFees = *in.ConsultantFees
	}
	if in.Slots != nil {
		if d.AvailabilitySlots, err = s.availability(ctx, doctorID, in.Slots); err != nil {
			return nil, err
		}
	}

	var previous string
	if !in.Picture.IsZero() {
		url, err := s.uploader.SaveImage(ctx, "profiles", in.Picture)
		if err != nil {
			return nil, uploadError(err)
		}
		previous, d.Profile = d.Profile, url
	}

	d.UpdatedAt = s.Now()
	if err := s.store.Doctors.UpdateProfile(ctx, d); err != nil {
		return nil, err
	}
	discard(ctx, s.uploader, s.logger, previous)
	return d, nil
}

// availability keeps complete rows dated today or later, drops windows
// already held by an active appointment and sorts the rest.
func (s *ProfileService) availability(ctx context.Context, doctorID primitive.ObjectID, rows []SlotInput) ([]models.AvailabilitySlot, error) {
	today := models.StartOfDay(s.Now(), s.loc)
	appts, err := s.store.Appointments.Find(ctx, repository.AppointmentFilter{DoctorID: &doctorID, From: &today})
	if err != nil {
		return nil, err
	}
	var booked []models.AvailabilitySlot
	for _, a := range appts {
		if a.Status == models.StatusCancelled {
			continue
		}
		if slot, err := a.Slot(); err == nil {
			booked = append(booked, slot)
		}
	}

	out := make([]models.AvailabilitySlot, 0, len(rows))
	for _, row := range rows {
		if row.Date == "" || row.StartTime == "" || row.EndTime == "" {
			continue
		}
		day, err := models.ParseDay(row.Date, s.loc)
		if err != nil || day.Before(today) {
			continue
		}
		start, end, err := models.ParseTimeSlot(row.StartTime + "-" + row.EndTime)
		if err != nil {
			continue
		}
		slot := models.AvailabilitySlot{Day: strings.TrimSpace(row.Day), Date: day, StartTime: start, EndTime: end}
		if slot.Day == "" {
			slot.Day = day.Weekday().String()
		}
		if containsSlot(out, slot) || containsSlot(booked, slot) {
			continue
		}
		out = append(out, slot)
	}
	models.SortSlots(out, s.loc)
	return out, nil
}

func (s *ProfileService) UpdatePatient(ctx context.Context, patientID primitive.ObjectID, in PatientProfileInput) (*models.Patient, error) {
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	in.BloodType = strings.ToUpper(strings.TrimSpace(in.BloodType))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	p, err := s.store.Patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	setIfPresent(&p.FullName, in.FullName)
	setIfPresent(&p.Phone, in.Phone)
	setIfPresent(&p.BloodType, in.BloodType)
	if in.Gender != "" {
		p.Gender = models.Gender(in.Gender)
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Height != nil {
		p.Height = *in.Height
	}
	if in.Weight != nil {
		p.Weight = *in.Weight
	}

	p.UpdatedAt = s.Now()
	if err := s.store.Patients.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func containsSlot(slots []models.AvailabilitySlot, slot models.AvailabilitySlot) bool {
	for _, s := range slots {
		if s.Same(slot) {
			return true
		}
	}
	return false
}
