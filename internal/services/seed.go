package services

import (
	"context"
	"errors"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/repository"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeedPassword is the password of every demo account.
const SeedPassword = "password123"

var (
	seedDoctors = []DoctorSignup{
		{Username: "dr_smith", Email: "smith@example.com", FullName: "John Smith", Qualification: "MBBS, MD",
			Specialization: "Cardiologist", Experience: 15, Hospital: "City Hospital", ConsultantFees: 500, Phone: "1234567890"},
		{Username: "dr_jones", Email: "jones@example.com", FullName: "Emily Jones", Qualification: "MBBS, DDVL",
			Specialization: "Dermatologist", Experience: 10, Hospital: "Skin Care Center", ConsultantFees: 400, Phone: "0987654321"},
	}
	seedPatients = []PatientSignup{
		{Username: "john_doe", Email: "john@example.com", FullName: "John Doe", Gender: "male", Age: 30, Height: 175, Weight: 70, BloodType: "O+"},
		{Username: "jane_doe", Email: "jane@example.com", FullName: "Jane Doe", Gender: "female", Age: 28, Height: 165, Weight: 60, BloodType: "A+"},
	}
	seedRecords = []struct {
		Type    models.RecordType
		Summary string
	}{
		{models.RecordBloodTest, "Blood Test: Complete blood count (CBC) shows normal hemoglobin and platelets."},
		{models.RecordXRay, "X-ray: Chest X-ray shows clear lungs with no signs of infection."},
		{models.RecordConsultation, "Consultation: Patient reports mild seasonal allergies; antihistamine advised."},
	}
	seedClock = [][2]string{{"09:00", "09:30"}, {"09:30", "10:00"}, {"10:00", "10:30"}, {"10:30", "11:00"}}
)

// SeedResult counts what Seed inserted.
type SeedResult struct {
	Doctors       int
	Patients      int
	HealthRecords int
}

// Seeder loads demo accounts, availability and records.
type Seeder struct {
	auth   *AuthService
	store  *repository.Store
	loc    *time.Location
	logger zerolog.Logger
	Now    func() time.Time
}

func NewSeeder(auth *AuthService, store *repository.Store, loc *time.Location, logger zerolog.Logger) *Seeder {
	return &Seeder{auth: auth, store: store, loc: loc, logger: logger.With().Str("component", "seed").Logger(), Now: time.Now}
}

// Seed is idempotent: accounts that already exist are left alone.
func (s *Seeder) Seed(ctx context.Context, days int) (SeedResult, error) {
	var res SeedResult
	today := models.StartOfDay(s.Now(), s.loc)

	var doctors []*models.Doctor
	for _, in := range seedDoctors {
		in.Password = SeedPassword
		d, err := s.auth.RegisterDoctor(ctx, in)
		if errors.Is(err, ErrDuplicateAccount) {
			s.logger.Info().Str("username", in.Username).Msg("doctor exists, skipping")
			continue
		}
		if err != nil {
			return res, err
		}
		d.AvailabilitySlots = seedSlots(today, days)
		if err := s.store.Doctors.UpdateProfile(ctx, d); err != nil {
			return res, err
		}
		doctors = append(doctors, d)
		res.Doctors++
	}

	for i, in := range seedPatients {
		in.Password = SeedPassword
		p, err := s.auth.RegisterPatient(ctx, in)
		if errors.Is(err, ErrDuplicateAccount) {
			s.logger.Info().Str("username", in.Username).Msg("patient exists, skipping")
			continue
		}
		if err != nil {
			return res, err
		}
		if len(doctors) == 0 {
			res.Patients++
			continue
		}
		d := doctors[i%len(doctors)]
		if err := s.store.Doctors.AddPatient(ctx, d.ID, p.ID); err != nil {
			return res, err
		}
		if err := s.store.Patients.AddDoctor(ctx, p.ID, d.ID); err != nil {
			return res, err
		}
		for j, r := range seedRecords {
			rec := &models.HealthRecord{
				ID:          primitive.NewObjectID(),
				RecordType:  r.Type,
				Summary:     r.Summary,
				Attachments: []string{},
				PatientID:   p.ID,
				DoctorID:    d.ID,
				CreatedAt:   today.AddDate(0, 0, -(j+1)*7),
			}
			if err := s.store.HealthRecords.Create(ctx, rec); err != nil {
				return res, err
			}
			if err := s.store.Patients.AddHealthRecord(ctx, p.ID, rec.ID); err != nil {
				return res, err
			}
			res.HealthRecords++
		}
		res.Patients++
	}

	s.logger.Info().
		Int("doctors", res.Doctors).
		Int("patients", res.Patients).
		Int("health_records", res.HealthRecords).
		Msg("seed complete")
	return res, nil
}

func seedSlots(today time.Time, days int) []models.AvailabilitySlot {
	slots := make([]models.AvailabilitySlot, 0, days*len(seedClock))
	for d := 1; d <= days; d++ {
		day := today.AddDate(0, 0, d)
		for _, c := range seedClock {
			slots = append(slots, models.AvailabilitySlot{Day: day.Weekday().String(), Date: day, StartTime: c[0], EndTime: c[1]})
		}
	}
	return slots
}
