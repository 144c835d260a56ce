package services

import (
	"context"
	"sort"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/repository"
	"github.com/aarogyam/aarogyam/internal/storage"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecordService reads health records and bills.
type RecordService struct {
	store    *repository.Store
	uploader *storage.Uploader
	logger   zerolog.Logger
}

func NewRecordService(store *repository.Store, uploader *storage.Uploader, logger zerolog.Logger) *RecordService {
	return &RecordService{
		store:    store,
		uploader: uploader,
		logger:   logger.With().Str("component", "records").Logger(),
	}
}

// HealthRecordsForPatient lists every record of the patient, newest first.
func (s *RecordService) HealthRecordsForPatient(ctx context.Context, patientID primitive.ObjectID) ([]*models.HealthRecord, error) {
	recs, err := s.store.HealthRecords.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return recs, s.withRecordDoctors(ctx, recs)
}

// HealthRecordsForPair lists the records created from the doctor's
// appointments with the patient.
func (s *RecordService) HealthRecordsForPair(ctx context.Context, doctorID, patientID primitive.ObjectID) ([]*models.HealthRecord, error) {
	if err := ensureLinked(ctx, s.store.Doctors, doctorID, patientID); err != nil {
		return nil, err
	}
	appts, err := s.store.Appointments.Find(ctx, repository.AppointmentFilter{PatientID: &patientID, DoctorID: &doctorID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(appts))
	for _, a := range appts {
		if a.HealthRecordID != nil {
			ids = append(ids, *a.HealthRecordID)
		}
	}
	if len(ids) == 0 {
		return []*models.HealthRecord{}, nil
	}
	recs, err := s.store.HealthRecords.ListByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs, s.withRecordDoctors(ctx, recs)
}

// BillingsForPatient lists the patient's bills, newest first.
func (s *RecordService) BillingsForPatient(ctx context.Context, patientID primitive.ObjectID) ([]*models.Billing, error) {
	bills, err := s.store.Billings.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(bills))
	for _, b := range bills {
		ids = append(ids, b.DoctorID)
	}
	doctors, err := s.store.Doctors.ListByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	byID := doctorIndex(doctors)
	for _, b := range bills {
		b.Doctor = byID[b.DoctorID]
	}
	return bills, nil
}

// RemoveBillingAttachment drops one file from a bill the patient owns.
func (s *RecordService) RemoveBillingAttachment(ctx context.Context, patientID, billingID primitive.ObjectID, file string) error {
	b, err := s.store.Billings.GetByID(ctx, billingID)
	if err != nil {
		return err
	}
	if b.PatientID != patientID {
		return ErrForbidden
	}
	idx := indexOf(b.Attachments, file)
	if idx < 0 {
		return ErrNotFound
	}
	var removed string
	if b.Attachments, removed, err = removeIndex(b.Attachments, idx); err != nil {
		return err
	}
	if err := s.store.Billings.Update(ctx, b); err != nil {
		return err
	}
	discard(ctx, s.uploader, s.logger, removed)
	return nil
}

func (s *RecordService) withRecordDoctors(ctx context.Context, recs []*models.HealthRecord) error {
	ids := make([]primitive.ObjectID, 0, len(recs))
	for _, r := range recs {
		if !r.DoctorID.IsZero() {
			ids = append(ids, r.DoctorID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	doctors, err := s.store.Doctors.ListByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return err
	}
	byID := doctorIndex(doctors)
	for _, r := range recs {
		r.Doctor = byID[r.DoctorID]
	}
	return nil
}

// ensureLinked fails with ErrForbidden unless the patient is on the doctor's list.
func ensureLinked(ctx context.Context, doctors repository.DoctorRepository, doctorID, patientID primitive.ObjectID) error {
	d, err := doctors.GetByID(ctx, doctorID)
	if err != nil {
		return err
	}
	if !d.HasPatient(patientID) {
		return ErrForbidden
	}
	return nil
}

func doctorIndex(doctors []*models.Doctor) map[primitive.ObjectID]*models.Doctor {
	m := make(map[primitive.ObjectID]*models.Doctor, len(doctors))
	for _, d := range doctors {
		m[d.ID] = d
	}
	return m
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func removeIndex(list []string, i int) ([]string, string, error) {
	if i < 0 || i >= len(list) {
		return list, "", invalid("attachment index out of range")
	}
	removed := list[i]
	return append(list[:i:i], list[i+1:]...), removed, nil
}

// discard deletes a stored file. Files that were never ours (seed data,
// URLs from another backend) are only logged.
func discard(ctx context.Context, up *storage.Uploader, logger zerolog.Logger, url string) {
	if url == "" || up == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := up.Remove(ctx, url); err != nil {
		logger.Debug().Err(err).Str("file", url).Msg("stored file not removed")
	}
}
