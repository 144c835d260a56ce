package memstore

import (
	"context"
	"sort"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type appointments struct{ db *memDB }

func (r *appointments) Create(_ context.Context, a *models.Appointment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ensureID(&a.ID)
	if _, ok := r.db.appointments[a.ID]; ok {
		return repository.ErrDuplicate
	}
	r.db.appointments[a.ID] = cloneAppointment(a)
	return nil
}

func (r *appointments) GetByID(_ context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	a, ok := r.db.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAppointment(a), nil
}

func (r *appointments) Update(_ context.Context, a *models.Appointment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.appointments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	r.db.appointments[a.ID] = cloneAppointment(a)
	return nil
}

func (r *appointments) Delete(_ context.Context, id primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.appointments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.appointments, id)
	return nil
}

func (r *appointments) Find(_ context.Context, f repository.AppointmentFilter) ([]*models.Appointment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*models.Appointment, 0)
	for _, a := range r.db.appointments {
		if matchAppointment(a, f) {
			out = append(out, cloneAppointment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			if f.Newest {
				return a.Date.After(b.Date)
			}
			return a.Date.Before(b.Date)
		}
		if f.Newest {
			return a.TimeSlot > b.TimeSlot
		}
		return a.TimeSlot < b.TimeSlot
	})
	return out, nil
}

func matchAppointment(a *models.Appointment, f repository.AppointmentFilter) bool {
	switch {
	case f.PatientID != nil && a.PatientID != *f.PatientID:
		return false
	case f.DoctorID != nil && a.DoctorID != *f.DoctorID:
		return false
	case f.From != nil && a.Date.Before(*f.From):
		return false
	case f.Until != nil && !a.Date.Before(*f.Until):
		return false
	case f.Status != "" && a.Status != f.Status:
		return false
	case f.WithAttachments && len(a.Attachments) == 0:
		return false
	}
	return true
}

type healthRecords struct{ db *memDB }

func (r *healthRecords) Create(_ context.Context, rec *models.HealthRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	ensureID(&rec.ID)
	r.db.healthRecords[rec.ID] = cloneRecord(rec)
	return nil
}

func (r *healthRecords) GetByID(_ context.Context, id primitive.ObjectID) (*models.HealthRecord, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	rec, ok := r.db.healthRecords[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r *healthRecords) Update(_ context.Context, rec *models.HealthRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.healthRecords[rec.ID]; !ok {
		return repository.ErrNotFound
	}
	r.db.healthRecords[rec.ID] = cloneRecord(rec)
	return nil
}

func (r *healthRecords) ListByPatient(_ context.Context, patientID primitive.ObjectID) ([]*models.HealthRecord, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*models.HealthRecord, 0)
	for _, rec := range r.db.healthRecords {
		if rec.PatientID == patientID {
			out = append(out, cloneRecord(rec))
		}
	}
	newestRecordsFirst(out)
	return out, nil
}

func (r *healthRecords) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.HealthRecord, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*models.HealthRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.db.healthRecords[id]; ok {
			out = append(out, cloneRecord(rec))
		}
	}
	newestRecordsFirst(out)
	return out, nil
}

func newestRecordsFirst(recs []*models.HealthRecord) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
}

type billings struct{ db *memDB }

func (r *billings) Create(_ context.Context, b *models.Billing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.billings {
		if other.InvoiceNo == b.InvoiceNo {
			return repository.ErrDuplicate
		}
	}
	ensureID(&b.ID)
	r.db.billings[b.ID] = cloneBilling(b)
	return nil
}

func (r *billings) GetByID(_ context.Context, id primitive.ObjectID) (*models.Billing, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	b, ok := r.db.billings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneBilling(b), nil
}

func (r *billings) Update(_ context.Context, b *models.Billing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.billings[b.ID]; !ok {
		return repository.ErrNotFound
	}
	r.db.billings[b.ID] = cloneBilling(b)
	return nil
}

func (r *billings) ListByPatient(_ context.Context, patientID primitive.ObjectID) ([]*models.Billing, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*models.Billing, 0)
	for _, b := range r.db.billings {
		if b.PatientID == patientID {
			out = append(out, cloneBilling(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
