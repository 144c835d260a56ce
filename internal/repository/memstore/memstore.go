// Package memstore implements the repository interfaces on maps. It backs
// the test suites and `serve --memory` demos; data is lost on exit.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// New returns a Store whose repositories share one lock.
func New() *repository.Store {
	db := &memDB{
		doctors:       map[primitive.ObjectID]*models.Doctor{},
		patients:      map[primitive.ObjectID]*models.Patient{},
		appointments:  map[primitive.ObjectID]*models.Appointment{},
		healthRecords: map[primitive.ObjectID]*models.HealthRecord{},
		billings:      map[primitive.ObjectID]*models.Billing{},
	}
	return &repository.Store{
		Doctors:       &doctors{db},
		Patients:      &patients{db},
		Appointments:  &appointments{db},
		HealthRecords: &healthRecords{db},
		Billings:      &billings{db},
	}
}

type memDB struct {
	mu            sync.RWMutex
	doctors       map[primitive.ObjectID]*models.Doctor
	patients      map[primitive.ObjectID]*models.Patient
	appointments  map[primitive.ObjectID]*models.Appointment
	healthRecords map[primitive.ObjectID]*models.HealthRecord
	billings      map[primitive.ObjectID]*models.Billing
}

func ensureID(id *primitive.ObjectID) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
}

func matchesLogin(login, username, email string) bool {
	login = strings.TrimSpace(login)
	return login == username || strings.ToLower(login) == email
}

func matchesIdentity(email, username, otherEmail, otherUsername string) bool {
	return strings.ToLower(strings.TrimSpace(email)) == otherEmail || strings.TrimSpace(username) == otherUsername
}

func appendUnique(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	return append([]primitive.ObjectID{}, ids...)
}

func cloneStrings(v []string) []string {
	return append([]string{}, v...)
}

func cloneDoctor(d *models.Doctor) *models.Doctor {
	c := *d
	c.AvailabilitySlots = append([]models.AvailabilitySlot{}, d.AvailabilitySlots...)
	c.Appointments = cloneIDs(d.Appointments)
	c.Patients = cloneIDs(d.Patients)
	return &c
}

func clonePatient(p *models.Patient) *models.Patient {
	c := *p
	c.HealthRecords = cloneIDs(p.HealthRecords)
	c.Appointments = cloneIDs(p.Appointments)
	c.Doctors = cloneIDs(p.Doctors)
	return &c
}

func cloneAppointment(a *models.Appointment) *models.Appointment {
	c := *a
	c.Attachments = cloneStrings(a.Attachments)
	c.Doctor, c.Patient = nil, nil
	return &c
}

func cloneRecord(r *models.HealthRecord) *models.HealthRecord {
	c := *r
	c.Attachments = cloneStrings(r.Attachments)
	c.Doctor = nil
	return &c
}

func cloneBilling(b *models.Billing) *models.Billing {
	c := *b
	c.Attachments = cloneStrings(b.Attachments)
	c.Doctor = nil
	return &c
}

type doctors struct{ db *memDB }

func (r *doctors) Create(_ context.Context, d *models.Doctor) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.doctors {
		if other.Email == d.Email || other.Username == d.Username {
			return repository.ErrDuplicate
		}
	}
	ensureID(&d.ID)
	r.db.doctors[d.ID] = cloneDoctor(d)
	return nil
}

func (r *doctors) GetByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	d, ok := r.db.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneDoctor(d), nil
}

func (r *doctors) GetByLogin(_ context.Context, login string) (*models.Doctor, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, d := range r.db.doctors {
		if matchesLogin(login, d.Username, d.Email) {
			return cloneDoctor(d), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *doctors) Exists(_ context.Context, email, username string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, d := range r.db.doctors {
		if matchesIdentity(email, username, d.Email, d.Username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *doctors) List(_ context.Context) ([]*models.Doctor, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*models.Doctor, 0, len(r.db.doctors))
	for _, d := range r.db.doctors {
		out = append(out, cloneDoctor(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *doctors) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Doctor, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*models.Doctor, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.db.doctors[id]; ok {
			out = append(out, cloneDoctor(d))
		}
	}
	return out, nil
}

func (r *doctors) UpdateProfile(_ context.Context, d *models.Doctor) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.doctors[d.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.db.doctors {
		if id != d.ID && other.Email == d.Email {
			return repository.ErrDuplicate
		}
	}
	next := cloneDoctor(d)
	next.Appointments, next.Patients = cur.Appointments, cur.Patients
	next.Password, next.Username, next.CreatedAt = cur.Password, cur.Username, cur.CreatedAt
	r.db.doctors[d.ID] = next
	return nil
}

func (r *doctors) mutate(id primitive.ObjectID, fn func(*models.Doctor)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.doctors[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(d)
	return nil
}

func (r *doctors) AddAppointment(_ context.Context, doctorID, appointmentID primitive.ObjectID) error {
	return r.mutate(doctorID, func(d *models.Doctor) { d.Appointments = append(d.Appointments, appointmentID) })
}

func (r *doctors) RemoveAppointment(_ context.Context, doctorID, appointmentID primitive.ObjectID) error {
	return r.mutate(doctorID, func(d *models.Doctor) { d.Appointments = removeID(d.Appointments, appointmentID) })
}

func (r *doctors) AddPatient(_ context.Context, doctorID, patientID primitive.ObjectID) error {
	return r.mutate(doctorID, func(d *models.Doctor) { d.Patients = appendUnique(d.Patients, patientID) })
}

func (r *doctors) ClaimSlot(_ context.Context, doctorID primitive.ObjectID, slot models.AvailabilitySlot) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.doctors[doctorID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := make([]models.AvailabilitySlot, 0, len(d.AvailabilitySlots))
	for _, s := range d.AvailabilitySlots {
		if !s.Same(slot) {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(d.AvailabilitySlots) {
		return repository.ErrNotFound
	}
	d.AvailabilitySlots = kept
	return nil
}

func (r *doctors) ReleaseSlot(_ context.Context, doctorID primitive.ObjectID, slot models.AvailabilitySlot) error {
	return r.mutate(doctorID, func(d *models.Doctor) {
		for _, s := range d.AvailabilitySlots {
			if s.Same(slot) {
				return
			}
		}
		slot.Day = ""
		d.AvailabilitySlots = append(d.AvailabilitySlots, slot)
	})
}

type patients struct{ db *memDB }

func (r *patients) Create(_ context.Context, p *models.Patient) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.patients {
		if other.Email == p.Email || other.Username == p.Username {
			return repository.ErrDuplicate
		}
	}
	ensureID(&p.ID)
	r.db.patients[p.ID] = clonePatient(p)
	return nil
}

func (r *patients) GetByID(_ context.Context, id primitive.ObjectID) (*models.Patient, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePatient(p), nil
}

func (r *patients) GetByLogin(_ context.Context, login string) (*models.Patient, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, p := range r.db.patients {
		if matchesLogin(login, p.Username, p.Email) {
			return clonePatient(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *patients) Exists(_ context.Context, email, username string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, p := range r.db.patients {
		if matchesIdentity(email, username, p.Email, p.Username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *patients) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]*models.Patient, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]*models.Patient, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.db.patients[id]; ok {
			out = append(out, clonePatient(p))
		}
	}
	return out, nil
}

func (r *patients) UpdateProfile(_ context.Context, p *models.Patient) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.patients[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.db.patients {
		if id != p.ID && other.Email == p.Email {
			return repository.ErrDuplicate
		}
	}
	next := clonePatient(p)
	next.HealthRecords, next.Appointments, next.Doctors = cur.HealthRecords, cur.Appointments, cur.Doctors
	next.Password, next.Username, next.CreatedAt = cur.Password, cur.Username, cur.CreatedAt
	r.db.patients[p.ID] = next
	return nil
}

func (r *patients) mutate(id primitive.ObjectID, fn func(*models.Patient)) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.patients[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(p)
	return nil
}

func (r *patients) AddAppointment(_ context.Context, patientID, appointmentID primitive.ObjectID) error {
	return r.mutate(patientID, func(p *models.Patient) { p.Appointments = append(p.Appointments, appointmentID) })
}

func (r *patients) RemoveAppointment(_ context.Context, patientID, appointmentID primitive.ObjectID) error {
	return r.mutate(patientID, func(p *models.Patient) { p.Appointments = removeID(p.Appointments, appointmentID) })
}

func (r *patients) AddDoctor(_ context.Context, patientID, doctorID primitive.ObjectID) error {
	return r.mutate(patientID, func(p *models.Patient) { p.Doctors = appendUnique(p.Doctors, doctorID) })
}

func (r *patients) AddHealthRecord(_ context.Context, patientID, recordID primitive.ObjectID) error {
	return r.mutate(patientID, func(p *models.Patient) { p.HealthRecords = appendUnique(p.HealthRecords, recordID) })
}
