package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/repository"
	"github.com/aarogyam/aarogyam/internal/storage"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRequest struct {
	DoctorID        string `form:"doctorId" json:"doctorId" validate:"required,objectid"`
	AppointmentDate string `form:"appointmentDate" json:"appointmentDate" validate:"required,ymd"`
	TimeSlot        string `form:"timeSlot" json:"timeSlot" validate:"required,timeslot"`
	Reason          string `form:"reason" json:"reason" validate:"max=500"`
}

// AppointmentQuery is the search box on the appointment lists.
type AppointmentQuery struct {
	Search string `form:"search" json:"search"`
	Date   string `form:"date" json:"date" binding:"omitempty,ymd"`
	Status string `form:"status" json:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
}

// CompletionInput is what a doctor records when closing a visit.
type CompletionInput struct {
	Disease      string           `form:"disease" json:"disease" validate:"required,max=200"`
	Symptoms     string           `form:"symptoms" json:"symptoms" validate:"required,max=1000"`
	Summary      string           `form:"summary" json:"summary" validate:"max=2000"`
	Notes        string           `form:"notes" json:"notes" validate:"max=2000"`
	Amount       float64          `form:"amount" json:"amount" validate:"gte=0"`
	Prescription storage.Upload   `form:"-" json:"-" validate:"-"`
	Reports      []storage.Upload `form:"-" json:"-" validate:"max=5"`
	Bill         storage.Upload   `form:"-" json:"-" validate:"-"`
}

// Window selects appointments relative to the clinic's current day.
type Window string

const (
	WindowAll      Window = ""
	WindowUpcoming Window = "upcoming"
	WindowToday    Window = "today"
	WindowPast     Window = "past"
)

type AttachmentKind string

const (
	AttachmentPrescription AttachmentKind = "prescription"
	AttachmentHealthRecord AttachmentKind = "healthrecord"
	AttachmentBilling      AttachmentKind = "billing"
)

// AppointmentDetail is an appointment with its linked documents loaded.
type AppointmentDetail struct {
	Appointment  *models.Appointment
	HealthRecord *models.HealthRecord
	Billing      *models.Billing
}

type AppointmentService struct {
	store    *repository.Store
	uploader *storage.Uploader
	notifier Notifier
	loc      *time.Location
	logger   zerolog.Logger
	Now      func() time.Time
}

func NewAppointmentService(store *repository.Store, uploader *storage.Uploader, notifier Notifier, loc *time.Location, logger zerolog.Logger) *AppointmentService {
	return &AppointmentService{
		store:    store,
		uploader: uploader,
		notifier: notifier,
		loc:      loc,
		logger:   logger.With().Str("component", "appointments").Logger(),
		Now:      time.Now,
	}
}

// Book claims the requested slot and records a pending appointment.
func (s *AppointmentService) Book(ctx context.Context, patientID primitive.ObjectID, req BookingRequest) (*models.Appointment, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	doctorID, _ := primitive.ObjectIDFromHex(req.DoctorID)
	day, _ := models.ParseDay(req.AppointmentDate, s.loc)
	start, end, _ := models.ParseTimeSlot(req.TimeSlot)
	slot := models.AvailabilitySlot{Date: day, StartTime: start, EndTime: end}

	now := s.Now()
	if !slot.StartsAt(s.loc).After(now) {
		return nil, ErrPastDate
	}

	patient, err := s.store.Patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.store.Doctors.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("Selected doctor does not exist")
		}
		return nil, err
	}

	if err := s.store.Doctors.ClaimSlot(ctx, doctorID, slot); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	apt := &models.Appointment{
		ID:          primitive.NewObjectID(),
		PatientID:   patientID,
		DoctorID:    doctorID,
		Date:        day,
		TimeSlot:    slot.Label(),
		Status:      models.StatusPending,
		Reason:      req.Reason,
		Attachments: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Appointments.Create(ctx, apt); err != nil {
		if relErr := s.store.Doctors.ReleaseSlot(ctx, doctorID, slot); relErr != nil {
			s.logger.Error().Err(relErr).Str("doctor_id", doctorID.Hex()).Msg("slot lost after failed booking")
		}
		return nil, fmt.Errorf("save appointment: %w", err)
	}

	// Back-references are best effort; the appointment document is the source of truth.
	if err := s.store.Doctors.AddAppointment(ctx, doctorID, apt.ID); err != nil {
		s.logger.Error().Err(err).Str("appointment_id", apt.ID.Hex()).Msg("link appointment to doctor")
	}
	if err := s.store.Patients.AddAppointment(ctx, patientID, apt.ID); err != nil {
		s.logger.Error().Err(err).Str("appointment_id", apt.ID.Hex()).Msg("link appointment to patient")
	}

	apt.Doctor, apt.Patient = doctor, patient
	s.notifier.AppointmentBooked(patient, doctor, apt)
	s.logger.Info().
		Str("appointment_id", apt.ID.Hex()).
		Str("doctor_id", doctorID.Hex()).
		Str("slot", apt.TimeSlot).
		Msg("appointment booked")
	return apt, nil
}

// CancelByPatient removes the patient's appointment and reopens its slot.
func (s *AppointmentService) CancelByPatient(ctx context.Context, patientID, appointmentID primitive.ObjectID) error {
	apt, err := s.patientAppointment(ctx, patientID, appointmentID)
	if err != nil {
		return err
	}
	if apt.Status == models.StatusCompleted {
		return ErrInvalidTransition
	}
	if err := s.store.Appointments.Delete(ctx, apt.ID); err != nil {
		return err
	}
	if err := s.store.Patients.RemoveAppointment(ctx, apt.PatientID, apt.ID); err != nil {
		s.logger.Error().Err(err).Str("appointment_id", apt.ID.Hex()).Msg("unlink appointment from patient")
	}
	if err := s.store.Doctors.RemoveAppointment(ctx, apt.DoctorID, apt.ID); err != nil {
		s.logger.Error().Err(err).Str("appointment_id", apt.ID.Hex()).Msg("unlink appointment from doctor")
	}
	if apt.Status != models.StatusCancelled {
		s.reopenSlot(ctx, apt)
	}
	s.notify(ctx, apt, s.notifier.AppointmentCancelled)
	return nil
}

// Confirm accepts a pending appointment and links doctor and patient.
func (s *AppointmentService) Confirm(ctx context.Context, doctorID, appointmentID primitive.ObjectID) (*models.Appointment, error) {
	apt, err := s.transition(ctx, doctorID, appointmentID, models.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	if err := s.store.Doctors.AddPatient(ctx, doctorID, apt.PatientID); err != nil {
		return nil, err
	}
	if err := s.store.Patients.AddDoctor(ctx, apt.PatientID, doctorID); err != nil {
		return nil, err
	}
	s.notify(ctx, apt, s.notifier.AppointmentConfirmed)
	return apt, nil
}

// CancelByDoctor keeps the appointment on record as cancelled.
func (s *AppointmentService) CancelByDoctor(ctx context.Context, doctorID, appointmentID primitive.ObjectID) (*models.Appointment, error) {
	apt, err := s.transition(ctx, doctorID, appointmentID, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.reopenSlot(ctx, apt)
	s.notify(ctx, apt, s.notifier.AppointmentCancelled)
	return apt, nil
}

func (s *AppointmentService) transition(ctx context.Context, doctorID, appointmentID primitive.ObjectID, next models.AppointmentStatus) (*models.Appointment, error) {
	apt, err := s.doctorAppointment(ctx, doctorID, appointmentID)
	if err != nil {
		return nil, err
	}
	if !apt.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, apt.Status, next)
	}
	apt.Status = next
	apt.UpdatedAt = s.Now()
	if err := s.store.Appointments.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

// Complete stores the doctor's findings and uploads, creating or updating
// the linked health record and bill.
func (s *AppointmentService) Complete(ctx context.Context, doctorID, appointmentID primitive.ObjectID, in CompletionInput) (*models.Appointment, error) {
	in.Disease = strings.TrimSpace(in.Disease)
	in.Symptoms = strings.TrimSpace(in.Symptoms)
	in.Summary = strings.TrimSpace(in.Summary)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	apt, err := s.doctorAppointment(ctx, doctorID, appointmentID)
	if err != nil {
		return nil, err
	}
	if !apt.Status.CanTransitionTo(models.StatusCompleted) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, apt.Status, models.StatusCompleted)
	}

	var prescription, bill string
	if !in.Prescription.IsZero() {
		if prescription, err = s.uploader.SaveDocument(ctx, "prescriptions", in.Prescription); err != nil {
			return nil, uploadError(err)
		}
	}
	reports := make([]string, 0, len(in.Reports))
	for _, r := range in.Reports {
		url, err := s.uploader.SaveDocument(ctx, "reports", r)
		if err != nil {
			return nil, uploadError(err)
		}
		reports = append(reports, url)
	}
	if !in.Bill.IsZero() {
		if bill, err = s.uploader.SaveDocument(ctx, "bills", in.Bill); err != nil {
			return nil, uploadError(err)
		}
	}

	now := s.Now()
	apt.Disease = in.Disease
	apt.Symptoms = in.Symptoms
	if in.Summary != "" {
		apt.Summary = in.Summary
	}
	if in.Notes != "" {
		apt.Notes = in.Notes
	}
	apt.Status = models.StatusCompleted
	if prescription != "" {
		apt.Attachments = append(apt.Attachments, prescription)
	}
	if err := s.syncHealthRecord(ctx, apt, reports, now); err != nil {
		return nil, err
	}
	if err := s.syncBilling(ctx, apt, in.Amount, bill, now); err != nil {
		return nil, err
	}
	apt.UpdatedAt = now
	if err := s.store.Appointments.Update(ctx, apt); err != nil {
		return nil, err
	}
	s.logger.Info().Str("appointment_id", apt.ID.Hex()).Msg("appointment completed")
	return apt, nil
}

func (s *AppointmentService) syncHealthRecord(ctx context.Context, apt *models.Appointment, reports []string, now time.Time) error {
	if apt.HealthRecordID != nil {
		rec, err := s.store.HealthRecords.GetByID(ctx, *apt.HealthRecordID)
		switch {
		case err == nil:
			rec.Disease = apt.Disease
			rec.Symptoms = apt.Symptoms
			if apt.Summary != "" {
				rec.Summary = apt.Summary
			}
			rec.Attachments = append(rec.Attachments, reports...)
			return s.store.HealthRecords.Update(ctx, rec)
		case errors.Is(err, repository.ErrNotFound):
			apt.HealthRecordID = nil
		default:
			return err
		}
	}
	if len(reports) == 0 {
		return nil
	}

	rec := &models.HealthRecord{
		ID:          primitive.NewObjectID(),
		RecordType:  models.RecordConsultation,
		Disease:     apt.Disease,
		Symptoms:    apt.Symptoms,
		Summary:     apt.Summary,
		Attachments: reports,
		PatientID:   apt.PatientID,
		DoctorID:    apt.DoctorID,
		CreatedAt:   now,
	}
	if err := s.store.HealthRecords.Create(ctx, rec); err != nil {
		return err
	}
	id := rec.ID
	apt.HealthRecordID = &id
	if err := s.store.Patients.AddHealthRecord(ctx, apt.PatientID, id); err != nil {
		s.logger.Error().Err(err).Str("record_id", id.Hex()).Msg("link health record to patient")
	}
	return nil
}

func (s *AppointmentService) syncBilling(ctx context.Context, apt *models.Appointment, amount float64, bill string, now time.Time) error {
	if apt.BillingID != nil {
		b, err := s.store.Billings.GetByID(ctx, *apt.BillingID)
		switch {
		case err == nil:
			if amount > 0 {
				b.Amount = amount
			}
			if bill != "" {
				b.Attachments = append(b.Attachments, bill)
			}
			return s.store.Billings.Update(ctx, b)
		case errors.Is(err, repository.ErrNotFound):
			apt.BillingID = nil
		default:
			return err
		}
	}
	if bill == "" && amount <= 0 {
		return nil
	}

	reason := apt.Reason
	if reason == "" {
		reason = "Consultation"
	}
	b := &models.Billing{
		PatientID:     apt.PatientID,
		DoctorID:      apt.DoctorID,
		Date:          now,
		Amount:        amount,
		Reason:        reason,
		Status:        models.PaymentPending,
		PaymentMethod: models.PaymentUPI,
		Attachments:   []string{},
		CreatedAt:     now,
	}
	if bill != "" {
		b.Attachments = append(b.Attachments, bill)
	}

	var err error
	for attempt := 0; attempt < 3; attempt++ {
		b.ID = primitive.NewObjectID()
		b.InvoiceNo = models.NewInvoiceNumber(now)
		if err = s.store.Billings.Create(ctx, b); err == nil || !errors.Is(err, repository.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("create bill: %w", err)
	}
	id := b.ID
	apt.BillingID = &id
	return nil
}

// Detail loads an appointment the doctor owns with its patient and linked documents.
func (s *AppointmentService) Detail(ctx context.Context, doctorID, appointmentID primitive.ObjectID) (*AppointmentDetail, error) {
	apt, err := s.doctorAppointment(ctx, doctorID, appointmentID)
	if err != nil {
		return nil, err
	}
	if apt.Patient, err = s.store.Patients.GetByID(ctx, apt.PatientID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	detail := &AppointmentDetail{Appointment: apt}
	if apt.HealthRecordID != nil {
		if detail.HealthRecord, err = s.store.HealthRecords.GetByID(ctx, *apt.HealthRecordID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	if apt.BillingID != nil {
		if detail.Billing, err = s.store.Billings.GetByID(ctx, *apt.BillingID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return detail, nil
}

// ListForPatient returns the patient's appointments in the window, doctors populated.
func (s *AppointmentService) ListForPatient(ctx context.Context, patientID primitive.ObjectID, w Window) ([]*models.Appointment, error) {
	f := s.windowFilter(w)
	f.PatientID = &patientID
	appts, err := s.store.Appointments.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	return appts, s.withDoctors(ctx, appts)
}

// ListForDoctor returns the doctor's appointments in the window, patients populated.
func (s *AppointmentService) ListForDoctor(ctx context.Context, doctorID primitive.ObjectID, w Window) ([]*models.Appointment, error) {
	f := s.windowFilter(w)
	f.DoctorID = &doctorID
	appts, err := s.store.Appointments.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	return appts, s.withPatients(ctx, appts)
}

func (s *AppointmentService) CountPending(ctx context.Context, doctorID primitive.ObjectID) (int, error) {
	appts, err := s.store.Appointments.Find(ctx, repository.AppointmentFilter{DoctorID: &doctorID, Status: models.StatusPending})
	if err != nil {
		return 0, err
	}
	return len(appts), nil
}

// SearchForPatient matches the doctor's name, the reason or the diagnosis.
func (s *AppointmentService) SearchForPatient(ctx context.Context, patientID primitive.ObjectID, q AppointmentQuery) ([]*models.Appointment, error) {
	f, err := s.queryFilter(q)
	if err != nil {
		return nil, err
	}
	f.PatientID = &patientID
	appts, err := s.store.Appointments.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.withDoctors(ctx, appts); err != nil {
		return nil, err
	}
	return filterText(appts, q.Search, func(a *models.Appointment) []string {
		var name, username string
		if a.Doctor != nil {
			name, username = a.Doctor.FullName, a.Doctor.Username
		}
		return []string{name, username, a.Reason, a.Disease}
	}), nil
}

// SearchForDoctor matches the patient's name, the reason or the diagnosis.
func (s *AppointmentService) SearchForDoctor(ctx context.Context, doctorID primitive.ObjectID, q AppointmentQuery) ([]*models.Appointment, error) {
	f, err := s.queryFilter(q)
	if err != nil {
		return nil, err
	}
	f.DoctorID = &doctorID
	appts, err := s.store.Appointments.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.withPatients(ctx, appts); err != nil {
		return nil, err
	}
	return filterText(appts, q.Search, func(a *models.Appointment) []string {
		var name, username string
		if a.Patient != nil {
			name, username = a.Patient.FullName, a.Patient.Username
		}
		return []string{name, username, a.Reason, a.Disease}
	}), nil
}

// PrescriptionsForPatient lists appointments that carry prescription files.
func (s *AppointmentService) PrescriptionsForPatient(ctx context.Context, patientID primitive.ObjectID) ([]*models.Appointment, error) {
	appts, err := s.store.Appointments.Find(ctx, repository.AppointmentFilter{PatientID: &patientID, WithAttachments: true, Newest: true})
	if err != nil {
		return nil, err
	}
	return appts, s.withDoctors(ctx, appts)
}

// PrescriptionsForPair is the doctor's view of one of their patients.
func (s *AppointmentService) PrescriptionsForPair(ctx context.Context, doctorID, patientID primitive.ObjectID) ([]*models.Appointment, error) {
	if err := ensureLinked(ctx, s.store.Doctors, doctorID, patientID); err != nil {
		return nil, err
	}
	appts, err := s.store.Appointments.Find(ctx, repository.AppointmentFilter{
		PatientID: &patientID, DoctorID: &doctorID, WithAttachments: true, Newest: true,
	})
	if err != nil {
		return nil, err
	}
	return appts, s.withDoctors(ctx, appts)
}

// RemovePrescriptionFile drops a file the patient no longer wants listed.
func (s *AppointmentService) RemovePrescriptionFile(ctx context.Context, patientID, appointmentID primitive.ObjectID, file string) error {
	apt, err := s.patientAppointment(ctx, patientID, appointmentID)
	if err != nil {
		return err
	}
	idx := indexOf(apt.Attachments, file)
	if idx < 0 {
		return ErrNotFound
	}
	var removed string
	if apt.Attachments, removed, err = removeIndex(apt.Attachments, idx); err != nil {
		return err
	}
	apt.UpdatedAt = s.Now()
	if err := s.store.Appointments.Update(ctx, apt); err != nil {
		return err
	}
	discard(ctx, s.uploader, s.logger, removed)
	return nil
}

// RemoveAttachmentAt deletes the attachment at index from the appointment,
// its health record or its bill.
func (s *AppointmentService) RemoveAttachmentAt(ctx context.Context, doctorID, appointmentID primitive.ObjectID, kind AttachmentKind, index int) error {
	apt, err := s.doctorAppointment(ctx, doctorID, appointmentID)
	if err != nil {
		return err
	}

	var removed string
	switch kind {
	case AttachmentPrescription:
		if apt.Attachments, removed, err = removeIndex(apt.Attachments, index); err != nil {
			return err
		}
		apt.UpdatedAt = s.Now()
		err = s.store.Appointments.Update(ctx, apt)
	case AttachmentHealthRecord:
		if apt.HealthRecordID == nil {
			return ErrNotFound
		}
		rec, getErr := s.store.HealthRecords.GetByID(ctx, *apt.HealthRecordID)
		if getErr != nil {
			return getErr
		}
		if rec.Attachments, removed, err = removeIndex(rec.Attachments, index); err != nil {
			return err
		}
		err = s.store.HealthRecords.Update(ctx, rec)
	case AttachmentBilling:
		if apt.BillingID == nil {
			return ErrNotFound
		}
		b, getErr := s.store.Billings.GetByID(ctx, *apt.BillingID)
		if getErr != nil {
			return getErr
		}
		if b.Attachments, removed, err = removeIndex(b.Attachments, index); err != nil {
			return err
		}
		err = s.store.Billings.Update(ctx, b)
	default:
		return invalid(fmt.Sprintf("unknown attachment type %q", kind))
	}
	if err != nil {
		return err
	}
	discard(ctx, s.uploader, s.logger, removed)
	return nil
}

func (s *AppointmentService) patientAppointment(ctx context.Context, patientID, appointmentID primitive.ObjectID) (*models.Appointment, error) {
	apt, err := s.store.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if apt.PatientID != patientID {
		return nil, ErrForbidden
	}
	return apt, nil
}

func (s *AppointmentService) doctorAppointment(ctx context.Context, doctorID, appointmentID primitive.ObjectID) (*models.Appointment, error) {
	apt, err := s.store.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if apt.DoctorID != doctorID {
		return nil, ErrForbidden
	}
	return apt, nil
}

func (s *AppointmentService) reopenSlot(ctx context.Context, apt *models.Appointment) {
	slot, err := apt.Slot()
	if err != nil || !slot.StartsAt(s.loc).After(s.Now()) {
		return
	}
	if err := s.store.Doctors.ReleaseSlot(ctx, apt.DoctorID, slot); err != nil {
		s.logger.Error().Err(err).Str("appointment_id", apt.ID.Hex()).Msg("reopen slot")
	}
}

func (s *AppointmentService) notify(ctx context.Context, apt *models.Appointment, send func(*models.Patient, *models.Doctor, *models.Appointment)) {
	patient, err := s.store.Patients.GetByID(ctx, apt.PatientID)
	if err != nil {
		return
	}
	doctor, err := s.store.Doctors.GetByID(ctx, apt.DoctorID)
	if err != nil {
		return
	}
	send(patient, doctor, apt)
}

func (s *AppointmentService) windowFilter(w Window) repository.AppointmentFilter {
	today := models.StartOfDay(s.Now(), s.loc)
	tomorrow := today.AddDate(0, 0, 1)
	switch w {
	case WindowUpcoming:
		return repository.AppointmentFilter{From: &tomorrow}
	case WindowToday:
		return repository.AppointmentFilter{From: &today, Until: &tomorrow}
	case WindowPast:
		return repository.AppointmentFilter{Until: &today, Newest: true}
	}
	return repository.AppointmentFilter{}
}

func (s *AppointmentService) queryFilter(q AppointmentQuery) (repository.AppointmentFilter, error) {
	var f repository.AppointmentFilter
	if d := strings.TrimSpace(q.Date); d != "" {
		day, err := models.ParseDay(d, s.loc)
		if err != nil {
			return f, invalid("date must be a date (YYYY-MM-DD)")
		}
		next := day.AddDate(0, 0, 1)
		f.From, f.Until = &day, &next
	}
	if st := strings.ToLower(strings.TrimSpace(q.Status)); st != "" {
		status := models.AppointmentStatus(st)
		if !status.Valid() {
			return f, invalid(fmt.Sprintf("unknown status %q", q.Status))
		}
		f.Status = status
	}
	return f, nil
}

func (s *AppointmentService) withDoctors(ctx context.Context, appts []*models.Appointment) error {
	ids := make([]primitive.ObjectID, 0, len(appts))
	for _, a := range appts {
		ids = append(ids, a.DoctorID)
	}
	doctors, err := s.store.Doctors.ListByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*models.Doctor, len(doctors))
	for _, d := range doctors {
		byID[d.ID] = d
	}
	for _, a := range appts {
		a.Doctor = byID[a.DoctorID]
	}
	return nil
}

func (s *AppointmentService) withPatients(ctx context.Context, appts []*models.Appointment) error {
	ids := make([]primitive.ObjectID, 0, len(appts))
	for _, a := range appts {
		ids = append(ids, a.PatientID)
	}
	patients, err := s.store.Patients.ListByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*models.Patient, len(patients))
	for _, p := range patients {
		byID[p.ID] = p
	}
	for _, a := range appts {
		a.Patient = byID[a.PatientID]
	}
	return nil
}

func filterText(appts []*models.Appointment, term string, fields func(*models.Appointment) []string) []*models.Appointment {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return appts
	}
	out := make([]*models.Appointment, 0, len(appts))
	for _, a := range appts {
		for _, f := range fields(a) {
			if strings.Contains(strings.ToLower(f), term) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func uploadError(err error) error {
	if errors.Is(err, storage.ErrUnsupportedType) || errors.Is(err, storage.ErrTooLarge) || errors.Is(err, storage.ErrEmptyFile) {
		return invalid(err.Error())
	}
	return fmt.Errorf("store upload: %w", err)
}
