package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/repository"
	"github.com/aarogyam/aarogyam/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBook_PastDateRejected(t *testing.T) {
	f := newFixture(t)
	d := f.doctor(t, "house", slotAt(day(0), "09:00", "09:30"), slotAt(day(-1), "11:00", "11:30"))
	p := f.patient(t, "ana")

	for _, req := range []BookingRequest{
		{DoctorID: d.ID.Hex(), AppointmentDate: day(0).Format(models.DateLayout), TimeSlot: "09:00-09:30"},
		{DoctorID: d.ID.Hex(), AppointmentDate: day(-1).Format(models.DateLayout), TimeSlot: "11:00-11:30"},
	} {
		_, err := f.appointments.Book(context.Background(), p.ID, req)
		assert.ErrorIs(t, err, ErrPastDate)
	}

	stored, err := f.store.Doctors.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Len(t, stored.AvailabilitySlots, 2, "rejected bookings must not consume slots")
}

func TestBook_CreatesPendingAppointment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := f.doctor(t, "house", slotAt(day(1), "09:00", "09:30"), slotAt(day(1), "09:30", "10:00"))
	p := f.patient(t, "ana")

	apt := f.book(t, p, d, day(1), "9:00-09:30")
	assert.Equal(t, models.StatusPending, apt.Status)
	assert.Equal(t, "09:00-09:30", apt.TimeSlot)
	assert.True(t, apt.Date.Equal(day(1)))

	doc, err := f.store.Doctors.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, doc.AvailabilitySlots, 1)
	assert.Equal(t, "09:30", doc.AvailabilitySlots[0].StartTime)
	assert.Contains(t, doc.Appointments, apt.ID)

	pat, err := f.store.Patients.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, pat.HasAppointment(apt.ID))
	assert.Equal(t, []primitive.ObjectID{apt.ID}, f.notifier.booked)
}

func TestBook_SlotTakenOnlyOnce(t *testing.T) {
	f := newFixture(t)
	d := f.doctor(t, "house", slotAt(day(2), "10:00", "10:30"))
	req := BookingRequest{DoctorID: d.ID.Hex(), AppointmentDate: day(2).Format(models.DateLayout), TimeSlot: "10:00-10:30"}

	patients := make([]*models.Patient, 8)
	for i := range patients {
		patients[i] = f.patient(t, "p"+string(rune('a'+i))+"xx")
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, lost int
	)
	for _, p := range patients {
		wg.Add(1)
		go func(id primitive.ObjectID) {
			defer wg.Done()
			_, err := f.appointments.Book(context.Background(), id, req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, ErrSlotUnavailable):
				lost++
			}
		}(p.ID)
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, len(patients)-1, lost)
}

func TestBook_UnpublishedSlotAndBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := f.doctor(t, "house", slotAt(day(1), "09:00", "09:30"))
	p := f.patient(t, "ana")

	_, err := f.appointments.Book(ctx, p.ID, BookingRequest{DoctorID: d.ID.Hex(), AppointmentDate: day(1).Format(models.DateLayout), TimeSlot: "14:00-14:30"})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = f.appointments.Book(ctx, p.ID, BookingRequest{DoctorID: "nope", AppointmentDate: "2030-03-16", TimeSlot: "09:00-09:30"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.appointments.Book(ctx, p.ID, BookingRequest{DoctorID: d.ID.Hex(), AppointmentDate: "16/03/2030", TimeSlot: "09:30-09:00"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "appointmentDate")

	_, err = f.appointments.Book(ctx, p.ID, BookingRequest{DoctorID: primitive.NewObjectID().Hex(), AppointmentDate: "2030-03-16", TimeSlot: "09:00-09:30"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.appointments.Book(ctx, p.ID, BookingRequest{
		DoctorID: d.ID.Hex(), AppointmentDate: "2030-03-16", TimeSlot: "09:00-09:30", Reason: strings.Repeat("x", 501),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCancelByPatient_RemovesAppointment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := f.doctor(t, "house", slotAt(day(1), "09:00", "09:30"))
	p := f.patient(t, "ana")
	apt := f.book(t, p, d, day(1), "09:00-09:30")

	require.NoError(t, f.appointments.CancelByPatient(ctx, p.ID, apt.ID))

	_, err := f.store.Appointments.GetByID(ctx, apt.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	pat, err := f.store.Patients.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, pat.HasAppointment(apt.ID))

	doc, err := f.store.Doctors.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.NotContains(t, doc.Appointments, apt.ID)
	require.Len(t, doc.AvailabilitySlots, 1, "slot is published again")
	assert.Equal(t, []primitive.ObjectID{apt.ID}, f.notifier.cancelled)

	assert.ErrorIs(t, f.appointments.CancelByPatient(ctx, p.ID, apt.ID), ErrNotFound)
}

func TestCancelByPatient_Guards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := f.doctor(t, "house", slotAt(day(1), "09:00", "09:30"))
	p := f.patient(t, "ana")
	other := f.patient(t, "bob")
	apt := f.book(t, p, d, day(1), "09:00-09:30")

	assert.ErrorIs(t, f.appointments.CancelByPatient(ctx, other.ID, apt.ID), ErrForbidden)

	_, err := f.appointments.Complete(ctx, d.ID, apt.ID, CompletionInput{Disease: "Flu", Symptoms: "Fever"})
	require.NoError(t, err)
	assert.ErrorIs(t, f.appointments.CancelByPatient(ctx, p.ID, apt.ID), ErrInvalidTransition)
}

func TestConfirmAndCancelByDoctor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := f.doctor(t, "house", slotAt(day(1), "09:00", "09:30"))
	intruder := f.doctor(t, "wilson")
	p := f.patient(t, "ana")
	apt := f.book(t, p, d, day(1), "09:00-09:30")

	_, err := f.appointments.Confirm(ctx, intruder.ID, apt.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	confirmed, err := f.appointments.Confirm(ctx, d.ID, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	doc, _ := f.store.Doctors.GetByID(ctx, d.ID)
	pat, _ := f.store.Patients.GetByID(ctx, p.ID)
	assert.True(t, doc.HasPatient(p.ID))
	assert.Contains(t, pat.Doctors, d.ID)

	_, err = f.appointments.Confirm(ctx, d.ID, apt.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	cancelled, err := f.appointments.CancelByDoctor(ctx, d.ID, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	doc, _ = f.store.Doctors.GetByID(ctx, d.ID)
	assert.Len(t, doc.AvailabilitySlots, 1)

	_, err = f.appointments.Complete(ctx, d.ID, apt.ID, CompletionInput{Disease: "Flu", Symptoms: "Fever"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, f.notifier.confirmed, 1)
	assert.Len(t, f.notifier.cancelled, 1)
}

func TestComplete_CreatesAndUpdatesRecordAndBill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := f.doctor(t, "house", slotAt(day(1), "09:00", "09:30"))
	p := f.patient(t, "ana")
	apt := f.book(t, p, d, day(1), "09:00-09:30")

	_, err := f.appointments.Complete(ctx, d.ID, apt.ID, CompletionInput{Disease: " ", Symptoms: "Cough"})
	require.ErrorIs(t, err, ErrValidation)

	tooMany := make([]storage.Upload, 6)
	for i := range tooMany {
		tooMany[i] = storage.FromBytes("r.pdf", samplePDF)
	}
	_, err = f.appointments.Complete(ctx, d.ID, apt.ID, CompletionInput{Disease: "Flu", Symptoms: "Fever", Reports: tooMany})
	require.ErrorIs(t, err, ErrValidation)

	done, err := f.appointments.Complete(ctx, d.ID, apt.ID, CompletionInput{
		Disease:      "Influenza",
		Symptoms:     "Fever, cough",
		Summary:      "Rest and fluids",
		Amount:       500,
		Prescription: storage.FromBytes("rx.pdf", samplePDF),
		Reports:      []storage.Upload{storage.FromBytes("cbc.pdf", samplePDF), storage.FromBytes("notes.txt", []byte("BP 120/80"))},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	require.Len(t, done.Attachments, 1)
	assert.True(t, strings.HasPrefix(done.Attachments[0], "/uploads/prescriptions/"))
	require.NotNil(t, done.HealthRecordID)
	require.NotNil(t, done.BillingID)

	rec, err := f.store.HealthRecords.GetByID(ctx, *done.HealthRecordID)
	require.NoError(t, err)
	assert.Equal(t, models.RecordConsultation, rec.RecordType)
	assert.Len(t, rec.Attachments, 2)
	pat, _ := f.store.Patients.GetByID(ctx, p.ID)
	assert.Contains(t, pat.HealthRecords, rec.ID)

	bill, err := f.store.Billings.GetByID(ctx, *done.BillingID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, bill.Amount)
	assert.Equal(t, models.PaymentPending, bill.Status)
	assert.Equal(t, models.PaymentUPI, bill.PaymentMethod)
	assert.True(t, strings.HasPrefix(bill.InvoiceNo, "INV-20300315-"))

	again, err := f.appointments.Complete(ctx, d.ID, apt.ID, CompletionInput{
		Disease: "Influenza A", Symptoms: "Fever", Amount: 650,
		Bill: storage.FromBytes("bill.pdf", samplePDF),
	})
	require.NoError(t, err)
	assert.Equal(t, *done.HealthRecordID, *again.HealthRecordID)
	assert.Equal(t, *done.BillingID, *again.BillingID)

	bill, _ = f.store.Billings.GetByID(ctx, *done.BillingID)
	assert.Equal(t, 650.0, bill.Amount)
	assert.Len(t, bill.Attachments, 1)
	rec, _ = f.store.HealthRecords.GetByID(ctx, *done.HealthRecordID)
	assert.Equal(t, "Influenza A", rec.Disease)
	assert.Equal(t, "Rest and fluids", again.Summary, "empty summary keeps the previous one")
}

func TestComplete_WithoutUploadsCreatesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := f.doctor(t, "house", slotAt(day(1), "09:00", "09:30"))
	p := f.patient(t, "ana")
	apt := f.book(t, p, d, day(1), "09:00-09:30")

	done, err := f.appointments.Complete(ctx, d.ID, apt.ID, CompletionInput{Disease: "Migraine", Symptoms: "Headache"})
	require.NoError(t, err)
	assert.Nil(t, done.HealthRecordID)
	assert.Nil(t, done.BillingID)

	_, err = f.appointments.Complete(ctx, d.ID, apt.ID, CompletionInput{
		Disease: "Migraine", Symptoms: "Headache", Prescription: storage.FromBytes("rx.exe", []byte("MZ")),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveAttachments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := f.doctor(t, "house", slotAt(day(1), "09:00", "09:30"))
	p := f.patient(t, "ana")
	apt := f.book(t, p, d, day(1), "09:00-09:30")
	done, err := f.appointments.Complete(ctx, d.ID, apt.ID, CompletionInput{
		Disease: "Flu", Symptoms: "Fever",
		Prescription: storage.FromBytes("rx.pdf", samplePDF),
		Reports:      []storage.Upload{storage.FromBytes("cbc.pdf", samplePDF)},
		Bill:         storage.FromBytes("bill.pdf", samplePDF),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.appointments.RemoveAttachmentAt(ctx, d.ID, apt.ID, AttachmentHealthRecord, 3), ErrValidation)
	assert.ErrorIs(t, f.appointments.RemoveAttachmentAt(ctx, d.ID, apt.ID, "xray", 0), ErrValidation)
	require.NoError(t, f.appointments.RemoveAttachmentAt(ctx, d.ID, apt.ID, AttachmentHealthRecord, 0))
	rec, _ := f.store.HealthRecords.GetByID(ctx, *done.HealthRecordID)
	assert.Empty(t, rec.Attachments)

	assert.ErrorIs(t, f.appointments.RemovePrescriptionFile(ctx, p.ID, apt.ID, "/uploads/other.pdf"), ErrNotFound)
	require.NoError(t, f.appointments.RemovePrescriptionFile(ctx, p.ID, apt.ID, done.Attachments[0]))
	stored, _ := f.store.Appointments.GetByID(ctx, apt.ID)
	assert.Empty(t, stored.Attachments)

	bill, _ := f.store.Billings.GetByID(ctx, *done.BillingID)
	other := f.patient(t, "bob")
	assert.ErrorIs(t, f.records.RemoveBillingAttachment(ctx, other.ID, bill.ID, bill.Attachments[0]), ErrForbidden)
	require.NoError(t, f.records.RemoveBillingAttachment(ctx, p.ID, bill.ID, bill.Attachments[0]))
	bill, _ = f.store.Billings.GetByID(ctx, *done.BillingID)
	assert.Empty(t, bill.Attachments)
}

func TestListAndSearch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := f.doctor(t, "house")
	p := f.patient(t, "ana")

	mk := func(offset int, slot string, status models.AppointmentStatus, reason string) *models.Appointment {
		a := &models.Appointment{
			ID: primitive.NewObjectID(), PatientID: p.ID, DoctorID: d.ID, Date: day(offset),
			TimeSlot: slot, Status: status, Reason: reason, Attachments: []string{},
		}
		require.NoError(t, f.store.Appointments.Create(ctx, a))
		return a
	}
	past := mk(-3, "09:00-09:30", models.StatusCompleted, "Follow-up")
	older := mk(-10, "09:00-09:30", models.StatusCompleted, "Checkup")
	today := mk(0, "15:00-15:30", models.StatusConfirmed, "Knee pain")
	next := mk(2, "11:00-11:30", models.StatusPending, "Skin rash")
	later := mk(5, "09:00-09:30", models.StatusPending, "Rash follow-up")

	ids := func(appts []*models.Appointment) []primitive.ObjectID {
		out := make([]primitive.ObjectID, len(appts))
		for i, a := range appts {
			out[i] = a.ID
		}
		return out
	}

	got, err := f.appointments.ListForPatient(ctx, p.ID, WindowUpcoming)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{next.ID, later.ID}, ids(got))
	require.NotNil(t, got[0].Doctor)
	assert.Equal(t, "Dr house", got[0].Doctor.FullName)

	got, _ = f.appointments.ListForPatient(ctx, p.ID, WindowToday)
	assert.Equal(t, []primitive.ObjectID{today.ID}, ids(got))

	got, _ = f.appointments.ListForPatient(ctx, p.ID, WindowPast)
	assert.Equal(t, []primitive.ObjectID{past.ID, older.ID}, ids(got))

	got, _ = f.appointments.ListForDoctor(ctx, d.ID, WindowAll)
	assert.Len(t, got, 5)
	assert.NotNil(t, got[0].Patient)

	got, err = f.appointments.SearchForPatient(ctx, p.ID, AppointmentQuery{Search: "RASH"})
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{next.ID, later.ID}, ids(got))

	got, _ = f.appointments.SearchForPatient(ctx, p.ID, AppointmentQuery{Search: "house", Status: "completed"})
	assert.Equal(t, []primitive.ObjectID{older.ID, past.ID}, ids(got))

	got, _ = f.appointments.SearchForDoctor(ctx, d.ID, AppointmentQuery{Search: "patient ana", Date: day(0).Format(models.DateLayout)})
	assert.Equal(t, []primitive.ObjectID{today.ID}, ids(got))

	_, err = f.appointments.SearchForDoctor(ctx, d.ID, AppointmentQuery{Status: "lost"})
	assert.ErrorIs(t, err, ErrValidation)

	n, err := f.appointments.CountPending(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPrescriptionsForPair_RequiresLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := f.doctor(t, "house")
	p := f.patient(t, "ana")

	_, err := f.appointments.PrescriptionsForPair(ctx, d.ID, p.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.records.HealthRecordsForPair(ctx, d.ID, p.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.store.Doctors.AddPatient(ctx, d.ID, p.ID))
	a := &models.Appointment{
		ID: primitive.NewObjectID(), PatientID: p.ID, DoctorID: d.ID, Date: day(-1),
		TimeSlot: "09:00-09:30", Status: models.StatusCompleted, Attachments: []string{"/uploads/prescriptions/rx.pdf"},
	}
	require.NoError(t, f.store.Appointments.Create(ctx, a))

	got, err := f.appointments.PrescriptionsForPair(ctx, d.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	recs, err := f.records.HealthRecordsForPair(ctx, d.ID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
