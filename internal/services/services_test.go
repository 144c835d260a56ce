package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/repository"
	"github.com/aarogyam/aarogyam/internal/repository/memstore"
	"github.com/aarogyam/aarogyam/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ist     = time.FixedZone("IST", 5*3600+1800)
	testNow = time.Date(2030, 3, 15, 10, 0, 0, 0, ist)
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\ntrailer << >>\n%%EOF\n")

type recordingNotifier struct {
	mu        sync.Mutex
	booked    []primitive.ObjectID
	confirmed []primitive.ObjectID
	cancelled []primitive.ObjectID
}

func (n *recordingNotifier) AppointmentBooked(_ *models.Patient, _ *models.Doctor, a *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.booked = append(n.booked, a.ID)
}

func (n *recordingNotifier) AppointmentConfirmed(_ *models.Patient, _ *models.Doctor, a *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, a.ID)
}

func (n *recordingNotifier) AppointmentCancelled(_ *models.Patient, _ *models.Doctor, a *models.Appointment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, a.ID)
}

type fixture struct {
	store        *repository.Store
	notifier     *recordingNotifier
	auth         *AuthService
	appointments *AppointmentService
	records      *RecordService
	profiles     *ProfileService
	certificates *CertificateService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	uploader := storage.NewUploader(storage.NewLocalStore(t.TempDir(), "/uploads"), 1<<20)
	notifier := &recordingNotifier{}
	log := zerolog.Nop()
	clock := func() time.Time { return testNow }

	f := &fixture{
		store:        store,
		notifier:     notifier,
		auth:         NewAuthService(store.Doctors, store.Patients, "test-secret", time.Hour, bcrypt.MinCost, log),
		appointments: NewAppointmentService(store, uploader, notifier, ist, log),
		records:      NewRecordService(store, uploader, log),
		profiles:     NewProfileService(store, uploader, ist, log),
		certificates: NewCertificateService(store, t.TempDir(), ist, log),
	}
	f.auth.Now = clock
	f.appointments.Now = clock
	f.profiles.Now = clock
	f.certificates.Now = clock
	return f
}

func day(offset int) time.Time {
	return models.StartOfDay(testNow, ist).AddDate(0, 0, offset)
}

func (f *fixture) doctor(t *testing.T, username string, slots ...models.AvailabilitySlot) *models.Doctor {
	t.Helper()
	d, err := f.auth.RegisterDoctor(context.Background(), DoctorSignup{
		Username: username, Email: username + "@clinic.test", Password: "secret1",
		FullName: "Dr " + username, Specialization: "Cardiologist",
	})
	require.NoError(t, err)
	if len(slots) > 0 {
		d.AvailabilitySlots = slots
		require.NoError(t, f.store.Doctors.UpdateProfile(context.Background(), d))
	}
	return d
}

func (f *fixture) patient(t *testing.T, username string) *models.Patient {
	t.Helper()
	p, err := f.auth.RegisterPatient(context.Background(), PatientSignup{
		Username: username, Email: username + "@mail.test", Password: "secret1",
		FullName: "Patient " + username, Gender: "female", Age: 31, BloodType: "b+", Phone: "+911234567890",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) book(t *testing.T, p *models.Patient, d *models.Doctor, date time.Time, slot string) *models.Appointment {
	t.Helper()
	apt, err := f.appointments.Book(context.Background(), p.ID, BookingRequest{
		DoctorID: d.ID.Hex(), AppointmentDate: date.Format(models.DateLayout), TimeSlot: slot, Reason: "Chest pain",
	})
	require.NoError(t, err)
	return apt
}

func slotAt(date time.Time, start, end string) models.AvailabilitySlot {
	return models.AvailabilitySlot{Date: date, StartTime: start, EndTime: end}
}
