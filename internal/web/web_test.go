package web

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func TestRenderer_ParsesEveryPage(t *testing.T) {
	r, err := NewRenderer(ist)
	require.NoError(t, err)
	for _, name := range []string{
		"auth/login", "auth/signup", "auth/signup_doctor", "auth/signup_patient",
		"patient/dashboard", "patient/appointments", "patient/book", "patient/healthrecords",
		"patient/prescriptions", "patient/billings", "patient/doctors", "patient/profile",
		"doctor/dashboard", "doctor/appointments", "doctor/patients", "doctor/healthrecords",
		"doctor/prescriptions", "doctor/edit", "doctor/profile", ErrorPage,
	} {
		assert.Contains(t, r.pages, name)
	}
}

func TestRenderer_Book(t *testing.T) {
	r, err := NewRenderer(ist)
	require.NoError(t, err)

	day := time.Date(2030, 3, 16, 0, 0, 0, 0, ist)
	doctor := &models.Doctor{
		ID: primitive.NewObjectID(), FullName: "Gregory House", Specialization: "Diagnostics", ConsultantFees: 500,
		AvailabilitySlots: []models.AvailabilitySlot{{Date: day, StartTime: "09:00", EndTime: "09:30"}},
	}
	user := &models.Principal{ID: primitive.NewObjectID(), Role: models.RolePatient, Name: "Ana"}

	rec := httptest.NewRecorder()
	err = r.Instance("patient/book", map[string]any{
		"Title":   "Book",
		"User":    user,
		"Flash":   []map[string]string{{"Kind": "success", "Message": "Welcome back!"}},
		"Doctors": []*models.Doctor{doctor},
	}).Render(rec)
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, "Dr. Gregory House")
	assert.Contains(t, body, `value="2030-03-16"`)
	assert.Contains(t, body, `value="09:00-09:30"`)
	assert.Contains(t, body, "₹500.00")
	assert.Contains(t, body, "Welcome back!")
	assert.Contains(t, body, "/patient/healthrecords", "patient navigation")
}

func TestRenderer_DoctorEdit(t *testing.T) {
	r, err := NewRenderer(ist)
	require.NoError(t, err)

	apt := &models.Appointment{
		ID: primitive.NewObjectID(), Date: time.Date(2030, 3, 16, 0, 0, 0, 0, ist), TimeSlot: "09:00-09:30",
		Status: models.StatusConfirmed, Attachments: []string{"/uploads/prescriptions/rx.pdf"},
		Patient: &models.Patient{FullName: "Ana Lima", Gender: models.GenderFemale, Age: 31},
	}
	rec := httptest.NewRecorder()
	err = r.Instance("doctor/edit", map[string]any{
		"Detail": &services.AppointmentDetail{Appointment: apt, Billing: &models.Billing{InvoiceNo: "INV-1", Amount: 250}},
	}).Render(rec)
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, "Ana Lima")
	assert.Contains(t, body, "/doctor/appointment/"+apt.ID.Hex()+"/prescription/0")
	assert.Contains(t, body, "INV-1")
	assert.Contains(t, body, "Log in", "anonymous header without a user")
}

func TestRenderer_UnknownPageFallsBack(t *testing.T) {
	r, err := NewRenderer(ist)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	require.NoError(t, r.Instance("nope", map[string]any{"Status": 404, "Message": "Page not found"}).Render(rec))
	assert.Contains(t, rec.Body.String(), "Page not found")
}
