package handlers

import (
	"net/http"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/services"
	"github.com/aarogyam/aarogyam/internal/utils"
	"github.com/gin-gonic/gin"
)

var statuses = []models.AppointmentStatus{
	models.StatusPending, models.StatusConfirmed, models.StatusCompleted, models.StatusCancelled,
}

func (h *Handler) PatientDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	id := userID(c)

	patient, err := h.profiles.Patient(ctx, id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	upcoming, err := h.appointments.ListForPatient(ctx, id, services.WindowUpcoming)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	today, err := h.appointments.ListForPatient(ctx, id, services.WindowToday)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	records, err := h.records.HealthRecordsForPatient(ctx, id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	bills, err := h.records.BillingsForPatient(ctx, id)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	h.show(c, "patient/dashboard", "Dashboard", gin.H{
		"Patient":       patient,
		"Today":         today,
		"UpcomingCount": len(upcoming),
		"RecordCount":   len(records),
		"BillCount":     len(bills),
	})
}

func (h *Handler) UpcomingAppointments(c *gin.Context) {
	h.patientAppointments(c, services.WindowUpcoming, "Upcoming appointments")
}

func (h *Handler) TodaysAppointments(c *gin.Context) {
	h.patientAppointments(c, services.WindowToday, "Today's appointments")
}

func (h *Handler) PastAppointments(c *gin.Context) {
	h.patientAppointments(c, services.WindowPast, "Past appointments")
}

func (h *Handler) patientAppointments(c *gin.Context, w services.Window, heading string) {
	appts, err := h.appointments.ListForPatient(c.Request.Context(), userID(c), w)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.show(c, "patient/appointments", heading, gin.H{
		"Heading":      heading,
		"Appointments": appts,
		"Statuses":     statuses,
		"Query":        services.AppointmentQuery{},
	})
}

func (h *Handler) FilterPatientAppointments(c *gin.Context) {
	var q services.AppointmentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, bindError(err), "/patient/upcomingappointments")
		return
	}
	appts, err := h.appointments.SearchForPatient(c.Request.Context(), userID(c), q)
	if err != nil {
		h.fail(c, err, "/patient/upcomingappointments")
		return
	}
	h.show(c, "patient/appointments", "Search results", gin.H{
		"Heading":      "Search results",
		"Appointments": appts,
		"Statuses":     statuses,
		"Query":        q,
	})
}

func (h *Handler) CancelPatientAppointment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err, "/patient/upcomingappointments")
		return
	}
	if err := h.appointments.CancelByPatient(c.Request.Context(), userID(c), id); err != nil {
		h.fail(c, err, "/patient/upcomingappointments")
		return
	}
	h.done(c, "Appointment cancelled", "/patient/upcomingappointments", nil)
}

func (h *Handler) BookAppointmentPage(c *gin.Context) {
	doctors, err := h.profiles.DoctorsForBooking(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.show(c, "patient/book", "Book an appointment", gin.H{"Doctors": doctors})
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req services.BookingRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, bindError(err), "/patient/bookappointment")
		return
	}
	apt, err := h.appointments.Book(c.Request.Context(), userID(c), req)
	if err != nil {
		h.fail(c, err, "/patient/bookappointment")
		return
	}

	const msg = "Appointment requested. The doctor will confirm it shortly."
	if wantsJSON(c) {
		utils.Created(c, msg, apt)
		return
	}
	h.setFlash(c, flashSuccess, msg)
	c.Redirect(http.StatusFound, "/patient/upcomingappointments")
}

func (h *Handler) PatientHealthRecords(c *gin.Context) {
	records, err := h.records.HealthRecordsForPatient(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.show(c, "patient/healthrecords", "Health records", gin.H{"Records": records})
}

func (h *Handler) PatientPrescriptions(c *gin.Context) {
	appts, err := h.appointments.PrescriptionsForPatient(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.show(c, "patient/prescriptions", "Prescriptions", gin.H{"Appointments": appts})
}

func (h *Handler) DeletePrescription(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err, "/patient/prescriptions")
		return
	}
	err = h.appointments.RemovePrescriptionFile(c.Request.Context(), userID(c), id, c.Query("file"))
	if err != nil {
		h.fail(c, err, "/patient/prescriptions")
		return
	}
	h.done(c, "Prescription removed", "/patient/prescriptions", nil)
}

func (h *Handler) PatientBillings(c *gin.Context) {
	bills, err := h.records.BillingsForPatient(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.show(c, "patient/billings", "Billing", gin.H{"Billings": bills})
}

func (h *Handler) DeleteBillingFile(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err, "/patient/billings")
		return
	}
	err = h.records.RemoveBillingAttachment(c.Request.Context(), userID(c), id, c.Query("file"))
	if err != nil {
		h.fail(c, err, "/patient/billings")
		return
	}
	h.done(c, "Bill removed", "/patient/billings", nil)
}

func (h *Handler) PatientDoctors(c *gin.Context) {
	doctors, err := h.profiles.DoctorsOfPatient(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.show(c, "patient/doctors", "My doctors", gin.H{"Doctors": doctors})
}

func (h *Handler) PatientProfilePage(c *gin.Context) {
	patient, err := h.profiles.Patient(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.show(c, "patient/profile", "My profile", gin.H{
		"Patient":    patient,
		"Genders":    genders,
		"BloodTypes": bloodTypes,
	})
}

func (h *Handler) UpdatePatientProfile(c *gin.Context) {
	var in services.PatientProfileInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, bindError(err), "/patient/profile")
		return
	}
	patient, err := h.profiles.UpdatePatient(c.Request.Context(), userID(c), in)
	if err != nil {
		h.fail(c, err, "/patient/profile")
		return
	}
	h.done(c, "Profile updated", "/patient/profile", patient)
}
