package handlers

import (
	"strconv"

	"github.com/aarogyam/aarogyam/internal/services"
	"github.com/aarogyam/aarogyam/internal/storage"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *Handler) DoctorDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	id := userID(c)

	doctor, err := h.profiles.Doctor(ctx, id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	today, err := h.appointments.ListForDoctor(ctx, id, services.WindowToday)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	pending, err := h.appointments.CountPending(ctx, id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.show(c, "doctor/dashboard", "Dashboard", gin.H{
		"Doctor":       doctor,
		"Today":        today,
		"PendingCount": pending,
	})
}

func (h *Handler) DoctorAppointments(c *gin.Context) {
	appts, err := h.appointments.ListForDoctor(c.Request.Context(), userID(c), services.WindowAll)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.show(c, "doctor/appointments", "Appointments", gin.H{
		"Heading":      "All appointments",
		"Appointments": appts,
		"Statuses":     statuses,
		"Query":        services.AppointmentQuery{},
	})
}

func (h *Handler) FilterDoctorAppointments(c *gin.Context) {
	var q services.AppointmentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, bindError(err), "/doctor/appointments")
		return
	}
	appts, err := h.appointments.SearchForDoctor(c.Request.Context(), userID(c), q)
	if err != nil {
		h.fail(c, err, "/doctor/appointments")
		return
	}
	h.show(c, "doctor/appointments", "Search results", gin.H{
		"Heading":      "Search results",
		"Appointments": appts,
		"Statuses":     statuses,
		"Query":        q,
	})
}

func (h *Handler) DoctorPatients(c *gin.Context) {
	ctx := c.Request.Context()
	doctor, err := h.profiles.Doctor(ctx, userID(c))
	if err != nil {
		h.fail(c, err, "")
		return
	}
	patients, err := h.profiles.PatientsOfDoctor(ctx, doctor.ID)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.show(c, "doctor/patients", "My patients", gin.H{"Doctor": doctor, "Patients": patients})
}

// pairParams reads :doctorId and :patientId; the doctor must be the session user.
func (h *Handler) pairParams(c *gin.Context) (doctorID, patientID primitive.ObjectID, err error) {
	if doctorID, err = idParam(c, "doctorId"); err != nil {
		return
	}
	if patientID, err = idParam(c, "patientId"); err != nil {
		return
	}
	if doctorID != userID(c) {
		err = services.ErrForbidden
	}
	return
}

func (h *Handler) PatientRecordsForDoctor(c *gin.Context) {
	doctorID, patientID, err := h.pairParams(c)
	if err != nil {
		h.fail(c, err, "/doctor/patients")
		return
	}
	ctx := c.Request.Context()
	records, err := h.records.HealthRecordsForPair(ctx, doctorID, patientID)
	if err != nil {
		h.fail(c, err, "/doctor/patients")
		return
	}
	patient, err := h.profiles.Patient(ctx, patientID)
	if err != nil {
		h.fail(c, err, "/doctor/patients")
		return
	}
	h.show(c, "doctor/healthrecords", "Health records", gin.H{"Patient": patient, "Records": records})
}

func (h *Handler) PatientPrescriptionsForDoctor(c *gin.Context) {
	doctorID, patientID, err := h.pairParams(c)
	if err != nil {
		h.fail(c, err, "/doctor/patients")
		return
	}
	ctx := c.Request.Context()
	appts, err := h.appointments.PrescriptionsForPair(ctx, doctorID, patientID)
	if err != nil {
		h.fail(c, err, "/doctor/patients")
		return
	}
	patient, err := h.profiles.Patient(ctx, patientID)
	if err != nil {
		h.fail(c, err, "/doctor/patients")
		return
	}
	h.show(c, "doctor/prescriptions", "Prescriptions", gin.H{"Patient": patient, "Appointments": appts})
}

func (h *Handler) EditAppointmentPage(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err, "/doctor/appointments")
		return
	}
	detail, err := h.appointments.Detail(c.Request.Context(), userID(c), id)
	if err != nil {
		h.fail(c, err, "/doctor/appointments")
		return
	}
	h.show(c, "doctor/edit", "Appointment details", gin.H{"Detail": detail})
}

func (h *Handler) EditAppointment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err, "/doctor/appointments")
		return
	}
	back := "/doctor/appointments/edit/" + id.Hex()

	var in services.CompletionInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, bindError(err), back)
		return
	}
	form := multipartForm(c)
	in.Prescription = firstUpload(form, "prescription")
	in.Reports = uploads(form, "medicalReports")
	in.Bill = firstUpload(form, "bill")

	apt, err := h.appointments.Complete(c.Request.Context(), userID(c), id, in)
	if err != nil {
		h.fail(c, err, back)
		return
	}
	h.done(c, "Appointment updated", "/doctor/appointments", apt)
}

func (h *Handler) ConfirmAppointment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err, "/doctor/appointments")
		return
	}
	apt, err := h.appointments.Confirm(c.Request.Context(), userID(c), id)
	if err != nil {
		h.fail(c, err, "/doctor/appointments")
		return
	}
	h.done(c, "Appointment confirmed", "/doctor/appointments", apt)
}

func (h *Handler) CancelDoctorAppointment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err, "/doctor/appointments")
		return
	}
	apt, err := h.appointments.CancelByDoctor(c.Request.Context(), userID(c), id)
	if err != nil {
		h.fail(c, err, "/doctor/appointments")
		return
	}
	h.done(c, "Appointment cancelled", "/doctor/appointments", apt)
}

// RemoveAttachment returns a handler deleting the kind attachment at :index.
func (h *Handler) RemoveAttachment(kind services.AttachmentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "appointmentId")
		if err != nil {
			h.fail(c, err, "/doctor/appointments")
			return
		}
		back := "/doctor/appointments/edit/" + id.Hex()
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			h.fail(c, badRequest("invalid attachment index"), back)
			return
		}
		if err := h.appointments.RemoveAttachmentAt(c.Request.Context(), userID(c), id, kind, index); err != nil {
			h.fail(c, err, back)
			return
		}
		h.done(c, "Attachment removed", back, nil)
	}
}

func (h *Handler) GenerateCertificate(c *gin.Context) {
	patientID, err := idParam(c, "patientId")
	if err != nil {
		h.fail(c, err, "/doctor/patients")
		return
	}
	var req services.CertificateRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, bindError(err), "/doctor/patients")
		return
	}
	url, err := h.certificates.Generate(c.Request.Context(), userID(c), patientID, req)
	if err != nil {
		h.fail(c, err, "/doctor/patients")
		return
	}
	h.done(c, "Certificate ready: "+url, "/doctor/patients", gin.H{"fileUrl": url})
}

func (h *Handler) DoctorProfilePage(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err, "/doctor/dashboard")
		return
	}
	if id != userID(c) {
		h.fail(c, services.ErrForbidden, "")
		return
	}
	doctor, err := h.profiles.Doctor(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	h.show(c, "doctor/profile", "My profile", gin.H{"Doctor": doctor})
}

func (h *Handler) UpdateDoctorProfile(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, err, "/doctor/dashboard")
		return
	}
	back := "/doctor/profile/" + id.Hex()

	var in services.DoctorProfileInput
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, bindError(err), back)
		return
	}
	if !wantsJSON(c) {
		in.Slots = slotRows(c)
	}
	if fh, err := c.FormFile("profile"); err == nil {
		in.Picture = storage.FromFileHeader(fh)
	}

	doctor, err := h.profiles.UpdateDoctor(c.Request.Context(), userID(c), id, in)
	if err != nil {
		h.fail(c, err, back)
		return
	}
	h.done(c, "Profile updated", back, doctor)
}

// slotRows zips the availability editor's parallel inputs. It returns nil
// when the form has no availability section.
func slotRows(c *gin.Context) []services.SlotInput {
	dates, ok := c.GetPostFormArray("slotDate")
	if !ok {
		return nil
	}
	starts := c.PostFormArray("slotStart")
	ends := c.PostFormArray("slotEnd")

	rows := make([]services.SlotInput, 0, len(dates))
	for i, date := range dates {
		row := services.SlotInput{Date: date}
		if i < len(starts) {
			row.StartTime = starts[i]
		}
		if i < len(ends) {
			row.EndTime = ends[i]
		}
		rows = append(rows, row)
	}
	return rows
}
