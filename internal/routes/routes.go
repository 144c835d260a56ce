// Package routes assembles the gin engine: middleware, static files and the
// auth, patient and doctor route groups.
package routes

import (
	"net/http"
	"time"

	"github.com/aarogyam/aarogyam/internal/config"
	"github.com/aarogyam/aarogyam/internal/handlers"
	"github.com/aarogyam/aarogyam/internal/middleware"
	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/services"
	"github.com/aarogyam/aarogyam/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/rs/zerolog"
)

// NewRouter wires every route onto a new engine.
func NewRouter(cfg *config.Config, h *handlers.Handler, sessions middleware.TokenParser, pages render.HTMLRender, logger zerolog.Logger) (*gin.Engine, error) {
	if err := utils.RegisterBindingValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.HTMLRender = pages
	r.MaxMultipartMemory = 8 << 20

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger, h.InternalError))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.LoadSession(sessions))

	r.GET("/", h.Home)
	r.GET("/health", h.Health)

	signedIn := r.Group("")
	signedIn.Use(middleware.AuthMiddleware(h.RequireLogin))
	{
		if cfg.StorageBackend == config.StorageLocal {
			signedIn.Static("/uploads", cfg.UploadDir)
		}
		signedIn.GET(services.CertificateURLPrefix+"/:name", h.ServeCertificate)
		signedIn.GET("/files/:id", h.ServeFile)
		signedIn.GET("/doctors/:doctorId/slots", h.DoctorSlots)
	}

	auth := r.Group("/auth")
	{
		auth.GET("/login", h.LoginPage)
		auth.POST("/login", h.Login)
		auth.GET("/signup", h.SignupPage)
		auth.GET("/signup/doctor", h.DoctorSignupPage)
		auth.POST("/signup/doctor", h.SignupDoctor)
		auth.GET("/signup/patient", h.PatientSignupPage)
		auth.POST("/signup/patient", h.SignupPatient)
		auth.GET("/logout", h.Logout)
	}

	patient := r.Group("/patient")
	patient.Use(middleware.AuthMiddleware(h.RequireLogin), middleware.RoleAuthMiddleware(h.Denied, models.RolePatient))
	{
		patient.GET("/dashboard", h.PatientDashboard)
		patient.GET("/upcomingappointments", h.UpcomingAppointments)
		patient.GET("/todaysappointments", h.TodaysAppointments)
		patient.GET("/pastappointments", h.PastAppointments)
		patient.GET("/filterappointments", h.FilterPatientAppointments)
		patient.POST("/appointments/cancel/:id", h.CancelPatientAppointment)
		patient.DELETE("/appointments/cancel/:id", h.CancelPatientAppointment)
		patient.GET("/bookappointment", h.BookAppointmentPage)
		patient.POST("/bookappointment", h.BookAppointment)
		patient.GET("/healthrecords", h.PatientHealthRecords)
		patient.GET("/prescriptions", h.PatientPrescriptions)
		patient.POST("/prescriptions/delete/:id", h.DeletePrescription)
		patient.GET("/billings", h.PatientBillings)
		patient.POST("/billings/delete/:id", h.DeleteBillingFile)
		patient.GET("/doctors", h.PatientDoctors)
		patient.GET("/profile", h.PatientProfilePage)
		patient.POST("/profile", h.UpdatePatientProfile)
	}

	doctor := r.Group("/doctor")
	doctor.Use(middleware.AuthMiddleware(h.RequireLogin), middleware.RoleAuthMiddleware(h.Denied, models.RoleDoctor))
	{
		doctor.GET("/dashboard", h.DoctorDashboard)
		doctor.GET("/appointments", h.DoctorAppointments)
		doctor.GET("/filterappointments", h.FilterDoctorAppointments)
		doctor.GET("/patients", h.DoctorPatients)
		doctor.GET("/:doctorId/patient/:patientId/healthrecords", h.PatientRecordsForDoctor)
		doctor.GET("/:doctorId/patient/:patientId/prescriptions", h.PatientPrescriptionsForDoctor)
		doctor.GET("/appointments/edit/:id", h.EditAppointmentPage)
		doctor.POST("/appointments/edit/:id", h.EditAppointment)
		doctor.POST("/appointments/confirm/:id", h.ConfirmAppointment)
		doctor.POST("/appointments/cancel/:id", h.CancelDoctorAppointment)
		doctor.POST("/appointment/:appointmentId/prescription/:index", h.RemoveAttachment(services.AttachmentPrescription))
		doctor.POST("/appointment/:appointmentId/healthrecord/:index", h.RemoveAttachment(services.AttachmentHealthRecord))
		doctor.POST("/appointment/:appointmentId/billing/:index", h.RemoveAttachment(services.AttachmentBilling))
		doctor.POST("/generate-certificate/:patientId", h.GenerateCertificate)
		doctor.GET("/profile/:id", h.DoctorProfilePage)
		doctor.POST("/profile/:id", h.UpdateDoctorProfile)
	}

	r.NoRoute(h.NotFound)
	return r, nil
}

// Server wraps the engine with the timeouts used in production.
func Server(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
