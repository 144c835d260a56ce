package handlers

import (
	"context"
	"time"

	"github.com/aarogyam/aarogyam/internal/services"
	"github.com/aarogyam/aarogyam/internal/storage"
	"github.com/rs/zerolog"
)

// Deps lists what the handlers need. Files and Ping are optional.
type Deps struct {
	Auth         *services.AuthService
	Appointments *services.AppointmentService
	Records      *services.RecordService
	Profiles     *services.ProfileService
	Certificates *services.CertificateService
	Uploader     *storage.Uploader
	Files        storage.Streamer
	Ping         func(ctx context.Context) error
	Location     *time.Location
	Logger       zerolog.Logger
	CookieSecure bool
}

// Handler carries the services every route method uses.
type Handler struct {
	auth         *services.AuthService
	appointments *services.AppointmentService
	records      *services.RecordService
	profiles     *services.ProfileService
	certificates *services.CertificateService
	uploader     *storage.Uploader
	files        storage.Streamer
	ping         func(ctx context.Context) error
	loc          *time.Location
	logger       zerolog.Logger
	cookieSecure bool
}

func NewHandler(d Deps) *Handler {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		auth:         d.Auth,
		appointments: d.Appointments,
		records:      d.Records,
		profiles:     d.Profiles,
		certificates: d.Certificates,
		uploader:     d.Uploader,
		files:        d.Files,
		ping:         d.Ping,
		loc:          loc,
		logger:       d.Logger.With().Str("component", "http").Logger(),
		cookieSecure: d.CookieSecure,
	}
}
