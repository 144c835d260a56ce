package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/rs/zerolog"
)

// Notifier tells patients about changes to their appointments. Implementations
// must not block the caller.
type Notifier interface {
	AppointmentBooked(patient *models.Patient, doctor *models.Doctor, apt *models.Appointment)
	AppointmentConfirmed(patient *models.Patient, doctor *models.Doctor, apt *models.Appointment)
	AppointmentCancelled(patient *models.Patient, doctor *models.Doctor, apt *models.Appointment)
}

// NotificationService sends SMS through the Textbelt HTTP API.
type NotificationService struct {
	endpoint string
	apiKey   string
	client   *http.Client
	loc      *time.Location
	logger   zerolog.Logger
}

func NewNotificationService(endpoint, apiKey string, loc *time.Location, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
		loc:      loc,
		logger:   logger.With().Str("component", "notifications").Logger(),
	}
}

func (s *NotificationService) AppointmentBooked(patient *models.Patient, doctor *models.Doctor, apt *models.Appointment) {
	s.notify(patient, fmt.Sprintf("Aarogyam: appointment requested with %s on %s (%s). We will confirm it shortly.",
		doctor.DisplayName(), s.day(apt), apt.TimeSlot))
}

func (s *NotificationService) AppointmentConfirmed(patient *models.Patient, doctor *models.Doctor, apt *models.Appointment) {
	s.notify(patient, fmt.Sprintf("Aarogyam: your appointment with %s on %s (%s) is confirmed.",
		doctor.DisplayName(), s.day(apt), apt.TimeSlot))
}

func (s *NotificationService) AppointmentCancelled(patient *models.Patient, doctor *models.Doctor, apt *models.Appointment) {
	s.notify(patient, fmt.Sprintf("Aarogyam: your appointment with %s on %s (%s) was cancelled.",
		doctor.DisplayName(), s.day(apt), apt.TimeSlot))
}

func (s *NotificationService) day(apt *models.Appointment) string {
	return apt.Date.In(s.loc).Format("Jan 2, 2006")
}

func (s *NotificationService) notify(patient *models.Patient, message string) {
	if patient == nil || patient.Phone == "" {
		s.logger.Debug().Msg("sms skipped: patient has no phone number")
		return
	}
	if s.apiKey == "" {
		s.logger.Debug().Str("phone", patient.Phone).Msg("sms skipped: TEXTBELT_API_KEY not set")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.send(ctx, patient.Phone, message); err != nil {
			s.logger.Warn().Err(err).Str("phone", patient.Phone).Msg("sms not delivered")
			return
		}
		s.logger.Info().Str("phone", patient.Phone).Msg("sms sent")
	}()
}

type textbeltResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *NotificationService) send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
		"key":     s.apiKey,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	defer resp.Body.Close()

	var result textbeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("textbelt response (%d): %w", resp.StatusCode, err)
	}
	if !result.Success {
		return fmt.Errorf("textbelt rejected message: %s", result.Error)
	}
	return nil
}
