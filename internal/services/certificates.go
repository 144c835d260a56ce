package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/repository"
	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CertificateURLPrefix is where certificates are served.
const CertificateURLPrefix = "/certificates"

const certificatePrefix = "medical_certificate_"

type CertificateRequest struct {
	AdmissionDate string `form:"admissionDate" json:"admissionDate" validate:"required,ymd"`
	DischargeDate string `form:"dischargeDate" json:"dischargeDate" validate:"required,ymd"`
}

// CertificateService renders medical leave certificates to PDF files.
type CertificateService struct {
	store  *repository.Store
	dir    string
	loc    *time.Location
	logger zerolog.Logger
	Now    func() time.Time
}

func NewCertificateService(store *repository.Store, dir string, loc *time.Location, logger zerolog.Logger) *CertificateService {
	return &CertificateService{
		store:  store,
		dir:    dir,
		loc:    loc,
		logger: logger.With().Str("component", "certificates").Logger(),
		Now:    time.Now,
	}
}

// Locate returns the file path of the named certificate when the viewer is
// its patient or a doctor treating that patient.
func (s *CertificateService) Locate(ctx context.Context, viewer *models.Principal, name string) (string, error) {
	hex, ok := strings.CutPrefix(name, certificatePrefix)
	if !ok {
		return "", ErrNotFound
	}
	hex, ok = strings.CutSuffix(hex, ".pdf")
	if !ok {
		return "", ErrNotFound
	}
	patientID, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return "", ErrNotFound
	}

	switch {
	case viewer.IsPatient():
		if viewer.ID != patientID {
			return "", ErrForbidden
		}
	case viewer.IsDoctor():
		doctor, err := s.store.Doctors.GetByID(ctx, viewer.ID)
		if err != nil {
			return "", err
		}
		if !doctor.HasPatient(patientID) {
			return "", ErrForbidden
		}
	default:
		return "", ErrForbidden
	}

	full := filepath.Join(s.dir, certificatePrefix+patientID.Hex()+".pdf")
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	return full, nil
}

type certificate struct {
	Patient   *models.Patient
	Doctor    *models.Doctor
	Admission time.Time
	Discharge time.Time
	Issued    time.Time
}

// Generate writes the certificate for a patient of the doctor and returns
// the URL it is served from.
func (s *CertificateService) Generate(ctx context.Context, doctorID, patientID primitive.ObjectID, req CertificateRequest) (string, error) {
	if err := validateStruct(req); err != nil {
		return "", err
	}
	admission, _ := models.ParseDay(req.AdmissionDate, s.loc)
	discharge, _ := models.ParseDay(req.DischargeDate, s.loc)
	if discharge.Before(admission) {
		return "", invalid("dischargeDate must not be before admissionDate")
	}

	doctor, err := s.store.Doctors.GetByID(ctx, doctorID)
	if err != nil {
		return "", err
	}
	if !doctor.HasPatient(patientID) {
		return "", ErrForbidden
	}
	patient, err := s.store.Patients.GetByID(ctx, patientID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create certificate dir: %w", err)
	}
	name := certificatePrefix + patientID.Hex() + ".pdf"
	tmp, err := os.CreateTemp(s.dir, ".certificate-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create certificate: %w", err)
	}
	defer os.Remove(tmp.Name())

	cert := certificate{Patient: patient, Doctor: doctor, Admission: admission, Discharge: discharge, Issued: s.Now()}
	if err := s.render(tmp, cert); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("save certificate: %w", err)
	}

	s.logger.Info().Str("patient_id", patientID.Hex()).Str("doctor_id", doctorID.Hex()).Msg("certificate generated")
	return CertificateURLPrefix + "/" + name, nil
}

func (s *CertificateService) render(w io.Writer, c certificate) error {
	const layout = "02 January 2006"

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Medical Leave Certificate", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Issued on "+c.Issued.In(s.loc).Format(layout)), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Patient details", "B", 1, "L", false, 0, "")
	pdf.Ln(2)
	rows := [][2]string{
		{"Name", c.Patient.DisplayName()},
		{"Email", c.Patient.Email},
		{"Gender", string(c.Patient.Gender)},
		{"Age", strconv.Itoa(c.Patient.Age)},
		{"Blood type", orDash(c.Patient.BloodType)},
		{"Doctor", "Dr. " + c.Doctor.DisplayName()},
		{"Admission date", c.Admission.Format(layout)},
		{"Discharge date", c.Discharge.Format(layout)},
	}
	for _, r := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 7, r[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(r[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	days := calendarDays(c.Admission, c.Discharge)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(fmt.Sprintf(
		"This is to certify that %s was under my medical care from %s to %s (%d day(s)) and is advised rest for this period.",
		c.Patient.DisplayName(), c.Admission.Format(layout), c.Discharge.Format(layout), days)), "", "J", false)
	pdf.Ln(25)

	y := pdf.GetY()
	pdf.Line(130, y, 190, y)
	pdf.SetXY(130, y+2)
	pdf.CellFormat(60, 6, tr("Dr. "+c.Doctor.DisplayName()), "", 2, "C", false, 0, "")
	if c.Doctor.Specialization != "" || c.Doctor.Hospital != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(60, 5, tr(joinNonEmpty(", ", c.Doctor.Specialization, c.Doctor.Hospital)), "", 2, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render certificate: %w", err)
	}
	return nil
}

// calendarDays counts the days from first to last inclusive.
func calendarDays(first, last time.Time) int {
	y1, m1, d1 := first.Date()
	y2, m2, d2 := last.Date()
	from := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours()/24) + 1
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func joinNonEmpty(sep string, parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
