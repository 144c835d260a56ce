package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RecordType string

const (
	RecordBloodTest    RecordType = "Blood Test"
	RecordXRay         RecordType = "X-ray"
	RecordConsultation RecordType = "Consultation"
	RecordPrescription RecordType = "Prescription"
	RecordOther        RecordType = "Other"
)

func (t RecordType) Valid() bool {
	switch t {
	case RecordBloodTest, RecordXRay, RecordConsultation, RecordPrescription, RecordOther:
		return true
	}
	return false
}

type HealthRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecordType  RecordType         `bson:"recordType" json:"recordType"`
	Disease     string             `bson:"disease,omitempty" json:"disease,omitempty"`
	Symptoms    string             `bson:"symptoms,omitempty" json:"symptoms,omitempty"`
	Summary     string             `bson:"summary,omitempty" json:"summary,omitempty"`
	Attachments []string           `bson:"attachments" json:"attachments"`
	PatientID   primitive.ObjectID `bson:"patientId" json:"patientId"`
	DoctorID    primitive.ObjectID `bson:"doctorId" json:"doctorId"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`

	Doctor *Doctor `bson:"-" json:"doctor,omitempty"`
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type PaymentMethod string

const (
	PaymentUPI  PaymentMethod = "UPI"
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

type Billing struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID     primitive.ObjectID `bson:"patientId" json:"patientId"`
	DoctorID      primitive.ObjectID `bson:"doctorId" json:"doctorId"`
	InvoiceNo     string             `bson:"invoiceNo" json:"invoiceNo"`
	Date          time.Time          `bson:"date" json:"date"`
	Amount        float64            `bson:"amount" json:"amount"`
	Reason        string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Status        PaymentStatus      `bson:"status" json:"status"`
	PaymentMethod PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"`
	Attachments   []string           `bson:"attachments" json:"attachments"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`

	Doctor *Doctor `bson:"-" json:"doctor,omitempty"`
}

// NewInvoiceNumber returns an invoice number of the form INV-YYYYMMDD-XXXXXX.
// Uniqueness is enforced by the billings index; callers retry on collision.
func NewInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "INV-" + now.Format("20060102") + "-" + suffix
}
