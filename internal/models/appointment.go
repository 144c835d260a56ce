package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCompleted, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	// a completed visit can have its details edited again
	StatusCompleted: {StatusCompleted},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PatientID      primitive.ObjectID  `bson:"patientId" json:"patientId"`
	DoctorID       primitive.ObjectID  `bson:"doctorId" json:"doctorId"`
	Date           time.Time           `bson:"date" json:"date"`
	TimeSlot       string              `bson:"timeSlot" json:"timeSlot"`
	Status         AppointmentStatus   `bson:"status" json:"status"`
	Reason         string              `bson:"reason,omitempty" json:"reason,omitempty"`
	Disease        string              `bson:"disease,omitempty" json:"disease,omitempty"`
	Symptoms       string              `bson:"symptoms,omitempty" json:"symptoms,omitempty"`
	Notes          string              `bson:"notes,omitempty" json:"notes,omitempty"`
	Summary        string              `bson:"summary,omitempty" json:"summary,omitempty"`
	Attachments    []string            `bson:"attachments" json:"attachments"`
	HealthRecordID *primitive.ObjectID `bson:"healthrecord,omitempty" json:"healthrecord,omitempty"`
	BillingID      *primitive.ObjectID `bson:"billing,omitempty" json:"billing,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`

	// Populated by services for rendering; never persisted.
	Doctor  *Doctor  `bson:"-" json:"doctor,omitempty"`
	Patient *Patient `bson:"-" json:"patient,omitempty"`
}

// Slot reconstructs the availability slot this appointment occupies.
func (a *Appointment) Slot() (AvailabilitySlot, error) {
	start, end, err := ParseTimeSlot(a.TimeSlot)
	if err != nil {
		return AvailabilitySlot{}, err
	}
	return AvailabilitySlot{Date: a.Date, StartTime: start, EndTime: end}, nil
}

// StartsAt is the instant the visit begins, or the day itself when the slot is malformed.
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	slot, err := a.Slot()
	if err != nil {
		return a.Date
	}
	return slot.StartsAt(loc)
}
