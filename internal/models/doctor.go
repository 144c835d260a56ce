package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Doctor struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username          string               `bson:"username" json:"username"`
	Email             string               `bson:"email" json:"email"`
	Password          string               `bson:"password" json:"-"`
	FullName          string               `bson:"fullName" json:"fullName"`
	Qualification     string               `bson:"qualification" json:"qualification"`
	Specialization    string               `bson:"specialization" json:"specialization"`
	Experience        int                  `bson:"experience" json:"experience"`
	Hospital          string               `bson:"hospital" json:"hospital"`
	ConsultantFees    float64              `bson:"consultantFees" json:"consultantFees"`
	Phone             string               `bson:"phone" json:"phone"`
	Profile           string               `bson:"profile,omitempty" json:"profile,omitempty"`
	Role              Role                 `bson:"role" json:"role"`
	AvailabilitySlots []AvailabilitySlot   `bson:"availabilitySlots" json:"availabilitySlots"`
	Appointments      []primitive.ObjectID `bson:"appointments" json:"appointments"`
	Patients          []primitive.ObjectID `bson:"patients" json:"patients"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// DisplayName prefers the full name and falls back to the username.
func (d *Doctor) DisplayName() string {
	if d == nil {
		return ""
	}
	if d.FullName != "" {
		return d.FullName
	}
	return d.Username
}

func (d *Doctor) HasPatient(id primitive.ObjectID) bool {
	return containsID(d.Patients, id)
}

// Principal builds the session identity for this doctor.
func (d *Doctor) Principal() *Principal {
	return &Principal{ID: d.ID, Role: RoleDoctor, Name: d.DisplayName()}
}
