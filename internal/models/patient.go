package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type Patient struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username      string               `bson:"username" json:"username"`
	Email         string               `bson:"email" json:"email"`
	Password      string               `bson:"password" json:"-"`
	FullName      string               `bson:"fullName" json:"fullName"`
	Gender        Gender               `bson:"gender" json:"gender"`
	Age           int                  `bson:"age" json:"age"`
	Height        float64              `bson:"height,omitempty" json:"height,omitempty"`
	Weight        float64              `bson:"weight,omitempty" json:"weight,omitempty"`
	BloodType     string               `bson:"bloodType,omitempty" json:"bloodType,omitempty"`
	Phone         string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Role          Role                 `bson:"role" json:"role"`
	HealthRecords []primitive.ObjectID `bson:"healthRecord" json:"healthRecord"`
	Appointments  []primitive.ObjectID `bson:"appointments" json:"appointments"`
	Doctors       []primitive.ObjectID `bson:"doctors" json:"doctors"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (p *Patient) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.FullName != "" {
		return p.FullName
	}
	return p.Username
}

func (p *Patient) HasAppointment(id primitive.ObjectID) bool {
	return containsID(p.Appointments, id)
}

func (p *Patient) Principal() *Principal {
	return &Principal{ID: p.ID, Role: RolePatient, Name: p.DisplayName()}
}
