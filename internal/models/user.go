package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role identifies which account collection a signed-in user belongs to.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RolePatient:
		return true
	}
	return false
}

// DashboardPath is where a user of this role lands after login.
func (r Role) DashboardPath() string {
	switch r {
	case RoleDoctor:
		return "/doctor/dashboard"
	case RolePatient:
		return "/patient/dashboard"
	}
	return "/auth/login"
}

// Principal is the authenticated identity carried by a session token.
type Principal struct {
	ID   primitive.ObjectID `json:"id"`
	Role Role               `json:"role"`
	Name string             `json:"name"`
}

func (p *Principal) IsDoctor() bool  { return p != nil && p.Role == RoleDoctor }
func (p *Principal) IsPatient() bool { return p != nil && p.Role == RolePatient }

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
