package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/aarogyam/aarogyam/internal/repository"
	"github.com/aarogyam/aarogyam/internal/utils"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DoctorSignup struct {
	Username       string  `form:"username" json:"username" validate:"required,min=3,max=30"`
	Email          string  `form:"email" json:"email" validate:"required,email"`
	Password       string  `form:"password" json:"password" validate:"required,min=6"`
	FullName       string  `form:"fullName" json:"fullName" validate:"max=100"`
	Qualification  string  `form:"qualification" json:"qualification"`
	Specialization string  `form:"specialization" json:"specialization"`
	Experience     int     `form:"experience" json:"experience" validate:"gte=0,lte=80"`
	Hospital       string  `form:"hospital" json:"hospital"`
	ConsultantFees float64 `form:"consultantFees" json:"consultantFees" validate:"gte=0"`
	Phone          string  `form:"phone" json:"phone"`
	// Profile is the stored URL of an uploaded picture.
	Profile string `form:"-" json:"-"`
}

type PatientSignup struct {
	Username  string  `form:"username" json:"username" validate:"required,min=3,max=30"`
	Email     string  `form:"email" json:"email" validate:"required,email"`
	Password  string  `form:"password" json:"password" validate:"required,min=6"`
	FullName  string  `form:"fullName" json:"fullName" validate:"max=100"`
	Gender    string  `form:"gender" json:"gender" validate:"required,oneof=male female other"`
	Age       int     `form:"age" json:"age" validate:"required,gte=0,lte=150"`
	Height    float64 `form:"height" json:"height" validate:"gte=0"`
	Weight    float64 `form:"weight" json:"weight" validate:"gte=0"`
	BloodType string  `form:"bloodType" json:"bloodType" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Phone     string  `form:"phone" json:"phone"`
}

type AuthService struct {
	doctors    repository.DoctorRepository
	patients   repository.PatientRepository
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	logger     zerolog.Logger
	Now        func() time.Time
}

func NewAuthService(doctors repository.DoctorRepository, patients repository.PatientRepository, secret string, ttl time.Duration, bcryptCost int, logger zerolog.Logger) *AuthService {
	return &AuthService{
		doctors:    doctors,
		patients:   patients,
		secret:     []byte(secret),
		ttl:        ttl,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("component", "auth").Logger(),
		Now:        time.Now,
	}
}

func (s *AuthService) TTL() time.Duration { return s.ttl }

func normalizeIdentity(email, username *string) {
	*email = strings.ToLower(strings.TrimSpace(*email))
	*username = strings.TrimSpace(*username)
}

// ensureAvailable rejects an email or username already used by any account.
// Login resolves doctors before patients, so the namespace is shared.
func (s *AuthService) ensureAvailable(ctx context.Context, email, username string) error {
	taken, err := s.doctors.Exists(ctx, email, username)
	if err != nil {
		return err
	}
	if !taken {
		if taken, err = s.patients.Exists(ctx, email, username); err != nil {
			return err
		}
	}
	if taken {
		return ErrDuplicateAccount
	}
	return nil
}

func (s *AuthService) RegisterDoctor(ctx context.Context, in DoctorSignup) (*models.Doctor, error) {
	normalizeIdentity(&in.Email, &in.Username)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	d := &models.Doctor{
		ID:                primitive.NewObjectID(),
		Username:          in.Username,
		Email:             in.Email,
		Password:          hash,
		FullName:          strings.TrimSpace(in.FullName),
		Qualification:     strings.TrimSpace(in.Qualification),
		Specialization:    strings.TrimSpace(in.Specialization),
		Experience:        in.Experience,
		Hospital:          strings.TrimSpace(in.Hospital),
		ConsultantFees:    in.ConsultantFees,
		Phone:             strings.TrimSpace(in.Phone),
		Profile:           in.Profile,
		Role:              models.RoleDoctor,
		AvailabilitySlots: []models.AvailabilitySlot{},
		Appointments:      []primitive.ObjectID{},
		Patients:          []primitive.ObjectID{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}
	s.logger.Info().Str("doctor_id", d.ID.Hex()).Msg("doctor registered")
	return d, nil
}

func (s *AuthService) RegisterPatient(ctx context.Context, in PatientSignup) (*models.Patient, error) {
	normalizeIdentity(&in.Email, &in.Username)
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	in.BloodType = strings.ToUpper(strings.TrimSpace(in.BloodType))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	p := &models.Patient{
		ID:            primitive.NewObjectID(),
		Username:      in.Username,
		Email:         in.Email,
		Password:      hash,
		FullName:      strings.TrimSpace(in.FullName),
		Gender:        models.Gender(in.Gender),
		Age:           in.Age,
		Height:        in.Height,
		Weight:        in.Weight,
		BloodType:     in.BloodType,
		Phone:         strings.TrimSpace(in.Phone),
		Role:          models.RolePatient,
		HealthRecords: []primitive.ObjectID{},
		Appointments:  []primitive.ObjectID{},
		Doctors:       []primitive.ObjectID{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}
	s.logger.Info().Str("patient_id", p.ID.Hex()).Msg("patient registered")
	return p, nil
}

// Authenticate checks doctors first, then patients.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*models.Principal, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	d, err := s.doctors.GetByLogin(ctx, login)
	switch {
	case err == nil:
		if utils.CheckPasswordHash(password, d.Password) {
			return d.Principal(), nil
		}
		return nil, ErrInvalidCredentials
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	p, err := s.patients.GetByLogin(ctx, login)
	switch {
	case err == nil:
		if utils.CheckPasswordHash(password, p.Password) {
			return p.Principal(), nil
		}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	return nil, ErrInvalidCredentials
}

// IssueToken signs a session token for p.
func (s *AuthService) IssueToken(p *models.Principal) (string, error) {
	return utils.GenerateJWT(s.secret, p.ID.Hex(), string(p.Role), p.Name, s.ttl)
}

// ParseToken validates a session token and returns its principal.
func (s *AuthService) ParseToken(token string) (*models.Principal, error) {
	claims, err := utils.ValidateJWT(s.secret, token)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, err
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, errors.New("unknown role in token")
	}
	return &models.Principal{ID: id, Role: role, Name: claims.Name}, nil
}
