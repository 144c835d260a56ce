package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestJWT_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := GenerateJWT(secret, "abc", "doctor", "Dr. Rao", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.UserID)
	assert.Equal(t, "doctor", claims.Role)
	assert.Equal(t, "Dr. Rao", claims.Name)

	_, err = ValidateJWT([]byte("other"), tok)
	assert.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	secret := []byte("test-secret")
	tok, err := GenerateJWT(secret, "abc", "patient", "", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(secret, tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWT_MissingSecret(t *testing.T) {
	_, err := GenerateJWT(nil, "abc", "patient", "", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

type bookingForm struct {
	DoctorID string `json:"doctorId" validate:"required,objectid"`
	Day      string `json:"appointmentDate" validate:"required,ymd"`
	Slot     string `json:"timeSlot" validate:"required,timeslot"`
	Reason   string `json:"reason" validate:"max=5"`
}

func TestValidate_CustomTags(t *testing.T) {
	ok := bookingForm{DoctorID: "65f1c0ffee0000000000beef", Day: "2030-01-02", Slot: "09:00-09:30"}
	assert.NoError(t, Validate(ok))

	bad := bookingForm{DoctorID: "nope", Day: "02/01/2030", Slot: "9-10", Reason: "too long"}
	err := Validate(bad)
	require.Error(t, err)
	msg := FormatValidationError(err)
	assert.Contains(t, msg, "doctorId is not a valid id")
	assert.Contains(t, msg, "appointmentDate must be a date (YYYY-MM-DD)")
	assert.Contains(t, msg, "timeSlot must look like HH:MM-HH:MM")
	assert.Contains(t, msg, "reason must be at most 5 characters")
}

func TestRegisterBindingValidators(t *testing.T) {
	require.NoError(t, RegisterBindingValidators())
}

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Conflict(c, "email taken")

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body ResponseData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "email taken", body.Error)
	assert.Equal(t, "Conflict", body.Message)
}
