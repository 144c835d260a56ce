package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestAppointmentQuery(t *testing.T) {
	patientID := primitive.NewObjectID()
	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(0, 0, 1)

	q := appointmentQuery(AppointmentFilter{
		PatientID:       &patientID,
		From:            &from,
		Until:           &until,
		Status:          models.StatusPending,
		WithAttachments: true,
	})

	assert.Equal(t, patientID, q["patientId"])
	assert.Equal(t, bson.M{"$gte": from, "$lt": until}, q["date"])
	assert.Equal(t, models.StatusPending, q["status"])
	assert.Equal(t, bson.M{"$exists": true}, q["attachments.0"])
	_, hasDoctor := q["doctorId"]
	assert.False(t, hasDoctor)
}

func TestAppointmentQuery_Empty(t *testing.T) {
	assert.Empty(t, appointmentQuery(AppointmentFilter{}))
}

func TestAppointmentSort(t *testing.T) {
	opts := appointmentSort(AppointmentFilter{Newest: true})
	assert.Equal(t, bson.D{{Key: "date", Value: -1}, {Key: "timeSlot", Value: -1}}, opts.Sort)
}

func TestLoginFilter_LowercasesEmail(t *testing.T) {
	f := loginFilter("  Asha@Example.com ")
	or := f["$or"].(bson.A)
	assert.Equal(t, bson.M{"username": "Asha@Example.com"}, or[0])
	assert.Equal(t, bson.M{"email": "asha@example.com"}, or[1])
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("decode: %w", mongo.ErrNoDocuments)), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translate(dup), ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}
