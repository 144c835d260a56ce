package repository

import (
	"context"
	"testing"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoDoctors_ClaimSlot(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	slot := models.AvailabilitySlot{Date: time.Date(2030, 3, 16, 0, 0, 0, 0, time.UTC), StartTime: "09:00", EndTime: "09:30"}
	doctorID := primitive.NewObjectID()

	mt.Run("claimed", func(mt *mtest.T) {
		doctors := NewMongoStore(mt.DB).Doctors
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		assert.NoError(mt, doctors.ClaimSlot(context.Background(), doctorID, slot))
	})

	mt.Run("already taken", func(mt *mtest.T) {
		doctors := NewMongoStore(mt.DB).Doctors
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))
		err := doctors.ClaimSlot(context.Background(), doctorID, slot)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("write error", func(mt *mtest.T) {
		doctors := NewMongoStore(mt.DB).Doctors
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key",
		}))
		err := doctors.ClaimSlot(context.Background(), doctorID, slot)
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("server error", func(mt *mtest.T) {
		doctors := NewMongoStore(mt.DB).Doctors
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 91, Name: "ShutdownInProgress", Message: "shutting down",
		}))
		err := doctors.ClaimSlot(context.Background(), doctorID, slot)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoDoctors_ReleaseSlotMissingDoctor(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no match", func(mt *mtest.T) {
		doctors := NewMongoStore(mt.DB).Doctors
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))
		err := doctors.ReleaseSlot(context.Background(), primitive.NewObjectID(), models.AvailabilitySlot{Date: time.Date(2030, 3, 16, 0, 0, 0, 0, time.UTC)})
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestMongoDoctors_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		doctors := NewMongoStore(mt.DB).Doctors
		ns := mt.DB.Name() + "." + DoctorsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "house"},
			{Key: "fullName", Value: "Gregory House"},
			{Key: "patients", Value: bson.A{id}},
		}))
		d, err := doctors.GetByID(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, "house", d.Username)
		assert.True(mt, d.HasPatient(id))
	})

	mt.Run("missing", func(mt *mtest.T) {
		doctors := NewMongoStore(mt.DB).Doctors
		ns := mt.DB.Name() + "." + DoctorsCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		_, err := doctors.GetByID(context.Background(), id)
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}
