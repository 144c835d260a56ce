package repository

import (
	"context"

	"github.com/aarogyam/aarogyam/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoAppointments struct {
	coll *mongo.Collection
}

func (r *mongoAppointments) Create(ctx context.Context, a *models.Appointment) error {
	_, err := r.coll.InsertOne(ctx, a)
	return translate(err)
}

func (r *mongoAppointments) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	return findOne[models.Appointment](ctx, r.coll, bson.M{"_id": id})
}

func (r *mongoAppointments) Update(ctx context.Context, a *models.Appointment) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoAppointments) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoAppointments) Find(ctx context.Context, f AppointmentFilter) ([]*models.Appointment, error) {
	return findAll[models.Appointment](ctx, r.coll, appointmentQuery(f), appointmentSort(f))
}

// appointmentQuery translates a filter into a MongoDB query document.
func appointmentQuery(f AppointmentFilter) bson.M {
	q := bson.M{}
	if f.PatientID != nil {
		q["patientId"] = *f.PatientID
	}
	if f.DoctorID != nil {
		q["doctorId"] = *f.DoctorID
	}
	if f.From != nil || f.Until != nil {
		dateRange := bson.M{}
		if f.From != nil {
			dateRange["$gte"] = *f.From
		}
		if f.Until != nil {
			dateRange["$lt"] = *f.Until
		}
		q["date"] = dateRange
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.WithAttachments {
		q["attachments.0"] = bson.M{"$exists": true}
	}
	return q
}

func appointmentSort(f AppointmentFilter) *options.FindOptions {
	dir := 1
	if f.Newest {
		dir = -1
	}
	return options.Find().SetSort(bson.D{{Key: "date", Value: dir}, {Key: "timeSlot", Value: dir}})
}

type mongoHealthRecords struct {
	coll *mongo.Collection
}

func (r *mongoHealthRecords) Create(ctx context.Context, rec *models.HealthRecord) error {
	_, err := r.coll.InsertOne(ctx, rec)
	return translate(err)
}

func (r *mongoHealthRecords) GetByID(ctx context.Context, id primitive.ObjectID) (*models.HealthRecord, error) {
	return findOne[models.HealthRecord](ctx, r.coll, bson.M{"_id": id})
}

func (r *mongoHealthRecords) Update(ctx context.Context, rec *models.HealthRecord) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoHealthRecords) ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*models.HealthRecord, error) {
	return findAll[models.HealthRecord](ctx, r.coll, bson.M{"patientId": patientID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *mongoHealthRecords) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.HealthRecord, error) {
	if len(ids) == 0 {
		return []*models.HealthRecord{}, nil
	}
	return findAll[models.HealthRecord](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

type mongoBillings struct {
	coll *mongo.Collection
}

func (r *mongoBillings) Create(ctx context.Context, b *models.Billing) error {
	_, err := r.coll.InsertOne(ctx, b)
	return translate(err)
}

func (r *mongoBillings) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Billing, error) {
	return findOne[models.Billing](ctx, r.coll, bson.M{"_id": id})
}

func (r *mongoBillings) Update(ctx context.Context, b *models.Billing) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBillings) ListByPatient(ctx context.Context, patientID primitive.ObjectID) ([]*models.Billing, error) {
	return findAll[models.Billing](ctx, r.coll, bson.M{"patientId": patientID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
}
