package repository

import (
	"context"
	"time"

	"github.com/aarogyam/aarogyam/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoDoctors struct {
	coll *mongo.Collection
}

func (r *mongoDoctors) Create(ctx context.Context, d *models.Doctor) error {
	_, err := r.coll.InsertOne(ctx, d)
	return translate(err)
}

func (r *mongoDoctors) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	return findOne[models.Doctor](ctx, r.coll, bson.M{"_id": id})
}

func (r *mongoDoctors) GetByLogin(ctx context.Context, login string) (*models.Doctor, error) {
	return findOne[models.Doctor](ctx, r.coll, loginFilter(login))
}

func (r *mongoDoctors) Exists(ctx context.Context, email, username string) (bool, error) {
	return exists(ctx, r.coll, existsFilter(email, username))
}

func (r *mongoDoctors) List(ctx context.Context) ([]*models.Doctor, error) {
	return findAll[models.Doctor](ctx, r.coll, bson.M{}, options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}}))
}

func (r *mongoDoctors) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Doctor, error) {
	if len(ids) == 0 {
		return []*models.Doctor{}, nil
	}
	return findAll[models.Doctor](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoDoctors) UpdateProfile(ctx context.Context, d *models.Doctor) error {
	set := bson.M{
		"email":             d.Email,
		"fullName":          d.FullName,
		"qualification":     d.Qualification,
		"specialization":    d.Specialization,
		"experience":        d.Experience,
		"hospital":          d.Hospital,
		"consultantFees":    d.ConsultantFees,
		"phone":             d.Phone,
		"profile":           d.Profile,
		"availabilitySlots": d.AvailabilitySlots,
		"updatedAt":         d.UpdatedAt,
	}
	return matched(r.coll.UpdateOne(ctx, bson.M{"_id": d.ID}, bson.M{"$set": set}))
}

func (r *mongoDoctors) AddAppointment(ctx context.Context, doctorID, appointmentID primitive.ObjectID) error {
	return matched(r.coll.UpdateOne(ctx, bson.M{"_id": doctorID}, bson.M{"$push": bson.M{"appointments": appointmentID}}))
}

func (r *mongoDoctors) RemoveAppointment(ctx context.Context, doctorID, appointmentID primitive.ObjectID) error {
	return matched(r.coll.UpdateOne(ctx, bson.M{"_id": doctorID}, bson.M{"$pull": bson.M{"appointments": appointmentID}}))
}

func (r *mongoDoctors) AddPatient(ctx context.Context, doctorID, patientID primitive.ObjectID) error {
	return matched(r.coll.UpdateOne(ctx, bson.M{"_id": doctorID}, bson.M{"$addToSet": bson.M{"patients": patientID}}))
}

func slotMatch(slot models.AvailabilitySlot) bson.M {
	return bson.M{"date": slot.Date, "startTime": slot.StartTime, "endTime": slot.EndTime}
}

func (r *mongoDoctors) ClaimSlot(ctx context.Context, doctorID primitive.ObjectID, slot models.AvailabilitySlot) error {
	filter := bson.M{
		"_id":               doctorID,
		"availabilitySlots": bson.M{"$elemMatch": slotMatch(slot)},
	}
	update := bson.M{
		"$pull": bson.M{"availabilitySlots": slotMatch(slot)},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err)
	}
	if res.ModifiedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoDoctors) ReleaseSlot(ctx context.Context, doctorID primitive.ObjectID, slot models.AvailabilitySlot) error {
	slot.Day = ""
	return matched(r.coll.UpdateOne(ctx, bson.M{"_id": doctorID}, bson.M{"$addToSet": bson.M{"availabilitySlots": slot}}))
}

type mongoPatients struct {
	coll *mongo.Collection
}

func (r *mongoPatients) Create(ctx context.Context, p *models.Patient) error {
	_, err := r.coll.InsertOne(ctx, p)
	return translate(err)
}

func (r *mongoPatients) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	return findOne[models.Patient](ctx, r.coll, bson.M{"_id": id})
}

func (r *mongoPatients) GetByLogin(ctx context.Context, login string) (*models.Patient, error) {
	return findOne[models.Patient](ctx, r.coll, loginFilter(login))
}

func (r *mongoPatients) Exists(ctx context.Context, email, username string) (bool, error) {
	return exists(ctx, r.coll, existsFilter(email, username))
}

func (r *mongoPatients) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Patient, error) {
	if len(ids) == 0 {
		return []*models.Patient{}, nil
	}
	return findAll[models.Patient](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "fullName", Value: 1}}))
}

func (r *mongoPatients) UpdateProfile(ctx context.Context, p *models.Patient) error {
	set := bson.M{
		"email":     p.Email,
		"fullName":  p.FullName,
		"gender":    p.Gender,
		"age":       p.Age,
		"height":    p.Height,
		"weight":    p.Weight,
		"bloodType": p.BloodType,
		"phone":     p.Phone,
		"updatedAt": p.UpdatedAt,
	}
	return matched(r.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": set}))
}

func (r *mongoPatients) AddAppointment(ctx context.Context, patientID, appointmentID primitive.ObjectID) error {
	return matched(r.coll.UpdateOne(ctx, bson.M{"_id": patientID}, bson.M{"$push": bson.M{"appointments": appointmentID}}))
}

func (r *mongoPatients) RemoveAppointment(ctx context.Context, patientID, appointmentID primitive.ObjectID) error {
	return matched(r.coll.UpdateOne(ctx, bson.M{"_id": patientID}, bson.M{"$pull": bson.M{"appointments": appointmentID}}))
}

func (r *mongoPatients) AddDoctor(ctx context.Context, patientID, doctorID primitive.ObjectID) error {
	return matched(r.coll.UpdateOne(ctx, bson.M{"_id": patientID}, bson.M{"$addToSet": bson.M{"doctors": doctorID}}))
}

func (r *mongoPatients) AddHealthRecord(ctx context.Context, patientID, recordID primitive.ObjectID) error {
	return matched(r.coll.UpdateOne(ctx, bson.M{"_id": patientID}, bson.M{"$addToSet": bson.M{"healthRecord": recordID}}))
}
