package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DoctorsCollection       = "doctors"
	PatientsCollection      = "patients"
	AppointmentsCollection  = "appointments"
	HealthRecordsCollection = "healthrecords"
	BillingsCollection      = "billings"
)

// NewMongoStore wires every repository to its collection in db.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Doctors:       &mongoDoctors{coll: db.Collection(DoctorsCollection)},
		Patients:      &mongoPatients{coll: db.Collection(PatientsCollection)},
		Appointments:  &mongoAppointments{coll: db.Collection(AppointmentsCollection)},
		HealthRecords: &mongoHealthRecords{coll: db.Collection(HealthRecordsCollection)},
		Billings:      &mongoBillings{coll: db.Collection(BillingsCollection)},
	}
}

// EnsureIndexes creates the unique and lookup indexes. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}
	byKeys := func(keys ...bson.E) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D(keys)}
	}

	plan := map[string][]mongo.IndexModel{
		DoctorsCollection:  {unique("email"), unique("username")},
		PatientsCollection: {unique("email"), unique("username")},
		BillingsCollection: {unique("invoiceNo"), byKeys(bson.E{Key: "patientId", Value: 1}, bson.E{Key: "date", Value: -1})},
		AppointmentsCollection: {
			byKeys(bson.E{Key: "doctorId", Value: 1}, bson.E{Key: "date", Value: 1}),
			byKeys(bson.E{Key: "patientId", Value: 1}, bson.E{Key: "date", Value: 1}),
		},
		HealthRecordsCollection: {byKeys(bson.E{Key: "patientId", Value: 1}, bson.E{Key: "created_at", Value: -1})},
	}
	for name, models := range plan {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func matched(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var v T
	if err := coll.FindOne(ctx, filter).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func loginFilter(login string) bson.M {
	login = strings.TrimSpace(login)
	return bson.M{"$or": bson.A{
		bson.M{"username": login},
		bson.M{"email": strings.ToLower(login)},
	}}
}

func existsFilter(email, username string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"email": strings.ToLower(strings.TrimSpace(email))},
		bson.M{"username": strings.TrimSpace(username)},
	}}
}

func exists(ctx context.Context, coll *mongo.Collection, filter any) (bool, error) {
	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
