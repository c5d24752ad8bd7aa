package store

import (
	"context"
	"errors"
	"time"

	"soilsense/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoReadings persists readings in the "readings" collection.
type MongoReadings struct {
	coll *mongo.Collection
}

func NewMongoReadings(db *mongo.Database) *MongoReadings {
	return &MongoReadings{coll: db.Collection("readings")}
}

// EnsureIndexes creates the per-device timeline index and the timestamp
// index used by retention cleanup.
func (s *MongoReadings) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "deviceId", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "farmName", Value: 1}}},
	})
	return err
}

func (s *MongoReadings) Insert(ctx context.Context, r *models.Reading) (primitive.ObjectID, error) {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	res, err := s.coll.InsertOne(ctx, r)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (s *MongoReadings) FindByDevice(ctx context.Context, deviceID string, f models.ReadingFilter) ([]models.Reading, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: sortValue(f.Sort)}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	return s.find(ctx, filterDoc(deviceID, f), opts)
}

func (s *MongoReadings) FindLatest(ctx context.Context, deviceID string) (*models.Reading, error) {
	var r models.Reading
	err := s.coll.FindOne(ctx,
		bson.M{"deviceId": deviceID},
		options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}}),
	).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *MongoReadings) FindInWindow(ctx context.Context, deviceID string, start, end time.Time) ([]models.Reading, error) {
	q := bson.M{
		"deviceId":  deviceID,
		"timestamp": bson.M{"$gte": start, "$lte": end},
	}
	return s.find(ctx, q, options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
}

func (s *MongoReadings) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *MongoReadings) find(ctx context.Context, q bson.M, opts *options.FindOptions) ([]models.Reading, error) {
	cur, err := s.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Reading{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func filterDoc(deviceID string, f models.ReadingFilter) bson.M {
	q := bson.M{"deviceId": deviceID}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.SoilHealth != "" {
		q["soilHealth"] = f.SoilHealth
	}
	if f.AlertsOnly {
		q["$or"] = bson.A{
			bson.M{"status": bson.M{"$in": bson.A{models.StatusWarning, models.StatusCritical}}},
			bson.M{"soilHealth": bson.M{"$in": bson.A{models.SoilHealthPoor, models.SoilHealthCritical}}},
		}
	}
	if f.RequireNPK {
		// $ne null also excludes documents where the key is missing.
		q["measurements.nitrogen.value"] = bson.M{"$ne": nil}
		q["measurements.phosphorus.value"] = bson.M{"$ne": nil}
		q["measurements.potassium.value"] = bson.M{"$ne": nil}
	}
	if !f.Start.IsZero() || !f.End.IsZero() {
		ts := bson.M{}
		if !f.Start.IsZero() {
			ts["$gte"] = f.Start
		}
		if !f.End.IsZero() {
			ts["$lte"] = f.End
		}
		q["timestamp"] = ts
	}
	return q
}

func sortValue(o models.SortOrder) int {
	if o == models.SortAsc {
		return 1
	}
	return -1
}
