package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetd/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repo — Mongo-backed Store over the devices and statuses collections.
type Repo struct{ db *mongo.Database }

func NewRepo(db *mongo.Database) *Repo { return &Repo{db: db} }

func (r *Repo) devices() *mongo.Collection  { return r.db.Collection("devices") }
func (r *Repo) statuses() *mongo.Collection { return r.db.Collection("statuses") }

func (r *Repo) CountDevicesAt(ctx context.Context, location string) (int64, error) {
	return r.devices().CountDocuments(ctx, bson.M{"location": location})
}

func (r *Repo) InsertDevice(ctx context.Context, d *models.Device) (primitive.ObjectID, error) {
	res, err := r.devices().InsertOne(ctx, d)
	if err != nil {
		return primitive.NilObjectID, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid, nil
}

func (r *Repo) UpdateSnapshot(ctx context.Context, id primitive.ObjectID, snap models.Snapshot, at time.Time) error {
	_, err := r.devices().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"cpu_usage":    snap.CPUUsage,
		"ram_usage":    snap.RAMUsage,
		"memory_usage": snap.MemoryUsage,
		"status":       snap.Status,
		"last_report":  at,
	}})
	return err
}

func (r *Repo) InsertReport(ctx context.Context, rep *models.StatusReport) error {
	_, err := r.statuses().InsertOne(ctx, rep)
	return err
}

func (r *Repo) FindDevice(ctx context.Context, id primitive.ObjectID) (*models.Device, bool, error) {
	var d models.Device
	err := r.devices().FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

func (r *Repo) ListDevices(ctx context.Context) ([]bson.M, error) {
	cur, err := r.devices().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var out []bson.M
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []bson.M{}
	}
	return out, nil
}
