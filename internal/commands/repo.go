package commands

import (
	"context"

	"fleetd/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repo — Mongo-backed Store over the commands and command_results
// collections (plus a read-only peek at devices for the global fan-out).
type Repo struct{ db *mongo.Database }

func NewRepo(db *mongo.Database) *Repo { return &Repo{db: db} }

func (r *Repo) commands() *mongo.Collection { return r.db.Collection("commands") }
func (r *Repo) results() *mongo.Collection  { return r.db.Collection("command_results") }
func (r *Repo) devices() *mongo.Collection  { return r.db.Collection("devices") }

func (r *Repo) InsertCommand(ctx context.Context, c *models.Command) error {
	_, err := r.commands().InsertOne(ctx, c)
	return err
}

func (r *Repo) PendingCommands(ctx context.Context, deviceID primitive.ObjectID) ([]bson.M, error) {
	cur, err := r.commands().Find(ctx, bson.M{
		"device_id": deviceID,
		"status":    models.CommandPending,
	})
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

func (r *Repo) InsertResult(ctx context.Context, res *models.CommandResult) error {
	_, err := r.results().InsertOne(ctx, res)
	return err
}

func (r *Repo) CompleteCommand(ctx context.Context, deviceID, commandID primitive.ObjectID) error {
	_, err := r.commands().UpdateOne(ctx,
		bson.M{"_id": commandID, "device_id": deviceID},
		bson.M{"$set": bson.M{"status": models.CommandCompleted}})
	return err
}

func (r *Repo) DeviceIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cur, err := r.devices().Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}
