package database

import (
	"context"
	"time"

	"campus-bus-api-server/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens the Mongo client and verifies connectivity. A failure here is
// fatal at startup; nothing reconnects lazily.
func Connect(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return client.Database(cfg.DBName), nil
}

// EnsureIndexes creates the unique indexes the write paths depend on. The
// partial index on bus_requests is what enforces "at most one pending request
// per (student, bus)": Create inserts unconditionally and treats a duplicate
// key error as a conflict, so two concurrent creates cannot both win.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userID", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("buses").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "busID", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("bus_requests").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "requestID", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys: bson.D{{Key: "studentID", Value: 1}, {Key: "busID", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "pending"}),
		},
		{Keys: bson.D{{Key: "busID", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "driverID", Value: 1}, {Key: "status", Value: 1}}},
	})
	return err
}
