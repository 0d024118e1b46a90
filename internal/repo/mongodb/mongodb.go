// Package mongodb stores users, tasks and notes as documents. Ids are uuid
// strings kept in _id so documents move between stores unchanged.
package mongodb

import (
	"context"
	"fmt"

	"github.com/geocoder89/taskhub/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
	notesCollection = "notes"
)

var indexes = map[string][]mongo.IndexModel{
	usersCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
	tasksCollection: {
		{Keys: bson.D{{Key: "assignedTo", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "dueDate", Value: 1}}},
	},
	notesCollection: {
		{Keys: bson.D{{Key: "task", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
}

// EnsureIndexes creates the indexes every repository relies on, including
// the unique email index that backs ErrEmailAlreadyUsed.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func observe(prom *observability.Prom, op string, fn func() error) error {
	return prom.ObserveDB(op, fn)
}
