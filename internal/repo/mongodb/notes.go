package mongodb

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/note"
	"github.com/geocoder89/taskhub/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotesRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewNotesRepo(db *mongo.Database, prom *observability.Prom) *NotesRepo {
	return &NotesRepo{coll: db.Collection(notesCollection), prom: prom}
}

func (r *NotesRepo) Create(ctx context.Context, n note.Note) (note.Note, error) {
	err := observe(r.prom, "notes.create", func() error {
		_, err := r.coll.InsertOne(ctx, n)
		return err
	})
	if err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (r *NotesRepo) GetByID(ctx context.Context, id string) (note.Note, error) {
	var n note.Note

	err := observe(r.prom, "notes.get_by_id", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, err
	}
	return n, nil
}

// ListByTask returns the notes of a task, newest first.
func (r *NotesRepo) ListByTask(ctx context.Context, taskID string) ([]note.Note, error) {
	out := make([]note.Note, 0)

	err := observe(r.prom, "notes.list_by_task", func() error {
		cur, err := r.coll.Find(ctx,
			bson.M{"task": taskID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
		)
		if err != nil {
			return err
		}
		return cur.All(ctx, &out)
	})
	return out, err
}

func (r *NotesRepo) Delete(ctx context.Context, id string) error {
	var res *mongo.DeleteResult

	err := observe(r.prom, "notes.delete", func() error {
		var err error
		res, err = r.coll.DeleteOne(ctx, bson.M{"_id": id})
		return err
	})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return note.ErrNotFound
	}
	return nil
}
