package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UsersRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewUsersRepo(db *mongo.Database, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{coll: db.Collection(usersCollection), prom: prom}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := observe(r.prom, "users.create", func() error {
		_, err := r.coll.InsertOne(ctx, u)
		return err
	})

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailAlreadyUsed
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) findOne(ctx context.Context, op string, filter bson.M) (user.User, error) {
	var u user.User

	err := observe(r.prom, op, func() error {
		return r.coll.FindOne(ctx, filter).Decode(&u)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.findOne(ctx, "users.get_by_id", bson.M{"_id": id})
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.findOne(ctx, "users.get_by_email", bson.M{"email": email})
}

func (r *UsersRepo) ListByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	out := make([]user.User, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	err := observe(r.prom, "users.list_by_ids", func() error {
		cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return err
		}
		return cur.All(ctx, &out)
	})
	return out, err
}

func roleFilter(role *user.Role) bson.M {
	if role == nil {
		return bson.M{}
	}
	return bson.M{"role": string(*role)}
}

func (r *UsersRepo) List(ctx context.Context, filter user.ListUsersFilter) ([]user.User, int, error) {
	where := roleFilter(filter.Role)

	out := make([]user.User, 0, filter.Limit)
	var total int64

	err := observe(r.prom, "users.list", func() error {
		var err error
		total, err = r.coll.CountDocuments(ctx, where)
		if err != nil {
			return err
		}

		opts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
			SetSkip(int64(filter.Offset))
		if filter.Limit > 0 {
			opts.SetLimit(int64(filter.Limit))
		}

		cur, err := r.coll.Find(ctx, where, opts)
		if err != nil {
			return err
		}
		return cur.All(ctx, &out)
	})
	if err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

func (r *UsersRepo) Count(ctx context.Context, role *user.Role) (int, error) {
	var n int64

	err := observe(r.prom, "users.count", func() error {
		var err error
		n, err = r.coll.CountDocuments(ctx, roleFilter(role))
		return err
	})
	return int(n), err
}

func (r *UsersRepo) Update(ctx context.Context, id string, patch user.Patch, now time.Time) (user.User, error) {
	set := bson.M{"updatedAt": now}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Role != nil {
		set["role"] = string(*patch.Role)
	}

	var u user.User
	err := observe(r.prom, "users.update", func() error {
		return r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&u)
	})

	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return user.User{}, user.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return user.User{}, user.ErrEmailAlreadyUsed
	default:
		return user.User{}, err
	}
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var res *mongo.DeleteResult

	err := observe(r.prom, "users.delete", func() error {
		var err error
		res, err = r.coll.DeleteOne(ctx, bson.M{"_id": id})
		return err
	})
	if err != nil {
		return err
	}

	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}
