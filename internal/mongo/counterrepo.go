package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CounterRepo is an atomic named sequence backed by findAndModify.
type CounterRepo struct {
	base *BaseRepo
}

func NewCounterRepo(base *BaseRepo) *CounterRepo {
	return &CounterRepo{base: base}
}

type counter struct {
	Key string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// Next increments key and returns the new value, starting at 1.
func (r *CounterRepo) Next(ctx context.Context, key string) (int64, error) {
	coll, err := r.base.collection(countersCollection)
	if err != nil {
		return 0, err
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	err = coll.FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("cannot advance counter %s: %w", key, err)
	}
	return c.Seq, nil
}
