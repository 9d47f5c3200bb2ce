// Package mongo implements the store contract on MongoDB. Records are
// keyed by their own "id" field (a unique index is created at startup),
// not by Mongo's _id, so ids stay opaque strings across backends.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"forumapi/internal/store"
)

type Store struct {
	db     *mongo.Database
	logger *slog.Logger
}

func New(db *mongo.Database, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) Get(ctx context.Context, collection, id string, dest any) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"id": id}).Decode(dest)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mongo: get %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc any) error {
	_, err := s.db.Collection(collection).ReplaceOne(
		ctx,
		bson.M{"id": id},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo: put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, upd store.Update) error {
	filter := bson.M{"id": id}
	for name, value := range upd.IfEq {
		filter[name] = value
	}

	change := bson.M{}
	if len(upd.Set) > 0 {
		set := bson.M{}
		for name, value := range upd.Set {
			set[name] = value
		}
		change["$set"] = set
	}
	if len(upd.Add) > 0 {
		inc := bson.M{}
		for name, delta := range upd.Add {
			inc[name] = delta
		}
		change["$inc"] = inc
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, change)
	if err != nil {
		return fmt.Errorf("mongo: update %s/%s: %w", collection, id, err)
	}
	// With a condition attached, a zero match means the guarded fields
	// moved underneath us (or the record vanished); either way the
	// caller's read is stale.
	if res.MatchedCount == 0 && len(upd.IfEq) > 0 {
		return store.ErrConditionFailed
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("mongo: delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, collection string, filter store.Filter, dest any) error {
	query := bson.M{}
	for name, value := range filter.Eq {
		query[name] = value
	}
	for name, value := range filter.Gt {
		query[name] = bson.M{"$gt": value}
	}

	cursor, err := s.db.Collection(collection).Find(ctx, query)
	if err != nil {
		return fmt.Errorf("mongo: scan %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, dest); err != nil {
		return fmt.Errorf("mongo: decode scan %s: %w", collection, err)
	}
	return nil
}
