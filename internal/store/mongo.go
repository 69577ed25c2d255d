package store

import (
	"context"
	"errors"
	"time"

	"vastucraft/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoHandle yields the mongo database, or database.ErrNotConnected.
type MongoHandle interface {
	Handle() (*mongo.Database, error)
}

// MongoStore keeps submissions as documents, one collection per kind.
type MongoStore struct {
	conn   MongoHandle
	logger *zap.Logger
	now    func() time.Time
}

// NewMongoStore creates a mongo-backed store.
func NewMongoStore(conn MongoHandle, logger *zap.Logger) *MongoStore {
	return &MongoStore{
		conn:   conn,
		logger: logger.Named("store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// InsertIfAbsent implements Store.
func (s *MongoStore) InsertIfAbsent(ctx context.Context, sub domain.Submission) (Outcome, error) {
	db, err := s.conn.Handle()
	if err != nil {
		return 0, unavailable(err)
	}
	coll := db.Collection(sub.TableName())
	log := s.logger.With(zap.String("kind", string(sub.Kind())))

	if filter := KeyFilter(sub.NaturalKey()); filter != nil {
		err := coll.FindOne(ctx, filter).Err()
		switch {
		case err == nil:
			log.Info("duplicate submission rejected")
			return Duplicate, nil
		case !errors.Is(err, mongo.ErrNoDocuments):
			log.Error("duplicate lookup failed", zap.Error(err))
			return 0, lookupFailed(err)
		}
	}

	sub.Touch(s.now())
	if _, err := coll.InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn("unique index rejected insert after lookup", zap.Error(err))
			return Duplicate, nil
		}
		log.Error("insert failed", zap.Error(err))
		return 0, insertFailed(err)
	}

	log.Info("submission stored")
	return Created, nil
}

// KeyFilter builds the lookup filter for a natural key: a single equality for a
// one-field key, an $or across fields otherwise, nil when there is no key.
func KeyFilter(key []domain.KeyField) bson.D {
	switch len(key) {
	case 0:
		return nil
	case 1:
		return bson.D{{Key: key[0].Field, Value: key[0].Value}}
	}
	or := make(bson.A, len(key))
	for i, k := range key {
		or[i] = bson.D{{Key: k.Field, Value: k.Value}}
	}
	return bson.D{{Key: "$or", Value: or}}
}
