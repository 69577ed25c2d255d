package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"vastucraft/internal/config"
	"vastucraft/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const serverSelectionTimeout = 5 * time.Second

// MongoConn is the connection cache used by the document-backed record store.
type MongoConn = Conn[*mongo.Database]

// NewMongoConn returns a lazily connecting mongo database handle for cfg.
func NewMongoConn(cfg config.DatabaseConfig, log *zap.Logger) *MongoConn {
	return NewConn("mongo", DialMongo(cfg), closeMongo, log)
}

// DialMongo returns a dialer that connects, pings the primary and ensures the
// unique indexes backing duplicate detection.
func DialMongo(cfg config.DatabaseConfig) DialFunc[*mongo.Database] {
	return func(ctx context.Context) (*mongo.Database, error) {
		opts := options.Client().
			ApplyURI(cfg.URL).
			SetServerSelectionTimeout(serverSelectionTimeout)
		if cfg.MaxConns > 0 {
			opts.SetMaxPoolSize(uint64(cfg.MaxConns))
		}
		if cfg.TLS {
			opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
		}

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("mongo ping failed: %w", err)
		}

		db := client.Database(cfg.Name)
		if err := ensureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return db, nil
	}
}

// ensureIndexes makes the leading natural-key field (email) unique per collection.
// Contact's phone only takes part in the either-or lookup and stays non-unique.
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, m := range domain.Models() {
		key := m.NaturalKey()
		if len(key) == 0 {
			continue
		}
		model := mongo.IndexModel{
			Keys:    bson.D{{Key: key[0].Field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := db.Collection(m.TableName()).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create %s index on %s: %w", key[0].Field, m.TableName(), err)
		}
	}
	return nil
}

func closeMongo(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}

// PingMongo checks that an established mongo connection still answers.
func PingMongo(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, serverSelectionTimeout)
	defer cancel()
	return db.Client().Ping(ctx, readpref.Primary())
}
