package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"vastucraft/internal/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormHandle yields the gorm connection, or database.ErrNotConnected.
type GormHandle interface {
	Handle() (*gorm.DB, error)
}

// GormStore keeps submissions in a SQL database through gorm.
type GormStore struct {
	conn   GormHandle
	logger *zap.Logger
}

// NewGormStore creates a gorm-backed store.
func NewGormStore(conn GormHandle, logger *zap.Logger) *GormStore {
	return &GormStore{conn: conn, logger: logger.Named("store")}
}

// InsertIfAbsent implements Store.
func (s *GormStore) InsertIfAbsent(ctx context.Context, sub domain.Submission) (Outcome, error) {
	db, err := s.conn.Handle()
	if err != nil {
		return 0, unavailable(err)
	}
	db = db.WithContext(ctx)
	log := s.logger.With(zap.String("kind", string(sub.Kind())))

	if key := sub.NaturalKey(); len(key) > 0 {
		clauses := make([]string, len(key))
		args := make([]any, len(key))
		for i, k := range key {
			clauses[i] = k.Field + " = ?"
			args[i] = k.Value
		}

		start := time.Now()
		var count int64
		err := db.Table(sub.TableName()).Where(strings.Join(clauses, " OR "), args...).Count(&count).Error
		if err != nil {
			log.Error("duplicate lookup failed", zap.Error(err), zap.Duration("took", time.Since(start)))
			return 0, lookupFailed(err)
		}
		if count > 0 {
			log.Info("duplicate submission rejected")
			return Duplicate, nil
		}
	}

	if err := db.Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			log.Warn("unique index rejected insert after lookup", zap.Error(err))
			return Duplicate, nil
		}
		log.Error("insert failed", zap.Error(err))
		return 0, insertFailed(err)
	}

	log.Info("submission stored")
	return Created, nil
}
