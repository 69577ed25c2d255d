package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vastucraft/internal/config"
	"vastucraft/internal/domain"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const (
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	connMaxIdleTime = 10 * time.Minute
	// pingTimeout bounds how long the first dial waits for a reachable server.
	pingTimeout = 5 * time.Second
)

// GormConn is the connection cache used by the SQL-backed record store.
type GormConn = Conn[*gorm.DB]

// NewGormConn returns a lazily connecting gorm handle for cfg.
func NewGormConn(cfg config.DatabaseConfig, log *zap.Logger) *GormConn {
	return NewConn(cfg.Driver(), DialGorm(cfg), closeGorm, log)
}

// openSQLite is replaced in tests.
var openSQLite = func(path string) (*sql.DB, error) {
	return sql.Open("sqlite", path)
}

// DialGorm returns a dialer that opens, pings and migrates a gorm database.
func DialGorm(cfg config.DatabaseConfig) DialFunc[*gorm.DB] {
	return func(ctx context.Context) (*gorm.DB, error) {
		if cfg.IsPostgres() {
			return OpenGorm(ctx, postgres.Open(cfg.URL), cfg.MaxConns)
		}

		dbPath := cfg.GetSQLitePath()
		sqlDB, err := openSQLite(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
		db, err := OpenGorm(ctx, sqlite.Dialector{
			DriverName: "sqlite",
			DSN:        dbPath,
			Conn:       sqlDB,
		}, cfg.MaxConns)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return db, nil
	}
}

// OpenGorm opens dialector, verifies the connection and migrates the record tables.
func OpenGorm(ctx context.Context, dialector gorm.Dialector, maxOpenConns int) (*gorm.DB, error) {
	// Never log SQL: submissions carry personal data.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if maxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(maxOpenConns)
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	models := make([]any, 0, len(domain.Models()))
	for _, m := range domain.Models() {
		models = append(models, m)
	}
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func closeGorm(_ context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// PingGorm checks that an established gorm connection still answers.
func PingGorm(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
