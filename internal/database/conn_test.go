package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vastucraft/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type handle struct{ id int64 }

func TestConn_MemoizesSuccess(t *testing.T) {
	var dials atomic.Int64
	conn := NewConn("fake", func(ctx context.Context) (*handle, error) {
		return &handle{id: dials.Add(1)}, nil
	}, nil, zaptest.NewLogger(t))

	_, err := conn.Handle()
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.False(t, conn.Connected())

	for i := 0; i < 3; i++ {
		require.NoError(t, conn.Ensure(context.Background()))
	}

	h, err := conn.Handle()
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.id)
	assert.Equal(t, int64(1), dials.Load())
	assert.True(t, conn.Connected())
}

func TestConn_ConcurrentEnsureDialsOnce(t *testing.T) {
	var dials atomic.Int64
	conn := NewConn("fake", func(ctx context.Context) (*handle, error) {
		return &handle{id: dials.Add(1)}, nil
	}, nil, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, conn.Ensure(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), dials.Load())
}

func TestConn_ConcurrentFailureSharesOneDial(t *testing.T) {
	var dials atomic.Int64
	release := make(chan struct{})
	conn := NewConn("fake", func(ctx context.Context) (*handle, error) {
		dials.Add(1)
		<-release
		return nil, errors.New("server selection timeout")
	}, nil, zaptest.NewLogger(t))

	const callers = 5
	var started, done sync.WaitGroup
	errs := make([]error, callers)
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer done.Done()
			started.Done()
			errs[i] = conn.Ensure(context.Background())
		}()
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int64(1), dials.Load())
	for _, err := range errs {
		assert.EqualError(t, err, "server selection timeout")
	}
	assert.False(t, conn.Connected())

	// The shared failure is not remembered.
	_ = conn.Ensure(context.Background())
	assert.Equal(t, int64(2), dials.Load())
}

func TestConn_WaiterHonoursOwnContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	entered := make(chan struct{})
	conn := NewConn("fake", func(ctx context.Context) (*handle, error) {
		close(entered)
		<-release
		return &handle{id: 1}, nil
	}, nil, zaptest.NewLogger(t))

	go func() { _ = conn.Ensure(context.Background()) }()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, conn.Ensure(ctx), context.DeadlineExceeded)
}

func TestConn_FailureIsNotCached(t *testing.T) {
	var dials atomic.Int64
	conn := NewConn("fake", func(ctx context.Context) (*handle, error) {
		if dials.Add(1) == 1 {
			return nil, errors.New("server selection timeout")
		}
		return &handle{id: 42}, nil
	}, nil, zaptest.NewLogger(t))

	err := conn.Ensure(context.Background())
	require.EqualError(t, err, "server selection timeout")
	_, err = conn.Handle()
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, conn.Ensure(context.Background()))
	h, err := conn.Handle()
	require.NoError(t, err)
	assert.Equal(t, int64(42), h.id)
	assert.Equal(t, int64(2), dials.Load())
}

func TestConn_Close(t *testing.T) {
	var closed int
	conn := NewConn("fake", func(ctx context.Context) (*handle, error) {
		return &handle{id: 1}, nil
	}, func(ctx context.Context, h *handle) error {
		closed++
		return nil
	}, zaptest.NewLogger(t))

	require.NoError(t, conn.Close(context.Background()))
	assert.Equal(t, 0, closed)

	require.NoError(t, conn.Ensure(context.Background()))
	require.NoError(t, conn.Close(context.Background()))
	assert.Equal(t, 1, closed)
	assert.False(t, conn.Connected())
}

func TestDialGorm_SQLiteMigrates(t *testing.T) {
	cfg := config.DatabaseConfig{URL: "sqlite:///" + t.TempDir() + "/forms.db", MaxConns: 1}
	conn := NewGormConn(cfg, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = conn.Close(context.Background()) })

	require.NoError(t, conn.Ensure(context.Background()))
	db, err := conn.Handle()
	require.NoError(t, err)

	for _, table := range []string{"contact_submissions", "inquiry_submissions", "newsletter_subscriptions"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.NoError(t, PingGorm(context.Background(), db))
	assert.Equal(t, "sqlite", conn.Name())
}

func TestDialGorm_SQLiteFailureClosesHandle(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	// Every statement fails; the only expected call is the Close.
	mock.ExpectClose()

	orig := openSQLite
	openSQLite = func(string) (*sql.DB, error) { return sqlDB, nil }
	t.Cleanup(func() { openSQLite = orig })

	_, err = DialGorm(config.DatabaseConfig{URL: "sqlite:///broken.db"})(context.Background())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
