package database

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNotConnected is returned by Handle until a dial has succeeded.
var ErrNotConnected = errors.New("database not connected")

// DialFunc opens a new connection handle.
type DialFunc[T any] func(ctx context.Context) (T, error)

// CloseFunc releases a handle produced by a DialFunc.
type CloseFunc[T any] func(ctx context.Context, handle T) error

// Conn lazily establishes one connection and keeps it for the life of the process.
// Only a successful dial is remembered: after a failure the next Ensure dials again.
// Callers arriving while a dial is in flight share its result instead of queueing
// their own. There is no reconnect logic; a dropped connection surfaces as driver errors.
type Conn[T any] struct {
	name   string
	dial   DialFunc[T]
	close  CloseFunc[T]
	logger *zap.Logger
	group  singleflight.Group

	mu     sync.Mutex
	handle T
	ready  bool
}

// NewConn creates a connection cache in the not-connected state.
func NewConn[T any](name string, dial DialFunc[T], closeFn CloseFunc[T], logger *zap.Logger) *Conn[T] {
	return &Conn[T]{
		name:   name,
		dial:   dial,
		close:  closeFn,
		logger: logger.Named("database").With(zap.String("driver", name)),
	}
}

// Ensure connects if no connection has been established yet. A caller whose
// ctx ends while waiting on someone else's dial returns ctx.Err().
func (c *Conn[T]) Ensure(ctx context.Context) error {
	if c.Connected() {
		return nil
	}

	ch := c.group.DoChan("dial", func() (any, error) {
		if c.Connected() {
			return nil, nil
		}

		c.logger.Info("connecting to database")
		handle, err := c.dial(ctx)
		if err != nil {
			c.logger.Error("error while connecting database", zap.Error(err))
			return nil, err
		}

		c.mu.Lock()
		c.handle = handle
		c.ready = true
		c.mu.Unlock()
		c.logger.Info("database connected")
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handle returns the cached handle, or ErrNotConnected.
func (c *Conn[T]) Handle() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		var zero T
		return zero, ErrNotConnected
	}
	return c.handle, nil
}

// Connected reports whether a handle is cached.
func (c *Conn[T]) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Name returns the driver name given at construction.
func (c *Conn[T]) Name() string {
	return c.name
}

// Close releases the cached handle and returns the cache to the not-connected state.
func (c *Conn[T]) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ready {
		return nil
	}
	var err error
	if c.close != nil {
		err = c.close(ctx, c.handle)
	}
	var zero T
	c.handle = zero
	c.ready = false
	return err
}
