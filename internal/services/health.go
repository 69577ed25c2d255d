package services

import (
	"context"
	"net/http"
	"time"

	goahttp "goa.design/goa/v3/http"
)

// DatabaseState reports the lazily opened connection.
type DatabaseState interface {
	Connector
	Name() string
	Connected() bool
}

// HealthResult is the body of GET /health.
type HealthResult struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
	Driver   string `json:"driver"`
}

// HealthService implements the health service
type HealthService struct {
	name    string
	db      DatabaseState
	ping    func(ctx context.Context) error
	timeout time.Duration
}

// NewHealthService creates a new health service. ping, when set, round-trips
// to the server on every check.
func NewHealthService(name string, db DatabaseState, ping func(ctx context.Context) error) *HealthService {
	return &HealthService{name: name, db: db, ping: ping, timeout: 5 * time.Second}
}

// Check implements the health check method. It opens the connection if no
// request has done so yet.
func (s *HealthService) Check(ctx context.Context) *HealthResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res := &HealthResult{Status: "healthy", Service: s.name, Database: "connected", Driver: s.db.Name()}
	if err := s.db.Ensure(ctx); err != nil || !s.db.Connected() {
		res.Status = "degraded"
		res.Database = "disconnected"
		return res
	}
	if s.ping != nil {
		if err := s.ping(ctx); err != nil {
			res.Status = "degraded"
			res.Database = "unreachable"
		}
	}
	return res
}

func (s *HealthService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res := s.Check(r.Context())
	status := http.StatusOK
	if res.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	enc := goahttp.ResponseEncoder(r.Context(), w)
	w.WriteHeader(status)
	_ = enc.Encode(res)
}
