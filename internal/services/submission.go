package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"vastucraft/internal/domain"
	"vastucraft/internal/notify"
	"vastucraft/internal/store"
	"vastucraft/internal/validation"
	apperrors "vastucraft/pkg/errors"

	goahttp "goa.design/goa/v3/http"
	"go.uber.org/zap"
)

// Connector establishes the database connection on demand.
type Connector interface {
	Ensure(ctx context.Context) error
}

// Notifier sends the post-submission emails.
type Notifier interface {
	Notify(ctx context.Context, sub domain.Submission) []notify.Delivery
}

// Messages are the client-facing texts of one endpoint.
type Messages struct {
	Created      string
	Duplicate    string
	InsertFailed string
}

// Endpoint configures the generic submission pipeline for one form.
type Endpoint struct {
	Kind     domain.Kind
	Paths    []string
	Schema   validation.Schema
	Build    func(values validation.Values) domain.Submission
	Messages Messages
}

const (
	msgMethodNotAllowed = "Only Post Method Is Allowed"
	msgValidation       = "Validation Error"
	msgInternal         = "Internal Server Error"
)

// submissionResponse is the body of every submission reply.
type submissionResponse struct {
	IsSuccess bool               `json:"isSuccess"`
	Message   string             `json:"message"`
	Error     *validation.Report `json:"error,omitempty"`
}

// SubmissionHandler runs method check, connect, validate, dedup, persist and
// notify for one endpoint.
type SubmissionHandler struct {
	endpoint Endpoint
	conn     Connector
	store    store.Store
	notifier Notifier
	logger   *zap.Logger
}

// NewSubmissionHandler creates the handler for endpoint.
func NewSubmissionHandler(endpoint Endpoint, conn Connector, st store.Store, notifier Notifier, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		endpoint: endpoint,
		conn:     conn,
		store:    st,
		notifier: notifier,
		logger:   logger.Named(string(endpoint.Kind)),
	}
}

// Endpoint returns the configuration the handler was built with.
func (h *SubmissionHandler) Endpoint() Endpoint {
	return h.endpoint
}

func (h *SubmissionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// A client that goes away mid-request must not abort a half-done write.
	ctx := context.WithoutCancel(r.Context())
	log := h.logger.With(zap.String("request_id", requestID(ctx)))

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic while handling submission", zap.Any("panic", rec), zap.Stack("stack"))
			h.encode(ctx, w, http.StatusInternalServerError, submissionResponse{Message: msgInternal})
		}
	}()

	if r.Method != http.MethodPost {
		h.fail(ctx, w, log, apperrors.New(apperrors.ErrCodeMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method)))
		return
	}

	if err := h.conn.Ensure(ctx); err != nil {
		// The store reports the missing connection; keep going so the reply is a 500.
		log.Error("database connection failed", zap.Error(err))
	}

	body, err := decodeBody(r)
	if err != nil {
		h.fail(ctx, w, log, err)
		return
	}

	values, report := validation.Validate(h.endpoint.Schema, body)
	if report != nil {
		h.fail(ctx, w, log, report)
		return
	}

	sub := h.endpoint.Build(values)
	outcome, err := h.store.InsertIfAbsent(ctx, sub)
	if err != nil {
		h.fail(ctx, w, log, err)
		return
	}
	if outcome == store.Duplicate {
		h.fail(ctx, w, log, apperrors.New(apperrors.ErrCodeDuplicate, "natural key already stored"))
		return
	}
	log.Info("submission stored", zap.String("recipient", sub.Recipient()))

	for _, d := range h.notifier.Notify(ctx, sub) {
		if d.Err == nil {
			log.Info("email sent", zap.String("audience", string(d.Audience)))
		}
	}

	h.encode(ctx, w, http.StatusCreated, submissionResponse{IsSuccess: true, Message: h.endpoint.Messages.Created})
}

// decodeBody reads the JSON object body. An empty body decodes to an empty
// object so the validator reports the missing fields.
func decodeBody(r *http.Request) (map[string]any, error) {
	body := map[string]any{}
	if r.Body == nil {
		return body, nil
	}
	if err := goahttp.RequestDecoder(r).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, &validation.Report{
			Message: "request body must be a JSON object",
			Details: []validation.FieldError{{Field: "body", Rule: "json", Message: err.Error()}},
		}
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

func (h *SubmissionHandler) fail(ctx context.Context, w http.ResponseWriter, log *zap.Logger, err error) {
	var report *validation.Report
	if errors.As(err, &report) {
		log.Info("submission rejected", zap.String("reason", report.Message))
		h.encode(ctx, w, http.StatusBadRequest, submissionResponse{Message: msgValidation, Error: report})
		return
	}

	status := statusFor(err)
	msg := msgInternal
	switch {
	case apperrors.CodeOf(err) == apperrors.ErrCodeMethodNotAllowed:
		msg = msgMethodNotAllowed
	case apperrors.IsDuplicate(err):
		msg = firstNonEmpty(h.endpoint.Messages.Duplicate, "Data Already Exists")
	case apperrors.IsPersistence(err):
		msg = h.endpoint.Messages.InsertFailed
	}

	switch {
	case apperrors.IsUnavailable(err):
		log.Error("no database connection for submission", zap.Error(err))
	case status >= http.StatusInternalServerError:
		log.Error("submission failed", zap.Error(err))
	default:
		log.Info("submission rejected", zap.Int("status", status), zap.Error(err))
	}
	h.encode(ctx, w, status, submissionResponse{Message: msg})
}

func (h *SubmissionHandler) encode(ctx context.Context, w http.ResponseWriter, status int, body submissionResponse) {
	enc := goahttp.ResponseEncoder(ctx, w)
	w.WriteHeader(status)
	if err := enc.Encode(body); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
