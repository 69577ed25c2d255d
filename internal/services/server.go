package services

import (
	"net/http"

	"vastucraft/internal/config"

	goahttp "goa.design/goa/v3/http"
	"goa.design/goa/v3/http/middleware"
	"go.uber.org/zap"
)

// Every method is routed to the submission handlers so they can answer 405 themselves.
var allMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// NewRouter mounts the health check and the submission handlers on a goa muxer
// and wraps it in the middleware chain:
// RequestID -> PopulateRequestContext -> Security -> CORS -> Logging -> mux.
func NewRouter(cfg *config.Config, logger *zap.Logger, health http.Handler, handlers ...*SubmissionHandler) http.Handler {
	mux := goahttp.NewMuxer()

	mux.Handle(http.MethodGet, "/health", health.ServeHTTP)
	for _, h := range handlers {
		for _, path := range h.Endpoint().Paths {
			for _, method := range allMethods {
				mux.Handle(method, path, h.ServeHTTP)
			}
			logger.Debug("mounted submission endpoint", zap.String("kind", string(h.Endpoint().Kind)), zap.String("path", path))
		}
	}

	var handler http.Handler = mux
	handler = RequestLogging(logger)(handler)
	handler = CORS(cfg)(handler)
	handler = SecurityHeaders(cfg)(handler)
	handler = middleware.PopulateRequestContext()(handler)
	handler = middleware.RequestID(middleware.UseXRequestIDHeaderOption(true))(handler)
	return handler
}
