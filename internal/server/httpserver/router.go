package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/handoff-go/internal/server/httpserver/handler"
	"github.com/yndnr/handoff-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Deps handler.Deps

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// CORSOrigins is the list of allowed CORS origins (empty = allow all).
	CORSOrigins []string

	Logger *slog.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
//
// Order: Recover -> RequestID -> AccessLog -> CORS -> handler.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	cfg.Deps.Logger = log

	api := Chain(handler.New(cfg.Deps),
		Recover(log),
		RequestID(),
		AccessLog(log),
		CORS(cfg.CORSOrigins),
	)

	mux := http.NewServeMux()
	mux.Handle("/", api)
	if cfg.Gatherer != nil {
		mux.Handle("GET /metrics", Chain(metric.Handler(cfg.Gatherer), Recover(log)))
	}
	return mux
}
