// Package handler provides the host bridge HTTP handlers.
//
// Every JSON response uses the Response envelope. Core operations never
// return storage errors, so most failures here are argument errors.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/handoff-go/internal/core/domain"
	"github.com/yndnr/handoff-go/internal/core/service"
	"github.com/yndnr/handoff-go/internal/lifecycle"
	"github.com/yndnr/handoff-go/internal/recovery"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Recovery is the part of recovery.Machine the handlers drive.
type Recovery interface {
	Evaluate(ctx context.Context, primary recovery.PrimaryState, method recovery.AuthMethod) bool
	NeedsReconnection() bool
	Dismiss()
	Reset()
	Snapshot() domain.RecoveryState
}

// SessionState is the host-maintained local sign-in state.
type SessionState interface {
	SignIn(method recovery.AuthMethod)
	SignOut()
	SignedIn() bool
	AuthMethod() recovery.AuthMethod
}

// ProviderSyncer refreshes the cached secondary provider status.
type ProviderSyncer interface {
	Sync(ctx context.Context) error
}

// Publisher accepts lifecycle events reported by the host.
type Publisher interface {
	Publish(ctx context.Context, ev lifecycle.Event) error
}

// Deps are the components served by the handlers. Recovery, Provider
// and Events may be nil; their routes then answer 503.
type Deps struct {
	Markers  *service.MarkerStore
	Trackers []*service.HandoffTracker
	Wallet   *service.WalletCache
	Recovery Recovery
	Provider ProviderSyncer
	Events   Publisher
	Session  SessionState
	Logger   *slog.Logger
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	deps   Deps
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates a new Handler.
func New(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		deps:   deps,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	// Markers
	h.mux.HandleFunc("GET /v1/markers", h.handleListMarkers)
	h.mux.HandleFunc("GET /v1/markers/{kind}", h.handleReadMarker)
	h.mux.HandleFunc("PUT /v1/markers/{kind}", h.handleMarkMarker)
	h.mux.HandleFunc("DELETE /v1/markers/{kind}", h.handleClearMarker)
	h.mux.HandleFunc("GET /v1/handoffs/resolve", h.handleResolveHandoff)

	// Wallet snapshot
	h.mux.HandleFunc("GET /v1/wallet", h.handleGetWallet)
	h.mux.HandleFunc("PUT /v1/wallet", h.handleSetWallet)
	h.mux.HandleFunc("DELETE /v1/wallet", h.handleClearWallet)

	// Host signals
	h.mux.HandleFunc("POST /v1/lifecycle/{event}", h.handleLifecycle)
	h.mux.HandleFunc("POST /v1/session/signin", h.handleSignIn)
	h.mux.HandleFunc("POST /v1/session/signout", h.handleSignOut)

	// Recovery
	h.mux.HandleFunc("GET /v1/recovery", h.handleRecoveryStatus)
	h.mux.HandleFunc("POST /v1/recovery/evaluate", h.handleRecoveryEvaluate)
	h.mux.HandleFunc("POST /v1/recovery/dismiss", h.handleRecoveryDismiss)
	h.mux.HandleFunc("POST /v1/recovery/reset", h.handleRecoveryReset)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// handleServiceError converts errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		h.writeError(w, r, errorCodeToHTTPStatus(de.Code), de.Code, de.Message, nilIfEmpty(de.Details))
		return
	}

	h.logger.ErrorContext(r.Context(), "internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternal.Code, domain.ErrInternal.Message, nil)
}

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return domain.ErrMissingArgument.WithDetails("request body is required")
		}
		return domain.ErrInvalidArgument.WithDetails("malformed JSON body").WithCause(err)
	}
	return nil
}

// getRequestID extracts the request ID set by the middleware.
func getRequestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4040"), strings.HasSuffix(code, "-4041"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "HO-ARG-"):
		return http.StatusBadRequest
	case code == domain.ErrComponentDisabled.Code:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
