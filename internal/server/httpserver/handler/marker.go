package handler

import (
	"math"
	"net/http"
	"time"

	"github.com/yndnr/handoff-go/internal/core/domain"
	"github.com/yndnr/handoff-go/internal/core/service"
)

// maxTTLMillis is the largest ttl_ms that fits a time.Duration.
const maxTTLMillis = math.MaxInt64 / int64(time.Millisecond)

// tracker returns the registered tracker for kind, if any.
func (h *Handler) tracker(kind string) *service.HandoffTracker {
	for _, t := range h.deps.Trackers {
		if t.Kind() == kind {
			return t
		}
	}
	return nil
}

// handleListMarkers handles GET /v1/markers.
func (h *Handler) handleListMarkers(w http.ResponseWriter, r *http.Request) {
	markers := h.deps.Markers.List(r.Context())
	if markers == nil {
		markers = []*domain.PendingMarker{}
	}
	h.writeJSON(w, r, http.StatusOK, &MarkerListResponse{Markers: markers})
}

// handleReadMarker handles GET /v1/markers/{kind}.
// An expired marker is deleted by this read and reported as not found.
func (h *Handler) handleReadMarker(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	m, ok := h.deps.Markers.Peek(r.Context(), kind)
	if !ok {
		h.handleServiceError(w, r, domain.ErrMarkerNotFound.WithDetails(kind))
		return
	}
	h.writeJSON(w, r, http.StatusOK, m)
}

// handleMarkMarker handles PUT /v1/markers/{kind}.
func (h *Handler) handleMarkMarker(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")

	var req MarkRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if req.TTLMillis < 0 {
		h.handleServiceError(w, r, domain.ErrInvalidArgument.WithDetails("ttl_ms must be positive"))
		return
	}
	if req.TTLMillis > maxTTLMillis {
		h.handleServiceError(w, r, domain.ErrInvalidArgument.WithDetails("ttl_ms is too large"))
		return
	}

	ttl := time.Duration(req.TTLMillis) * time.Millisecond
	if ttl == 0 {
		t := h.tracker(kind)
		if t == nil {
			h.handleServiceError(w, r, domain.ErrMissingArgument.WithDetails("ttl_ms is required for kind "+kind))
			return
		}
		ttl = t.TTL()
	}

	if err := h.deps.Markers.Mark(r.Context(), kind, req.Payload, ttl); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	// Mark swallows storage faults; echo what a subsequent read sees.
	m, ok := h.deps.Markers.Peek(r.Context(), kind)
	if !ok {
		h.writeJSON(w, r, http.StatusAccepted, nil)
		return
	}
	h.writeJSON(w, r, http.StatusOK, m)
}

// handleClearMarker handles DELETE /v1/markers/{kind}.
func (h *Handler) handleClearMarker(w http.ResponseWriter, r *http.Request) {
	h.deps.Markers.Clear(r.Context(), r.PathValue("kind"))
	w.WriteHeader(http.StatusNoContent)
}

// handleResolveHandoff handles GET /v1/handoffs/resolve.
func (h *Handler) handleResolveHandoff(w http.ResponseWriter, r *http.Request) {
	winner, m, ok := service.ResolveHandoff(r.Context(), h.deps.Trackers...)
	if !ok {
		h.handleServiceError(w, r, domain.ErrMarkerNotFound.WithDetails("no pending handoff"))
		return
	}
	h.writeJSON(w, r, http.StatusOK, &ResolveResponse{Kind: winner.Kind(), Marker: m})
}
