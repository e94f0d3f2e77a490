package handler

import (
	"net/http"

	"github.com/yndnr/handoff-go/internal/core/domain"
	"github.com/yndnr/handoff-go/internal/recovery"
)

func (h *Handler) recoveryResponse(started *bool) *RecoveryResponse {
	st := h.deps.Recovery.Snapshot()
	return &RecoveryResponse{
		State:             st,
		Phase:             st.Phase.String(),
		NeedsReconnection: h.deps.Recovery.NeedsReconnection(),
		Started:           started,
	}
}

func (h *Handler) requireRecovery(w http.ResponseWriter, r *http.Request) bool {
	if h.deps.Recovery == nil {
		h.handleServiceError(w, r, domain.ErrComponentDisabled.WithDetails("recovery"))
		return false
	}
	return true
}

// handleRecoveryStatus handles GET /v1/recovery.
func (h *Handler) handleRecoveryStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireRecovery(w, r) {
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.recoveryResponse(nil))
}

// handleRecoveryEvaluate handles POST /v1/recovery/evaluate.
//
// The provider status is refreshed first so the entry condition sees the
// live secondary state.
func (h *Handler) handleRecoveryEvaluate(w http.ResponseWriter, r *http.Request) {
	if !h.requireRecovery(w, r) {
		return
	}
	if h.deps.Provider != nil {
		if err := h.deps.Provider.Sync(r.Context()); err != nil {
			h.logger.Debug("provider status sync failed", "error", err)
		}
	}

	primary := recovery.PrimaryState{Valid: h.deps.Session.SignedIn()}
	started := h.deps.Recovery.Evaluate(r.Context(), primary, h.deps.Session.AuthMethod())
	h.writeJSON(w, r, http.StatusOK, h.recoveryResponse(&started))
}

// handleRecoveryDismiss handles POST /v1/recovery/dismiss.
func (h *Handler) handleRecoveryDismiss(w http.ResponseWriter, r *http.Request) {
	if !h.requireRecovery(w, r) {
		return
	}
	h.deps.Recovery.Dismiss()
	h.writeJSON(w, r, http.StatusOK, h.recoveryResponse(nil))
}

// handleRecoveryReset handles POST /v1/recovery/reset.
func (h *Handler) handleRecoveryReset(w http.ResponseWriter, r *http.Request) {
	if !h.requireRecovery(w, r) {
		return
	}
	h.deps.Recovery.Reset()
	h.writeJSON(w, r, http.StatusOK, h.recoveryResponse(nil))
}
