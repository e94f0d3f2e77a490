package handler

import (
	"net/http"

	"github.com/yndnr/handoff-go/internal/core/domain"
	"github.com/yndnr/handoff-go/internal/lifecycle"
	"github.com/yndnr/handoff-go/internal/recovery"
)

// handleLifecycle handles POST /v1/lifecycle/{event}.
// The event name is one of visible, hidden, focus or storage.
func (h *Handler) handleLifecycle(w http.ResponseWriter, r *http.Request) {
	if h.deps.Events == nil {
		h.handleServiceError(w, r, domain.ErrComponentDisabled.WithDetails("lifecycle events"))
		return
	}

	kind, err := lifecycle.ParseKind(r.PathValue("event"))
	if err != nil {
		h.handleServiceError(w, r, domain.ErrInvalidArgument.WithDetails(err.Error()))
		return
	}

	var req LifecycleRequest
	if err := decodeJSON(r, &req, true); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if kind == lifecycle.KindStorageMutation && req.Key == "" {
		h.handleServiceError(w, r, domain.ErrMissingArgument.WithDetails("key is required for storage events"))
		return
	}

	ev := lifecycle.Event{Kind: kind}
	if kind == lifecycle.KindStorageMutation {
		ev.Key = req.Key
	}
	if err := h.deps.Events.Publish(r.Context(), ev); err != nil {
		h.handleServiceError(w, r, domain.ErrComponentDisabled.WithCause(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleSignIn handles POST /v1/session/signin.
func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if req.Method == "" {
		h.handleServiceError(w, r, domain.ErrMissingArgument.WithDetails("method is required"))
		return
	}

	h.deps.Session.SignIn(recovery.AuthMethod(req.Method))
	h.writeJSON(w, r, http.StatusOK, h.sessionResponse())
}

// handleSignOut handles POST /v1/session/signout.
//
// Sign-out resets recovery and drops the cached wallet snapshot.
func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	h.deps.Session.SignOut()
	if h.deps.Recovery != nil {
		h.deps.Recovery.Reset()
	}
	h.deps.Wallet.Clear(r.Context())
	h.writeJSON(w, r, http.StatusOK, h.sessionResponse())
}

func (h *Handler) sessionResponse() *SessionResponse {
	return &SessionResponse{
		SignedIn: h.deps.Session.SignedIn(),
		Method:   string(h.deps.Session.AuthMethod()),
	}
}
