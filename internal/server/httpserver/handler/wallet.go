package handler

import (
	"net/http"

	"github.com/yndnr/handoff-go/internal/core/domain"
)

// handleGetWallet handles GET /v1/wallet.
func (h *Handler) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.deps.Wallet.Get(r.Context())
	if !ok {
		h.handleServiceError(w, r, domain.ErrSnapshotNotFound)
		return
	}
	h.writeJSON(w, r, http.StatusOK, snap)
}

// handleSetWallet handles PUT /v1/wallet.
func (h *Handler) handleSetWallet(w http.ResponseWriter, r *http.Request) {
	var req WalletRequest
	if err := decodeJSON(r, &req, false); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	snap := domain.WalletSnapshot{
		Address:             req.Address,
		ChainID:             req.ChainID,
		IsAbstractedAccount: req.IsAbstractedAccount,
	}
	if err := h.deps.Wallet.Set(r.Context(), snap); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	got, ok := h.deps.Wallet.Get(r.Context())
	if !ok {
		h.writeJSON(w, r, http.StatusAccepted, nil)
		return
	}
	h.writeJSON(w, r, http.StatusOK, got)
}

// handleClearWallet handles DELETE /v1/wallet.
func (h *Handler) handleClearWallet(w http.ResponseWriter, r *http.Request) {
	h.deps.Wallet.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
