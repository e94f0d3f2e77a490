package handler

import (
	"time"

	"github.com/yndnr/handoff-go/internal/core/domain"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// MarkRequest is the request body for PUT /v1/markers/{kind}.
// TTLMillis may be omitted for kinds with a registered tracker.
type MarkRequest struct {
	Payload   map[string]any `json:"payload,omitempty"`
	TTLMillis int64          `json:"ttl_ms,omitempty"`
}

// MarkerListResponse is the response body for GET /v1/markers.
type MarkerListResponse struct {
	Markers []*domain.PendingMarker `json:"markers"`
}

// ResolveResponse is the response body for GET /v1/handoffs/resolve.
type ResolveResponse struct {
	Kind   string                `json:"kind"`
	Marker *domain.PendingMarker `json:"marker"`
}

// WalletRequest is the request body for PUT /v1/wallet.
type WalletRequest struct {
	Address             string `json:"address"`
	ChainID             int64  `json:"chain_id"`
	IsAbstractedAccount bool   `json:"is_abstracted_account,omitempty"`
}

// LifecycleRequest is the optional request body for POST /v1/lifecycle/{event}.
type LifecycleRequest struct {
	Key string `json:"key,omitempty"`
}

// SignInRequest is the request body for POST /v1/session/signin.
type SignInRequest struct {
	Method string `json:"method"`
}

// SessionResponse reports the local sign-in state.
type SessionResponse struct {
	SignedIn bool   `json:"signed_in"`
	Method   string `json:"method,omitempty"`
}

// RecoveryResponse is the response body for the recovery routes.
type RecoveryResponse struct {
	State             domain.RecoveryState `json:"state"`
	Phase             string               `json:"phase"`
	NeedsReconnection bool                 `json:"needs_reconnection"`
	Started           *bool                `json:"started,omitempty"`
}
