package service

import (
	"context"
	"time"

	"github.com/yndnr/handoff-go/internal/core/domain"
)

// Handoff kinds.
const (
	KindWalletConnect   = "wallet-connect"
	KindExternalPayment = "external-payment"
)

// Default handoff lifetimes.
const (
	DefaultWalletConnectTTL = 5 * time.Minute
	DefaultPaymentTTL       = 30 * time.Minute
)

// HandoffTracker binds a MarkerStore to one external flow.
//
// Call Mark before leaving for the external app, Read on the next
// foregrounding and Clear once the flow concludes, whatever the outcome.
// A missing or expired marker means the flow never started.
type HandoffTracker struct {
	store *MarkerStore
	kind  string
	ttl   time.Duration
}

// NewHandoffTracker creates a tracker for kind with the given lifetime.
func NewHandoffTracker(store *MarkerStore, kind string, ttl time.Duration) (*HandoffTracker, error) {
	if err := domain.ValidateMarkerKind(kind); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, domain.ErrInvalidArgument.WithDetails("handoff ttl must be positive")
	}
	return &HandoffTracker{store: store, kind: kind, ttl: ttl}, nil
}

// WalletConnectHandoff tracks a wallet connection handed to an external
// wallet app. A zero ttl selects DefaultWalletConnectTTL.
func WalletConnectHandoff(store *MarkerStore, ttl time.Duration) *HandoffTracker {
	if ttl <= 0 {
		ttl = DefaultWalletConnectTTL
	}
	return &HandoffTracker{store: store, kind: KindWalletConnect, ttl: ttl}
}

// Kind returns the marker kind.
func (t *HandoffTracker) Kind() string { return t.kind }

// TTL returns the marker lifetime.
func (t *HandoffTracker) TTL() time.Duration { return t.ttl }

// Mark records that the flow was handed off.
func (t *HandoffTracker) Mark(ctx context.Context, payload map[string]any) error {
	return t.store.Mark(ctx, t.kind, payload, t.ttl)
}

// Read returns the payload of a live handoff.
func (t *HandoffTracker) Read(ctx context.Context) (map[string]any, bool) {
	return t.store.Read(ctx, t.kind)
}

// Peek returns the full live marker.
func (t *HandoffTracker) Peek(ctx context.Context) (*domain.PendingMarker, bool) {
	return t.store.Peek(ctx, t.kind)
}

// Clear ends the flow.
func (t *HandoffTracker) Clear(ctx context.Context) {
	t.store.Clear(ctx, t.kind)
}

// PaymentIntent is the continuation data of an external payment.
type PaymentIntent struct {
	Provider         string
	PartnerReference string
	Extra            map[string]any
}

const (
	payloadProvider         = "provider"
	payloadPartnerReference = "partner_reference"
)

// PaymentTracker tracks a payment handed to an external provider.
type PaymentTracker struct {
	*HandoffTracker
}

// PaymentHandoff creates the external payment tracker. A zero ttl selects
// DefaultPaymentTTL.
func PaymentHandoff(store *MarkerStore, ttl time.Duration) *PaymentTracker {
	if ttl <= 0 {
		ttl = DefaultPaymentTTL
	}
	return &PaymentTracker{
		HandoffTracker: &HandoffTracker{store: store, kind: KindExternalPayment, ttl: ttl},
	}
}

// MarkPayment records the payment handoff with its provider metadata.
func (t *PaymentTracker) MarkPayment(ctx context.Context, intent PaymentIntent) error {
	if intent.Provider == "" {
		return domain.ErrMissingArgument.WithDetails("payment provider is required")
	}

	payload := make(map[string]any, len(intent.Extra)+2)
	for k, v := range intent.Extra {
		payload[k] = v
	}
	payload[payloadProvider] = intent.Provider
	if intent.PartnerReference != "" {
		payload[payloadPartnerReference] = intent.PartnerReference
	}
	return t.Mark(ctx, payload)
}

// ReadPayment returns the live payment intent.
func (t *PaymentTracker) ReadPayment(ctx context.Context) (*PaymentIntent, bool) {
	payload, ok := t.Read(ctx)
	if !ok {
		return nil, false
	}

	intent := &PaymentIntent{Extra: make(map[string]any)}
	for k, v := range payload {
		switch k {
		case payloadProvider:
			intent.Provider, _ = v.(string)
		case payloadPartnerReference:
			intent.PartnerReference, _ = v.(string)
		default:
			intent.Extra[k] = v
		}
	}
	return intent, true
}

// ResolveHandoff picks the flow to resume when several handoffs are live.
//
// The marker with the greatest CreatedAt wins; ties go to the tracker
// passed first. Losing markers are left in place. ok is false when no
// tracker has a live marker.
func ResolveHandoff(ctx context.Context, trackers ...*HandoffTracker) (winner *HandoffTracker, marker *domain.PendingMarker, ok bool) {
	for _, t := range trackers {
		m, live := t.Peek(ctx)
		if !live {
			continue
		}
		if marker == nil || m.CreatedAt > marker.CreatedAt {
			winner, marker = t, m
		}
	}
	return winner, marker, marker != nil
}
