package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Marker constraints.
const (
	MaxMarkerKindLength = 64

	// MarkerIDPrefix is the prefix for marker IDs.
	MarkerIDPrefix = "hopm-"
)

// PendingMarker records that an operation was handed to an external
// application and has not been confirmed complete.
//
// At most one marker exists per Kind. A marker read after CreatedAt+TTL
// is treated as absent.
type PendingMarker struct {
	// ID identifies this particular handoff, for log correlation.
	// Format: hopm-{ulid_lowercase}.
	ID string `json:"id"`

	// Kind is the flow this marker belongs to (e.g. "wallet-connect").
	Kind string `json:"kind"`

	// Payload is opaque continuation data for the resuming caller.
	Payload map[string]any `json:"payload,omitempty"`

	// CreatedAt is the creation timestamp (Unix milliseconds).
	CreatedAt int64 `json:"created_at"`

	// TTL is the lifetime in milliseconds.
	TTL int64 `json:"ttl_ms"`
}

// NewPendingMarker creates a marker stamped at now.
func NewPendingMarker(kind string, payload map[string]any, ttl time.Duration, now time.Time) (*PendingMarker, error) {
	if err := ValidateMarkerKind(kind); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, ErrInvalidArgument.WithDetails("ttl must be positive")
	}

	id, err := GenerateMarkerID(now)
	if err != nil {
		return nil, err
	}

	return &PendingMarker{
		ID:        id,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: now.UnixMilli(),
		TTL:       ttl.Milliseconds(),
	}, nil
}

// GenerateMarkerID generates a new marker ID using ULID.
func GenerateMarkerID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", ErrInvalidArgument.WithCause(err)
	}
	return MarkerIDPrefix + strings.ToLower(id.String()), nil
}

// ValidateMarkerKind checks that kind is usable as a storage key segment.
func ValidateMarkerKind(kind string) error {
	switch {
	case kind == "":
		return ErrMissingArgument.WithDetails("marker kind is required")
	case len(kind) > MaxMarkerKindLength:
		return ErrInvalidArgument.WithDetails("marker kind exceeds 64 characters")
	case strings.ContainsAny(kind, "/ \t\n"):
		return ErrInvalidArgument.WithDetails("marker kind must not contain '/' or whitespace")
	}
	return nil
}

// IsExpiredAt reports whether the marker is past its TTL at now.
// A marker is live while now-CreatedAt <= TTL.
func (m *PendingMarker) IsExpiredAt(now time.Time) bool {
	return now.UnixMilli()-m.CreatedAt > m.TTL
}

// ExpiresAt returns the last instant at which the marker is still live.
func (m *PendingMarker) ExpiresAt() time.Time {
	return time.UnixMilli(m.CreatedAt + m.TTL)
}

// CreatedAtTime returns CreatedAt as time.Time.
func (m *PendingMarker) CreatedAtTime() time.Time {
	return time.UnixMilli(m.CreatedAt)
}

// Clone creates a shallow copy with its own payload map.
func (m *PendingMarker) Clone() *PendingMarker {
	clone := *m
	if m.Payload != nil {
		clone.Payload = make(map[string]any, len(m.Payload))
		for k, v := range m.Payload {
			clone.Payload[k] = v
		}
	}
	return &clone
}
