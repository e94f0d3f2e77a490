//go:build !unix

package lifecycle

import (
	"errors"
	"log/slog"
)

// OSSignals is unavailable on this platform.
type OSSignals struct{}

// NewOSSignals reports that job-control signals are unsupported.
func NewOSSignals(_ *slog.Logger) (*OSSignals, error) {
	return nil, errors.New("lifecycle: job-control signals not supported on this platform")
}

// Events implements Source.
func (s *OSSignals) Events() <-chan Event { return nil }

// Close implements Source.
func (s *OSSignals) Close() error { return nil }
