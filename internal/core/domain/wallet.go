package domain

import (
	"strings"
	"time"
)

// WalletSnapshot is the last-known wallet identity.
//
// It is advisory: it lets the UI render a connected state before the live
// wallet connection resolves. It must never authorize a value-moving
// action; use Matches against a live connection first.
type WalletSnapshot struct {
	// Address is the wallet address as reported by the wallet.
	Address string `json:"address"`

	// ChainID is the EVM chain the wallet was connected to.
	ChainID int64 `json:"chain_id"`

	// CapturedAt is when the snapshot was taken (Unix milliseconds).
	CapturedAt int64 `json:"captured_at"`

	// IsAbstractedAccount marks smart-contract (account abstraction) wallets.
	IsAbstractedAccount bool `json:"is_abstracted_account,omitempty"`
}

// Validate checks the snapshot fields.
func (w *WalletSnapshot) Validate() error {
	if w.Address == "" {
		return ErrMissingArgument.WithDetails("address is required")
	}
	if w.ChainID <= 0 {
		return ErrInvalidArgument.WithDetails("chain_id must be positive")
	}
	return nil
}

// Matches reports whether a live connection agrees with the snapshot.
// Addresses are compared case-insensitively (EIP-55 checksums only
// change letter case).
func (w *WalletSnapshot) Matches(liveAddress string, liveChainID int64) bool {
	return strings.EqualFold(w.Address, liveAddress) && w.ChainID == liveChainID
}

// CapturedAtTime returns CapturedAt as time.Time.
func (w *WalletSnapshot) CapturedAtTime() time.Time {
	return time.UnixMilli(w.CapturedAt)
}

// Age returns how old the snapshot is at now.
func (w *WalletSnapshot) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-w.CapturedAt) * time.Millisecond
}

// MaskAddress shortens an address for logs: 0x1234…abcd.
func MaskAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
