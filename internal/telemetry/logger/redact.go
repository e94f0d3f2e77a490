package logger

import (
	"log/slog"
	"strings"

	"github.com/yndnr/handoff-go/internal/core/domain"
)

// Value prefixes that mark a bearer credential regardless of key.
var sensitiveValuePrefixes = []string{
	"eyJ",     // JWT (base64 of `{"`)
	"Bearer ", // Authorization header value
}

// Key substrings whose values are fully redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"authorization",
	"bearer",
	"encryption_key",
	"private_key",
}

// Key substrings whose values are wallet addresses.
var addressKeyPatterns = []string{
	"address",
	"wallet",
}

const redactedValue = "***REDACTED***"

func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, RedactValue(a.Key, a.Value.String()))
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// RedactValue returns the loggable form of value stored under key.
func RedactValue(key, value string) string {
	if value == "" {
		return value
	}
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return maskValue(value, prefix)
		}
	}
	if IsSensitiveKey(key) {
		return redactedValue
	}
	if isAddressKey(key) && strings.HasPrefix(value, "0x") {
		return domain.MaskAddress(value)
	}
	return value
}

// IsSensitiveKey checks if a key name suggests secret content.
// Guard tokens are identifiers, not credentials, and stay visible.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	if k == "guard_token" {
		return false
	}
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(k, pattern) {
			return true
		}
	}
	return false
}

func isAddressKey(key string) bool {
	k := strings.ToLower(key)
	for _, pattern := range addressKeyPatterns {
		if strings.Contains(k, pattern) {
			return true
		}
	}
	return false
}

// maskValue keeps the prefix and three trailing characters.
func maskValue(value, prefix string) string {
	body := value[len(prefix):]
	if len(body) <= 6 {
		return prefix + "***"
	}
	return prefix + "..." + body[len(body)-3:]
}
