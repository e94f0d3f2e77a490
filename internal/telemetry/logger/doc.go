// Package logger provides structured logging.
//
// It wraps log/slog with JSON or text output, a process-wide dynamic
// level, context propagation of flow and request IDs, and redaction:
//
//   - values under keys naming secrets (token, secret, password, ...) are replaced
//   - JWT-shaped and bearer values are masked wherever they appear
//   - wallet addresses under "address" keys are shortened
package logger
