// Package httpserver provides the host bridge HTTP server.
//
// The host application reports lifecycle signals and sign-in changes
// here, and reads or updates markers, the wallet snapshot and the
// recovery state. /metrics exposes Prometheus metrics.
package httpserver
