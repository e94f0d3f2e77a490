// Package metric provides Prometheus metrics for the handoff subsystem.
//
// A nil *Registry is valid and records nothing, so components can be
// built without metrics in tests.
package metric
