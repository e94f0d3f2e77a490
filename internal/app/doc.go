// Package app is the handoffd composition root. It builds the storage
// engine, the marker and wallet services, the recovery machine, the
// auth syncer and the lifecycle sources from a config.Config, serves the
// host bridge HTTP API and tears everything down in reverse order.
package app
