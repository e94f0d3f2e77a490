// Package config defines the handoffd configuration structure.
//
// Values are loaded by infra/confloader from a YAML file and HANDOFF_*
// environment variables, then checked by Verify.
package config
