// Package config loads, normalizes, and validates Lens configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LENS_API_TOKEN. The Config type centralizes every knob the daemon and CLI
// need, so storage backends, recognition limits, and callback timeouts are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical backend names, and clear validation errors.
package config
