// Package config loads, normalizes, and validates vizmse configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// VIZMSE_HOST and VIZMSE_PROFILE. The Config type centralizes the engine
// endpoint, local state locations, and logging knobs the CLI needs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
