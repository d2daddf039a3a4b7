// Package config loads, normalizes, and validates feedrebuild configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the FEEDREBUILD_FEEDITEMS
// environment fallback. The Config type centralizes the profile discovery
// paths, index scanning conventions, fetch limits, and logging knobs the CLI
// needs.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
