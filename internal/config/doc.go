// Package config loads, normalizes, and validates shipwright configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files with strict key checking, and applies
// command-line overrides against a known-key table. The Config type
// centralizes every knob the build graph and CLI need: product identity,
// signing credentials, directory layout, and external build settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a resolved signing mode, and clear validation errors
// before any build action runs.
package config
