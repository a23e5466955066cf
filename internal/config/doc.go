// Package config loads, normalizes, and validates clockdrift configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// CLOCKDRIFT_OUTPUT_DIR. The Config type gathers every filter threshold, the
// channel priority list, plot styling knobs and output locations so the
// analysis pipeline receives them as explicit values instead of package-level
// constants.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical codes, and clear validation errors.
package config
