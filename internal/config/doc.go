// Package config loads, normalizes, and validates keyframer configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads an optional TOML file. Command-line overrides are
// applied through Override hooks before normalization so every consumer sees
// absolute paths, a cleaned extension allow-list, and a positive worker count.
//
// The package never writes configuration back to disk.
package config
