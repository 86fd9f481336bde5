// Package file reads the optional TOML configuration file.
//
// Top-level keys mirror the command flags in snake case. Telemetry outputs
// live in a [telemetry] table.
package file
