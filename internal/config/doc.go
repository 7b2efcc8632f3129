// Package config provides configuration loading, merging, and validation
// for the vault CLI and the relay.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags (relay only)
//  4. JSON config file
//
// The main entry points are [GetClientConfig] for the CLI and
// [GetRelayConfig] for the relay.
package config
