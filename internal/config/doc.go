// Package config loads runtime configuration for the story CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the story API
//	-d string   path to the local database file
//	-i int      online status check interval (seconds)
//	-k string   application server public key for push registration
//	-g          run without an account (guest mode)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://story-api.dicoding.dev/v1",
//	  "database_path": "storyapp.db",
//	  "online_check_interval": "30s",
//	  "vapid_public_key": "..."
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
