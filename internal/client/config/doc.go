// Package config loads runtime configuration for the dashboard client.
//
// Sources, lowest precedence first:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. GOPHDASH_* environment variables.
//  4. Command-line flags.
//
// Durations in JSON may be strings such as "30s" or integer nanoseconds:
//
//	{
//	  "api_url": "http://127.0.0.1:8080",
//	  "store_backend": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "request_timeout": "30s"
//	}
package config
