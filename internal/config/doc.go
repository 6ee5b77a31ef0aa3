// Package config provides centralized configuration management for datapulse.
// It handles loading configuration from multiple sources, validation, and
// provides a type-safe API for accessing configuration values.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DATAPULSE_<SECTION>_<FIELD>:
//
//	DATAPULSE_LOGGING_LEVEL=debug
//	DATAPULSE_PRICES_DEDUP_KEYS=Date,symbol
//	DATAPULSE_LOGS_MEMBER_PREFIX=log
//	DATAPULSE_TELEMETRY_TRACE_EXPORTER=stdout
//
// List values are comma separated.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := config.NewPaths(cfg.Paths)
package config
