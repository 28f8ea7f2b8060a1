// Package config loads learnpath settings from config.yaml, an optional .env
// file and LEARNPATH_* environment variables (highest precedence), applies
// defaults and validates the result with struct tags. Components receive the
// typed sub-structs they need (DatabaseConfig, LogConfig, ScheduleConfig)
// rather than reading the environment themselves.
package config
