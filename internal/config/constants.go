package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "Astras Source Reporting"
	AppVersion = "1.0.0"
	AppVendor  = "Phoenix Contact GPN"

	// EnvPrefix namespaces every environment variable, e.g. ASTRAS_SERVER_PORT
	EnvPrefix = "ASTRAS"

	// ConfigFileEnv points at an explicit YAML config file
	ConfigFileEnv = "ASTRAS_CONFIG_FILE"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Uploads
	DefaultMaxUploadBytes = 32 << 20
	DefaultSessionTTL     = 2 * time.Hour
	DefaultSweepInterval  = 5 * time.Minute

	// Network Timeouts
	DefaultRequestTimeout = 60 * time.Second
)
