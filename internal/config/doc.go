// Package config provides configuration management for the report service.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//	1. Default values (Default)
//	2. A YAML file: $ASTRAS_CONFIG_FILE, config.yaml or configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern ASTRAS_<SECTION>_<FIELD>:
//
//	ASTRAS_SERVER_PORT=8080
//	ASTRAS_LOGGING_LEVEL=debug
//	ASTRAS_UPLOAD_MAX_BYTES=33554432
//	ASTRAS_REPORT_ALLOWED_ORGANIZATIONS="Org A,Org B"
//	ASTRAS_REPORT_FALLBACK_ORGANIZATION="Phoenix Contact - GPN"
//
// Binaries load a .env file before calling Load.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
