// Package config provides centralized configuration management for the tank
// report service. It loads configuration from multiple sources, validates it,
// and resolves the locations of the input datasets.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TANKS_* for namespacing:
//
//	TANKS_SERVER_PORT=8080
//	TANKS_LOGGING_LEVEL=debug
//	TANKS_DATA_BASE_DIR=/srv/tanks
//	TANKS_DATA_TANK_FILE=undp_small_tanks_merged.csv
//	TANKS_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Path Management
//
// Paths resolves every dataset and directory against the data base directory:
//
//	paths := cfg.Paths()
//	tanks := paths.TankCSV
//	img := paths.GetMapPath("tank_irrigation.jpg")
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
