package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "Sri Lanka Small Tanks Report"
	AppVersion = "1.0.0"
	AppVendor  = "South Asia Water"

	// EnvPrefix namespaces every environment variable, e.g. TANKS_SERVER_PORT
	EnvPrefix = "TANKS"

	// Input datasets (relative to the data base directory)
	DefaultTankFile       = "undp_small_tanks_merged.csv"
	DefaultDSDFile        = "undp_small_tanks_merged_asc.csv"
	DefaultDistrictFile   = "undp_small_tanks_merged_dist.csv"
	DefaultPovertyFile    = "HIES_poverty_agri.csv"
	DefaultDSDPovertyFile = "HIES_poverty_dsd.csv"
	DefaultMapsDir        = "maps"
	DefaultOutputDir      = "out"

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 10

	// WebSocket
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 4096
	WebSocketPongWait        = 60 * time.Second
	WebSocketWriteWait       = 10 * time.Second

	// Log Settings
	DefaultLogLevel = "info"
)
