package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/tankreport.log"`
}

// DataConfig names the input datasets and the static map assets.
// Relative paths are resolved against BaseDir.
type DataConfig struct {
	BaseDir        string `yaml:"base_dir" envconfig:"BASE_DIR" default:"."`
	TankFile       string `yaml:"tank_file" envconfig:"TANK_FILE" default:"undp_small_tanks_merged.csv" validate:"required"`
	DSDFile        string `yaml:"dsd_file" envconfig:"DSD_FILE" default:"undp_small_tanks_merged_asc.csv" validate:"required"`
	DistrictFile   string `yaml:"district_file" envconfig:"DISTRICT_FILE" default:"undp_small_tanks_merged_dist.csv" validate:"required"`
	PovertyFile    string `yaml:"poverty_file" envconfig:"POVERTY_FILE" default:"HIES_poverty_agri.csv" validate:"required"`
	DSDPovertyFile string `yaml:"dsd_poverty_file" envconfig:"DSD_POVERTY_FILE" default:"HIES_poverty_dsd.csv" validate:"required"`
	MapsDir        string `yaml:"maps_dir" envconfig:"MAPS_DIR" default:"maps"`
	OutputDir      string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"out"`
}

// TelemetryConfig controls tracing and metrics
type TelemetryConfig struct {
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=stdout none"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS" default:"true"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0" validate:"gte=0,lte=1"`
}

// Load loads configuration from environment variables and config file.
// Environment variables take precedence over the file.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file; an empty path means env only.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileConfig, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileConfig, cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config. A value explicitly set in
// the environment wins; otherwise the file value replaces the env default.
func mergeConfigs(fileConfig, envConfig Config) Config {
	pick := func(key string, fileVal, envVal string) string {
		if _, set := os.LookupEnv(EnvPrefix + "_" + key); set || fileVal == "" {
			return envVal
		}
		return fileVal
	}

	if _, set := os.LookupEnv(EnvPrefix + "_SERVER_PORT"); !set && fileConfig.Server.Port != 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if _, set := os.LookupEnv(EnvPrefix + "_SERVER_READ_TIMEOUT"); !set && fileConfig.Server.ReadTimeout != 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if _, set := os.LookupEnv(EnvPrefix + "_SERVER_WRITE_TIMEOUT"); !set && fileConfig.Server.WriteTimeout != 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if len(fileConfig.Security.AllowedOrigins) > 0 {
		if _, set := os.LookupEnv(EnvPrefix + "_SECURITY_ALLOWED_ORIGINS"); !set {
			envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
		}
	}

	envConfig.Logging.Level = pick("LOGGING_LEVEL", fileConfig.Logging.Level, envConfig.Logging.Level)
	envConfig.Logging.Output = pick("LOGGING_OUTPUT", fileConfig.Logging.Output, envConfig.Logging.Output)
	envConfig.Logging.FilePath = pick("LOGGING_FILE_PATH", fileConfig.Logging.FilePath, envConfig.Logging.FilePath)

	envConfig.Data.BaseDir = pick("DATA_BASE_DIR", fileConfig.Data.BaseDir, envConfig.Data.BaseDir)
	envConfig.Data.TankFile = pick("DATA_TANK_FILE", fileConfig.Data.TankFile, envConfig.Data.TankFile)
	envConfig.Data.DSDFile = pick("DATA_DSD_FILE", fileConfig.Data.DSDFile, envConfig.Data.DSDFile)
	envConfig.Data.DistrictFile = pick("DATA_DISTRICT_FILE", fileConfig.Data.DistrictFile, envConfig.Data.DistrictFile)
	envConfig.Data.PovertyFile = pick("DATA_POVERTY_FILE", fileConfig.Data.PovertyFile, envConfig.Data.PovertyFile)
	envConfig.Data.DSDPovertyFile = pick("DATA_DSD_POVERTY_FILE", fileConfig.Data.DSDPovertyFile, envConfig.Data.DSDPovertyFile)
	envConfig.Data.MapsDir = pick("DATA_MAPS_DIR", fileConfig.Data.MapsDir, envConfig.Data.MapsDir)
	envConfig.Data.OutputDir = pick("DATA_OUTPUT_DIR", fileConfig.Data.OutputDir, envConfig.Data.OutputDir)

	envConfig.Telemetry.TraceExporter = pick("TELEMETRY_TRACE_EXPORTER", fileConfig.Telemetry.TraceExporter, envConfig.Telemetry.TraceExporter)

	return envConfig
}

// Validate validates the configuration using struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	// JSON is the only supported log format
	c.Logging.Format = "json"
	return nil
}

// Paths returns the resolved file locations for this configuration
func (c *Config) Paths() *Paths {
	return NewPaths(c.Data)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   "json",
			Output:   "console",
			FilePath: "logs/tankreport.log",
		},
		Data: DataConfig{
			BaseDir:        ".",
			TankFile:       DefaultTankFile,
			DSDFile:        DefaultDSDFile,
			DistrictFile:   DefaultDistrictFile,
			PovertyFile:    DefaultPovertyFile,
			DSDPovertyFile: DefaultDSDPovertyFile,
			MapsDir:        DefaultMapsDir,
			OutputDir:      DefaultOutputDir,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			EnableMetrics: true,
			SampleRatio:   1.0,
		},
	}
}
