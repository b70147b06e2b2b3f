package config

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// This is the single source of truth for file locations in the application.
type Paths struct {
	BaseDir   string
	MapsDir   string
	OutputDir string

	// Input datasets
	TankCSV       string
	DSDCSV        string
	DistrictCSV   string
	PovertyCSV    string
	DSDPovertyCSV string
}

// NewPaths resolves every configured location against the data base directory.
// Absolute entries are kept as they are.
func NewPaths(cfg DataConfig) *Paths {
	base := cfg.BaseDir
	if base == "" {
		base = "."
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:       base,
		MapsDir:       resolve(cfg.MapsDir),
		OutputDir:     resolve(cfg.OutputDir),
		TankCSV:       resolve(cfg.TankFile),
		DSDCSV:        resolve(cfg.DSDFile),
		DistrictCSV:   resolve(cfg.DistrictFile),
		PovertyCSV:    resolve(cfg.PovertyFile),
		DSDPovertyCSV: resolve(cfg.DSDPovertyFile),
	}
}

// GetMapPath returns the path of a static map image
func (p *Paths) GetMapPath(filename string) string {
	return filepath.Join(p.MapsDir, filename)
}

// GetOutputPath returns the path of an exported artifact
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Resolved data paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("tank_csv", p.TankCSV),
		slog.String("dsd_csv", p.DSDCSV),
		slog.String("district_csv", p.DistrictCSV),
		slog.String("poverty_csv", p.PovertyCSV),
		slog.String("dsd_poverty_csv", p.DSDPovertyCSV),
		slog.String("maps_dir", p.MapsDir),
		slog.String("output_dir", p.OutputDir))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
