package files

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tankreport/internal/config"
	"tankreport/internal/report"
)

// FileInfo represents one expected input of the report
type FileInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time,omitempty"`
	Exists  bool      `json:"exists"`
}

// Inventory is the state of every input the report reads
type Inventory struct {
	Datasets []FileInfo `json:"datasets"`
	Maps     []FileInfo `json:"maps"`
	MapsDir  bool       `json:"maps_dir"`
}

// MissingDatasets names the datasets that cannot be found
func (inv Inventory) MissingDatasets() []string {
	return missing(inv.Datasets)
}

// MissingMaps names the map images that cannot be found
func (inv Inventory) MissingMaps() []string {
	return missing(inv.Maps)
}

func missing(files []FileInfo) []string {
	var out []string
	for _, f := range files {
		if !f.Exists {
			out = append(out, f.Name)
		}
	}
	return out
}

// Discovery locates the input datasets and map images on disk
type Discovery struct {
	paths *config.Paths
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(paths *config.Paths) *Discovery {
	return &Discovery{paths: paths}
}

// DatasetFiles pairs each dataset name with its configured path
func (d *Discovery) DatasetFiles() []FileInfo {
	return []FileInfo{
		{Name: "tank", Path: d.paths.TankCSV},
		{Name: "district", Path: d.paths.DistrictCSV},
		{Name: "dsd", Path: d.paths.DSDCSV},
		{Name: "poverty", Path: d.paths.PovertyCSV},
		{Name: "dsd_poverty", Path: d.paths.DSDPovertyCSV},
	}
}

// Scan stats every dataset and every known map image
func (d *Discovery) Scan() Inventory {
	inv := Inventory{Datasets: d.DatasetFiles()}
	for i := range inv.Datasets {
		stat(&inv.Datasets[i])
	}

	for _, m := range report.Maps() {
		f := FileInfo{Name: m.File, Path: d.paths.GetMapPath(m.File)}
		stat(&f)
		inv.Maps = append(inv.Maps, f)
	}

	if info, err := os.Stat(d.paths.MapsDir); err == nil && info.IsDir() {
		inv.MapsDir = true
	}
	return inv
}

// FindImages lists the image files in the maps directory, known or not,
// sorted by name
func (d *Discovery) FindImages() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.paths.MapsDir)
	if err != nil {
		return nil, err
	}

	var images []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !isImage(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		images = append(images, FileInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(d.paths.MapsDir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Exists:  true,
		})
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].Name < images[j].Name
	})
	return images, nil
}

func stat(f *FileInfo) {
	info, err := os.Stat(f.Path)
	if err != nil || info.IsDir() {
		return
	}
	f.Exists = true
	f.Size = info.Size()
	f.ModTime = info.ModTime()
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
