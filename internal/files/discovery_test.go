package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tankreport/internal/config"
	"tankreport/internal/report"
	"tankreport/internal/shared/testutil"
)

func TestScan(t *testing.T) {
	cfg := testutil.WriteDataFixture(t)
	inv := NewDiscovery(config.NewPaths(cfg)).Scan()

	require.Len(t, inv.Datasets, 5)
	assert.Empty(t, inv.MissingDatasets())
	for _, f := range inv.Datasets {
		assert.True(t, f.Exists, f.Name)
		assert.Positive(t, f.Size, f.Name)
		assert.False(t, f.ModTime.IsZero(), f.Name)
	}

	assert.True(t, inv.MapsDir)
	require.Len(t, inv.Maps, len(report.Maps()))
	assert.Len(t, inv.MissingMaps(), len(report.Maps())-1)
	assert.NotContains(t, inv.MissingMaps(), testutil.FixtureMap)
}

func TestScan_MissingInputs(t *testing.T) {
	tests := []struct {
		name        string
		remove      []string
		wantMissing []string
		wantMapsDir bool
	}{
		{
			name:        "one dataset",
			remove:      []string{config.DefaultDSDFile},
			wantMissing: []string{"dsd"},
			wantMapsDir: true,
		},
		{
			name:        "two datasets keep order",
			remove:      []string{config.DefaultDSDPovertyFile, config.DefaultTankFile},
			wantMissing: []string{"tank", "dsd_poverty"},
			wantMapsDir: true,
		},
		{
			name:        "maps directory",
			remove:      []string{config.DefaultMapsDir},
			wantMapsDir: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.WriteDataFixture(t)
			for _, name := range tt.remove {
				require.NoError(t, os.RemoveAll(filepath.Join(cfg.BaseDir, name)))
			}

			inv := NewDiscovery(config.NewPaths(cfg)).Scan()
			assert.Equal(t, tt.wantMissing, inv.MissingDatasets())
			assert.Equal(t, tt.wantMapsDir, inv.MapsDir)
		})
	}
}

func TestFindImages(t *testing.T) {
	cfg := testutil.WriteDataFixture(t)
	paths := config.NewPaths(cfg)

	for _, name := range []string{"zz_extra.PNG", "notes.txt", "a_first.jpeg"} {
		require.NoError(t, os.WriteFile(paths.GetMapPath(name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(paths.GetMapPath("nested.jpg"), 0755))

	images, err := NewDiscovery(paths).FindImages()
	require.NoError(t, err)

	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.Name
		assert.True(t, img.Exists)
	}
	assert.Equal(t, []string{"a_first.jpeg", testutil.FixtureMap, "zz_extra.PNG"}, names)
}

func TestFindImages_NoDirectory(t *testing.T) {
	paths := config.NewPaths(config.DataConfig{BaseDir: t.TempDir(), MapsDir: "missing"})

	_, err := NewDiscovery(paths).FindImages()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
