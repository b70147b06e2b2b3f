package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tankreport/internal/config"
	"tankreport/internal/shared/testutil"
)

func TestFileValidator_ValidateInputs(t *testing.T) {
	tests := []struct {
		name        string
		remove      []string
		wantErr     bool
		errContains []string
	}{
		{
			name: "all datasets present",
		},
		{
			name:        "one missing",
			remove:      []string{config.DefaultPovertyFile},
			wantErr:     true,
			errContains: []string{"dataset poverty"},
		},
		{
			name:        "every missing dataset reported",
			remove:      []string{config.DefaultTankFile, config.DefaultDSDFile},
			wantErr:     true,
			errContains: []string{"dataset tank", "dataset dsd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.WriteDataFixture(t)
			for _, name := range tt.remove {
				require.NoError(t, os.Remove(filepath.Join(cfg.BaseDir, name)))
			}

			err := NewFileValidator(nil).ValidateInputs(config.NewPaths(cfg))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, os.ErrNotExist)
			for _, s := range tt.errContains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantErr   bool
	}{
		{
			name: "existing directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "creates nested directory",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "a", "b")
			},
		},
		{
			name: "path is a file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "file.txt")
				require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
				return file
			},
			wantErr: true,
		},
	}

	validator := NewFileValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setupFunc(t)
			err := validator.ValidateOutputDirectory(dir)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.DirExists(t, dir)
			assert.NoFileExists(t, filepath.Join(dir, ".write_test"))
		})
	}
}

func TestFileValidator_ValidateCSVFile(t *testing.T) {
	dir := t.TempDir()
	csvFile := filepath.Join(dir, "data.csv")
	txtFile := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(csvFile, []byte("a,b\n"), 0644))
	require.NoError(t, os.WriteFile(txtFile, []byte("a,b\n"), 0644))

	validator := NewFileValidator(nil)

	assert.NoError(t, validator.ValidateCSVFile(csvFile))

	err := validator.ValidateCSVFile(txtFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a CSV file")

	err = validator.ValidateCSVFile(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = validator.ValidateFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}
