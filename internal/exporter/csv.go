package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"tankreport/internal/config"
	"tankreport/internal/report"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CSVWriter{
		paths:  paths,
		logger: logger.With(slog.String("component", "csv_writer")),
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file, replacing it. Relative paths are
// resolved under the output directory.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("writing csv file",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}

	if err := writeCSV(file, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteFrame writes one table view as <name>.csv and returns its path
func (w *CSVWriter) WriteFrame(f report.Frame) (string, error) {
	name := f.Name + ".csv"
	if err := w.WriteCSV(name, WriteOptions{
		Headers:   f.Columns,
		Records:   recordsOf(f),
		BOMPrefix: true,
	}); err != nil {
		return "", fmt.Errorf("export %s: %w", f.Name, err)
	}
	return w.resolvePath(name), nil
}

// WriteFrames writes every table view and returns the written paths in order
func (w *CSVWriter) WriteFrames(frames []report.Frame) ([]string, error) {
	paths := make([]string, 0, len(frames))
	for _, f := range frames {
		p, err := w.WriteFrame(f)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	w.logger.Info("csv export complete", slog.Int("files", len(paths)), slog.String("dir", w.paths.OutputDir))
	return paths, nil
}

// WriteFrameTo streams one table view as CSV, without a BOM
func WriteFrameTo(out io.Writer, f report.Frame) error {
	return writeCSV(out, WriteOptions{Headers: f.Columns, Records: recordsOf(f)})
}

func writeCSV(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// resolvePath keeps absolute paths and places the rest in the output directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return w.paths.GetOutputPath(filePath)
}
