package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"tankreport/internal/config"
	"tankreport/internal/report"
)

// maxSheetName is the sheet name limit of the xlsx format
const maxSheetName = 31

// ExcelWriter writes report tables into an xlsx workbook
type ExcelWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewExcelWriter creates a workbook writer
func NewExcelWriter(paths *config.Paths, logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ExcelWriter{
		paths:  paths,
		logger: logger.With(slog.String("component", "excel_writer")),
	}
}

// WriteWorkbook saves the frames as one workbook under the output directory
func (w *ExcelWriter) WriteWorkbook(filename string, frames []report.Frame) (string, error) {
	path := filename
	if !filepath.IsAbs(path) {
		path = w.paths.GetOutputPath(filename)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := BuildWorkbook(frames)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	w.logger.Info("workbook written", slog.String("path", path), slog.Int("sheets", len(frames)))
	return path, nil
}

// WriteWorkbookTo streams the workbook, e.g. into an HTTP response
func WriteWorkbookTo(out io.Writer, frames []report.Frame) error {
	f, err := BuildWorkbook(frames)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(out)
	return err
}

// BuildWorkbook lays out one sheet per frame: a bold header row followed by
// the data rows
func BuildWorkbook(frames []report.Frame) (*excelize.File, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no tables to export")
	}

	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, frame := range frames {
		sheet := sheetName(frame.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, frame, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, frame report.Frame, headerStyle int) error {
	for col, header := range frame.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheet, colName, colName, columnWidth(header)); err != nil {
			return err
		}
	}

	if len(frame.Columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(frame.Columns), 1)
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return err
		}
	}

	for r, row := range frame.Rows {
		for c, value := range row {
			v := cellValue(value)
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}

func columnWidth(header string) float64 {
	w := float64(len(header)) + 2
	switch {
	case w < 12:
		return 12
	case w > 45:
		return 45
	}
	return w
}
