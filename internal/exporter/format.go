package exporter

import (
	"strconv"

	"tankreport/internal/report"
)

// formatCell renders a table cell for CSV; undefined numbers are empty
func formatCell(cell any) string {
	switch v := cell.(type) {
	case report.Number:
		if !v.Valid() {
			return ""
		}
		return formatFloat(v.Float())
	case float64:
		return formatFloat(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return formatInt(v)
	default:
		return report.FormatCell(v)
	}
}

// formatFloat writes the shortest representation that round-trips
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// cellValue converts a table cell to the value stored in a spreadsheet.
// Undefined numbers become nil so the cell stays empty.
func cellValue(cell any) any {
	switch v := cell.(type) {
	case report.Number:
		if !v.Valid() {
			return nil
		}
		return v.Float()
	default:
		return v
	}
}

// recordsOf renders every row of a frame for CSV
func recordsOf(f report.Frame) [][]string {
	records := make([][]string, len(f.Rows))
	for i, row := range f.Rows {
		records[i] = make([]string, len(row))
		for j, cell := range row {
			records[i][j] = formatCell(cell)
		}
	}
	return records
}
