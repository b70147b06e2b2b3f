// Package exporter writes report tables to disk and to HTTP responses.
//
// CSVWriter writes one table view per CSV file with a UTF-8 BOM so Excel
// opens them as UTF-8. ExcelWriter writes every table view of a report into
// one workbook, one sheet per table. Undefined numbers are written as empty
// cells in both formats.
//
//	csvw := exporter.NewCSVWriter(paths, logger)
//	files, err := csvw.WriteFrames(rep.Frames())
//
//	xlsx := exporter.NewExcelWriter(paths, logger)
//	path, err := xlsx.WriteWorkbook("tank_report.xlsx", rep.Frames())
package exporter
