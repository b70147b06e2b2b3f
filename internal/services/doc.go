// Package services holds the business layer between the transports (HTTP,
// websocket, CLI) and the report pipeline.
//
// ReportService runs one full pass per call: every input file is loaded
// afresh, every table is derived again and nothing is kept between calls.
// A load failure fails the whole call and no partial report is returned.
//
// HealthService reports liveness and whether the configured input files
// and map directory are present.
package services
