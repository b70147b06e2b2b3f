// Package shared holds helpers used across packages that belong to no
// single layer.
//
// The testutil subpackage provides a capturing slog handler and the CSV
// fixture the service, transport and command tests load reports from:
//
//	cfg := testutil.WriteDataFixture(t)
//	svc := services.NewReportService(config.NewPaths(cfg), logger, nil)
//
// Nothing here may import business packages other than config.
package shared
