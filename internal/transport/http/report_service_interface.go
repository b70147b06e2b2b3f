package http

import (
	"context"

	"tankreport/internal/report"
)

// ReportService runs report passes for the handlers
type ReportService interface {
	Generate(ctx context.Context) (*report.Report, error)
	Section(ctx context.Context, name string) (any, error)
	Frame(ctx context.Context, name string) (report.Frame, error)
	Frames(ctx context.Context) ([]report.Frame, error)
	Chart(ctx context.Context, name string) (report.Chart, error)
	Districts(ctx context.Context) ([]string, error)
	FilterDSD(ctx context.Context, districts []string) (report.MaskTable, error)
	MapPath(name string) (string, error)
}
