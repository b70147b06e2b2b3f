package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tankreport/internal/config"
	"tankreport/internal/dataset"
	"tankreport/internal/infrastructure"
	"tankreport/internal/report"
)

// MaxDistrictSelection bounds one filter request
const MaxDistrictSelection = 64

// ReportService runs report passes over the configured input files
type ReportService struct {
	paths   *config.Paths
	loader  *dataset.Loader
	metrics *infrastructure.ReportMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewReportService creates a report service. metrics may be nil.
func NewReportService(paths *config.Paths, metrics *infrastructure.ReportMetrics, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("service", "report"))

	logger.Info("ReportService initialized",
		slog.String("base_dir", paths.BaseDir),
		slog.String("maps_dir", paths.MapsDir))

	return &ReportService{
		paths:   paths,
		loader:  dataset.NewLoader(logger),
		metrics: metrics,
		tracer:  otel.Tracer(infrastructure.ServiceName + "/services"),
		logger:  logger,
	}
}

// SourcesFromPaths maps the resolved data paths to loader sources
func SourcesFromPaths(p *config.Paths) dataset.Sources {
	return dataset.Sources{
		Tank:       p.TankCSV,
		District:   p.DistrictCSV,
		DSD:        p.DSDCSV,
		Poverty:    p.PovertyCSV,
		DSDPoverty: p.DSDPovertyCSV,
	}
}

// Generate runs one full pass and returns the report
func (s *ReportService) Generate(ctx context.Context) (*report.Report, error) {
	ctx, passID := infrastructure.NewPass(ctx)
	ctx, span := s.tracer.Start(ctx, "report.pass",
		trace.WithAttributes(attribute.String("pass.id", passID)))
	defer span.End()

	start := time.Now()

	w, err := s.loader.Load(ctx, SourcesFromPaths(s.paths))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		s.metrics.RecordPass(ctx, time.Since(start), err)
		s.logger.ErrorContext(ctx, "report pass failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("report pass: %w", err)
	}

	for _, st := range w.Stats {
		s.metrics.RecordDataset(ctx, st.Dataset, st.Kept, st.Excluded())
	}
	infrastructure.AddSpanEvent(ctx, "datasets.loaded", map[string]interface{}{
		"tanks":     len(w.Tanks),
		"districts": len(w.Districts),
		"dsds":      len(w.DSDs),
	})

	r := report.Build(w)
	r.PassID = passID

	s.metrics.RecordPass(ctx, time.Since(start), nil)
	span.SetStatus(codes.Ok, "")
	s.logger.InfoContext(ctx, "report pass complete",
		slog.Int("tanks", len(w.Tanks)),
		slog.Int("dsd_rows", r.DSDMask.Count),
		slog.Duration("duration", time.Since(start)))

	return r, nil
}

// Section returns one derived table
func (s *ReportService) Section(ctx context.Context, name string) (any, error) {
	r, err := s.Generate(ctx)
	if err != nil {
		return nil, err
	}
	return r.Section(name)
}

// Frame returns the table view of one section
func (s *ReportService) Frame(ctx context.Context, name string) (report.Frame, error) {
	r, err := s.Generate(ctx)
	if err != nil {
		return report.Frame{}, err
	}
	return r.Frame(name)
}

// Frames returns every table view
func (s *ReportService) Frames(ctx context.Context) ([]report.Frame, error) {
	r, err := s.Generate(ctx)
	if err != nil {
		return nil, err
	}
	return r.Frames(), nil
}

// Chart returns one chart series
func (s *ReportService) Chart(ctx context.Context, name string) (report.Chart, error) {
	r, err := s.Generate(ctx)
	if err != nil {
		return report.Chart{}, err
	}
	return r.Chart(name)
}

// Districts returns the filter options in first-appearance order
func (s *ReportService) Districts(ctx context.Context) ([]string, error) {
	r, err := s.Generate(ctx)
	if err != nil {
		return nil, err
	}
	return r.Districts, nil
}

// FilterDSD runs a pass and applies the district selection to the DSD mask
// table. A nil selection means every district; an empty one selects none.
func (s *ReportService) FilterDSD(ctx context.Context, districts []string) (report.MaskTable, error) {
	if len(districts) > MaxDistrictSelection {
		return report.MaskTable{}, fmt.Errorf("%w: %d > %d", ErrTooManyDistrict, len(districts), MaxDistrictSelection)
	}

	r, err := s.Generate(ctx)
	if err != nil {
		return report.MaskTable{}, err
	}

	t := r.FilterDSD(districts)
	selected := len(districts)
	if districts == nil {
		selected = len(r.Districts)
	}
	s.metrics.RecordFilter(ctx, selected, t.Count)

	s.logger.DebugContext(ctx, "dsd filter applied",
		slog.Int("selected", selected),
		slog.Int("rows", t.Count))
	return t, nil
}

// MapPath resolves a known map image to its file
func (s *ReportService) MapPath(name string) (string, error) {
	if !report.IsMapAsset(name) {
		return "", fmt.Errorf("%w: %s", ErrMapNotFound, name)
	}
	p := s.paths.GetMapPath(name)
	if !config.FileExists(p) {
		return "", fmt.Errorf("%w: %s", ErrMapNotFound, name)
	}
	return p, nil
}

// Paths returns the resolved file locations
func (s *ReportService) Paths() *config.Paths {
	return s.paths
}
