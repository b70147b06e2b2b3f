package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tankreport/internal/charts"
	"tankreport/internal/config"
	"tankreport/internal/exporter"
	"tankreport/internal/infrastructure"
	"tankreport/internal/report"
	"tankreport/internal/services"
	"tankreport/internal/validation"
)

// Export formats
const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
	formatPNG  = "png"
)

// WorkbookName is the file name of the xlsx export
const WorkbookName = "small_tanks_report.xlsx"

// chartsDir holds the PNG charts under the output directory
const chartsDir = "charts"

var exportFormats = []string{formatCSV, formatXLSX, formatPNG}

type exportOptions struct {
	out     string
	formats []string
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	eo := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the report tables and charts to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			formats := slices.Compact(slices.Sorted(slices.Values(eo.formats)))
			for _, f := range formats {
				if !slices.Contains(exportFormats, f) {
					return fmt.Errorf("unknown format %q (want one of %v)", f, exportFormats)
				}
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if eo.out != "" {
				out, err := filepath.Abs(eo.out)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
				cfg.Data.OutputDir = out
			}
			logger := cliLogger(cmd.ErrOrStderr(), cfg)

			ctx := infrastructure.EnsureTraceID(cmd.Context())
			written, err := runExport(ctx, cfg.Paths(), formats, logger)
			if err != nil {
				return err
			}
			for _, p := range written {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&eo.out, "out", "", "output directory (default: the configured output directory)")
	cmd.Flags().StringSliceVar(&eo.formats, "format", exportFormats, "formats to write: csv, xlsx, png")
	return cmd
}

// runExport runs one report pass and writes the requested formats
// concurrently. It returns the written files sorted by path.
func runExport(ctx context.Context, paths *config.Paths, formats []string, logger *slog.Logger) ([]string, error) {
	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputs(paths); err != nil {
		return nil, err
	}
	if err := validator.ValidateOutputDirectory(paths.OutputDir); err != nil {
		return nil, err
	}

	svc := services.NewReportService(paths, nil, logger)
	rep, err := svc.Generate(ctx)
	if err != nil {
		return nil, err
	}

	frames := rep.Frames()
	results := make([][]string, len(formats))

	g, _ := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			var err error
			switch format {
			case formatCSV:
				results[i], err = exporter.NewCSVWriter(paths, logger).WriteFrames(frames)
			case formatXLSX:
				var path string
				path, err = exporter.NewExcelWriter(paths, logger).WriteWorkbook(WorkbookName, frames)
				results[i] = []string{path}
			case formatPNG:
				results[i], err = writeCharts(rep, paths.GetOutputPath(chartsDir), logger)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", format, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var written []string
	for _, r := range results {
		written = append(written, r...)
	}
	sort.Strings(written)

	logger.InfoContext(ctx, "export complete",
		slog.String("pass_id", rep.PassID),
		slog.String("dir", paths.OutputDir),
		slog.Int("files", len(written)))
	return written, nil
}

func writeCharts(rep *report.Report, dir string, logger *slog.Logger) ([]string, error) {
	all := make([]report.Chart, 0, len(report.Charts))
	for _, name := range report.Charts {
		c, err := rep.Chart(name)
		if err != nil {
			return nil, err
		}
		all = append(all, c)
	}
	return charts.NewRenderer(logger).SaveAll(dir, all)
}
