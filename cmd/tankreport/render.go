package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"tankreport/internal/infrastructure"
	"tankreport/internal/report"
	"tankreport/internal/services"
	"tankreport/internal/validation"
)

type renderOptions struct {
	section   string
	districts []string
	none      bool
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	ro := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the report tables",
		Long: `Runs one report pass and prints its tables. --district narrows the DSD
table to the given districts; without it every district is shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := cliLogger(cmd.ErrOrStderr(), cfg)

			paths := cfg.Paths()
			if err := validation.NewFileValidator(logger).ValidateInputs(paths); err != nil {
				return err
			}

			ctx := infrastructure.EnsureTraceID(cmd.Context())
			svc := services.NewReportService(paths, nil, logger)
			rep, err := svc.Generate(ctx)
			if err != nil {
				return err
			}

			var selection []string
			switch {
			case ro.none:
				selection = []string{}
			case cmd.Flags().Changed("district"):
				selection = ro.districts
			}

			frames, err := selectFrames(rep, ro.section, selection)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, f := range frames {
				if i > 0 {
					fmt.Fprintln(out)
				}
				writeTable(out, f)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ro.section, "section", "", "print only this table")
	cmd.Flags().StringArrayVar(&ro.districts, "district", nil, "district of the DSD table (repeatable)")
	cmd.Flags().BoolVar(&ro.none, "no-districts", false, "select no district")
	cmd.MarkFlagsMutuallyExclusive("district", "no-districts")
	return cmd
}

// selectFrames picks the tables to print and applies the district
// selection to the DSD table. A nil selection keeps every district.
func selectFrames(rep *report.Report, section string, selection []string) ([]report.Frame, error) {
	if len(selection) > services.MaxDistrictSelection {
		return nil, services.ErrTooManyDistrict
	}

	frames := rep.Frames()
	if selection != nil {
		for i, f := range frames {
			if f.Name == report.SectionDSDMask {
				frames[i] = report.MaskFrame(rep.FilterDSD(selection))
			}
		}
	}

	if section == "" {
		return frames, nil
	}
	i := slices.IndexFunc(frames, func(f report.Frame) bool { return f.Name == section })
	if i < 0 {
		names := make([]string, len(frames))
		for j, f := range frames {
			names[j] = f.Name
		}
		return nil, fmt.Errorf("%w: %q has no table view (tables: %v)", report.ErrUnknownSection, section, names)
	}
	return frames[i : i+1], nil
}

func writeTable(out io.Writer, f report.Frame) {
	fmt.Fprintf(out, "%s\n", f.Title)

	table := tablewriter.NewWriter(out)
	table.SetHeader(f.Columns)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(f.Strings())
	table.SetFooter(footer(f))
	table.Render()
}

// footer counts the rows under the first column
func footer(f report.Frame) []string {
	row := make([]string, len(f.Columns))
	if len(row) > 0 {
		row[0] = fmt.Sprintf("%d rows", f.Len())
	}
	return row
}
