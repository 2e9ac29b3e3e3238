package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"astrasreport/internal/config"
	"astrasreport/internal/dataprocessing"
	"astrasreport/internal/exporter"
	"astrasreport/internal/infrastructure"
	"astrasreport/internal/services"
	"astrasreport/internal/validation"
	"astrasreport/pkg/contracts/domain"
)

type renderOptions struct {
	events   string
	clusters string
	orgs     []string
	months   []string
	outDir   string
	format   string
}

func renderCmd() *cobra.Command {
	return newRenderCmd(&renderOptions{})
}

// newRenderCmd binds the render flags to opts
func newRenderCmd(opts *renderOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the dashboard tables and write the exports",
		Long: `Run the reporting pipeline on an events export and a market structure workbook.

The total and both pivot tables are printed. export_data, pivot_table1 and,
when the fallback organization has events in the selection, pivot_table2 are
written to the output directory. Without --org or --month every observed
value is selected.`,
		Example: `  reportcli render --events export.xlsx --clusters structure.xlsx
  reportcli render --events export.xlsx --clusters structure.xlsx --month March --month April --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := infrastructure.InitializeLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer infrastructure.CloseLogFile()

			svc := services.NewReportService(cfg.Report, nil, nil, logger)
			ctx := infrastructure.EnsureTraceID(cmd.Context())
			return runRender(ctx, cmd.OutOrStdout(), svc, opts, opts.selection(cmd))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.events, "events", "", "sourcing events workbook (.xlsx)")
	flags.StringVar(&opts.clusters, "clusters", "", "market structure workbook (.xlsx)")
	flags.StringArrayVar(&opts.orgs, "org", nil, "organization group to include (repeatable)")
	flags.StringArrayVar(&opts.months, "month", nil, "month name to include (repeatable)")
	flags.StringVar(&opts.outDir, "out", ".", "directory the exports are written to")
	flags.StringVar(&opts.format, "format", string(exporter.FormatXLSX), "export format (xlsx, csv)")

	return cmd
}

// selection keeps a part unspecified unless its flag was given.
// Values are taken verbatim, so organization names may contain commas.
func (o *renderOptions) selection(cmd *cobra.Command) domain.Selection {
	var sel domain.Selection
	if cmd.Flags().Changed("org") {
		sel.Organizations = o.orgs
	}
	if cmd.Flags().Changed("month") {
		sel.Months = o.months
	}
	return sel
}

// loadConfig reads the --config file when given, otherwise the usual sources
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// stdout carries the tables
	cfg.Logging.Output = "stderr"
	cfg.Logging.Level = logLevel
	return cfg, nil
}

func runRender(ctx context.Context, out io.Writer, svc *services.ReportService, opts *renderOptions, sel domain.Selection) error {
	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	v := validation.NewFileValidator(nil)
	events, clusters, err := readInputs(v, opts.events, opts.clusters)
	if err != nil {
		return err
	}

	d, err := svc.Render(ctx, events, clusters, sel)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s\n\nNumber of Events: %d\n\n", domain.DashboardTitle, d.TotalEvents)

	if err := printTable(out, "Pivot Table: Month vs Organization", d.MonthOrgPivot); err != nil {
		return err
	}
	if d.MonthClusterPivot != nil {
		if err := printTable(out, "Pivot Table: Month vs Groups (GPN only)", *d.MonthClusterPivot); err != nil {
			return err
		}
	}

	if err := v.ValidateOutputDirectory(opts.outDir); err != nil {
		return err
	}

	views := []domain.ExportView{domain.ExportViewEvents, domain.ExportViewMonthOrg, domain.ExportViewMonthCluster}
	for _, view := range views {
		dl, err := svc.ExportTable(ctx, d, view, format)
		if errors.Is(err, services.ErrViewEmpty) {
			slog.DebugContext(ctx, "Skipping empty export", slog.String("view", string(view)))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", view, err)
		}

		path := filepath.Join(opts.outDir, dl.FileName)
		if err := os.WriteFile(path, dl.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
	}

	return nil
}

// readInputs reads both workbooks, reporting every missing one at once
func readInputs(v *validation.FileValidator, eventsPath, clustersPath string) ([]byte, []byte, error) {
	var missing []string
	if eventsPath == "" {
		missing = append(missing, dataprocessing.EventsFile)
	}
	if clustersPath == "" {
		missing = append(missing, dataprocessing.ClustersFile)
	}
	if len(missing) > 0 {
		return nil, nil, &dataprocessing.MissingInputError{Missing: missing}
	}
	for _, path := range []string{eventsPath, clustersPath} {
		if err := v.ValidateWorkbookFile(path); err != nil {
			return nil, nil, err
		}
	}

	events, err := os.ReadFile(eventsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read events workbook: %w", err)
	}
	clusters, err := os.ReadFile(clustersPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read clusters workbook: %w", err)
	}
	return events, clusters, nil
}

func printTable(out io.Writer, title string, t domain.Table) error {
	fmt.Fprintln(out, title)

	table := tablewriter.NewWriter(out)
	if err := table.Append(t.Columns); err != nil {
		return fmt.Errorf("failed to append header row: %w", err)
	}

	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = exporter.CellText(v)
		}
		if err := table.Append(cells); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}
