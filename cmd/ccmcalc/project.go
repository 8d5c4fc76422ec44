package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gyeh/ccmcalc/internal/cms"
	"github.com/gyeh/ccmcalc/internal/exitcode"
	"github.com/gyeh/ccmcalc/internal/export"
	"github.com/gyeh/ccmcalc/internal/funnel"
	"github.com/gyeh/ccmcalc/internal/logging"
	"github.com/gyeh/ccmcalc/internal/roster"
	"github.com/gyeh/ccmcalc/internal/store"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project CCM revenue for a list of physicians",
	RunE:  runProject,
}

func init() {
	f := projectCmd.Flags()
	addBulkInputFlags(f)
	f.StringVar(&cfg.CSVPath, "csv", "", "Write the projection table to a CSV file")
	f.StringVar(&cfg.ParquetPath, "parquet", "", "Write the projection rows to a Parquet file")
	rootCmd.AddCommand(projectCmd)
}

// addBulkInputFlags registers the shared physician input flags. Exactly one
// source must be given per run.
func addBulkInputFlags(f *pflag.FlagSet) {
	f.StringVar(&cfg.Names, "names", "", "Comma-separated physician names")
	f.StringVar(&cfg.NamesFile, "names-file", "", "Roster file of names (plain text or RTF)")
	f.StringVar(&cfg.NPIsFile, "npis-file", "", "File with one 10-digit NPI per line")
	f.StringVar(&cfg.State, "state", "", "Two-letter state filter for name searches")
}

func runProject(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, debugLog)
	ctx := context.Background()

	mdl, notFound, err := buildModel(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("building projection model failed")
		os.Exit(exitcode.LookupError)
	}

	printModel(mdl)

	if cfg.CSVPath != "" {
		if err := writeCSVFile(cfg.CSVPath, mdl); err != nil {
			log.Error().Err(err).Str("path", cfg.CSVPath).Msg("CSV export failed")
			os.Exit(exitcode.ExportError)
		}
		log.Info().Str("path", cfg.CSVPath).Msg("CSV written")
	}
	if cfg.ParquetPath != "" {
		if err := writeParquetFile(cfg.ParquetPath, mdl); err != nil {
			log.Error().Err(err).Str("path", cfg.ParquetPath).Msg("Parquet export failed")
			os.Exit(exitcode.ExportError)
		}
		log.Info().Str("path", cfg.ParquetPath).Msg("Parquet written")
	}

	if len(notFound) > 0 {
		fmt.Printf("\nNot found: %s\n", strings.Join(notFound, ", "))
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}

// buildModel validates the configured input source, resolves physicians
// against the dataset, and loads them into a projection model. The second
// return value lists NPIs that matched nothing (name inputs log and skip
// their misses instead).
func buildModel(ctx context.Context, log zerolog.Logger) (*store.Store, []string, error) {
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.ValidateBulkInput(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.LoadAssumptions(); err != nil {
		return nil, nil, err
	}

	client := cms.NewClient(cfg.DatasetURL, log)
	mdl := store.New(cfg.Assumptions, cfg.ProfitMode)

	var notFound []string

	switch {
	case cfg.Names != "":
		found, err := client.LookupBulkNames(ctx, strings.Split(cfg.Names, ","), cfg.State)
		if err != nil {
			return nil, nil, err
		}
		for _, rec := range found {
			mdl.Add(rec)
		}

	case cfg.NamesFile != "":
		content, err := os.ReadFile(cfg.NamesFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read names file: %w", err)
		}
		found, err := client.LookupBulkFile(ctx, string(content), cfg.State)
		if err != nil {
			return nil, nil, err
		}
		for _, rec := range found {
			mdl.Add(rec)
		}

	case cfg.NPIsFile != "":
		content, err := os.ReadFile(cfg.NPIsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read NPIs file: %w", err)
		}
		npis := roster.ParseNPIs(string(content))
		found, missing, err := client.LookupBulkNPIs(ctx, npis)
		if err != nil {
			return nil, nil, err
		}
		notFound = missing
		for _, rec := range found {
			mdl.Add(rec)
		}
	}

	if mdl.Len() == 0 {
		return nil, nil, fmt.Errorf("no physicians resolved from input")
	}
	return mdl, notFound, nil
}

// printModel renders the projection table and totals to stdout.
func printModel(mdl *store.Store) {
	records := mdl.Records()
	totals := mdl.Totals()
	profitMode := mdl.ProfitMode()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	header := "Name\tNPI\tTrad\tEst\tEnrolled\tCCM Revenue\tCurrent\tProjected\tChange\t%"
	if profitMode {
		header += "\tProfit"
	}
	fmt.Fprintln(tw, header)

	for i := range records {
		r := &records[i]
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%s",
			r.Name, r.NPI,
			r.TraditionalPatients, r.EstimatedPatients, r.EnrolledPatients,
			r.CCMRevenue, r.CurrentAllowed, r.ProjectedTotal, r.Change,
			funnel.FormatPercent(r.PercentIncrease))
		if profitMode {
			if r.Profit != nil {
				fmt.Fprintf(tw, "\t%.2f", *r.Profit)
			} else {
				fmt.Fprint(tw, "\t")
			}
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintf(tw, "Totals\t\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t",
		totals.TraditionalPatients, totals.EstimatedPatients, totals.EnrolledPatients,
		totals.CCMRevenue, totals.CurrentAllowed, totals.ProjectedTotal, totals.Change)
	if profitMode {
		fmt.Fprintf(tw, "\t%.2f", totals.Profit)
	}
	fmt.Fprintln(tw)
	tw.Flush()
}

func writeCSVFile(path string, mdl *store.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteCSV(f, mdl.Records(), mdl.Totals(), mdl.ProfitMode()); err != nil {
		return err
	}
	return f.Close()
}

func writeParquetFile(path string, mdl *store.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.WriteParquet(f, mdl.Records()); err != nil {
		return err
	}
	return f.Close()
}
