package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/ccmcalc/internal/cms"
	"github.com/gyeh/ccmcalc/internal/exitcode"
	"github.com/gyeh/ccmcalc/internal/funnel"
	"github.com/gyeh/ccmcalc/internal/logging"
)

var (
	lookupTerm  string
	lookupByNPI bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up one physician and project CCM revenue",
	RunE:  runLookup,
}

func init() {
	f := lookupCmd.Flags()
	f.StringVar(&lookupTerm, "term", "", "Physician name or NPI (required)")
	f.BoolVar(&lookupByNPI, "npi", false, "Treat the term as a 10-digit NPI")
	f.StringVar(&cfg.State, "state", "", "Two-letter state filter for name search")
	_ = lookupCmd.MarkFlagRequired("term")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, debugLog)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.LoadAssumptions(); err != nil {
		log.Error().Err(err).Msg("loading assumptions failed")
		os.Exit(exitcode.ValidationError)
	}

	searchType := cms.SearchByName
	if lookupByNPI {
		searchType = cms.SearchByNPI
	}

	client := cms.NewClient(cfg.DatasetURL, log)
	rec, err := client.LookupOne(ctx, lookupTerm, searchType, cfg.State)
	if errors.Is(err, cms.ErrNotFound) {
		fmt.Printf("No Medicare data found for %s. The physician may not bill traditional Medicare.\n", lookupTerm)
		os.Exit(exitcode.LookupError)
	}
	if err != nil {
		log.Error().Err(err).Msg("lookup failed")
		os.Exit(exitcode.LookupError)
	}

	p := funnel.Project(*rec, cfg.Assumptions, cfg.ProfitMode)

	fmt.Printf("%s (NPI %s, %s)\n", p.Name, p.NPI, p.State)
	fmt.Printf("  Traditional Medicare patients: %d\n", p.TraditionalPatients)
	fmt.Printf("  Estimated total patients:      %d\n", p.EstimatedPatients)
	fmt.Printf("  Projected CCM enrollment:      %d\n", p.EnrolledPatients)
	fmt.Printf("  Current Medicare allowed:      $%.2f\n", p.CurrentAllowed)
	fmt.Printf("  Projected CCM revenue:         $%.2f\n", p.CCMRevenue)
	fmt.Printf("  Projected total:               $%.2f\n", p.ProjectedTotal)
	fmt.Printf("  Change:                        $%.2f\n", p.Change)
	if p.PercentIncrease != nil {
		fmt.Printf("  Percent increase:              %s%%\n", funnel.FormatPercent(p.PercentIncrease))
	}
	if p.Profit != nil {
		fmt.Printf("  Projected profit:              $%.2f\n", *p.Profit)
	}
	return nil
}
