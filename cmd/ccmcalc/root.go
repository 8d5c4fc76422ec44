package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/gyeh/ccmcalc/internal/config"
	"github.com/gyeh/ccmcalc/internal/model"
)

var cfg config.Config

var debugLog bool

var rootCmd = &cobra.Command{
	Use:   "ccmcalc",
	Short: "Medicare revenue lookup and CCM financial projection",
	Long: "Looks up physician Medicare billing from the CMS Physician & Other Practitioners\n" +
		"dataset and projects Chronic Care Management (CCM) program revenue from it.",
}

func init() {
	// Local .env mirrors the deployment environment; absence is fine.
	_ = godotenv.Load()

	defaults := model.DefaultAssumptions()
	cfg.Assumptions = defaults

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.DatasetURL, "dataset-url", envOr("CMS_DATASET_URL", ""), "CMS dataset API URL (or set CMS_DATASET_URL; empty selects the public dataset)")
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string for snapshots (or set DATABASE_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.BoolVar(&debugLog, "debug", false, "Enable debug logging")
	pf.BoolVar(&cfg.ProfitMode, "profit", false, "Compute profit columns")
	pf.StringVar(&cfg.AssumptionsPath, "assumptions", "", "YAML file of assumption overrides (takes precedence over per-field flags)")

	pf.Float64Var(&cfg.Assumptions.TraditionalPercent, "traditional-pct", defaults.TraditionalPercent, "Traditional Medicare share of patients (%)")
	pf.Float64Var(&cfg.Assumptions.AdvantagePercent, "advantage-pct", defaults.AdvantagePercent, "Medicare Advantage share of patients (%)")
	pf.Float64Var(&cfg.Assumptions.EligiblePercent, "eligible-pct", defaults.EligiblePercent, "CCM-eligible share of estimated patients (%)")
	pf.Float64Var(&cfg.Assumptions.EnrolledPercent, "enrolled-pct", defaults.EnrolledPercent, "Expected enrollment share of eligible patients (%)")
	pf.Float64Var(&cfg.Assumptions.EventsPerYear, "events-per-year", defaults.EventsPerYear, "Billable CCM events per patient per year")
	pf.Float64Var(&cfg.Assumptions.RevenuePerEvent, "revenue-per-event", defaults.RevenuePerEvent, "Revenue per billable event (USD)")
	pf.Float64Var(&cfg.Assumptions.ProfitPercent, "profit-pct", defaults.ProfitPercent, "Profit margin on projected total (%)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
