package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/ccmcalc/internal/model"
)

// Config holds all runtime configuration for a ccmcalc run.
type Config struct {
	DatasetURL      string
	DSN             string
	State           string
	LogFormat       string // "text" or "json"
	ProfitMode      bool
	AssumptionsPath string
	Assumptions     model.AssumptionSet

	// Bulk inputs and export targets for the project command.
	Names       string
	NamesFile   string
	NPIsFile    string
	CSVPath     string
	ParquetPath string
}

// LoadAssumptions merges a YAML assumptions file into the current set. Only
// fields named in the file are overridden. No-op when no path is configured.
func (c *Config) LoadAssumptions() error {
	if c.AssumptionsPath == "" {
		return nil
	}
	data, err := os.ReadFile(c.AssumptionsPath)
	if err != nil {
		return fmt.Errorf("read assumptions file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c.Assumptions); err != nil {
		return fmt.Errorf("parse assumptions file: %w", err)
	}
	return nil
}

// Validate checks fields every command needs.
func (c *Config) Validate() error {
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("--log-format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// ValidateWithDSN additionally requires a database connection string.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}

// ValidateBulkInput requires exactly one bulk input source.
func (c *Config) ValidateBulkInput() error {
	sources := 0
	for _, s := range []string{c.Names, c.NamesFile, c.NPIsFile} {
		if s != "" {
			sources++
		}
	}
	if sources == 0 {
		return fmt.Errorf("one of --names, --names-file or --npis-file is required")
	}
	if sources > 1 {
		return fmt.Errorf("--names, --names-file and --npis-file are mutually exclusive")
	}
	return nil
}
