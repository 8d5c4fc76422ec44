package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/ccmcalc/internal/api"
	"github.com/gyeh/ccmcalc/internal/cms"
	"github.com/gyeh/ccmcalc/internal/exitcode"
	"github.com/gyeh/ccmcalc/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the lookup and projection HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, debugLog)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	client := cms.NewClient(cfg.DatasetURL, log)
	router := api.NewRouter(client, log)

	log.Info().Str("addr", serveAddr).Msg("serving HTTP API")
	return router.Run(serveAddr)
}
