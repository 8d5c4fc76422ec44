package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/ccmcalc/internal/db"
	"github.com/gyeh/ccmcalc/internal/exitcode"
	"github.com/gyeh/ccmcalc/internal/logging"
	"github.com/gyeh/ccmcalc/internal/snapshot"
	"github.com/gyeh/ccmcalc/internal/store"
)

var snapshotName string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save, list, load and delete named projection snapshots",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Resolve physicians and save the projection under a name",
	RunE:  runSnapshotSave,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots, newest first",
	RunE:  runSnapshotList,
}

var snapshotLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a snapshot and print its projection",
	RunE:  runSnapshotLoad,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a snapshot by name",
	RunE:  runSnapshotDelete,
}

func init() {
	addBulkInputFlags(snapshotSaveCmd.Flags())
	snapshotSaveCmd.Flags().StringVar(&snapshotName, "name", "", "Snapshot name (required)")
	_ = snapshotSaveCmd.MarkFlagRequired("name")

	snapshotLoadCmd.Flags().StringVar(&snapshotName, "name", "", "Snapshot name (required)")
	snapshotLoadCmd.Flags().StringVar(&cfg.CSVPath, "csv", "", "Also write the loaded projection to a CSV file")
	_ = snapshotLoadCmd.MarkFlagRequired("name")

	snapshotDeleteCmd.Flags().StringVar(&snapshotName, "name", "", "Snapshot name (required)")
	_ = snapshotDeleteCmd.MarkFlagRequired("name")

	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotListCmd, snapshotLoadCmd, snapshotDeleteCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// connect validates the DSN and opens a pool. Exits on failure; snapshot
// subcommands cannot proceed without a database.
func connect(ctx context.Context, log zerolog.Logger) *pgxpool.Pool {
	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	return pool
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, debugLog)
	ctx := context.Background()

	pool := connect(ctx, log)
	defer pool.Close()

	mdl, notFound, err := buildModel(ctx, log)
	if err != nil {
		log.Error().Err(err).Msg("building projection model failed")
		os.Exit(exitcode.LookupError)
	}

	snap := mdl.Snapshot(snapshotName)
	if err := snapshot.NewStore(pool).Save(ctx, snap); err != nil {
		log.Error().Err(err).Msg("saving snapshot failed")
		os.Exit(exitcode.DBConnError)
	}

	fmt.Printf("Saved snapshot %q: %d physicians (id %s)\n", snap.Name, len(snap.Records), snap.ID)
	if len(notFound) > 0 {
		fmt.Printf("Not found: %d NPIs\n", len(notFound))
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, debugLog)
	ctx := context.Background()

	pool := connect(ctx, log)
	defer pool.Close()

	infos, err := snapshot.NewStore(pool).List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("listing snapshots failed")
		os.Exit(exitcode.DBConnError)
	}
	if len(infos) == 0 {
		fmt.Println("No snapshots saved.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %-30s  %3d physicians  profit=%v\n",
			info.CreatedAt.Format("2006-01-02 15:04"), info.Name, info.RecordCount, info.ProfitMode)
	}
	return nil
}

func runSnapshotLoad(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, debugLog)
	ctx := context.Background()

	pool := connect(ctx, log)
	defer pool.Close()

	snap, err := snapshot.NewStore(pool).Load(ctx, snapshotName)
	if errors.Is(err, snapshot.ErrNotFound) {
		fmt.Printf("No snapshot named %q.\n", snapshotName)
		os.Exit(exitcode.ValidationError)
	}
	if err != nil {
		log.Error().Err(err).Msg("loading snapshot failed")
		os.Exit(exitcode.DBConnError)
	}

	mdl := store.New(snap.Assumptions, snap.ProfitMode)
	mdl.Restore(*snap)

	fmt.Printf("Snapshot %q, saved %s\n\n", snap.Name, snap.CreatedAt.Format("2006-01-02 15:04"))
	printModel(mdl)

	if cfg.CSVPath != "" {
		if err := writeCSVFile(cfg.CSVPath, mdl); err != nil {
			log.Error().Err(err).Str("path", cfg.CSVPath).Msg("CSV export failed")
			os.Exit(exitcode.ExportError)
		}
		log.Info().Str("path", cfg.CSVPath).Msg("CSV written")
	}
	return nil
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, debugLog)
	ctx := context.Background()

	pool := connect(ctx, log)
	defer pool.Close()

	err := snapshot.NewStore(pool).Delete(ctx, snapshotName)
	if errors.Is(err, snapshot.ErrNotFound) {
		fmt.Printf("No snapshot named %q.\n", snapshotName)
		os.Exit(exitcode.ValidationError)
	}
	if err != nil {
		log.Error().Err(err).Msg("deleting snapshot failed")
		os.Exit(exitcode.DBConnError)
	}
	fmt.Printf("Deleted snapshot %q.\n", snapshotName)
	return nil
}
