package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lakshay-nasa/city-scout"
	"github.com/lakshay-nasa/city-scout/pkg/core"
)

var watchDryRun bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Listen for itinerary changes and push metadata to the catalog",
	Long: `Registers the external Google Places source, then listens to the collection
until interrupted (Ctrl+C or SIGTERM). Removed documents are ignored.

With --source fs, a local directory stands in for Firestore: --dir is the
root and --collection a subdirectory of it.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd.Flags(), map[string]string{
			"source.type":       "source",
			"source.collection": "collection",
			"source.dir":        "dir",
			"source.pattern":    "pattern",
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := slog.Default()
		svc, err := cityscout.New(ctx, cfg,
			cityscout.WithLogger(logger),
			cityscout.WithDryRun(watchDryRun),
			cityscout.WithOutput(cmd.OutOrStdout()),
		)
		if err != nil {
			fatal("Error initializing service", err)
		}
		defer svc.Close()

		logger.Info("starting listener",
			"source", cfg.Source.Type,
			"collection", cfg.Source.Collection,
			"dry_run", watchDryRun,
		)

		runErr := svc.Run(ctx, cfg.Source.Collection)

		if state, ok := svc.State().(core.ServiceState); ok {
			logger.Info("listener stopped",
				"published", state.Listener.Published,
				"skipped", state.Listener.Skipped,
				"failed", state.Listener.Failed,
			)
		}
		if runErr != nil {
			svc.Close()
			fatal("Listener failed", runErr)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().String("source", "", "Change source (firestore|fs)")
	watchCmd.Flags().String("collection", "", "Collection to listen to")
	watchCmd.Flags().String("dir", "", "Root directory of the fs source")
	watchCmd.Flags().String("pattern", "", "Glob of files watched by the fs source")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "Print proposals instead of sending them")
}
