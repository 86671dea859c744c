package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lakshay-nasa/city-scout"
)

var (
	publishID     string
	publishDryRun bool
)

var publishCmd = &cobra.Command{
	Use:   "publish [file]",
	Short: "Publish the metadata of one itinerary file",
	Long: `Reads a JSON, YAML or Markdown itinerary and pushes its properties, tags
and lineage, exactly as the listener does for a modified document.
The document id is the file name without extension unless --id is set.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd.Flags(), nil)

		doc, err := cityscout.ReadDocument(args[0])
		if err != nil {
			fatal("Error reading document", err)
		}
		if publishID != "" {
			doc.ID = publishID
		}

		pub, err := cityscout.NewPublisher(cfg,
			cityscout.WithLogger(slog.Default()),
			cityscout.WithDryRun(publishDryRun),
			cityscout.WithOutput(cmd.OutOrStdout()),
		)
		if err != nil {
			fatal("Error initializing publisher", err)
		}

		if err := pub.Publish(context.Background(), doc.ID, doc.Fields, doc.Fields.Exported()); err != nil {
			fatal("Error publishing document", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVar(&publishID, "id", "", "Document id (default: file name)")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Print proposals instead of sending them")
}
