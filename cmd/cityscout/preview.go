package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/lakshay-nasa/city-scout"
	"github.com/lakshay-nasa/city-scout/pkg/core"
)

var previewID string

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Show the proposals an itinerary file would produce",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd.Flags(), nil)

		doc, err := cityscout.ReadDocument(args[0])
		if err != nil {
			fatal("Error reading document", err)
		}
		if previewID != "" {
			doc.ID = previewID
		}

		pub := core.NewPublisher(nil, cfg.Catalog, nil)
		proposals := pub.BuildProposals(doc.ID, doc.Fields, doc.Fields.Exported())

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(proposals); err != nil {
			fatal("Error encoding JSON", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVar(&previewID, "id", "", "Document id (default: file name)")
}
