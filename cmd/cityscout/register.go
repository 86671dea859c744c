package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lakshay-nasa/city-scout"
)

var registerCmd = &cobra.Command{
	Use:   "register-source",
	Short: "Register the external Google Places source in the catalog",
	Long:  `Upserts the dataset properties of the external source that lineage edges point to. watch does this on startup.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd.Flags(), nil)

		pub, err := cityscout.NewPublisher(cfg, cityscout.WithLogger(slog.Default()))
		if err != nil {
			fatal("Error initializing publisher", err)
		}
		if err := pub.RegisterSource(context.Background()); err != nil {
			fatal("Error registering source", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), pub.ExternalSourceURN())
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
}
