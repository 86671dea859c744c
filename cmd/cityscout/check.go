package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lakshay-nasa/city-scout/internal/platform"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the connection to the catalog server",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd.Flags(), nil)

		emitter, err := platform.NewDataHubEmitter(cfg, platform.WithLogger(slog.Default()))
		if err != nil {
			fatal("Error initializing emitter", err)
		}

		info, err := emitter.TestConnection(context.Background())
		if err != nil {
			fatal("Catalog unreachable", err)
		}

		version := "unknown"
		if versions, ok := info["versions"].(map[string]any); ok {
			if gms, ok := versions["acryldata/datahub"].(map[string]any); ok {
				if v, ok := gms["version"].(string); ok {
					version = v
				}
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "connected to %s (version %s)\n", emitter.Server(), version)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
