package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakshay-nasa/city-scout"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cityscout",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cityscout version %s\n", cityscout.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
