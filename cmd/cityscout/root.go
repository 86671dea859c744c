package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lakshay-nasa/city-scout"
	"github.com/lakshay-nasa/city-scout/internal/platform"
)

var (
	verbose    bool
	logFormat  string
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cityscout",
	Short: "Sync City Scout itineraries into a DataHub metadata catalog",
	Long: `cityscout listens to the itineraries collection and pushes, for every
added or modified document, its properties, tags and lineage to DataHub.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(os.Stderr, verbose, logFormat))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text|json)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: cityscout.yaml, searched upwards)")
	rootCmd.Version = cityscout.Version
}

func newLogger(w io.Writer, verbose bool, format string) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadConfig resolves the configuration, letting changed flags override
// the file and the environment. bindings maps config keys to flag names.
func loadConfig(flags *pflag.FlagSet, bindings map[string]string) platform.Config {
	v, err := platform.NewViper(configFile)
	if err != nil {
		fatal("Error loading config", err)
	}
	bindFlags(v, flags, bindings)

	cfg, err := platform.FromViper(v)
	if err != nil {
		fatal("Invalid config", err)
	}
	if cfg.File != "" {
		slog.Debug("config loaded", "file", cfg.File)
	}
	return cfg
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) {
	for key, name := range bindings {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}
