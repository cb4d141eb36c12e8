// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the markpdfdown CLI.
// Implements: prd001-planning, prd002-dispatch, prd003-merge,
//             prd004-reporting (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

// version is set at build time via ldflags.
var version = "dev"

// logger carries structured diagnostics for all subcommands. Progress and
// results go to stdout directly; the logger speaks only on --verbose runs.
var logger = zap.NewNop()

// rootCmd is the base command for the markpdfdown CLI.
var rootCmd = &cobra.Command{
	Use:   "markpdfdown",
	Short: "Convert large documents to Markdown with parallel page-range workers",
	Long: `markpdfdown splits a document into contiguous page ranges and runs one
conversion worker per range, bounding how many run at once. Parts are merged
in page order into a single Markdown artifact. A failed range never takes
down the run; it leaves a gap in the artifact to re-run later.

The worker is any container image or executable that reads the document on
stdin, takes optional "start end" page bounds as arguments, and writes
Markdown to stdout. Exit status 0 marks the range converted.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if !verbose {
			return nil
		}
		l, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./markpdfdown.yaml or ~/.config/markpdfdown/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "emit structured diagnostics on stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("markpdfdown")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "markpdfdown"))
		}
	}

	viper.SetEnvPrefix("MARKPDFDOWN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	// maxprocs.Set only fails if the GOMAXPROCS env var is invalid, in which
	// case the Go runtime default applies and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
