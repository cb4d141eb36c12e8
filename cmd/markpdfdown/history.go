// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clearclown/markpdfdown/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent conversion runs",
	Long: `History lists recent runs from the local ledger: when they ran, what they
converted, and how many jobs succeeded. Use --prune to trim old entries.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum runs to list")
	historyCmd.Flags().Int("prune", 0, "delete all but the newest N runs before listing")

	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Store, error) {
	path := viper.GetString("history.path")
	if path == "" {
		p, err := history.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return history.Open(path)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if keep, _ := cmd.Flags().GetInt("prune"); keep > 0 {
		deleted, err := store.Prune(context.Background(), keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Pruned %d run(s)\n", deleted)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-30s  %5s  %4s  %4s  %4s  %9s  %8s\n",
		"Started", "Input", "Pages", "Jobs", "OK", "Fail", "Size", "Time")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 98))

	for _, r := range runs {
		input := r.Input
		if len(input) > 30 {
			input = "..." + input[len(input)-27:]
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-30s  %5d  %4d  %4d  %4d  %9s  %8s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			input, r.TotalPages, r.TotalJobs, r.Succeeded, r.Failed,
			humanize.Bytes(uint64(r.OutputBytes)),
			r.Duration.Round(time.Second),
		)
	}

	fmt.Fprintf(os.Stdout, "\n%d run(s)\n", len(runs))
	return nil
}
