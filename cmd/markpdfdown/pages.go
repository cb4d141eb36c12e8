package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pagesCmd = &cobra.Command{
	Use:   "pages INPUT",
	Short: "Print the page count of a document",
	Long: `Pages runs page discovery against a document and prints the count that a
conversion run would plan with. Image inputs (JPEG, PNG, BMP) always count
as one page.`,
	Args: cobra.ExactArgs(1),
	RunE: runPages,
}

func init() {
	pagesCmd.Flags().String("pages-backend", "", "page discovery backend: native or pdfinfo (default from config)")

	rootCmd.AddCommand(pagesCmd)
}

func runPages(cmd *cobra.Command, args []string) error {
	if backend, _ := cmd.Flags().GetString("pages-backend"); backend != "" {
		viper.Set("pages.backend", backend)
	}

	counter, err := buildCounter()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := counter.Count(ctx, args[0])
	if err != nil {
		cmd.SilenceUsage = true
		return err
	}
	fmt.Println(n)
	return nil
}
