package main

import (
	"context"
	"fmt"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/views"
	"github.com/spf13/cobra"
)

var (
	predictJSON   bool
	predictPoints int
)

var predictCmd = &cobra.Command{
	Use:   "predict SYMBOL",
	Short: "Fetch one prediction with chart indicators",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "print the raw record as JSON")
	predictCmd.Flags().IntVar(&predictPoints, "points", 10, "number of recent chart points to show")
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	sym, err := core.ParseSymbol(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Predictor.Timeout)
	defer cancel()

	rec, err := newPredictor(cfg).Fetch(ctx, sym)
	if err != nil {
		return fmt.Errorf("predicting %s: %w", sym, err)
	}

	if predictJSON {
		return printJSON(cmd.OutOrStdout(), rec)
	}
	printChart(cmd.OutOrStdout(), views.Chart(sym, rec, nil), predictPoints)
	return nil
}
