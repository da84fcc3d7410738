package main

import (
	"fmt"

	"github.com/newthinker/signaldeck/internal/loader"
	"github.com/newthinker/signaldeck/internal/logger"
	"github.com/newthinker/signaldeck/internal/views"
	"github.com/spf13/cobra"
)

var (
	portfolioJSON bool
	portfolioSort string
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Fetch the watchlist once and print the portfolio summary",
	RunE:  runPortfolio,
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.Flags().BoolVar(&portfolioJSON, "json", false, "print the view as JSON")
	portfolioCmd.Flags().StringVar(&portfolioSort, "sort", "", "sort records by symbol, confidence, move or direction")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	storage, store, err := openWatchlist(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage(storage)

	symbols := store.Symbols()
	batch := loader.New(newPredictor(cfg), logger.Named(log, "loader")).LoadAll(ctx, symbols)

	opts := portfolioOptions(cfg)
	if key := views.ParseSortKey(portfolioSort); key != "" {
		opts.Sort = key
	}
	view := views.Portfolio(batch.Signals.Records(), batch.Requested, batch.Failures, opts)

	out := cmd.OutOrStdout()
	if portfolioJSON {
		return printJSON(out, view)
	}
	printSignals(out, view.Records)
	fmt.Fprintln(out)
	printPortfolio(out, view)
	return nil
}
