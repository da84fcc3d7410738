package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/watchlist"
	"github.com/spf13/cobra"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage the persisted watchlist",
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched symbols",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatchlist(cmd, func(ctx context.Context, s *watchlist.Store) ([]core.Symbol, error) {
			return s.Symbols(), nil
		})
	},
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add SYMBOL...",
	Short: "Add symbols to the watchlist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatchlist(cmd, eachSymbol(args, (*watchlist.Store).Add))
	},
}

var watchlistRemoveCmd = &cobra.Command{
	Use:     "remove SYMBOL...",
	Aliases: []string{"rm"},
	Short:   "Remove symbols from the watchlist",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatchlist(cmd, eachSymbol(args, (*watchlist.Store).Remove))
	},
}

var watchlistToggleCmd = &cobra.Command{
	Use:   "toggle SYMBOL...",
	Short: "Add absent symbols and remove present ones",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatchlist(cmd, eachSymbol(args, (*watchlist.Store).Toggle))
	},
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
	watchlistCmd.AddCommand(watchlistListCmd)
	watchlistCmd.AddCommand(watchlistAddCmd)
	watchlistCmd.AddCommand(watchlistRemoveCmd)
	watchlistCmd.AddCommand(watchlistToggleCmd)
}

type storeOp func(s *watchlist.Store, ctx context.Context, raw string) ([]core.Symbol, error)

// eachSymbol applies op to every argument in order, stopping at the first
// failure.
func eachSymbol(args []string, op storeOp) func(context.Context, *watchlist.Store) ([]core.Symbol, error) {
	return func(ctx context.Context, s *watchlist.Store) ([]core.Symbol, error) {
		symbols := s.Symbols()
		for _, raw := range args {
			var err error
			if symbols, err = op(s, ctx, raw); err != nil {
				return symbols, fmt.Errorf("%q: %w", raw, err)
			}
		}
		return symbols, nil
	}
}

// withWatchlist opens the store, runs fn and prints the resulting list.
func withWatchlist(cmd *cobra.Command, fn func(context.Context, *watchlist.Store) ([]core.Symbol, error)) error {
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

	symbols, err := fn(ctx, store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(symbols) == 0 {
		fmt.Fprintln(out, "(empty)")
		return nil
	}
	fmt.Fprintln(out, strings.Join(symbolStrings(symbols), "\n"))
	return nil
}
