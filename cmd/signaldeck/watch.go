package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/signaldeck/internal/dashboard"
	"github.com/newthinker/signaldeck/internal/scheduler"
	"github.com/newthinker/signaldeck/internal/views"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watchRoute string
	watchSort  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the refresh loop in the terminal",
	Long: `Activates one view (home, portfolio or chart/SYMBOL) and prints it every
time a refresh cycle completes, with the countdown to the next one.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchRoute, "route", "r", "home", "view to watch: home, portfolio or chart/SYMBOL")
	watchCmd.Flags().StringVar(&watchSort, "sort", "", "sort records by symbol, confidence, move or direction")
}

func runWatch(cmd *cobra.Command, args []string) error {
	route, err := dashboard.ParseRoute(watchRoute)
	if err != nil {
		return err
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := newApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dashboard.Navigate(route); err != nil {
		return err
	}
	log.Info("watching", zap.String("route", route.String()), zap.Duration("interval", cfg.Refresh.Interval))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	ticker := time.NewTicker(cfg.Refresh.CountdownTick)
	defer ticker.Stop()

	out := cmd.OutOrStdout()
	var shown time.Time
	for {
		select {
		case <-quit:
			fmt.Fprintln(out)
			return nil
		case <-ticker.C:
			st, ok := a.dashboard.RefreshState()
			if !ok {
				return nil
			}
			if !st.LastFetchedAt.IsZero() && st.LastFetchedAt != shown {
				shown = st.LastFetchedAt
				renderWatch(out, a.dashboard, route, st)
			}
			printCountdown(out, st)
		}
	}
}

func renderWatch(w io.Writer, d *dashboard.Dashboard, route dashboard.Route, st scheduler.RefreshState) {
	fmt.Fprintf(w, "\r\n== %s @ %s ==\n", route, st.LastFetchedAt.Format("15:04:05"))

	switch route.Kind {
	case dashboard.RouteChart:
		view, _ := d.ChartView()
		printChart(w, view, 10)
	case dashboard.RoutePortfolio:
		opts := d.PortfolioOptions()
		if key := views.ParseSortKey(watchSort); key != "" {
			opts.Sort = key
		}
		printPortfolio(w, d.Portfolio(opts))
	default:
		snap := d.Snapshot()
		printSignals(w, d.Signals(views.ParseSortKey(watchSort), views.Filter{}))
		if len(snap.Failures) > 0 {
			fmt.Fprintln(w, "failed:")
			printFailures(w, snap.Failures)
		}
	}
}

func printCountdown(w io.Writer, st scheduler.RefreshState) {
	if st.InFlight {
		fmt.Fprint(w, "\rrefreshing...          ")
		return
	}
	fmt.Fprintf(w, "\rnext refresh in %s   ", time.Duration(st.CountdownSeconds)*time.Second)
}
