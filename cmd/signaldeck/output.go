package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/views"
)

func symbolStrings(symbols []core.Symbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = s.String()
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSignals(w io.Writer, records []core.SignalRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tPRICE\tPREDICTED\tMOVE\tSIGNAL\tCONFIDENCE\tSTATUS")
	for _, r := range records {
		signal := string(r.Direction)
		if r.IsStrongSignal {
			signal += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Symbol,
			views.FormatPrice(r.CurrentPrice),
			views.FormatPrice(r.PredictedPrice),
			views.FormatPercent(r.MovePct),
			signal,
			views.FormatConfidence(r.Confidence),
			r.StatusMessage,
		)
	}
	tw.Flush()
}

func printFailures(w io.Writer, failures []*core.FetchError) {
	for _, f := range failures {
		fmt.Fprintf(w, "  %s: %s\n", f.Symbol, f.Kind())
	}
}

func printPortfolio(w io.Writer, view views.PortfolioView) {
	if view.EmptyState != "" {
		fmt.Fprintln(w, view.EmptyState)
		return
	}

	s := view.Summary
	fmt.Fprintf(w, "Symbols: %d  Buy: %d  Sell: %d  Strong: %d\n", s.Count, s.BuyCount, s.SellCount, s.StrongCount)
	fmt.Fprintf(w, "Avg confidence: %s  Avg move: %s\n",
		views.FormatConfidence(s.AvgConfidence), views.FormatPercent(s.AvgMovePct))

	section := func(title string, records []core.SignalRecord) {
		fmt.Fprintf(w, "\n%s\n", title)
		if len(records) == 0 {
			fmt.Fprintln(w, "  none")
			return
		}
		for _, r := range records {
			fmt.Fprintf(w, "  %-8s %-4s %8s  %s\n", r.Symbol, r.Direction,
				views.FormatPercent(r.MovePct), views.FormatConfidence(r.Confidence))
		}
	}
	section("Top gainers", view.Gainers)
	section("Top losers", view.Losers)
	section("Suggestions", view.Suggestions)

	if len(view.Failed) > 0 {
		fmt.Fprintf(w, "\nNo data for: %s\n", strings.Join(symbolStrings(view.Failed), ", "))
	}
}

func printChart(w io.Writer, view views.ChartView, last int) {
	if view.Error != "" {
		fmt.Fprintf(w, "error: %s\n", view.Error)
		if view.Stale {
			fmt.Fprintln(w, "showing last good data")
		}
	}
	if view.Record == nil {
		return
	}

	printSignals(w, []core.SignalRecord{*view.Record})
	fmt.Fprintf(w, "Predicted change: %s\n\n", views.FormatPrice(view.PriceDelta))

	points := view.Points
	if last > 0 && len(points) > last {
		points = points[len(points)-last:]
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCLOSE\tSMA20\tRSI14")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			p.Time.Format("2006-01-02 15:04"),
			views.FormatPrice(p.Close),
			optional(p.SMA, views.FormatPrice),
			optional(p.RSI, func(v float64) string { return fmt.Sprintf("%.1f", v) }),
		)
	}
	tw.Flush()
}

func optional(v *float64, format func(float64) string) string {
	if v == nil {
		return "-"
	}
	return format(*v)
}
