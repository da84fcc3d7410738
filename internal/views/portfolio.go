package views

import (
	"sort"

	"github.com/newthinker/signaldeck/internal/core"
)

// Empty-state messages for the portfolio view.
const (
	EmptyNoSymbols = "Your watchlist is empty. Add a symbol to start tracking signals."
	EmptyAllFailed = "No signal data is available right now. The prediction service did not answer for any symbol."
)

// PortfolioOptions tunes the derived lists of the portfolio view.
type PortfolioOptions struct {
	Sort                SortKey
	Filter              Filter
	TopMoversLimit      int
	SuggestionThreshold float64
	SuggestionLimit     int
}

// DefaultPortfolioOptions returns the reference limits and threshold.
func DefaultPortfolioOptions() PortfolioOptions {
	return PortfolioOptions{
		TopMoversLimit:      DefaultTopMoversLimit,
		SuggestionThreshold: DefaultSuggestionThreshold,
		SuggestionLimit:     DefaultSuggestionLimit,
	}
}

// PortfolioView is everything the portfolio page renders.
type PortfolioView struct {
	Records     []core.SignalRecord `json:"records"`
	Summary     Summary             `json:"summary"`
	Gainers     []core.SignalRecord `json:"gainers"`
	Losers      []core.SignalRecord `json:"losers"`
	Suggestions []core.SignalRecord `json:"suggestions"`
	Failed      []core.Symbol       `json:"failed"`
	Stale       []core.Symbol       `json:"stale"`
	EmptyState  string              `json:"empty_state,omitempty"`
}

// Portfolio builds the portfolio view. A symbol that failed in the latest
// refresh is left out of the summary, movers and suggestions; its last good
// record, if any, is still listed in Records and reported in Stale. An
// empty-state message is set when nothing was requested or when every
// requested symbol failed.
func Portfolio(records []core.SignalRecord, requested int, failures []*core.FetchError, opts PortfolioOptions) PortfolioView {
	failed := make([]core.Symbol, 0, len(failures))
	failedSet := make(map[core.Symbol]struct{}, len(failures))
	for _, f := range failures {
		failed = append(failed, f.Symbol)
		failedSet[f.Symbol] = struct{}{}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })

	visible := opts.Filter.Apply(records)
	fresh := make([]core.SignalRecord, 0, len(visible))
	stale := []core.Symbol{}
	for _, r := range visible {
		if _, ok := failedSet[r.Symbol]; ok {
			stale = append(stale, r.Symbol)
			continue
		}
		fresh = append(fresh, r)
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i] < stale[j] })

	view := PortfolioView{
		Records:     SortBy(visible, opts.Sort),
		Summary:     Aggregate(fresh),
		Gainers:     TopMovers(fresh, Gainers, opts.TopMoversLimit),
		Losers:      TopMovers(fresh, Losers, opts.TopMoversLimit),
		Suggestions: Suggestions(fresh, opts.SuggestionThreshold, opts.SuggestionLimit),
		Failed:      failed,
		Stale:       stale,
	}

	switch {
	case requested == 0 && len(records) == 0:
		view.EmptyState = EmptyNoSymbols
	case requested > 0 && len(failures) >= requested:
		view.EmptyState = EmptyAllFailed
	}
	return view
}
