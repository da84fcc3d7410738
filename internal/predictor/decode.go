package predictor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
)

// Thresholds the service uses for a confirmed signal. They derive
// is_strong_signal when a response omits it.
const (
	StrongConfidence = 90.0
	StrongMovePct    = 0.30
)

// chartTimeLayouts lists the accepted chart timestamp formats, most common first.
var chartTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// number is a JSON value that must be a finite float. Numeric strings are
// accepted because some encoders quote large or special floats.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return errors.New("null number")
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		var err error
		if s, err = strconv.Unquote(s); err != nil {
			return err
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite number: %s", b)
	}
	*n = number(f)
	return nil
}

type wireRecord struct {
	Symbol         *string      `json:"symbol"`
	CurrentPrice   *number      `json:"current_price"`
	PredictedPrice *number      `json:"predicted_price"`
	Direction      *string      `json:"direction"`
	Confidence     *number      `json:"confidence"`
	MovePct        *number      `json:"move_pct"`
	IsStrongSignal *bool        `json:"is_strong_signal"`
	StatusMessage  *string      `json:"status_message"`
	LastUpdated    *string      `json:"last_updated"`
	ChartData      *[]wirePoint `json:"chart_data"`
}

// wirePoint accepts both the {"x","y":[o,h,l,c]} candlestick form and
// explicit {"time","open","high","low","close"} fields.
type wirePoint struct {
	X     *string  `json:"x"`
	Y     []number `json:"y"`
	Time  *string  `json:"time"`
	Open  *number  `json:"open"`
	High  *number  `json:"high"`
	Low   *number  `json:"low"`
	Close *number  `json:"close"`
}

// Decode parses and validates a prediction body. Any missing field,
// non-finite number or out-of-range value is an error.
func Decode(body []byte) (*core.SignalRecord, error) {
	var w wireRecord
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	var missing []string
	check := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check(w.Symbol != nil, "symbol")
	check(w.CurrentPrice != nil, "current_price")
	check(w.PredictedPrice != nil, "predicted_price")
	check(w.Direction != nil, "direction")
	check(w.Confidence != nil, "confidence")
	check(w.MovePct != nil, "move_pct")
	check(w.StatusMessage != nil, "status_message")
	check(w.LastUpdated != nil, "last_updated")
	check(w.ChartData != nil, "chart_data")
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}

	r := &core.SignalRecord{
		Symbol:         core.NormalizeSymbol(*w.Symbol),
		CurrentPrice:   float64(*w.CurrentPrice),
		PredictedPrice: float64(*w.PredictedPrice),
		Direction:      core.Direction(strings.ToUpper(strings.TrimSpace(*w.Direction))),
		Confidence:     float64(*w.Confidence),
		MovePct:        float64(*w.MovePct),
		StatusMessage:  *w.StatusMessage,
		LastUpdated:    *w.LastUpdated,
	}

	switch {
	case r.Symbol == "":
		return nil, errors.New("empty symbol")
	case r.CurrentPrice <= 0:
		return nil, fmt.Errorf("current_price must be positive, got %v", r.CurrentPrice)
	case r.PredictedPrice <= 0:
		return nil, fmt.Errorf("predicted_price must be positive, got %v", r.PredictedPrice)
	case !r.Direction.Valid():
		return nil, fmt.Errorf("unknown direction %q", *w.Direction)
	case r.Confidence < 0 || r.Confidence > 100:
		return nil, fmt.Errorf("confidence out of range: %v", r.Confidence)
	}

	if w.IsStrongSignal != nil {
		r.IsStrongSignal = *w.IsStrongSignal
	} else {
		r.IsStrongSignal = r.Confidence >= StrongConfidence && math.Abs(r.MovePct) >= StrongMovePct
	}

	points, err := decodeChart(*w.ChartData)
	if err != nil {
		return nil, err
	}
	r.ChartData = points

	return r, nil
}

func decodeChart(raw []wirePoint) ([]core.ChartPoint, error) {
	points := make([]core.ChartPoint, 0, len(raw))
	for i, p := range raw {
		pt, err := p.point()
		if err != nil {
			return nil, fmt.Errorf("chart_data[%d]: %w", i, err)
		}
		if i > 0 && pt.Time.Before(points[i-1].Time) {
			return nil, fmt.Errorf("chart_data[%d]: time goes backwards", i)
		}
		points = append(points, pt)
	}
	return points, nil
}

func (p wirePoint) point() (core.ChartPoint, error) {
	var (
		ts   string
		ohlc []float64
	)

	switch {
	case p.X != nil:
		ts = *p.X
		if len(p.Y) != 4 {
			return core.ChartPoint{}, fmt.Errorf("expected 4 OHLC values, got %d", len(p.Y))
		}
		ohlc = []float64{float64(p.Y[0]), float64(p.Y[1]), float64(p.Y[2]), float64(p.Y[3])}
	case p.Time != nil && p.Open != nil && p.High != nil && p.Low != nil && p.Close != nil:
		ts = *p.Time
		ohlc = []float64{float64(*p.Open), float64(*p.High), float64(*p.Low), float64(*p.Close)}
	default:
		return core.ChartPoint{}, errors.New("missing time or OHLC values")
	}

	t, err := parseChartTime(ts)
	if err != nil {
		return core.ChartPoint{}, err
	}

	return core.ChartPoint{Time: t, Open: ohlc[0], High: ohlc[1], Low: ohlc[2], Close: ohlc[3]}, nil
}

func parseChartTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range chartTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable time %q", s)
}
