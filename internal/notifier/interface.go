package notifier

import (
	"context"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
)

// Config holds notifier configuration
type Config struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// Notifier delivers strong-signal alerts to an external channel
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Init initializes the notifier with configuration
	Init(cfg Config) error

	// Send sends a single signal alert
	Send(ctx context.Context, signal core.SignalRecord) error

	// SendBatch sends multiple signal alerts at once
	SendBatch(ctx context.Context, signals []core.SignalRecord) error
}

// Event is the wire payload shared by notifiers.
type Event struct {
	Type           string         `json:"type"`
	Symbol         core.Symbol    `json:"symbol"`
	Direction      core.Direction `json:"direction"`
	Confidence     float64        `json:"confidence"`
	MovePct        float64        `json:"move_pct"`
	CurrentPrice   float64        `json:"current_price"`
	PredictedPrice float64        `json:"predicted_price"`
	Strong         bool           `json:"is_strong_signal"`
	StatusMessage  string         `json:"status_message,omitempty"`
	LastUpdated    string         `json:"last_updated,omitempty"`
	RoutedAt       string         `json:"routed_at"`
}

// NewEvent converts a signal record to its alert payload.
func NewEvent(r core.SignalRecord, at time.Time) Event {
	return Event{
		Type:           "signal",
		Symbol:         r.Symbol,
		Direction:      r.Direction,
		Confidence:     r.Confidence,
		MovePct:        r.MovePct,
		CurrentPrice:   r.CurrentPrice,
		PredictedPrice: r.PredictedPrice,
		Strong:         r.IsStrongSignal,
		StatusMessage:  r.StatusMessage,
		LastUpdated:    r.LastUpdated,
		RoutedAt:       at.UTC().Format(time.RFC3339),
	}
}
