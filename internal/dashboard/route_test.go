package dashboard

import (
	"errors"
	"testing"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		in   string
		want Route
	}{
		{"", Home()},
		{"/", Home()},
		{"home", Home()},
		{"/portfolio", Portfolio()},
		{"PORTFOLIO/", Portfolio()},
		{"chart/aapl", Chart("AAPL")},
		{"/chart/BRK.B", Chart("BRK.B")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRoute(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRoute_Errors(t *testing.T) {
	_, err := ParseRoute("settings")
	assert.True(t, errors.Is(err, ErrUnknownRoute))

	_, err = ParseRoute("chart/")
	assert.True(t, errors.Is(err, core.ErrInvalidSymbol))

	_, err = ParseRoute("chart/a/b")
	assert.True(t, errors.Is(err, core.ErrInvalidSymbol))
}

func TestRoute_String(t *testing.T) {
	assert.Equal(t, "home", Home().String())
	assert.Equal(t, "portfolio", Portfolio().String())
	assert.Equal(t, "chart/MSFT", Chart("MSFT").String())
	assert.True(t, Portfolio().IsBatch())
	assert.False(t, Chart("MSFT").IsBatch())
}
