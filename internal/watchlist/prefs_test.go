package watchlist

import (
	"context"
	"testing"

	"github.com/newthinker/signaldeck/internal/storage/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences_DarkModeDefault(t *testing.T) {
	p := NewPreferences(kv.NewMemory())

	on, err := p.DarkMode(context.Background())
	require.NoError(t, err)
	assert.False(t, on)
}

func TestPreferences_DarkModeInvalid(t *testing.T) {
	mem := kv.NewMemory()
	mem.Write(context.Background(), DarkModeKey, []byte(`"yes please"`))

	on, err := NewPreferences(mem).DarkMode(context.Background())
	require.NoError(t, err)
	assert.False(t, on)
}

func TestPreferences_Toggle(t *testing.T) {
	mem := kv.NewMemory()
	p := NewPreferences(mem)
	ctx := context.Background()

	on, err := p.ToggleDarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	data, _ := mem.Read(ctx, DarkModeKey)
	assert.Equal(t, "true", string(data))

	on, err = p.ToggleDarkMode(ctx)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestPreferences_Set(t *testing.T) {
	p := NewPreferences(kv.NewMemory())
	ctx := context.Background()

	require.NoError(t, p.SetDarkMode(ctx, true))
	on, _ := p.DarkMode(ctx)
	assert.True(t, on)
}
