package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/storage/kv"
)

// DarkModeKey is the storage key of the theme preference.
const DarkModeKey = "darkMode"

// Preferences persists UI settings that live beside the watchlist.
type Preferences struct {
	storage kv.Storage
	mu      sync.Mutex
}

// NewPreferences creates a preferences store over the given backend.
func NewPreferences(storage kv.Storage) *Preferences {
	return &Preferences{storage: storage}
}

// DarkMode returns the persisted theme flag; absent or invalid data is false.
func (p *Preferences) DarkMode(ctx context.Context) (bool, error) {
	data, err := p.storage.Read(ctx, DarkModeKey)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading dark mode: %w", err)
	}
	var on bool
	if err := json.Unmarshal(data, &on); err != nil {
		return false, nil
	}
	return on, nil
}

// SetDarkMode persists the theme flag.
func (p *Preferences) SetDarkMode(ctx context.Context, on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.write(ctx, on)
}

// ToggleDarkMode flips the theme flag and returns the new value.
func (p *Preferences) ToggleDarkMode(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	on, err := p.DarkMode(ctx)
	if err != nil {
		return false, err
	}
	if err := p.write(ctx, !on); err != nil {
		return on, err
	}
	return !on, nil
}

func (p *Preferences) write(ctx context.Context, on bool) error {
	data, _ := json.Marshal(on)
	if err := p.storage.Write(ctx, DarkModeKey, data); err != nil {
		return core.WrapError(core.ErrPersistFailed, err)
	}
	return nil
}
