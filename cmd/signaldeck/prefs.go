package main

import (
	"fmt"
	"strings"

	"github.com/newthinker/signaldeck/internal/watchlist"
	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change UI preferences",
}

var darkModeCmd = &cobra.Command{
	Use:       "dark-mode [on|off|toggle]",
	Short:     "Show or set dark mode",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE:      runDarkMode,
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(darkModeCmd)
}

func runDarkMode(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	storage, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage(storage)
	prefs := watchlist.NewPreferences(storage)

	var on bool
	action := ""
	if len(args) == 1 {
		action = strings.ToLower(args[0])
	}

	switch action {
	case "":
		on, err = prefs.DarkMode(ctx)
	case "toggle":
		on, err = prefs.ToggleDarkMode(ctx)
	default:
		on, err = parseOnOff(action)
		if err == nil {
			err = prefs.SetDarkMode(ctx, on)
		}
	}
	if err != nil {
		return err
	}

	state := "off"
	if on {
		state = "on"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "dark mode: %s\n", state)
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on, off or toggle, got %q", s)
}
