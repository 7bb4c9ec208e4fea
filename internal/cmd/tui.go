package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/pscan/internal/tui"
)

var tuiWatch bool

// NewTuiCommand creates the tui command: interactive terminal browser.
func NewTuiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the parameter space in the terminal",
		Long: `Opens an interactive terminal browser. Pick values per parameter and
the remaining panes narrow to what still matches; a complete selection
shows the resolved file path.

With --watch the tree is rescanned automatically when files change.`,
		RunE: runTui,
	}
	cmd.Flags().BoolVar(&tuiWatch, "watch", false, "Rescan automatically on filesystem changes")
	return cmd
}

func runTui(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	holder, err := newHolder(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	hist := openHistory(cfg, log)
	if hist != nil {
		defer hist.Close()
	}

	var debounce time.Duration
	if tuiWatch || cfg.Watch.Enabled {
		debounce = cfg.Watch.Debounce
	}
	return tui.Run(holder, hist, log, cfg.BasePath, debounce)
}
