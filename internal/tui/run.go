package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harrison/pscan/internal/history"
	"github.com/harrison/pscan/internal/logger"
	"github.com/harrison/pscan/internal/snapshot"
	"github.com/harrison/pscan/internal/watch"
)

// Run starts the TUI and blocks until the user quits. When watchDebounce
// is non-zero a filesystem watcher triggers rescans while the UI is up.
func Run(holder *snapshot.Holder, hist *history.Store, log *logger.Console, basePath string, watchDebounce time.Duration) error {
	p := tea.NewProgram(NewModel(holder, hist, log), tea.WithAltScreen())

	if watchDebounce > 0 {
		w, err := watch.New(basePath, watchDebounce, func() {
			p.Send(RefreshMsg{})
		})
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer w.Close()

		go func() {
			for err := range w.Errors() {
				log.Warnf("watcher: %v", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
