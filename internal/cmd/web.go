package cmd

import (
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/pscan/internal/watch"
	"github.com/harrison/pscan/internal/web"
)

var (
	webPort      int
	webWatch     bool
	webNoBrowser bool
)

// NewWebCommand creates the web command: local browser UI.
func NewWebCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the browser UI on localhost",
		Long: `Starts a local web server with a point-and-click browser for the
parameter space and opens it in the default browser. The server binds
to 127.0.0.1 only.

With --watch the tree is rescanned automatically when files change;
the UI also has a manual rescan button.`,
		RunE: runWeb,
	}
	cmd.Flags().IntVar(&webPort, "port", 0, "Listen port (default from config, 8765)")
	cmd.Flags().BoolVar(&webWatch, "watch", false, "Rescan automatically on filesystem changes")
	cmd.Flags().BoolVar(&webNoBrowser, "no-browser", false, "Do not open the browser automatically")
	return cmd
}

func runWeb(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if webPort != 0 {
		cfg.Web.Port = webPort
	}
	if err := cfg.Validate(); err != nil {
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

	if webWatch || cfg.Watch.Enabled {
		ctx := cmd.Context()
		w, err := watch.New(cfg.BasePath, cfg.Watch.Debounce, func() {
			if _, err := holder.Refresh(ctx); err != nil {
				log.Warnf("rescan failed: %v", err)
				return
			}
			snap := holder.Current()
			log.Infof("rescanned: %d records", snap.Index.Len())
		})
		if err != nil {
			return err
		}
		defer w.Close()

		go func() {
			for err := range w.Errors() {
				log.Warnf("watcher: %v", err)
			}
		}()
	}

	if !webNoBrowser {
		url := fmt.Sprintf("http://127.0.0.1:%d/", cfg.Web.Port)
		go func() {
			// Give the listener a moment to come up first. Opening
			// the browser is best effort; a headless host just logs.
			time.Sleep(250 * time.Millisecond)
			if err := openBrowser(url); err != nil {
				log.Debugf("open browser: %v", err)
			}
		}()
	}

	return web.New(holder, hist, log).Run(cfg.Web.Port)
}

// browserCommand builds the platform command that opens a URL in the
// default browser.
func browserCommand(url string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return exec.Command("xdg-open", url)
	}
}

// openBrowser launches the browser without waiting for it to exit.
func openBrowser(url string) error {
	return browserCommand(url).Start()
}
