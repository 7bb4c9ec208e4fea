package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/pscan/internal/index"
	"github.com/harrison/pscan/internal/scan"
)

var resolveSet []string

// NewResolveCommand creates the resolve command: map one complete
// selection to its file path.
func NewResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a complete selection to a file path",
		Long: `Scans and resolves the selection given with --set to a unique file
path, printed to stdout. Fails when the selection is incomplete, when
no file matches, or when more than one does.

Example:
  pscan resolve -r 'run_(?P<run>\d+)/plot\.png' --set run=3`,
		RunE: runResolve,
	}
	cmd.Flags().StringArrayVar(&resolveSet, "set", nil, "Parameter value as name=value (repeatable)")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sel := index.Selection{}
	for _, kv := range resolveSet {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid --set %q: expected name=value", kv)
		}
		sel[name] = value
	}

	scanner, err := scan.New(cfg.Regex, cfg.BasePath)
	if err != nil {
		return err
	}
	records, _, err := scanner.Scan(cmd.Context())
	if err != nil {
		return err
	}
	ix, err := index.New(records)
	if err != nil {
		return err
	}

	path, err := ix.Resolve(sel)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
