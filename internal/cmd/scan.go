package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/pscan/internal/index"
	"github.com/harrison/pscan/internal/scan"
)

var scanJSON bool

// NewScanCommand creates the scan command: run one scan and report the
// parameter space.
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan once and summarize the parameter space",
		Long: `Runs a single scan and prints, for every parameter, the distinct
values found, plus a count of paths that matched the expression but
were skipped for missing capture groups.`,
		RunE: runScan,
	}
	cmd.Flags().BoolVar(&scanJSON, "json", false, "Output in JSON format")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	scanner, err := scan.New(cfg.Regex, cfg.BasePath)
	if err != nil {
		return err
	}
	records, report, err := scanner.Scan(cmd.Context())
	if err != nil {
		return err
	}
	ix, err := index.New(records)
	if err != nil {
		return err
	}

	opts, err := ix.Options(index.Selection{})
	if err != nil {
		return err
	}

	if scanJSON {
		out := struct {
			Report  scan.Report         `json:"report"`
			Params  []string            `json:"params"`
			Options map[string][]string `json:"options"`
		}{report, ix.Params(), opts}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := cmd.OutOrStdout()
	label := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(w, "%s %d files walked, %d records, %d skipped\n",
		label("scan:"), report.Walked, report.Matched, report.Skipped)
	for _, param := range ix.Params() {
		values := opts[param]
		fmt.Fprintf(w, "%s %d values: %v\n", label(param+":"), len(values), values)
	}
	return nil
}
