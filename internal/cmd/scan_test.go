package cmd

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestScanSummary(t *testing.T) {
	root := demoTree(t)

	out, err := execute(t, "scan", "-r", demoRegex, "-b", root,
		"--config", filepath.Join(root, "nope.yaml"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(out, "8 records") {
		t.Errorf("output = %q, want 8 records", out)
	}
	if !strings.Contains(out, "param0") || !strings.Contains(out, "param1") {
		t.Errorf("output should list both parameters, got: %q", out)
	}
}

func TestScanJSON(t *testing.T) {
	root := demoTree(t)

	out, err := execute(t, "scan", "--json", "-r", demoRegex, "-b", root,
		"--config", filepath.Join(root, "nope.yaml"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got struct {
		Report struct {
			Matched int `json:"matched"`
			Skipped int `json:"skipped"`
		} `json:"report"`
		Params  []string            `json:"params"`
		Options map[string][]string `json:"options"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}

	if got.Report.Matched != 8 {
		t.Errorf("matched = %d, want 8", got.Report.Matched)
	}
	if len(got.Params) != 2 {
		t.Errorf("params = %v, want 2", got.Params)
	}
	wantP1 := []string{"0", "1", "2"}
	if len(got.Options["param1"]) != len(wantP1) {
		t.Errorf("param1 options = %v, want %v", got.Options["param1"], wantP1)
	}
}

func TestScanBadRegex(t *testing.T) {
	root := demoTree(t)

	_, err := execute(t, "scan", "-r", "no_groups_here", "-b", root,
		"--config", filepath.Join(root, "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for an expression without named groups")
	}
}
