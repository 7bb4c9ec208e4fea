package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harrison/pscan/internal/index"
)

func TestResolveUniqueSelection(t *testing.T) {
	root := demoTree(t)

	out, err := execute(t, "resolve", "-r", demoRegex, "-b", root,
		"--config", filepath.Join(root, "nope.yaml"),
		"--set", "param0=b", "--set", "param1=2")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := filepath.Join(root, "param0_b", "param1_2", "file.txt")
	if strings.TrimSpace(out) != want {
		t.Errorf("resolved path = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestResolveIncompleteSelection(t *testing.T) {
	root := demoTree(t)

	_, err := execute(t, "resolve", "-r", demoRegex, "-b", root,
		"--config", filepath.Join(root, "nope.yaml"),
		"--set", "param0=b")
	var incomplete *index.IncompleteSelectionError
	if !errors.As(err, &incomplete) {
		t.Fatalf("error = %v, want IncompleteSelectionError", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != "param1" {
		t.Errorf("missing = %v, want [param1]", incomplete.Missing)
	}
}

func TestResolveNoMatch(t *testing.T) {
	root := demoTree(t)

	_, err := execute(t, "resolve", "-r", demoRegex, "-b", root,
		"--config", filepath.Join(root, "nope.yaml"),
		"--set", "param0=c", "--set", "param1=2")
	var noMatch *index.NoMatchError
	if !errors.As(err, &noMatch) {
		t.Fatalf("error = %v, want NoMatchError", err)
	}
}

func TestResolveMalformedSet(t *testing.T) {
	root := demoTree(t)

	_, err := execute(t, "resolve", "-r", demoRegex, "-b", root,
		"--config", filepath.Join(root, "nope.yaml"),
		"--set", "param0")
	if err == nil || !strings.Contains(err.Error(), "name=value") {
		t.Fatalf("error = %v, want name=value hint", err)
	}
}
