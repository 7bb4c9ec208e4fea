package cmd

import (
	"strings"
	"testing"
)

func TestBrowserCommandTargetsURL(t *testing.T) {
	url := "http://127.0.0.1:8765/"

	cmd := browserCommand(url)
	if len(cmd.Args) == 0 {
		t.Fatal("browser command has no arguments")
	}
	if !strings.Contains(strings.Join(cmd.Args, " "), url) {
		t.Errorf("browser command %v should include %q", cmd.Args, url)
	}
}
