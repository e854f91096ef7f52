package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"serve", "backfill", "search", "schema", "version"}
	for _, name := range want {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"env", "config", "dotenv"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "moviesearch dev") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSearchCmd_ValidatesBeforeConnecting(t *testing.T) {
	tests := [][]string{
		{"search", "x", "--mode", "semantic"},
		{"search", "x", "--alpha", "2"},
		{"search", "   "},
		{"search"},
	}
	for _, args := range tests {
		root := NewRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		// An unreadable config proves validation failed before any connection attempt.
		root.SetArgs(append(args, "--config", "/nonexistent/moviesearch.yaml"))

		err := root.Execute()
		if err == nil {
			t.Errorf("%v: expected error", args)
			continue
		}
		if strings.Contains(err.Error(), "load config") {
			t.Errorf("%v: validation should fail before config load, got %v", args, err)
		}
	}
}
