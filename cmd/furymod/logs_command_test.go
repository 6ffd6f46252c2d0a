package main

import (
	"strings"
	"testing"

	"furymod/internal/testsupport"
)

func TestLogsCommandShowsLastLines(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, env.cfg.LogPath(), "first\nsecond\nthird\n")

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Contains(out, "first") || !strings.Contains(out, "second\nthird") {
		t.Fatalf("unexpected output %q", out)
	}
}
