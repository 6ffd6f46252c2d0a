package toolexec_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"furymod/internal/services"
	"furymod/internal/toolexec"
)

type chattyExecutor struct {
	lines int
	err   error
}

func (c chattyExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	for i := 1; i <= c.lines; i++ {
		onOutput(fmt.Sprintf("line %d", i))
	}
	return c.err
}

func TestRunSuccess(t *testing.T) {
	if err := toolexec.Run(context.Background(), chattyExecutor{lines: 3}, nil, "test", "/usr/bin/ffmpeg", nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunFailureKeepsOutputTail(t *testing.T) {
	err := toolexec.Run(context.Background(), chattyExecutor{lines: 8, err: errors.New("exit status 1")}, nil, "videoenc", "/usr/bin/ffmpeg", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "ffmpeg failed: line 4 | line 5 | line 6 | line 7 | line 8") {
		t.Fatalf("unexpected message %q", msg)
	}
	if strings.Contains(msg, "line 3 ") {
		t.Fatalf("message kept too much output: %q", msg)
	}
}

func TestRunReportsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := toolexec.Run(ctx, chattyExecutor{err: errors.New("signal: killed")}, nil, "soundenc", "opusenc", nil)
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "context canceled") {
		t.Fatalf("unexpected error %v", err)
	}
}
