package soundenc_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"furymod/internal/services"
	"furymod/internal/soundenc"
	"furymod/internal/testsupport"
)

type call struct {
	binary string
	args   []string
}

// stubExecutor writes fake output to the last argument of each call.
type stubExecutor struct {
	calls  []call
	failOn string
	output []byte
}

func (s *stubExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	s.calls = append(s.calls, call{binary: binary, args: append([]string(nil), args...)})
	if onOutput != nil {
		onOutput("working")
	}
	if binary == s.failOn {
		return errors.New("exit status 1")
	}
	out := s.output
	if out == nil {
		out = []byte("OggS fake OpusHead")
	}
	return os.WriteFile(args[len(args)-1], out, 0o644)
}

func newClient(t *testing.T, exec soundenc.Executor) (*soundenc.Client, string) {
	t.Helper()
	work := filepath.Join(t.TempDir(), "work")
	client, err := soundenc.New("ffmpeg", "opusenc", work, 5, soundenc.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}
	return client, work
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected %s to be empty, found %d entries", dir, len(entries))
	}
}

func TestEncodeConvertsNonWavThroughFFmpeg(t *testing.T) {
	src := filepath.Join(t.TempDir(), "battle.mp3")
	testsupport.WriteFile(t, src, 64)

	exec := &stubExecutor{}
	client, work := newClient(t, exec)
	data, err := client.Encode(context.Background(), soundenc.Request{
		Source:    src,
		Key:       "bgm_battle",
		Extension: ".opus",
		Loop:      soundenc.Loop{Start: 100, End: soundenc.Omit},
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(data) != "OggS fake OpusHead" {
		t.Fatalf("unexpected payload %q", data)
	}
	if len(exec.calls) != 2 || exec.calls[0].binary != "ffmpeg" || exec.calls[1].binary != "opusenc" {
		t.Fatalf("unexpected calls %+v", exec.calls)
	}
	opus := exec.calls[1].args
	if !slices.Contains(opus, "LoopStart=100") || slices.Contains(opus, "LoopEnd=-1") {
		t.Fatalf("unexpected opusenc args %v", opus)
	}
	if filepath.Base(opus[len(opus)-1]) != "bgm_battle.opus" {
		t.Fatalf("unexpected output name %s", opus[len(opus)-1])
	}
	assertEmptyDir(t, work)
}

func TestEncodeCopiesWavInput(t *testing.T) {
	src := filepath.Join(t.TempDir(), "hit.WAV")
	testsupport.WriteFile(t, src, 32)

	exec := &stubExecutor{}
	client, work := newClient(t, exec)
	if _, err := client.Encode(context.Background(), soundenc.Request{Source: src, Key: "hit"}); err != nil {
		t.Fatal(err)
	}
	if len(exec.calls) != 1 || exec.calls[0].binary != "opusenc" {
		t.Fatalf("expected only opusenc, got %+v", exec.calls)
	}
	if !slices.Contains(exec.calls[0].args, "LoopStart=0") || !slices.Contains(exec.calls[0].args, "LoopEnd=0") {
		t.Fatalf("expected zero loop comments, got %v", exec.calls[0].args)
	}
	assertEmptyDir(t, work)
}

func TestEncodeToolFailureIsExternalToolError(t *testing.T) {
	src := filepath.Join(t.TempDir(), "theme.ogg")
	testsupport.WriteFile(t, src, 32)

	client, work := newClient(t, &stubExecutor{failOn: "opusenc"})
	_, err := client.Encode(context.Background(), soundenc.Request{Source: src, Key: "theme"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if services.IsFatal(err) {
		t.Fatal("tool failure must not be fatal")
	}
	assertEmptyDir(t, work)
}

func TestEncodeEmptyOutput(t *testing.T) {
	src := filepath.Join(t.TempDir(), "a.wav")
	testsupport.WriteFile(t, src, 8)

	client, _ := newClient(t, &stubExecutor{output: []byte{}})
	if _, err := client.Encode(context.Background(), soundenc.Request{Source: src, Key: "a"}); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}

func TestNewRequiresBinaries(t *testing.T) {
	if _, err := soundenc.New("", "opusenc", t.TempDir(), 0); err == nil {
		t.Fatal("expected error for missing ffmpeg")
	}
	if _, err := soundenc.New("ffmpeg", "opusenc", "", 0); err == nil {
		t.Fatal("expected error for missing work dir")
	}
}
