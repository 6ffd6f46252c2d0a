package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/opencontainers/go-digest"

	"furymod/internal/ledger"
	"furymod/internal/testsupport"
)

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	run, err := store.BeginRun(ctx, "run-1", cfg.Game.ExePath)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.Status != ledger.RunRunning || run.StartedAt.IsZero() {
		t.Fatalf("unexpected run %+v", run)
	}

	exeDigest := digest.FromString("patched exe")
	items := []ledger.Item{
		{RunID: "run-1", Category: "Sounds", Mod: "Music", Key: "bgm_01", Source: "bgm_01.ogg", Outcome: ledger.OutcomeApplied, Offset: -1, Digest: digest.FromString("opus")},
		{RunID: "run-1", Category: "Hex", Mod: "Fixes", Key: "0x10", Outcome: ledger.OutcomeSkipped, Kind: "patch_mismatch", Detail: "found 00", Offset: 16},
	}
	for _, item := range items {
		if err := store.RecordItem(ctx, item); err != nil {
			t.Fatalf("RecordItem: %v", err)
		}
	}

	if err := store.FinishRun(ctx, "run-1", ledger.Summary{
		Status: ledger.RunPartial, ExeDigest: exeDigest, Sounds: 1, Videos: 2, Diagnostics: 1,
	}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != ledger.RunPartial || got.Sounds != 1 || got.Videos != 2 || got.Diagnostics != 1 || got.ExeDigest != exeDigest {
		t.Fatalf("unexpected finished run %+v", got)
	}
	if got.FinishedAt.IsZero() || got.Duration() < 0 {
		t.Fatalf("expected finish time, got %+v", got)
	}

	stored, err := store.Items(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stored))
	}
	if stored[0].Offset != -1 || stored[0].Digest != items[0].Digest || stored[0].Mod != "Music" {
		t.Fatalf("unexpected first item %+v", stored[0])
	}
	if stored[1].Offset != 16 || stored[1].Kind != "patch_mismatch" || stored[1].Outcome != ledger.OutcomeSkipped {
		t.Fatalf("unexpected second item %+v", stored[1])
	}
}

func TestGetRunMissing(t *testing.T) {
	store := testsupport.MustOpenLedger(t, testsupport.NewConfig(t))
	run, err := store.GetRun(context.Background(), "nope")
	if err != nil || run != nil {
		t.Fatalf("expected nil run, got %+v, %v", run, err)
	}
	if err := store.FinishRun(context.Background(), "nope", ledger.Summary{Status: ledger.RunFailed}); err == nil {
		t.Fatal("expected error finishing unknown run")
	}
}

func TestListRunsNewestFirstAndPrune(t *testing.T) {
	store := testsupport.MustOpenLedger(t, testsupport.NewConfig(t))
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if _, err := store.BeginRun(ctx, id, ""); err != nil {
			t.Fatal(err)
		}
		if err := store.RecordItem(ctx, ledger.Item{RunID: id, Category: "Assets", Key: "file.bin", Offset: -1}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].RunID != "c" || runs[1].RunID != "b" {
		t.Fatalf("unexpected runs %+v", runs)
	}

	latest, err := store.LatestRun(ctx)
	if err != nil || latest == nil || latest.RunID != "c" {
		t.Fatalf("LatestRun = %+v, %v", latest, err)
	}

	removed, err := store.Prune(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Fatalf("pruned %d runs, want 2", removed)
	}
	items, err := store.Items(ctx, "a")
	if err != nil || len(items) != 0 {
		t.Fatalf("expected items of pruned run removed, got %d (%v)", len(items), err)
	}
}

func TestMarkInterrupted(t *testing.T) {
	store := testsupport.MustOpenLedger(t, testsupport.NewConfig(t))
	ctx := context.Background()
	if _, err := store.BeginRun(ctx, "stuck", ""); err != nil {
		t.Fatal(err)
	}
	n, err := store.MarkInterrupted(ctx)
	if err != nil || n != 1 {
		t.Fatalf("MarkInterrupted = %d, %v", n, err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats[ledger.RunFailed] != 1 || stats[ledger.RunRunning] != 0 {
		t.Fatalf("unexpected stats %v", stats)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := ledger.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.BeginRun(context.Background(), "keep", ""); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := testsupport.MustOpenLedger(t, cfg)
	run, err := second.GetRun(context.Background(), "keep")
	if err != nil || run == nil {
		t.Fatalf("expected persisted run, got %+v, %v", run, err)
	}
	if errors.Is(err, ledger.ErrSchemaMismatch) {
		t.Fatal("unexpected schema mismatch")
	}
}
