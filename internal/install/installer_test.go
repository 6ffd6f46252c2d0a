package install_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"furymod/internal/install"
	"furymod/internal/ledger"
	"furymod/internal/pck"
	"furymod/internal/services"
	"furymod/internal/soundenc"
	"furymod/internal/testsupport"
	"furymod/internal/videoenc"
)

type fakeEncoder struct {
	requests []soundenc.Request
	fail     bool
}

func (f *fakeEncoder) Encode(ctx context.Context, req soundenc.Request) ([]byte, error) {
	f.requests = append(f.requests, req)
	if f.fail {
		return nil, services.Wrap(services.ErrExternalTool, "soundenc", "opusenc", "exit status 1", nil)
	}
	return []byte("ENC:" + req.Key + req.Extension), nil
}

type fakeVideoEncoder struct {
	requests []videoenc.Request
	failKey  string
}

func (f *fakeVideoEncoder) Encode(ctx context.Context, req videoenc.Request) error {
	f.requests = append(f.requests, req)
	if f.failKey != "" && filepath.Base(req.Target) == f.failKey {
		return services.Wrap(services.ErrExternalTool, "videoenc", "ffmpeg", "exit status 1", nil)
	}
	return os.WriteFile(req.Target, []byte("THEORA:"+filepath.Base(req.Source)), 0o644)
}

func TestRunInstallsAllCategories(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	assets := cfg.AssetsDir()

	testsupport.WriteText(t, filepath.Join(assets, "ui", "title.png"), "vanilla title")
	archivePath := testsupport.WriteGameArchive(t, cfg, "bgm.pck",
		pck.Entry{Name: "theme.opus", Data: testsupport.Pattern(500, 1)},
		pck.Entry{Name: "hit.opus", Data: testsupport.Pattern(200, 2)},
	)

	aAssets := testsupport.ModDir(t, cfg, "A-Music", "Assets")
	testsupport.WriteText(t, filepath.Join(aAssets, "ui", "title.png"), "modded title")
	testsupport.WriteText(t, filepath.Join(aAssets, "new.png"), "not in game")
	bAssets := testsupport.ModDir(t, cfg, "B-Other", "Assets")
	testsupport.WriteText(t, filepath.Join(bAssets, "ui", "title.png"), "second title")

	aSounds := testsupport.ModDir(t, cfg, "A-Music", "Sounds")
	testsupport.WriteFile(t, filepath.Join(aSounds, "hit.wav"), 64)
	testsupport.WriteText(t, filepath.Join(aSounds, "hit.loop"), "10\n20\n")
	testsupport.WriteFile(t, filepath.Join(aSounds, "missing.ogg"), 64)
	bSounds := testsupport.ModDir(t, cfg, "B-Other", "Sounds")
	testsupport.WriteFile(t, filepath.Join(bSounds, "hit.wav"), 64)

	aHex := testsupport.ModDir(t, cfg, "A-Music", "Hex")
	testsupport.WriteText(t, filepath.Join(aHex, "patch.hex"), "0x100 90 90\n0x100 AA | 00\n.text+0x10 C3\n")

	testsupport.ModDir(t, cfg, "C-Video", "Video")

	enc := &fakeEncoder{}
	video := &fakeVideoEncoder{}
	inst, err := install.New(cfg, install.WithEncoder(enc), install.WithVideoEncoder(video), install.WithRecorder(store))
	if err != nil {
		t.Fatal(err)
	}
	report, err := inst.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Assets != 1 || report.Sounds != 1 || report.HexEdits != 2 {
		t.Fatalf("counts assets=%d sounds=%d hex=%d", report.Assets, report.Sounds, report.HexEdits)
	}
	if report.Mods != 3 || report.Videos != 0 || len(video.requests) != 0 || report.ArchivesWritten != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	wantKinds := map[string]int{"not_found": 2, "duplicate": 2, "patch_mismatch": 1}
	for kind, n := range wantKinds {
		if got := report.Diagnostics.CountKind(kind); got != n {
			t.Errorf("%s diagnostics = %d, want %d (%v)", kind, got, n, report.Diagnostics)
		}
	}
	if len(report.Diagnostics) != 5 {
		t.Fatalf("diagnostics = %v", report.Diagnostics)
	}

	if got := string(testsupport.ReadBytes(t, filepath.Join(assets, "ui", "title.png"))); got != "modded title" {
		t.Fatalf("title.png = %q", got)
	}
	if _, err := os.Stat(filepath.Join(assets, "new.png")); !os.IsNotExist(err) {
		t.Fatal("non-game asset should not be copied")
	}

	archive := testsupport.LoadArchive(t, archivePath)
	hit, _ := archive.Entry(1)
	theme, _ := archive.Entry(0)
	if string(hit.Data) != "ENC:hit.opus" || hit.Name != "hit.opus" {
		t.Fatalf("hit entry = %q %q", hit.Name, hit.Data)
	}
	if !bytes.Equal(theme.Data, testsupport.Pattern(500, 1)) {
		t.Fatal("theme entry changed")
	}
	if len(enc.requests) != 1 || enc.requests[0].Loop != (soundenc.Loop{Start: 10, End: 20}) {
		t.Fatalf("encoder requests = %+v", enc.requests)
	}

	exe := testsupport.ReadBytes(t, cfg.Game.ExePath)
	if !bytes.Equal(exe[0x100:0x102], []byte{0x90, 0x90}) || exe[0x110] != 0xC3 {
		t.Fatalf("exe bytes = % X / %X", exe[0x100:0x102], exe[0x110])
	}
	if report.ExeDigest == "" {
		t.Fatal("expected exe digest")
	}

	run, err := store.GetRun(context.Background(), report.RunID)
	if err != nil || run == nil {
		t.Fatalf("GetRun = %+v, %v", run, err)
	}
	if run.Status != ledger.RunPartial || run.HexEdits != 2 || run.Diagnostics != 5 || run.ExeDigest != report.ExeDigest {
		t.Fatalf("ledger run = %+v", run)
	}
	items, err := store.Items(context.Background(), report.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1+1+2+5 {
		t.Fatalf("ledger items = %d", len(items))
	}

	entries, err := os.ReadDir(cfg.Paths.WorkDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("work dir not cleaned: %d entries", len(entries))
	}
}

func TestRunInstallsVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	assets := cfg.AssetsDir()
	for _, name := range []string{"opening.ogv", "ending_theme.ogv", "credits.ogv"} {
		testsupport.WriteText(t, filepath.Join(assets, name), "vanilla "+name)
	}

	aVideo := testsupport.ModDir(t, cfg, "A-Cuts", "Video")
	testsupport.WriteFile(t, filepath.Join(aVideo, "Opening.mp4"), 32)
	testsupport.WriteFile(t, filepath.Join(aVideo, "credits.mkv"), 32)
	bVideo := testsupport.ModDir(t, cfg, "B-Cuts", "Video")
	testsupport.WriteFile(t, filepath.Join(bVideo, "opening.webm"), 32)
	testsupport.WriteFile(t, filepath.Join(bVideo, "ending_them.mp4"), 32)

	video := &fakeVideoEncoder{failKey: "credits.ogv"}
	inst, err := install.New(cfg, install.WithEncoder(&fakeEncoder{}), install.WithVideoEncoder(video), install.WithRecorder(store))
	if err != nil {
		t.Fatal(err)
	}
	report, err := inst.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Videos != 1 {
		t.Fatalf("videos = %d, want 1 (%v)", report.Videos, report.Diagnostics)
	}
	if len(video.requests) != 2 {
		t.Fatalf("video requests = %+v", video.requests)
	}
	for kind, n := range map[string]int{"duplicate": 1, "not_found": 1, "external_tool": 1} {
		if got := report.Diagnostics.CountKind(kind); got != n {
			t.Errorf("%s diagnostics = %d, want %d (%v)", kind, got, n, report.Diagnostics)
		}
	}
	if len(report.Diagnostics) != 3 {
		t.Fatalf("diagnostics = %v", report.Diagnostics)
	}
	for _, d := range report.Diagnostics {
		if errors.Is(d.Err, services.ErrNotFound) && !strings.Contains(d.Err.Error(), `closest: "ending_theme.ogv"`) {
			t.Fatalf("expected closest cutscene hint, got %v", d.Err)
		}
	}

	if got := string(testsupport.ReadBytes(t, filepath.Join(assets, "opening.ogv"))); got != "THEORA:Opening.mp4" {
		t.Fatalf("opening.ogv = %q", got)
	}
	for _, name := range []string{"ending_theme.ogv", "credits.ogv"} {
		if got := string(testsupport.ReadBytes(t, filepath.Join(assets, name))); got != "vanilla "+name {
			t.Fatalf("%s = %q, want untouched", name, got)
		}
	}

	run, err := store.GetRun(context.Background(), report.RunID)
	if err != nil || run == nil {
		t.Fatalf("GetRun = %+v, %v", run, err)
	}
	if run.Videos != 1 || run.Status != ledger.RunPartial {
		t.Fatalf("ledger run = %+v", run)
	}
}

func TestRunEncoderFailureLeavesArchive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	archivePath := testsupport.WriteGameArchive(t, cfg, "se.pck", pck.Entry{Name: "click.opus", Data: []byte("orig")})
	before := testsupport.ReadBytes(t, archivePath)

	sounds := testsupport.ModDir(t, cfg, "Clicky", "Sounds")
	testsupport.WriteFile(t, filepath.Join(sounds, "click.ogg"), 16)

	inst, err := install.New(cfg, install.WithEncoder(&fakeEncoder{fail: true}))
	if err != nil {
		t.Fatal(err)
	}
	report, err := inst.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Sounds != 0 || report.Diagnostics.CountKind("external_tool") != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if !bytes.Equal(before, testsupport.ReadBytes(t, archivePath)) {
		t.Fatal("archive rewritten after encoder failure")
	}
}

func TestRunRestoresVanillaExecutable(t *testing.T) {
	vanilla := testsupport.PEImage(testsupport.PESection{Name: ".text", Size: 0x40})
	modded := append([]byte(nil), vanilla...)
	modded[0x120] = 0xFF
	cfg := testsupport.NewConfig(t, testsupport.WithGameExe(modded), testsupport.WithVanillaExe(vanilla))

	inst, err := install.New(cfg, install.WithEncoder(&fakeEncoder{}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bytes.Equal(testsupport.ReadBytes(t, cfg.Game.ExePath), vanilla) {
		t.Fatal("expected game executable restored from vanilla copy")
	}
}

func TestRunWithoutHexLeavesExecutable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	before := testsupport.ReadBytes(t, cfg.Game.ExePath)
	inst, err := install.New(cfg, install.WithEncoder(&fakeEncoder{}))
	if err != nil {
		t.Fatal(err)
	}
	report, err := inst.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Changed() != 0 || report.ExeDigest != "" {
		t.Fatalf("unexpected report %+v", report)
	}
	if !bytes.Equal(before, testsupport.ReadBytes(t, cfg.Game.ExePath)) {
		t.Fatal("executable modified without hex mods")
	}
}

func TestRunRefusesConcurrentInstall(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	held := flock.New(cfg.LockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}
	defer held.Unlock()

	inst, err := install.New(cfg, install.WithEncoder(&fakeEncoder{}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Run(context.Background()); !errors.Is(err, install.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunMissingModsDirFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	if err := os.RemoveAll(cfg.Paths.ModsDir); err != nil {
		t.Fatal(err)
	}
	inst, err := install.New(cfg, install.WithEncoder(&fakeEncoder{}), install.WithRecorder(store))
	if err != nil {
		t.Fatal(err)
	}
	report, err := inst.Run(context.Background())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	run, _ := store.GetRun(context.Background(), report.RunID)
	if run == nil || run.Status != ledger.RunFailed {
		t.Fatalf("expected failed run, got %+v", run)
	}
}

func TestRunRequiresGameExe(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Game.ExePath = filepath.Join(t.TempDir(), "missing.exe")
	inst, err := install.New(cfg, install.WithEncoder(&fakeEncoder{}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Run(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestRunRemovesLeftoverWorkFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	leftover := filepath.Join(cfg.Paths.WorkDir, "encode-stale")
	testsupport.WriteFile(t, filepath.Join(leftover, "in.wav"), 8)
	unrelated := filepath.Join(cfg.Paths.WorkDir, "keep.txt")
	testsupport.WriteText(t, unrelated, "keep")

	inst, err := install.New(cfg, install.WithEncoder(&fakeEncoder{}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(leftover); !os.IsNotExist(err) {
		t.Fatal("expected leftover encoder directory to be removed")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatalf("unrelated file removed: %v", err)
	}
}

func TestRunSuggestsClosestEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteGameArchive(t, cfg, "bgm.pck", pck.Entry{Name: "bgm_battle01.opus", Data: []byte("OggS")})
	sounds := testsupport.ModDir(t, cfg, "Typo", "Sounds")
	testsupport.WriteFile(t, filepath.Join(sounds, "bgm_batle01.wav"), 16)

	inst, err := install.New(cfg, install.WithEncoder(&fakeEncoder{}))
	if err != nil {
		t.Fatal(err)
	}
	report, err := inst.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v", report.Diagnostics)
	}
	d := report.Diagnostics[0]
	if !errors.Is(d.Err, services.ErrNotFound) || !strings.Contains(d.Err.Error(), `closest: "bgm_battle01"`) {
		t.Fatalf("unexpected diagnostic %v", d.Err)
	}
}
