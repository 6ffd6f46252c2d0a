package install

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"furymod/internal/config"
	"furymod/internal/ledger"
	"furymod/internal/logging"
	"furymod/internal/modscan"
	"furymod/internal/services"
	"furymod/internal/soundenc"
	"furymod/internal/videoenc"
	"furymod/internal/workdir"
)

// ErrLocked is returned when another install holds the lock.
var ErrLocked = errors.New("another furymod install is already running")

// Recorder receives run and item outcomes. *ledger.Store implements it.
type Recorder interface {
	BeginRun(ctx context.Context, runID, gameExe string) (*ledger.Run, error)
	RecordItem(ctx context.Context, item ledger.Item) error
	FinishRun(ctx context.Context, runID string, sum ledger.Summary) error
}

// Option configures the installer.
type Option func(*Installer)

// WithEncoder overrides the sound encoder (primarily for tests).
func WithEncoder(enc soundenc.Encoder) Option {
	return func(i *Installer) {
		if enc != nil {
			i.encoder = enc
		}
	}
}

// WithVideoEncoder overrides the cutscene encoder (primarily for tests).
func WithVideoEncoder(enc videoenc.Encoder) Option {
	return func(i *Installer) {
		if enc != nil {
			i.videoEncoder = enc
		}
	}
}

// WithRecorder records outcomes in rec.
func WithRecorder(rec Recorder) Option {
	return func(i *Installer) {
		i.recorder = rec
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Installer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Installer runs installs for one configuration.
type Installer struct {
	cfg          *config.Config
	encoder      soundenc.Encoder
	videoEncoder videoenc.Encoder
	recorder     Recorder
	logger       *slog.Logger
	lock         *flock.Flock
}

// New builds an installer. Without WithEncoder and WithVideoEncoder, the
// ffmpeg and opusenc binaries from the configuration are used.
func New(cfg *config.Config, opts ...Option) (*Installer, error) {
	if cfg == nil {
		return nil, errors.New("installer requires config")
	}
	inst := &Installer{
		cfg:    cfg,
		logger: logging.NewNop(),
		lock:   flock.New(cfg.LockPath()),
	}
	for _, opt := range opts {
		opt(inst)
	}
	inst.logger = logging.NewComponentLogger(inst.logger, "install")
	if inst.encoder == nil {
		enc, err := soundenc.NewFromConfig(cfg, soundenc.WithLogger(inst.logger))
		if err != nil {
			return nil, err
		}
		inst.encoder = enc
	}
	if inst.videoEncoder == nil {
		enc, err := videoenc.NewFromConfig(cfg, videoenc.WithLogger(inst.logger))
		if err != nil {
			return nil, err
		}
		inst.videoEncoder = enc
	}
	return inst, nil
}

// run carries the state of one Run call.
type run struct {
	*Installer
	id     string
	ctx    context.Context
	logger *slog.Logger
	report *Report
}

// Run performs a full install and returns its report. The report is returned
// even when err is non-nil so callers can show what happened before the
// failure.
func (i *Installer) Run(ctx context.Context) (*Report, error) {
	if err := i.cfg.ValidateInstall(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "install", "validate", "", err)
	}
	if err := i.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrIO, "install", "prepare directories", "", err)
	}

	ok, err := i.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	defer func() {
		if err := i.lock.Unlock(); err != nil {
			i.logger.Warn("failed to release install lock", logging.String("lock", i.cfg.LockPath()), logging.Error(err))
		}
	}()

	if leftovers := workdir.CleanLeftovers(i.cfg.Paths.WorkDir, i.logger); len(leftovers.Removed) > 0 {
		i.logger.Info("work directory cleaned", logging.Int("removed", len(leftovers.Removed)))
	}

	id := uuid.NewString()
	ctx = services.WithRunID(ctx, id)
	r := &run{
		Installer: i,
		id:        id,
		ctx:       ctx,
		logger:    logging.WithContext(ctx, i.logger),
		report:    &Report{RunID: id},
	}

	if i.recorder != nil {
		if store, ok := i.recorder.(*ledger.Store); ok {
			if n, err := store.MarkInterrupted(ctx); err == nil && n > 0 {
				r.logger.Warn("previous install was interrupted",
					logging.Int64("runs", n),
					logging.String(logging.FieldEventType, "run_interrupted"),
					logging.String(logging.FieldErrorHint, "verify game files before installing again"),
					logging.String(logging.FieldImpact, "game files may hold a partial install"),
				)
			}
		}
		if _, err := i.recorder.BeginRun(ctx, id, i.cfg.Game.ExePath); err != nil {
			return nil, fmt.Errorf("record run start: %w", err)
		}
	}

	err = r.execute()
	if i.recorder != nil {
		if finishErr := i.recorder.FinishRun(context.WithoutCancel(ctx), id, r.report.summary(err)); finishErr != nil {
			r.logger.Warn("failed to record run result", logging.Error(finishErr))
		}
	}
	logging.LogDiagnostics(r.logger, r.report.Diagnostics)
	if err != nil {
		logging.ErrorWithContext(r.logger, "install failed", "install_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the error above and run the install again"),
		)
		return r.report, err
	}
	r.logger.Info("install complete",
		logging.Int("assets", r.report.Assets),
		logging.Int("sounds", r.report.Sounds),
		logging.Int("hex_edits", r.report.HexEdits),
		logging.Int("videos", r.report.Videos),
		logging.Int("skipped", len(r.report.Diagnostics)),
		logging.String(logging.FieldEventType, "install_complete"),
	)
	return r.report, nil
}

func (r *run) execute() error {
	r.logger.Info("scanning mods", logging.String("mods_dir", r.cfg.Paths.ModsDir))
	scan, err := modscan.Scan(r.cfg.Paths.ModsDir)
	if err != nil {
		return err
	}
	r.report.Mods = len(scan.Mods)
	for _, d := range scan.Diagnostics {
		r.skip(modsCategory, d.Key, d)
	}
	for _, m := range scan.Mods {
		if len(m.Categories) == 0 {
			r.logger.Info("mod has no installable folders", logging.String(logging.FieldMod, m.Name))
		}
	}
	if scan.Total() == 0 {
		r.logger.Warn("no mod files found",
			logging.String(logging.FieldEventType, "no_mods"),
			logging.String(logging.FieldErrorHint, "place mods under "+r.cfg.Paths.ModsDir+"/<mod>/{Assets,Sounds,Hex}"),
			logging.String(logging.FieldImpact, "nothing was installed"),
		)
	}

	r.installAssets(scan)
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.installSounds(scan)
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.installVideo(scan)
	if err := r.ctx.Err(); err != nil {
		return err
	}
	r.noteCodes(scan)
	return r.installHex(scan)
}

// modsCategory labels ledger items for mod folders that could not be read.
const modsCategory modscan.Category = "Mods"

// noteCodes reports Codes folders, which are discovered but never installed.
func (r *run) noteCodes(scan modscan.Result) {
	folders := scan.Folders(modscan.Codes)
	r.report.CodeFolders = len(folders)
	for _, folder := range folders {
		r.logger.Info("category not installed",
			logging.String(logging.FieldCategory, string(modscan.Codes)),
			logging.String("folder", folder),
			logging.String(logging.FieldEventType, "category_unsupported"),
		)
	}
}

// skip records a diagnostic in the report and the ledger.
func (r *run) skip(category modscan.Category, mod string, diag services.Diagnostic) {
	if diag.Stage == "" {
		diag.Stage = string(category)
	}
	r.report.Diagnostics.Add(diag)
	detail := ""
	if diag.Err != nil {
		detail = diag.Err.Error()
	}
	r.record(ledger.Item{
		Category: string(category),
		Mod:      mod,
		Key:      diag.Key,
		Source:   diag.Source,
		Outcome:  ledger.OutcomeSkipped,
		Kind:     diag.Kind(),
		Detail:   detail,
		Offset:   diag.Offset,
	})
}

func (r *run) record(item ledger.Item) {
	if r.recorder == nil {
		return
	}
	item.RunID = r.id
	if item.Key == "" {
		item.Key = "-"
	}
	if err := r.recorder.RecordItem(r.ctx, item); err != nil {
		r.logger.Debug("ledger write failed", logging.Error(err))
	}
}

func modName(folder string) string {
	return filepath.Base(filepath.Dir(folder))
}
