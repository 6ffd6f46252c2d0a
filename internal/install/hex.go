package install

import (
	"os"
	"path/filepath"
	"strings"

	"furymod/internal/fileutil"
	"furymod/internal/hexpatch"
	"furymod/internal/ledger"
	"furymod/internal/logging"
	"furymod/internal/modscan"
	"furymod/internal/services"
	"furymod/internal/workdir"
)

// installHex applies hex edits to a working copy of the source executable
// and then copies the result over the game executable. When a separate
// vanilla executable is configured the copy happens even without hex mods,
// so removing a hex mod takes effect on the next install.
func (r *run) installHex(scan modscan.Result) error {
	logger := logging.NewComponentLogger(r.logger, "hex")
	folders := scan.Folders(modscan.Hex)
	fromVanilla := r.cfg.Game.VanillaExePath != ""
	if len(folders) == 0 && !fromVanilla {
		logger.Info("no hex mods found")
		return nil
	}

	work := filepath.Join(r.cfg.Paths.WorkDir, workdir.ExePrefix+r.id+filepath.Ext(r.cfg.Game.ExePath))
	if _, err := fileutil.CopyFileVerified(r.cfg.SourceExePath(), work); err != nil {
		return services.Wrap(services.ErrIO, "hex", "stage executable", r.cfg.SourceExePath(), err)
	}
	defer func() {
		if err := os.Remove(work); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove working executable", logging.String("path", work), logging.Error(err))
		}
	}()

	var res hexpatch.Result
	if len(folders) > 0 {
		set, diags := hexpatch.LoadSet(folders)
		for _, d := range diags {
			r.skip(modscan.Hex, modFromSource(d.Source), d)
		}
		logger.Info("hex edits loaded", logging.Int("count", len(set)), logging.Int("folders", len(folders)))

		opts := hexpatch.Options{RequireExpected: r.cfg.Hex.RequireExpected}
		var err error
		res, err = opts.ApplyFile(work, set)
		if err != nil {
			return err
		}
		for _, d := range res.Diagnostics {
			r.skip(modscan.Hex, modFromSource(d.Source), d)
		}
		r.recordApplied(set, res)
		for _, o := range res.Overlaps {
			logging.WarnWithContext(logger, "hex edits overlap", "hex_overlap",
				logging.String("earlier", o.Earlier.String()),
				logging.String("later", o.Later.String()),
				logging.Int64("offset", o.Offset),
				logging.Int("length", o.Length),
				logging.String(logging.FieldImpact, "the later edit wins in the overlapping bytes"),
				logging.String(logging.FieldErrorHint, "check the two mods are meant to be combined"),
			)
		}
		r.report.Overlaps = res.Overlaps
		r.report.HexEdits = res.Applied
	}

	if res.Applied == 0 && !fromVanilla {
		logger.Info("no hex edits applied; game executable left unchanged")
		return nil
	}
	sum, err := fileutil.CopyFileVerified(work, r.cfg.Game.ExePath)
	if err != nil {
		return services.Wrap(services.ErrIO, "hex", "install executable", r.cfg.Game.ExePath, err)
	}
	r.report.ExeDigest = sum
	logger.Info("game executable updated",
		logging.String("path", r.cfg.Game.ExePath),
		logging.Int("hex_edits", res.Applied),
		logging.String("digest", sum.String()),
		logging.String(logging.FieldEventType, "exe_installed"),
	)
	return nil
}

// recordApplied writes ledger items for the patches that took effect. A
// patch applied when it has no diagnostic for its source.
func (r *run) recordApplied(set hexpatch.Set, res hexpatch.Result) {
	if r.recorder == nil {
		return
	}
	skipped := make(map[string]struct{}, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		skipped[d.Source+"|"+d.Key] = struct{}{}
	}
	for _, p := range set {
		if _, ok := skipped[p.Source.String()+"|"+p.Target()]; ok {
			continue
		}
		r.record(ledger.Item{
			Category: string(modscan.Hex),
			Mod:      filepath.Base(filepath.Dir(p.Source.Folder)),
			Key:      p.Target(),
			Source:   p.Source.String(),
			Outcome:  ledger.OutcomeApplied,
			Offset:   p.Offset,
		})
	}
}

// modFromSource extracts the mod name from a "<mod>/Hex/<file>:<line>" label.
// Either slash separates the mod name.
func modFromSource(source string) string {
	if i := strings.IndexAny(source, `/\`); i >= 0 {
		return source[:i]
	}
	return source
}
