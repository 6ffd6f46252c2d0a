package install

import (
	"fmt"
	"os"
	"path/filepath"

	"furymod/internal/fileutil"
	"furymod/internal/ledger"
	"furymod/internal/logging"
	"furymod/internal/modscan"
	"furymod/internal/services"
)

// installAssets copies every file of every Assets folder over the game file
// at the same relative path. Files with no game counterpart and targets
// already written by an earlier mod are skipped.
func (r *run) installAssets(scan modscan.Result) {
	folders := scan.Folders(modscan.Assets)
	if len(folders) == 0 {
		r.logger.Info("no asset mods found")
		return
	}
	assetsDir := r.cfg.AssetsDir()
	if info, err := os.Stat(assetsDir); err != nil || !info.IsDir() {
		for _, folder := range folders {
			r.skip(modscan.Assets, modName(folder), services.Diagnostic{
				Key:    folder,
				Offset: services.NoOffset,
				Err:    services.Wrap(services.ErrNotFound, "assets", "locate game assets", fmt.Sprintf("assets directory %q missing", assetsDir), err),
			})
		}
		return
	}

	logger := logging.NewComponentLogger(r.logger, "assets")
	written := make(map[string]string)
	for _, folder := range folders {
		mod := modName(folder)
		files, err := modscan.ListFiles(folder, nil)
		if err != nil {
			r.skip(modscan.Assets, mod, services.Diagnostic{Key: folder, Offset: services.NoOffset, Err: err})
			continue
		}
		for _, file := range files {
			rel, err := filepath.Rel(folder, file)
			if err != nil {
				rel = filepath.Base(file)
			}
			target := filepath.Join(assetsDir, rel)
			diag := services.Diagnostic{Key: filepath.ToSlash(rel), Source: file, Offset: services.NoOffset}

			if _, err := os.Stat(target); err != nil {
				diag.Err = services.Wrap(services.ErrNotFound, "assets", "match game file", "not a game file", nil)
				r.skip(modscan.Assets, mod, diag)
				continue
			}
			if prev, dup := written[target]; dup {
				diag.Err = services.Wrap(services.ErrDuplicate, "assets", "copy", "already replaced by "+prev, nil)
				r.skip(modscan.Assets, mod, diag)
				continue
			}
			if err := fileutil.CopyFile(file, target); err != nil {
				diag.Err = services.Wrap(services.ErrIO, "assets", "copy", target, err)
				r.skip(modscan.Assets, mod, diag)
				continue
			}
			written[target] = file
			r.report.Assets++
			logger.Debug("asset replaced",
				logging.String("target", target),
				logging.String("source", file),
				logging.String(logging.FieldMod, mod),
			)
			r.record(ledger.Item{
				Category: string(modscan.Assets),
				Mod:      mod,
				Key:      diag.Key,
				Source:   file,
				Outcome:  ledger.OutcomeApplied,
				Offset:   services.NoOffset,
			})
		}
	}
	logger.Info("asset mods installed", logging.Int("replaced", r.report.Assets))
}
