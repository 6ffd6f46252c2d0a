package install

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"furymod/internal/ledger"
	"furymod/internal/logging"
	"furymod/internal/modscan"
	"furymod/internal/services"
	"furymod/internal/textutil"
	"furymod/internal/videoenc"
)

type modVideo struct {
	mod  string
	key  string
	path string
}

// videoKey matches mod videos to cutscenes by file name without extension.
func videoKey(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// installVideo re-encodes each mod video over the game cutscene of the same
// name. A video is installed only when it has a cutscene to replace.
func (r *run) installVideo(scan modscan.Result) {
	logger := logging.NewComponentLogger(r.logger, "video")
	videos := r.collectVideos(scan)
	if len(videos) == 0 {
		logger.Info("no video mods found")
		return
	}

	cutscenes, err := filepath.Glob(filepath.Join(r.cfg.AssetsDir(), "*"+videoenc.Extension))
	if err != nil {
		cutscenes = nil
	}
	byKey := make(map[string]string, len(cutscenes))
	keys := make([]string, 0, len(cutscenes))
	for _, path := range cutscenes {
		k := videoKey(path)
		if _, dup := byKey[k]; !dup {
			byKey[k] = path
			keys = append(keys, k)
		}
	}
	logger.Info("video files found",
		logging.Int("count", len(videos)),
		logging.Int("cutscenes", len(byKey)),
	)

	for _, v := range videos {
		if r.ctx.Err() != nil {
			return
		}
		target, ok := byKey[v.key]
		if !ok {
			msg := fmt.Sprintf("no cutscene named %q", v.key+videoenc.Extension)
			if best, _, found := textutil.Closest(v.key, keys, suggestMinScore); found {
				msg += fmt.Sprintf(" (closest: %q)", best+videoenc.Extension)
			}
			r.skip(modscan.Video, v.mod, services.Diagnostic{
				Key:    filepath.Base(v.path),
				Source: v.path,
				Offset: services.NoOffset,
				Err:    services.Wrap(services.ErrNotFound, "video", "match cutscene", msg, nil),
			})
			continue
		}
		r.replaceVideo(logger, v, target)
	}
	logger.Info("video mods installed", logging.Int("replaced", r.report.Videos))
}

func (r *run) replaceVideo(logger *slog.Logger, v modVideo, target string) {
	logger.Info("encoding cutscene",
		logging.String("source", v.path),
		logging.String("target", target),
		logging.String(logging.FieldMod, v.mod),
	)
	if err := r.videoEncoder.Encode(r.ctx, videoenc.Request{Source: v.path, Target: target}); err != nil {
		r.skip(modscan.Video, v.mod, services.Diagnostic{
			Key:    filepath.Base(target),
			Source: v.path,
			Offset: services.NoOffset,
			Err:    err,
		})
		return
	}
	r.report.Videos++
	r.record(ledger.Item{
		Category: string(modscan.Video),
		Mod:      v.mod,
		Key:      filepath.Base(target),
		Source:   v.path,
		Outcome:  ledger.OutcomeApplied,
		Offset:   services.NoOffset,
	})
}

// collectVideos gathers mod video files in mod order. A name already
// provided by an earlier mod is a duplicate.
func (r *run) collectVideos(scan modscan.Result) []modVideo {
	var out []modVideo
	seen := make(map[string]string)
	for _, folder := range scan.Folders(modscan.Video) {
		mod := modName(folder)
		files, err := modscan.ListFiles(folder, nil)
		if err != nil {
			r.skip(modscan.Video, mod, services.Diagnostic{Key: folder, Offset: services.NoOffset, Err: err})
			continue
		}
		for _, file := range files {
			key := videoKey(file)
			if prev, dup := seen[key]; dup {
				r.skip(modscan.Video, mod, services.Diagnostic{
					Key:    filepath.Base(file),
					Source: file,
					Offset: services.NoOffset,
					Err:    services.Wrap(services.ErrDuplicate, "video", "collect", "already provided by "+prev, nil),
				})
				continue
			}
			seen[key] = file
			out = append(out, modVideo{mod: mod, key: key, path: file})
		}
	}
	return out
}
