package install

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opencontainers/go-digest"

	"furymod/internal/ledger"
	"furymod/internal/logging"
	"furymod/internal/modscan"
	"furymod/internal/pck"
	"furymod/internal/services"
	"furymod/internal/soundenc"
	"furymod/internal/textutil"
)

type modSound struct {
	mod  string
	name string // file name, the lookup key source
	path string
}

type loadedArchive struct {
	path     string
	archive  *pck.Archive
	replaced []ledger.Item
}

// installSounds replaces sound archive entries whose name matches a mod
// sound file. Each mod sound replaces the first matching entry of every
// archive that has one. Modified archives are written back at the end.
func (r *run) installSounds(scan modscan.Result) {
	logger := logging.NewComponentLogger(r.logger, "sounds")
	sounds := r.collectSounds(scan)
	if len(sounds) == 0 {
		logger.Info("no sound mods found")
		return
	}
	logger.Info("sound files found", logging.Int("count", len(sounds)))

	archives := r.loadArchives(logger)
	if len(archives) == 0 {
		for _, s := range sounds {
			r.skip(modscan.Sounds, s.mod, services.Diagnostic{
				Key:    s.name,
				Source: s.path,
				Offset: services.NoOffset,
				Err:    services.Wrap(services.ErrNotFound, "sounds", "match entry", "no sound archives in "+r.cfg.AssetsDir(), nil),
			})
		}
		return
	}

	for _, s := range sounds {
		if r.ctx.Err() != nil {
			return
		}
		r.replaceSound(logger, s, archives)
	}

	for _, la := range archives {
		if len(la.replaced) == 0 {
			continue
		}
		if err := la.archive.Write(la.path); err != nil {
			for _, item := range la.replaced {
				r.skip(modscan.Sounds, item.Mod, services.Diagnostic{Key: item.Key, Source: la.path, Offset: services.NoOffset, Err: err})
			}
			continue
		}
		r.report.ArchivesWritten++
		r.report.Sounds += len(la.replaced)
		for _, item := range la.replaced {
			r.record(item)
		}
		logger.Info("sound archive written",
			logging.String("archive", la.path),
			logging.Int("replaced", len(la.replaced)),
			logging.String(logging.FieldEventType, "archive_written"),
		)
	}
}

// collectSounds gathers mod sound files keyed by file name. Loop sidecars
// are not sounds; a file name seen in an earlier mod is a duplicate.
func (r *run) collectSounds(scan modscan.Result) []modSound {
	var out []modSound
	seen := make(map[string]string)
	for _, folder := range scan.Folders(modscan.Sounds) {
		mod := modName(folder)
		files, err := modscan.ListFiles(folder, func(name string) bool {
			return strings.EqualFold(filepath.Ext(name), soundenc.LoopExtension)
		})
		if err != nil {
			r.skip(modscan.Sounds, mod, services.Diagnostic{Key: folder, Offset: services.NoOffset, Err: err})
			continue
		}
		for _, file := range files {
			name := filepath.Base(file)
			if prev, dup := seen[name]; dup {
				r.skip(modscan.Sounds, mod, services.Diagnostic{
					Key:    name,
					Source: file,
					Offset: services.NoOffset,
					Err:    services.Wrap(services.ErrDuplicate, "sounds", "collect", "already provided by "+prev, nil),
				})
				continue
			}
			seen[name] = file
			out = append(out, modSound{mod: mod, name: name, path: file})
		}
	}
	return out
}

func (r *run) loadArchives(logger *slog.Logger) []*loadedArchive {
	paths, err := filepath.Glob(filepath.Join(r.cfg.AssetsDir(), "*.pck"))
	if err != nil {
		return nil
	}
	sort.Strings(paths)
	var out []*loadedArchive
	for _, path := range paths {
		archive, err := pck.Load(path)
		if err != nil {
			r.skip(modscan.Sounds, "", services.Diagnostic{Key: filepath.Base(path), Source: path, Offset: services.NoOffset, Err: err})
			continue
		}
		logger.Debug("sound archive loaded", logging.String("archive", path), logging.Int("entries", archive.Len()))
		out = append(out, &loadedArchive{path: path, archive: archive})
	}
	return out
}

func (r *run) replaceSound(logger *slog.Logger, s modSound, archives []*loadedArchive) {
	loop, err := soundenc.ReadLoop(s.path)
	if err != nil {
		r.skip(modscan.Sounds, s.mod, services.Diagnostic{Key: soundenc.LoopPath(s.path), Source: s.path, Offset: services.NoOffset, Err: err})
	}

	encoded := make(map[string][]byte) // by extension
	matched := false
	for _, la := range archives {
		idx, err := la.archive.Find(s.name)
		if err != nil {
			continue
		}
		matched = true
		entry, _ := la.archive.Entry(idx)
		ext, _ := la.archive.Extension(idx)

		payload, ok := encoded[ext]
		if !ok {
			payload, err = r.encoder.Encode(r.ctx, soundenc.Request{
				Source:    s.path,
				Key:       entry.Key(),
				Extension: ext,
				Loop:      loop,
			})
			if err != nil {
				r.skip(modscan.Sounds, s.mod, services.Diagnostic{Key: s.name, Source: s.path, Offset: services.NoOffset, Err: err})
				return
			}
			encoded[ext] = payload
		}

		if err := la.archive.Replace(idx, payload, ext); err != nil {
			r.skip(modscan.Sounds, s.mod, services.Diagnostic{Key: s.name, Source: la.path, Offset: services.NoOffset, Err: err})
			continue
		}
		logger.Debug("sound replaced",
			logging.String("entry", entry.Name),
			logging.String("archive", filepath.Base(la.path)),
			logging.String("source", s.path),
		)
		la.replaced = append(la.replaced, ledger.Item{
			Category: string(modscan.Sounds),
			Mod:      s.mod,
			Key:      entry.Name,
			Source:   s.path,
			Outcome:  ledger.OutcomeApplied,
			Detail:   fmt.Sprintf("%s entry %d", filepath.Base(la.path), idx),
			Offset:   services.NoOffset,
			Digest:   digest.FromBytes(payload),
		})
	}
	if !matched {
		msg := fmt.Sprintf("no archive entry named %q", pck.Key(s.name))
		if hint := suggestEntry(s.name, archives); hint != "" {
			msg += fmt.Sprintf(" (closest: %q)", hint)
		}
		r.skip(modscan.Sounds, s.mod, services.Diagnostic{
			Key:    s.name,
			Source: s.path,
			Offset: services.NoOffset,
			Err:    services.Wrap(services.ErrNotFound, "sounds", "match entry", msg, nil),
		})
	}
}

// suggestMinScore keeps suggestions to names that share most trigrams.
const suggestMinScore = 0.6

// suggestEntry returns the archive entry key closest to name, if any is
// close enough to be a likely typo.
func suggestEntry(name string, archives []*loadedArchive) string {
	var keys []string
	for _, la := range archives {
		for _, e := range la.archive.Entries() {
			keys = append(keys, e.Key())
		}
	}
	best, _, ok := textutil.Closest(pck.Key(name), keys, suggestMinScore)
	if !ok {
		return ""
	}
	return best
}
