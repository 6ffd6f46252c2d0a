package preflight

import (
	"debug/pe"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"furymod/internal/config"
	"furymod/internal/fileutil"
)

// GameState reports the current state of the configured game install.
type GameState struct {
	Exe       string
	Found     bool
	IsPE      bool
	Sections  []string
	Digest    digest.Digest
	AssetsDir string
	Archives  int
}

// InspectGame inspects the game executable and counts the sound archives in
// the assets directory.
func InspectGame(cfg *config.Config) GameState {
	if cfg == nil {
		return GameState{}
	}
	game := GameState{Exe: cfg.Game.ExePath, AssetsDir: cfg.AssetsDir()}
	if _, err := os.Stat(game.Exe); err != nil {
		return game
	}
	game.Found = true
	if sum, err := fileutil.DigestFile(game.Exe); err == nil {
		game.Digest = sum
	}
	if f, err := pe.Open(game.Exe); err == nil {
		game.IsPE = true
		for _, s := range f.Sections {
			game.Sections = append(game.Sections, s.Name)
		}
		f.Close()
	}
	if matches, err := filepath.Glob(filepath.Join(game.AssetsDir, "*.pck")); err == nil {
		game.Archives = len(matches)
	}
	return game
}

// ExeDetail renders a display-friendly summary for status UIs.
func (p GameState) ExeDetail() string {
	switch {
	case p.Exe == "":
		return "Not configured"
	case !p.Found:
		return fmt.Sprintf("%s (missing)", p.Exe)
	case !p.IsPE:
		return fmt.Sprintf("%s (not a PE image)", p.Exe)
	case p.Digest == "":
		return fmt.Sprintf("%s (%d sections)", p.Exe, len(p.Sections))
	default:
		return fmt.Sprintf("%s (%d sections, %s)", p.Exe, len(p.Sections), shortDigest(p.Digest))
	}
}

func shortDigest(d digest.Digest) string {
	enc := d.Encoded()
	if len(enc) > 12 {
		return enc[:12]
	}
	return enc
}
