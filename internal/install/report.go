package install

import (
	"github.com/opencontainers/go-digest"

	"furymod/internal/hexpatch"
	"furymod/internal/ledger"
	"furymod/internal/services"
)

// Report summarises one install run.
type Report struct {
	RunID string
	Mods  int

	Assets   int
	Sounds   int
	HexEdits int
	Videos   int

	// ArchivesWritten counts sound archives rewritten on disk.
	ArchivesWritten int
	// CodeFolders are discovered but not installed.
	CodeFolders int

	Overlaps    []hexpatch.Overlap
	ExeDigest   digest.Digest
	Diagnostics services.Diagnostics
}

// Changed returns the number of modifications that took effect.
func (r *Report) Changed() int {
	return r.Assets + r.Sounds + r.HexEdits + r.Videos
}

// Status derives the ledger status of a finished run.
func (r *Report) Status(err error) ledger.RunStatus {
	switch {
	case err != nil:
		return ledger.RunFailed
	case len(r.Diagnostics) > 0:
		return ledger.RunPartial
	default:
		return ledger.RunSucceeded
	}
}

func (r *Report) summary(err error) ledger.Summary {
	sum := ledger.Summary{
		Status:      r.Status(err),
		ExeDigest:   r.ExeDigest,
		Assets:      r.Assets,
		Sounds:      r.Sounds,
		HexEdits:    r.HexEdits,
		Videos:      r.Videos,
		Diagnostics: len(r.Diagnostics),
	}
	if err != nil {
		sum.Error = err.Error()
	}
	return sum
}
