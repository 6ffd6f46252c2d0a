package textutil

import (
	"math"
	"testing"
)

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
		want float64
	}{
		{"both nil", nil, nil, 0},
		{"a nil", nil, NewFingerprint("bgm_title"), 0},
		{"b nil", NewFingerprint("bgm_title"), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	a := NewFingerprint("se_battle_hit01")
	b := NewFingerprint("SE-Battle-Hit01")

	got := CosineSimilarity(a, b)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("CosineSimilarity(identical) = %v, want 1.0", got)
	}
}

func TestCosineSimilarityDifferent(t *testing.T) {
	a := NewFingerprint("abc")
	b := NewFingerprint("xyz")
	if got := CosineSimilarity(a, b); got != 0 {
		t.Errorf("CosineSimilarity(different) = %v, want 0", got)
	}
}

func TestCosineSimilarityPartialOverlap(t *testing.T) {
	a := NewFingerprint("bgm_battle01")
	b := NewFingerprint("bgm_battle02")

	got := CosineSimilarity(a, b)
	if got <= 0.5 || got >= 1 {
		t.Errorf("CosineSimilarity(partial) = %v, want between 0.5 and 1", got)
	}
}

func TestTrigrams(t *testing.T) {
	got := Trigrams("Hit_01")
	want := []string{" hi", "hit", "it ", "t 0", " 01", "01 "}
	if len(got) != len(want) {
		t.Fatalf("Trigrams = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Trigrams = %q, want %q", got, want)
		}
	}
	if Trigrams("__") != nil {
		t.Fatal("expected nil trigrams for separator-only input")
	}
	if NewFingerprint("--").GramCount() != 0 {
		t.Fatal("expected empty fingerprint")
	}
}

func TestClosest(t *testing.T) {
	candidates := []string{"bgm_title", "bgm_battle01", "se_cursor"}

	best, score, ok := Closest("bgm_batle01", candidates, 0.4)
	if !ok || best != "bgm_battle01" {
		t.Fatalf("Closest = %q (%v, %v)", best, score, ok)
	}

	if _, _, ok := Closest("zzz", candidates, 0.4); ok {
		t.Fatal("expected no suggestion for unrelated name")
	}
	if _, _, ok := Closest("", candidates, 0); ok {
		t.Fatal("expected no suggestion for empty name")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"theme.opus":    "theme.opus",
		"se/hit.opus":   "se-hit.opus",
		`a:b*c?.ogg`:    "a-b-c.ogg",
		"  ..  ":        "fallback",
		"":              "fallback",
		"bad\x00name":   "badname",
	}
	for in, want := range tests {
		if got := SanitizeFileName(in, "fallback"); got != want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
