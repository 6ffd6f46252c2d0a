package textutil

import (
	"math"
	"strings"
	"unicode"
)

// Fingerprint represents a trigram-frequency vector for name comparison.
type Fingerprint struct {
	grams map[string]float64
	norm  float64
}

// NewFingerprint creates a fingerprint from the provided name.
// Returns nil if the name has no letters or digits.
func NewFingerprint(name string) *Fingerprint {
	grams := Trigrams(name)
	if len(grams) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(grams))
	for _, g := range grams {
		counts[g]++
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{
		grams: counts,
		norm:  math.Sqrt(norm),
	}
}

// Trigrams lowercases name, collapses separators to a single space, pads it
// with spaces and returns its overlapping three-rune windows.
func Trigrams(name string) []string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return nil
	}
	runes := []rune(" " + cleaned + " ")
	out := make([]string, 0, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		out = append(out, string(runes[i:i+3]))
	}
	return out
}

// GramCount returns the number of unique trigrams in the fingerprint.
func (f *Fingerprint) GramCount() int {
	if f == nil {
		return 0
	}
	return len(f.grams)
}
