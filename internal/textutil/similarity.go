package textutil

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for gram, count := range a.grams {
		if other, ok := b.grams[gram]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// Closest returns the candidate most similar to name and its score. Ties keep
// the earlier candidate. ok is false when no candidate reaches minScore.
func Closest(name string, candidates []string, minScore float64) (best string, score float64, ok bool) {
	target := NewFingerprint(name)
	if target == nil {
		return "", 0, false
	}
	for _, c := range candidates {
		s := CosineSimilarity(target, NewFingerprint(c))
		if s > score {
			best, score = c, s
		}
	}
	if score < minScore || best == "" {
		return "", score, false
	}
	return best, score, true
}
