package detectors

import "math"

// EntropyThreshold is the bits-per-character level above which an opaque
// token is reported as a high-entropy string.
const EntropyThreshold = 4.0

// MinTokenLen is the shortest run of token characters considered for
// entropy screening.
const MinTokenLen = 16

// ShannonEntropy returns the Shannon entropy of s in bits per character,
// computed over the frequency of each distinct code point. The empty string
// has entropy 0.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	count := map[rune]int{}
	n := 0
	for _, r := range s {
		count[r]++
		n++
	}
	H := 0.0
	for _, c := range count {
		p := float64(c) / float64(n)
		H -= p * math.Log2(p)
	}
	return H
}

// entropyScore is the provisional, entropy-only score attached to findings.
// It annotates a finding and is never used as the final risk score.
func entropyScore(h float64) int {
	return int(math.Min(h*20, 100))
}
