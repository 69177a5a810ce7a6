package encoder

import "unicode"

const fnvOffset64 = 14695981039346656037
const fnvPrime64 = 1099511628211

// hashString is FNV-1a over s, mixed with a seed so different encoder
// instances occupy different feature spaces.
func hashString(s string, seed uint64) uint64 {
	h := uint64(fnvOffset64) ^ seed
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}
	return h
}

// hashFeatures maps text to a sparse bag of hashed features over `buckets`
// dimensions: one feature per whitespace/script-delimited token plus one per
// rune bigram. Rune bigrams carry the signal for unsegmented CJK text.
// The hash's top bit picks the sign, which keeps bucket collisions from
// systematically inflating counts.
func hashFeatures(text string, buckets int, seed uint64) map[int]float32 {
	text = normalizeText(text)
	feats := make(map[int]float32)

	add := func(s string) {
		h := hashString(s, seed)
		idx := int(h % uint64(buckets))
		sign := float32(1)
		if h&(1<<63) != 0 {
			sign = -1
		}
		feats[idx] += sign
	}

	// Word tokens.
	start := -1
	runes := []rune(text)
	for i, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			add("w:" + string(runes[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		add("w:" + string(runes[start:]))
	}

	// Rune bigrams.
	for i := 0; i+1 < len(runes); i++ {
		if unicode.IsSpace(runes[i]) || unicode.IsSpace(runes[i+1]) {
			continue
		}
		add("b:" + string(runes[i:i+2]))
	}

	// Degenerate input: fall back to the whole string as one feature.
	if len(feats) == 0 && len(runes) > 0 {
		add("s:" + text)
	}
	return feats
}
