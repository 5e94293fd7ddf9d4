package analysis

import "strings"

// Shingles returns the set of k-token contiguous windows joined by a single
// space. Sequences shorter than k degenerate to the raw token set.
func Shingles(tokens []string, k int) map[string]struct{} {
	if len(tokens) < k {
		return tokenSet(tokens)
	}
	set := make(map[string]struct{}, len(tokens)-k+1)
	for i := 0; i+k <= len(tokens); i++ {
		set[strings.Join(tokens[i:i+k], " ")] = struct{}{}
	}
	return set
}

// Jaccard returns intersection size over union size. Two empty sets score
// 0.0, not 1.0: with the degeneration rule above an empty shingle set means
// "nothing to compare", never "identical".
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	inter := 0
	for s := range a {
		if _, ok := b[s]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}
