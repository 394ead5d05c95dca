package content

import "github.com/rivo/uniseg"

// Shingles slides a window of size 5 over the grapheme clusters of s,
// step 1, discarding an incomplete trailing window, per spec §4.6.
// Grapheme-cluster segmentation (not raw runes) is used so that
// combining-mark sequences common in homoglyph/IDN candidate content
// shingle the way a human reader perceives the text.
func Shingles(s string) map[string]struct{} {
	const window = 5

	var clusters []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}

	out := map[string]struct{}{}
	if len(clusters) < window {
		return out
	}
	for i := 0; i+window <= len(clusters); i++ {
		shingle := ""
		for _, c := range clusters[i : i+window] {
			shingle += c
		}
		out[shingle] = struct{}{}
	}
	return out
}
