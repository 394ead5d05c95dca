// Package fuzzy computes the deterministic, I/O-free similarity measures
// of spec §4.9 between a target domain and a candidate domain.
package fuzzy

import (
	"math"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/benithors/dnstwistgo/internal/scantypes"
)

var levParams = levenshtein.NewParams()

// Score computes every measure in scantypes.FuzzyScores for the
// (target, candidate) FQDN pair.
func Score(target, candidate string) scantypes.FuzzyScores {
	targetLabel := firstLabel(target)
	candidateLabel := firstLabel(candidate)

	d := levenshtein.Distance(targetLabel, candidateLabel, levParams)

	return scantypes.FuzzyScores{
		JaroWinkler:           jaroWinkler(target, candidate),
		Levenshtein:           d,
		LevenshteinNormalized: normalizedLevenshtein(targetLabel, candidateLabel, d),
		CharDiff:              charDiff(targetLabel, candidateLabel),
		KeyboardProximity:     keyboardProximity(targetLabel, candidateLabel),
	}
}

func firstLabel(domain string) string {
	i := strings.IndexByte(domain, '.')
	if i < 0 {
		return domain
	}
	return domain[:i]
}

func normalizedLevenshtein(a, b string, d int) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1 - float64(d)/float64(maxLen)
}

// jaroWinkler implements the classic Jaro distance with the Winkler
// common-prefix boost (standard weighting: prefix scale 0.1, up to 4
// prefix characters), applied to the full FQDNs per spec §4.9.
func jaroWinkler(a, b string) float64 {
	j := jaro(a, b)
	if j <= 0 {
		return j
	}

	prefix := 0
	maxPrefix := 4
	for i := 0; i < len(a) && i < len(b) && i < maxPrefix; i++ {
		if a[i] != b[i] {
			break
		}
		prefix++
	}
	return j + float64(prefix)*0.1*(1-j)
}

func jaro(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0.0
	}

	matchDistance := la
	if lb > matchDistance {
		matchDistance = lb
	}
	matchDistance = matchDistance/2 - 1
	if matchDistance < 0 {
		matchDistance = 0
	}

	aMatches := make([]bool, la)
	bMatches := make([]bool, lb)

	matches := 0
	for i := 0; i < la; i++ {
		start := i - matchDistance
		if start < 0 {
			start = 0
		}
		end := i + matchDistance + 1
		if end > lb {
			end = lb
		}
		for j := start; j < end; j++ {
			if bMatches[j] || a[i] != b[j] {
				continue
			}
			aMatches[i] = true
			bMatches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	transpositions := 0
	k := 0
	for i := 0; i < la; i++ {
		if !aMatches[i] {
			continue
		}
		for !bMatches[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}
	transpositions /= 2

	m := float64(matches)
	return (m/float64(la) + m/float64(lb) + (m-float64(transpositions))/m) / 3.0
}

// charDiff pads the shorter label with empty-string cells to equal
// length and counts positions where characters differ.
func charDiff(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := len(ra)
	if len(rb) > n {
		n = len(rb)
	}
	diff := 0
	for i := 0; i < n; i++ {
		var ca, cb rune = -1, -1
		if i < len(ra) {
			ca = ra[i]
		}
		if i < len(rb) {
			cb = rb[i]
		}
		if ca != cb {
			diff++
		}
	}
	return diff
}

// qwerty maps a lowercase key rune to its (row, col) position.
var qwerty = buildQwerty()

func buildQwerty() map[rune][2]int {
	rows := []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}
	m := map[rune][2]int{}
	for r, row := range rows {
		for c, ch := range row {
			m[ch] = [2]int{r, c}
		}
	}
	return m
}

// keyboardProximity scores aligned characters over the common prefix by
// QWERTY key distance, then penalizes the overall length difference.
func keyboardProximity(a, b string) float64 {
	ra, rb := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	common := len(ra)
	if len(rb) < common {
		common = len(rb)
	}

	var distances []float64
	for i := 0; i < common; i++ {
		ca, cb := ra[i], rb[i]
		if ca == cb {
			distances = append(distances, 0)
			continue
		}
		pa, aok := qwerty[ca]
		pb, bok := qwerty[cb]
		if !aok || !bok {
			distances = append(distances, 1.0)
			continue
		}
		dr := float64(pa[0] - pb[0])
		dc := float64(pa[1] - pb[1])
		dist := math.Sqrt(dr*dr+dc*dc) / 5.0
		distances = append(distances, dist)
	}

	mean := 0.0
	if len(distances) > 0 {
		sum := 0.0
		for _, d := range distances {
			sum += d
		}
		mean = sum / float64(len(distances))
	}

	lengthPenalty := 0.1 * absInt(len(ra)-len(rb))

	score := 1 - mean - lengthPenalty
	if score < 0 {
		score = 0
	}
	return score
}

func absInt(n int) float64 {
	if n < 0 {
		n = -n
	}
	return float64(n)
}
