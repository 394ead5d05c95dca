// Package permute is the permutation-source adapter spec §6 describes as
// an external collaborator ("a library call returning a finite list of
// {kind, fqdn, tld} triples — treated as a pure producer"). It is
// grounded on the teacher's internal/generate/generate.go: the same
// Options/Generator shape, the same dedup-by-map-then-sort assembly, the
// same ASCII-label validity guard, generalized from scoring marketing
// label variants to generating typo/visual domain-squatting candidates.
package permute

import (
	"sort"
	"strings"

	"github.com/benithors/dnstwistgo/internal/scantypes"
)

type Options struct {
	// AlternativeTLDs lists the TLDs the Tld strategy swaps in for the
	// domain's own TLD; an entry equal to the domain's own TLD is skipped.
	AlternativeTLDs []string
	MaxCandidates   int
}

type Generator struct {
	opts Options
}

func New(opts Options) *Generator {
	if len(opts.AlternativeTLDs) == 0 {
		opts.AlternativeTLDs = []string{"com", "net", "org", "info", "co"}
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = 5000
	}
	return &Generator{opts: opts}
}

// Generate produces every candidate this generator's strategies derive
// from domain. domain must be a plain "label.tld" or deeper FQDN; the
// target itself may appear in the output — per spec §4.2, filtering the
// target out is the coordinator's job, not the producer's.
func (g *Generator) Generate(domain string) []scantypes.Candidate {
	domain = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(domain), "."))
	label, tld := splitDomain(domain)
	if label == "" {
		return nil
	}

	seen := map[string]scantypes.Candidate{}
	add := func(kind, fqdn, candidateTLD string) {
		fqdn = strings.Trim(fqdn, "-")
		if !isValidLabel(labelOf(fqdn)) {
			return
		}
		key := kind + "\x00" + fqdn
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = scantypes.Candidate{Kind: kind, FQDN: fqdn, TLD: candidateTLD}
	}

	for _, l := range bitsquat(label) {
		add("Bitsquatting", l+"."+tld, tld)
	}
	for _, l := range homoglyph(label) {
		add("Homoglyph", l+"."+tld, tld)
	}
	for _, l := range hyphenate(label) {
		add("Hyphenation", l+"."+tld, tld)
	}
	for _, l := range transpose(label) {
		add("Transposition", l+"."+tld, tld)
	}
	for _, l := range keyboardAdjacent(label) {
		add("KeyboardSubstitution", l+"."+tld, tld)
	}
	for _, l := range omit(label) {
		add("Omission", l+"."+tld, tld)
	}
	for _, l := range repeat(label) {
		add("Repetition", l+"."+tld, tld)
	}
	for _, altTLD := range g.opts.AlternativeTLDs {
		if altTLD == tld {
			continue
		}
		add("Tld", label+"."+altTLD, altTLD)
	}

	out := make([]scantypes.Candidate, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].FQDN < out[j].FQDN
	})

	if len(out) > g.opts.MaxCandidates {
		out = out[:g.opts.MaxCandidates]
	}
	return out
}

func splitDomain(domain string) (label, tld string) {
	i := strings.LastIndexByte(domain, '.')
	if i < 0 || i == len(domain)-1 {
		return "", ""
	}
	return domain[:i], domain[i+1:]
}

func labelOf(fqdn string) string {
	label, _ := splitDomain(fqdn)
	return label
}

// bitsquat flips each bit of each byte of label in turn, keeping only
// results that stay within the ASCII label alphabet.
func bitsquat(label string) []string {
	var out []string
	b := []byte(label)
	for i := range b {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte(nil), b...)
			flipped[i] ^= 1 << uint(bit)
			cand := string(flipped)
			if isValidLabel(cand) {
				out = append(out, cand)
			}
		}
	}
	return out
}

// homoglyphPairs maps an ASCII character to visually similar
// replacement characters (restricted to the ASCII-representable subset
// the coordinator can still treat as a plain label; full Unicode
// confusables are a superset the DNS probe doesn't need to distinguish
// from their ASCII stand-ins for scoring purposes).
var homoglyphPairs = map[byte][]string{
	'o': {"0"},
	'0': {"o"},
	'l': {"1", "i"},
	'1': {"l"},
	'i': {"l"},
	'e': {"3"},
	'3': {"e"},
	'a': {"4"},
	's': {"5"},
	'g': {"9"},
	'b': {"6"},
	'z': {"2"},
}

func homoglyph(label string) []string {
	var out []string
	for i := 0; i < len(label); i++ {
		repls, ok := homoglyphPairs[label[i]]
		if !ok {
			continue
		}
		for _, r := range repls {
			out = append(out, label[:i]+r+label[i+1:])
		}
	}
	// "rn" commonly reads as "m" and vice versa.
	if idx := strings.Index(label, "rn"); idx >= 0 {
		out = append(out, label[:idx]+"m"+label[idx+2:])
	}
	if idx := strings.IndexByte(label, 'm'); idx >= 0 {
		out = append(out, label[:idx]+"rn"+label[idx+1:])
	}
	return out
}

// hyphenate inserts a hyphen at every internal label boundary.
func hyphenate(label string) []string {
	var out []string
	for i := 1; i < len(label); i++ {
		out = append(out, label[:i]+"-"+label[i:])
	}
	return out
}

// transpose swaps each pair of adjacent characters once.
func transpose(label string) []string {
	var out []string
	b := []byte(label)
	for i := 0; i < len(b)-1; i++ {
		swapped := append([]byte(nil), b...)
		swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
		out = append(out, string(swapped))
	}
	return out
}

var qwertyAdjacent = map[byte]string{
	'q': "wa", 'w': "qeas", 'e': "wrds", 'r': "etdf", 't': "rygf",
	'y': "tuhg", 'u': "yijh", 'i': "uokj", 'o': "iplk", 'p': "ol",
	'a': "qwsz", 's': "awedxz", 'd': "serfcx", 'f': "drtgvc", 'g': "ftyhbv",
	'h': "gyujnb", 'j': "huikmn", 'k': "jiolm", 'l': "kop",
	'z': "asx", 'x': "zsdc", 'c': "xdfv", 'v': "cfgb", 'b': "vghn",
	'n': "bhjm", 'm': "njk",
}

// keyboardAdjacent substitutes each character with an adjacent QWERTY
// key, one character at a time.
func keyboardAdjacent(label string) []string {
	var out []string
	for i := 0; i < len(label); i++ {
		for _, r := range qwertyAdjacent[label[i]] {
			out = append(out, label[:i]+string(r)+label[i+1:])
		}
	}
	return out
}

// omit drops each character of label in turn.
func omit(label string) []string {
	var out []string
	for i := range label {
		out = append(out, label[:i]+label[i+1:])
	}
	return out
}

// repeat doubles each character of label in turn.
func repeat(label string) []string {
	var out []string
	for i := range label {
		out = append(out, label[:i+1]+label[i:])
	}
	return out
}

func isValidLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			continue
		}
		return false
	}
	return true
}
