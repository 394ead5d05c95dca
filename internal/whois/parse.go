package whois

import (
	"bufio"
	"strings"

	"github.com/benithors/dnstwistgo/internal/scantypes"
)

var fieldPrefixes = []struct {
	prefix string
	assign func(rec *scantypes.WhoisRecord, value string)
}{
	{"registrar", func(rec *scantypes.WhoisRecord, v string) { rec.Registrar = v }},
	{"creation date", func(rec *scantypes.WhoisRecord, v string) { rec.CreationDate = v }},
	{"expir", func(rec *scantypes.WhoisRecord, v string) { rec.ExpirationDate = v }},
	{"updated date", func(rec *scantypes.WhoisRecord, v string) { rec.UpdatedDate = v }},
}

// parseText applies spec §4.7's line-oriented WHOIS heuristics to a raw
// response body and assembles the result as a scantypes.WhoisRecord.
// Contact fields are never available from plain WHOIS text, so every
// contact slot carries the "Not available in WHOIS" sentinel.
func parseText(domain, server, body string) *scantypes.WhoisRecord {
	rec := &scantypes.WhoisRecord{
		Domain:  domain,
		Source:  "whois",
		RawData: body,
	}

	assigned := map[string]bool{}
	var statuses []string
	var nameservers []string

	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		lowered := strings.ToLower(line)

		for _, fp := range fieldPrefixes {
			if assigned[fp.prefix] {
				continue
			}
			if !strings.Contains(lowered, fp.prefix) {
				continue
			}
			if v, ok := afterFirstColon(line); ok {
				fp.assign(rec, v)
				assigned[fp.prefix] = true
			}
		}

		if strings.Contains(lowered, "status:") || strings.Contains(lowered, "domain status:") {
			if v, ok := afterFirstColon(line); ok {
				token := firstToken(v)
				if token != "" {
					statuses = appendUnique(statuses, token)
				}
			}
		}

		if strings.Contains(lowered, "name server:") || strings.Contains(lowered, "nserver:") {
			if v, ok := afterFirstColon(line); ok {
				ns := strings.ToLower(strings.TrimSpace(v))
				if ns != "" {
					nameservers = appendUnique(nameservers, ns)
				}
			}
		}
	}

	if len(statuses) > 0 {
		rec.Status = statuses
	}
	if len(nameservers) > 0 {
		rec.Nameservers = nameservers
	}

	rec.Registered = !containsAny(strings.ToLower(body), "no match", "not found", "available")

	sentinel := &scantypes.ContactOrSentinel{Sentinel: scantypes.SentinelUnavailable}
	rec.Registrant = sentinel
	rec.AdminContact = sentinel
	rec.TechContact = sentinel
	rec.AbuseContact = sentinel

	return rec
}

func afterFirstColon(line string) (string, bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", false
	}
	return strings.TrimSpace(line[i+1:]), true
}

func firstToken(s string) string {
	s = strings.TrimSpace(s)
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return s
	}
	return s[:i]
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
