package whois

import (
	"strings"
	"testing"

	"github.com/benithors/dnstwistgo/internal/scantypes"
)

func TestParseText_Taken(t *testing.T) {
	t.Parallel()

	body := strings.Join([]string{
		"Domain Name: EXAMPLE.COM",
		"Registrar: Example Registrar, LLC",
		"Creation Date: 1995-08-14T04:00:00Z",
		"Registry Expiry Date: 2026-08-13T04:00:00Z",
		"Updated Date: 2024-08-14T04:00:00Z",
		"Domain Status: clientTransferProhibited https://icann.org/epp#clientTransferProhibited",
		"Domain Status: clientUpdateProhibited https://icann.org/epp#clientUpdateProhibited",
		"Name Server: A.IANA-SERVERS.NET",
		"Name Server: B.IANA-SERVERS.NET",
	}, "\r\n")

	rec := parseText("example.com", "whois.verisign-grs.com", body)

	if rec.Source != "whois" {
		t.Fatalf("source=%q, want whois", rec.Source)
	}
	if !rec.Registered {
		t.Fatalf("expected registered=true")
	}
	if rec.Registrar != "Example Registrar, LLC" {
		t.Fatalf("registrar=%q", rec.Registrar)
	}
	if rec.CreationDate != "1995-08-14T04:00:00Z" {
		t.Fatalf("creation_date=%q", rec.CreationDate)
	}
	if rec.ExpirationDate != "2026-08-13T04:00:00Z" {
		t.Fatalf("expiration_date=%q", rec.ExpirationDate)
	}
	if len(rec.Status) != 2 {
		t.Fatalf("status=%v, want 2 entries", rec.Status)
	}
	if len(rec.Nameservers) != 2 {
		t.Fatalf("nameservers=%v, want 2 entries", rec.Nameservers)
	}
	if rec.Registrant.Sentinel != scantypes.SentinelUnavailable {
		t.Fatalf("registrant sentinel=%q", rec.Registrant.Sentinel)
	}
}

func TestParseText_Available(t *testing.T) {
	t.Parallel()

	body := "No match for \"EXAMPLE-NOT-REGISTERED.COM\".\r\n"
	rec := parseText("example-not-registered.com", "whois.verisign-grs.com", body)

	if rec.Registered {
		t.Fatalf("expected registered=false")
	}
}

func TestIsRegistered(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		rec  *scantypes.WhoisRecord
		err  error
		want bool
	}{
		{"registered", &scantypes.WhoisRecord{Status: []string{"active"}}, nil, true},
		{"available status", &scantypes.WhoisRecord{Status: []string{"available"}}, nil, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := IsRegistered(tc.rec, tc.err)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("IsRegistered()=%v, want %v", got, tc.want)
			}
		})
	}
}
