// Package dnsprobe resolves the DNS-derived facts of §4.3: A/AAAA
// composition with the CNAME-equals-TLD false-positive check, MX, TXT,
// NS, DMARC, and wildcard detection. Built on github.com/miekg/dns
// rather than net.Resolver because the probe needs raw control over
// record type and answer ordering that the stdlib resolver does not
// expose (see SPEC_FULL.md §4.3).
package dnsprobe

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Client issues DNS queries against the system's configured resolvers,
// falling back to a public resolver when no resolv.conf is available
// (e.g. on non-POSIX hosts).
type Client struct {
	servers []string
	dnsc    *dns.Client
	timeout time.Duration
}

const defaultFallbackServer = "1.1.1.1:53"

// New builds a Client from /etc/resolv.conf, or the fallback server if
// that file can't be read.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	servers := []string{defaultFallbackServer}
	if cfg, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil && len(cfg.Servers) > 0 {
		servers = servers[:0]
		for _, s := range cfg.Servers {
			servers = append(servers, dns.Fqdn(s)[:len(dns.Fqdn(s))-1]+":"+cfg.Port)
		}
	}
	return &Client{
		servers: servers,
		dnsc:    &dns.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Resolution is the outcome of composing CNAME+A lookups per §4.3.
type Resolution struct {
	IPs   []string
	CNAME string
}

// ErrNoRecords is returned when an A-record lookup returns zero answers.
type ErrNoRecords struct{ Name string }

func (e *ErrNoRecords) Error() string { return fmt.Sprintf("no A records for %q", e.Name) }

// ErrTLDFalsePositive is returned when the candidate's CNAME target
// equals its own TLD label — the registry-wildcard signature §4.3 warns
// about.
type ErrTLDFalsePositive struct{ Name, TLD string }

func (e *ErrTLDFalsePositive) Error() string {
	return fmt.Sprintf("%q resolves via CNAME to TLD %q (registry wildcard false positive)", e.Name, e.TLD)
}

func (c *Client) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true

	var lastErr error
	for _, server := range c.servers {
		resp, _, err := c.dnsc.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Truncated {
			tcpClient := &dns.Client{Net: "tcp", Timeout: c.timeout}
			if tresp, _, terr := tcpClient.ExchangeContext(ctx, m, server); terr == nil {
				resp = tresp
			}
		}
		return resp, nil
	}
	return nil, lastErr
}

// LookupA returns dotted-quad A-record addresses for name.
func (c *Client) LookupA(ctx context.Context, name string) ([]string, error) {
	resp, err := c.exchange(ctx, name, dns.TypeA)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.A); ok {
			out = append(out, a.A.String())
		}
	}
	return out, nil
}

// LookupAAAA returns AAAA-record addresses for name.
func (c *Client) LookupAAAA(ctx context.Context, name string) ([]string, error) {
	resp, err := c.exchange(ctx, name, dns.TypeAAAA)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, rr := range resp.Answer {
		if a, ok := rr.(*dns.AAAA); ok {
			out = append(out, a.AAAA.String())
		}
	}
	return out, nil
}

// LookupCNAME returns the CNAME targets for name, trailing dot stripped.
func (c *Client) LookupCNAME(ctx context.Context, name string) ([]string, error) {
	resp, err := c.exchange(ctx, name, dns.TypeCNAME)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, rr := range resp.Answer {
		if cn, ok := rr.(*dns.CNAME); ok {
			out = append(out, strings.TrimSuffix(cn.Target, "."))
		}
	}
	return out, nil
}

// Resolve composes CNAME and A lookups per §4.3: queried in parallel,
// A failure propagates, an apex CNAME equal to the candidate's TLD is
// treated as a registry-wildcard false positive.
func (c *Client) Resolve(ctx context.Context, fqdn, tld string) (Resolution, error) {
	type aResult struct {
		ips []string
		err error
	}
	type cnameResult struct {
		names []string
		err   error
	}

	aCh := make(chan aResult, 1)
	cnameCh := make(chan cnameResult, 1)

	go func() {
		ips, err := c.LookupA(ctx, fqdn)
		aCh <- aResult{ips, err}
	}()
	go func() {
		names, err := c.LookupCNAME(ctx, fqdn)
		cnameCh <- cnameResult{names, err}
	}()

	a := <-aCh
	cn := <-cnameCh

	if a.err != nil {
		return Resolution{}, a.err
	}
	if len(a.ips) == 0 {
		return Resolution{}, &ErrNoRecords{Name: fqdn}
	}

	if cn.err != nil || len(cn.names) == 0 {
		return Resolution{IPs: a.ips}, nil
	}

	first := cn.names[0]
	if strings.EqualFold(first, tld) {
		return Resolution{}, &ErrTLDFalsePositive{Name: fqdn, TLD: tld}
	}

	return Resolution{IPs: a.ips, CNAME: first}, nil
}

// LookupMX returns MX records in resolver-answer order; an empty slice
// (not an error) when the domain has none.
func (c *Client) LookupMX(ctx context.Context, name string) ([]MXRecord, error) {
	resp, err := c.exchange(ctx, name, dns.TypeMX)
	if err != nil {
		return nil, err
	}
	out := make([]MXRecord, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		if mx, ok := rr.(*dns.MX); ok {
			out = append(out, MXRecord{
				Priority: mx.Preference,
				Server:   strings.TrimSuffix(mx.Mx, "."),
			})
		}
	}
	return out, nil
}

type MXRecord struct {
	Priority uint16
	Server   string
}

// LookupTXT returns raw TXT record strings, one per record, with
// multi-segment TXT chunks joined back together exactly as published.
func (c *Client) LookupTXT(ctx context.Context, name string) ([]string, error) {
	resp, err := c.exchange(ctx, name, dns.TypeTXT)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		if txt, ok := rr.(*dns.TXT); ok {
			out = append(out, strings.Join(txt.Txt, ""))
		}
	}
	return out, nil
}

// LookupNS returns nameserver hostnames, trailing dot stripped,
// deduplicated, resolver order preserved.
func (c *Client) LookupNS(ctx context.Context, name string) ([]string, error) {
	resp, err := c.exchange(ctx, name, dns.TypeNS)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		ns, ok := rr.(*dns.NS)
		if !ok {
			continue
		}
		host := strings.TrimSuffix(ns.Ns, ".")
		if _, dup := seen[host]; dup {
			continue
		}
		seen[host] = struct{}{}
		out = append(out, host)
	}
	return out, nil
}

// LookupDMARC finds the first `_dmarc.<domain>` TXT record beginning
// with "v=DMARC1" and splits its tag=value pairs. Absence is modeled as
// a successful stage carrying {error: "..."} — never a stage failure.
func (c *Client) LookupDMARC(ctx context.Context, domain string) DMARCResult {
	records, err := c.LookupTXT(ctx, "_dmarc."+domain)
	if err != nil || len(records) == 0 {
		return DMARCResult{Error: "No DMARC record found"}
	}

	for _, r := range records {
		if !strings.HasPrefix(r, "v=DMARC1") {
			continue
		}
		return DMARCResult{Tags: parseDMARCTags(r)}
	}

	return DMARCResult{Error: "No DMARC record found"}
}

func parseDMARCTags(record string) map[string]string {
	tags := map[string]string{}
	for _, part := range strings.Split(record, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		tags[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return tags
}

type DMARCResult struct {
	Tags  map[string]string
	Error string
}

// DetectWildcard probes a random 24-hex-character subdomain of domain;
// a non-empty A answer means the zone resolves any unmatched label.
func (c *Client) DetectWildcard(ctx context.Context, domain string) bool {
	label, err := randomHexLabel(24)
	if err != nil {
		return false
	}
	ips, err := c.LookupA(ctx, label+"."+domain)
	if err != nil {
		return false
	}
	return len(ips) > 0
}

func randomHexLabel(nchars int) (string, error) {
	b := make([]byte, (nchars+1)/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b)[:nchars], nil
}
