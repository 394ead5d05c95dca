// Package whois implements the TCP WHOIS fallback half of spec §4.7's
// RDAP-first/WHOIS-fallback resolver: a static TLD-to-server table
// (embedded at build time), the teacher's dynamic whois.iana.org referral
// lookup as a fallback for TLDs missing from that table, and line-oriented
// heuristic parsing of the response text into a scantypes.WhoisRecord.
package whois

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/benithors/dnstwistgo/internal/scantypes"
)

//go:embed servers.json
var staticServersJSON []byte

type Options struct {
	ConnectTimeout  time.Duration
	ReadIdleTimeout time.Duration

	// Safety valves for WHOIS servers, kept from the teacher's design:
	// shared infrastructure like whois.iana.org gets hammered across a
	// full scan's worth of candidates without these.
	MaxConcurrentPerServer int
	MinDelayPerServer      time.Duration
	Retries                int
	Backoff                time.Duration
}

type Client struct {
	opts Options

	mu          sync.Mutex
	tldToServer map[string]string
	serverState map[string]*perServerState
}

type perServerState struct {
	sem  chan struct{}
	mu   sync.Mutex
	next time.Time
}

func NewClient(opts Options) *Client {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 3 * time.Second
	}
	if opts.ReadIdleTimeout <= 0 {
		opts.ReadIdleTimeout = 5 * time.Second
	}
	if opts.MaxConcurrentPerServer <= 0 {
		opts.MaxConcurrentPerServer = 1
	}
	if opts.MinDelayPerServer <= 0 {
		opts.MinDelayPerServer = 250 * time.Millisecond
	}
	if opts.Retries == 0 {
		opts.Retries = 2
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 250 * time.Millisecond
	}

	tldToServer := make(map[string]string, 256)
	var static map[string]string
	if err := json.Unmarshal(staticServersJSON, &static); err == nil {
		for tld, server := range static {
			tldToServer[strings.ToLower(tld)] = server
		}
	}

	return &Client{
		opts:        opts,
		tldToServer: tldToServer,
	}
}

// Lookup queries the WHOIS server for domain's TLD and parses the
// response into a scantypes.WhoisRecord. An unknown TLD, or a server
// that cannot be reached, is reported as a Go error per spec §4.7.
func (c *Client) Lookup(ctx context.Context, domain string) (*scantypes.WhoisRecord, error) {
	tld := lastLabel(domain)
	if tld == "" {
		return nil, fmt.Errorf("invalid domain: %q", domain)
	}

	server, err := c.serverForTLD(ctx, tld)
	if err != nil {
		return nil, fmt.Errorf("No WHOIS server for TLD: %s", tld)
	}

	body, err := c.query(ctx, server, domain)
	if err != nil {
		return nil, fmt.Errorf("whois query to %s: %w", server, err)
	}

	return parseText(domain, server, body), nil
}

// IsRegistered implements spec §4.7's is_registered? helper: it answers
// purely from the shape of a lookup outcome, never issuing its own
// queries.
func IsRegistered(rec *scantypes.WhoisRecord, lookupErr error) (bool, error) {
	if rec != nil {
		lowered := strings.ToLower(strings.Join(rec.Status, " "))
		if containsAny(lowered, "available", "no match", "not found") {
			return false, nil
		}
		return true, nil
	}
	if lookupErr != nil {
		if containsAny(strings.ToLower(lookupErr.Error()), "available", "no match", "not found") {
			return false, nil
		}
		return false, lookupErr
	}
	return false, fmt.Errorf("no whois record or error to evaluate")
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// serverForTLD looks up the static embedded table first, then falls
// back to the teacher's dynamic whois.iana.org referral discovery for
// TLDs the static table doesn't carry.
func (c *Client) serverForTLD(ctx context.Context, tld string) (string, error) {
	tld = strings.ToLower(strings.TrimSpace(tld))
	if tld == "" {
		return "", fmt.Errorf("empty tld")
	}

	c.mu.Lock()
	if s, ok := c.tldToServer[tld]; ok && s != "" {
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	body, err := c.query(ctx, "whois.iana.org", tld)
	if err != nil {
		return "", err
	}

	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		// Example: "whois: whois.verisign-grs.com"
		if strings.HasPrefix(strings.ToLower(line), "whois:") {
			server := strings.TrimSpace(line[len("whois:"):])
			fields := strings.Fields(server)
			if len(fields) == 0 {
				continue
			}
			server = fields[0]
			if server != "" {
				c.mu.Lock()
				c.tldToServer[tld] = server
				c.mu.Unlock()
				return server, nil
			}
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("whois server not found for tld %q", tld)
}

func (c *Client) stateForServer(server string) *perServerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.serverState == nil {
		c.serverState = make(map[string]*perServerState, 32)
	}
	if st, ok := c.serverState[server]; ok {
		return st
	}
	st := &perServerState{sem: make(chan struct{}, c.opts.MaxConcurrentPerServer)}
	c.serverState[server] = st
	return st
}

func (c *Client) query(ctx context.Context, server, q string) (string, error) {
	attempts := c.opts.Retries + 1
	if attempts < 1 {
		attempts = 1
	}
	backoff := c.opts.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		body, err := c.queryOnce(ctx, server, q)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if attempt == attempts-1 || !isRetryable(err) {
			break
		}
		if err := sleepWithContext(ctx, backoff); err != nil {
			return "", err
		}
		backoff = minDuration(backoff*2, 2*time.Second)
	}

	return "", lastErr
}

func (c *Client) queryOnce(ctx context.Context, server, q string) (string, error) {
	st := c.stateForServer(server)

	// Bound concurrency per server.
	select {
	case st.sem <- struct{}{}:
		defer func() { <-st.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	// Rate limit per server, but don't count this wait time towards the
	// network timeout.
	if c.opts.MinDelayPerServer > 0 {
		st.mu.Lock()
		scheduled := time.Now()
		if scheduled.Before(st.next) {
			scheduled = st.next
		}
		st.next = scheduled.Add(c.opts.MinDelayPerServer)
		st.mu.Unlock()
		if err := sleepUntil(ctx, scheduled); err != nil {
			return "", err
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(attemptCtx, "tcp", net.JoinHostPort(server, "43"))
	if err != nil {
		return "", err
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(c.opts.ReadIdleTimeout))

	if _, err := io.WriteString(conn, q+"\r\n"); err != nil {
		return "", err
	}

	var sb strings.Builder
	buf := make([]byte, 4096)
	for sb.Len() < 1<<20 {
		_ = conn.SetReadDeadline(time.Now().Add(c.opts.ReadIdleTimeout))
		n, err := conn.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			if ne, ok := err.(net.Error); err == io.EOF || (ok && ne.Timeout() && sb.Len() > 0) {
				break
			}
			return "", err
		}
	}
	return sb.String(), nil
}

func lastLabel(domain string) string {
	i := strings.LastIndexByte(domain, '.')
	if i < 0 || i == len(domain)-1 {
		return ""
	}
	return domain[i+1:]
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func sleepUntil(ctx context.Context, at time.Time) error {
	wait := time.Until(at)
	return sleepWithContext(ctx, wait)
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	// Timeouts are often transient for WHOIS.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout() || ne.Temporary()
	}

	// Common transient TCP-level failures for simple WHOIS servers.
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "connection reset"):
		return true
	case strings.Contains(s, "broken pipe"):
		return true
	case strings.Contains(s, "unexpected eof"):
		return true
	}

	return false
}
