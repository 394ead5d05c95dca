// Package coordinator is the Scan Coordinator of spec §4.1: a bounded
// worker pool that fans a candidate list out across the probe pipeline
// (§4.2) and folds successful outcomes into the scan's result set. Built
// the way the teacher builds internal/availability.Checker.CheckDomains
// — a job/result channel pair plus a fixed-size sync.WaitGroup worker
// pool, not a third-party pool library — generalized from a single
// availability signal to the full multi-stage probe pipeline.
package coordinator

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/benithors/dnstwistgo/internal/content"
	"github.com/benithors/dnstwistgo/internal/dnsprobe"
	"github.com/benithors/dnstwistgo/internal/fuzzy"
	"github.com/benithors/dnstwistgo/internal/httpprobe"
	"github.com/benithors/dnstwistgo/internal/ipclass"
	"github.com/benithors/dnstwistgo/internal/resolver"
	"github.com/benithors/dnstwistgo/internal/scantypes"
	"github.com/benithors/dnstwistgo/internal/spf"
	"github.com/rs/zerolog"
)

// PermutationSource is the external collaborator of spec §6:
// generate_permutations(domain) -> [Candidate], treated as a pure
// producer the coordinator never needs to know the internals of.
type PermutationSource interface {
	Generate(domain string) []scantypes.Candidate
}

type Coordinator struct {
	Permutations PermutationSource
	DNS          *dnsprobe.Client
	Resolver     *resolver.Resolver
	Log          zerolog.Logger
}

func New(perm PermutationSource, dns *dnsprobe.Client, res *resolver.Resolver, log zerolog.Logger) *Coordinator {
	return &Coordinator{Permutations: perm, DNS: dns, Resolver: res, Log: log}
}

func defaultOptions(opts scantypes.ScanOptions) scantypes.ScanOptions {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 2 * runtime.NumCPU()
	}
	if opts.TimeoutPerCandidate <= 0 {
		opts.TimeoutPerCandidate = 15_000
	}
	return opts
}

// AnalyzeDomain implements spec §6's analyze_domain(domain, opts) ->
// [ScanResult].
func (c *Coordinator) AnalyzeDomain(ctx context.Context, target string, opts scantypes.ScanOptions) []scantypes.ScanResult {
	candidates := c.Permutations.Generate(target)
	return c.AnalyzeChunk(ctx, target, candidates, opts)
}

// GetLiveMXDomains implements spec §6's get_live_mx_domains(domain, opts)
// -> [ScanResult], equivalent to AnalyzeDomain with MXOnly forced true.
func (c *Coordinator) GetLiveMXDomains(ctx context.Context, target string, opts scantypes.ScanOptions) []scantypes.ScanResult {
	opts.MXOnly = true
	return c.AnalyzeDomain(ctx, target, opts)
}

// AnalyzeChunk implements spec §6's analyze_chunk(candidates, target,
// opts) collaborator contract: the same pipeline as AnalyzeDomain, but
// the caller supplies the candidate list directly (the distributed
// fan-out entry point of §6).
func (c *Coordinator) AnalyzeChunk(ctx context.Context, target string, candidates []scantypes.Candidate, opts scantypes.ScanOptions) []scantypes.ScanResult {
	opts = defaultOptions(opts)
	target = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(target), "."))

	var fingerprint *scantypes.ContentFingerprint
	if opts.ContentHash {
		fp, err := content.BuildFingerprint(ctx, target)
		if err != nil {
			c.Log.Debug().Err(err).Str("target", target).Msg("target content fingerprint unavailable, disabling content_hash for this run")
		} else {
			fingerprint = fp
		}
	}

	type job struct {
		idx  int
		cand scantypes.Candidate
	}
	type jobResult struct {
		idx int
		res *scantypes.ScanResult
	}

	jobs := make(chan job)
	results := make(chan jobResult)

	workers := opts.MaxConcurrency
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := c.probeCandidate(ctx, j.cand, target, opts, fingerprint)
				results <- jobResult{idx: j.idx, res: res}
			}
		}()
	}

	go func() {
		for idx, cand := range candidates {
			select {
			case jobs <- job{idx: idx, cand: cand}:
			case <-ctx.Done():
			}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	collected := make([]*scantypes.ScanResult, len(candidates))
	for r := range results {
		collected[r.idx] = r.res
	}

	// collected is already keyed by input index (re-keying per spec §5's
	// ordering guarantee), so filterResults' output below is already in
	// input order; Ordered=false permits this same order as one valid
	// arbitrary ordering, so no further sort is needed either way.
	return filterResults(collected, target, opts)
}

// filterResults drops unresolvable probes (nil entries), the target
// domain itself, and — under MXOnly — candidates with no live MX
// records. Pulled out of AnalyzeChunk as a pure function so the
// coordinator-level filtering rules of spec §4.1 step 5 can be tested
// directly against synthetic ScanResult values, without standing up a
// live DNS/resolver pipeline.
func filterResults(collected []*scantypes.ScanResult, target string, opts scantypes.ScanOptions) []scantypes.ScanResult {
	out := make([]scantypes.ScanResult, 0, len(collected))
	for _, r := range collected {
		if r == nil {
			continue
		}
		if r.FQDN == target {
			continue
		}
		if opts.MXOnly && len(r.MXRecords) == 0 {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// probeCandidate runs the per-candidate pipeline of spec §4.2 under a
// wall-clock deadline. A timeout, or a stage-1 resolution failure,
// drops the probe (returns nil) rather than reporting an error.
func (c *Coordinator) probeCandidate(ctx context.Context, cand scantypes.Candidate, target string, opts scantypes.ScanOptions, fingerprint *scantypes.ContentFingerprint) *scantypes.ScanResult {
	deadline := time.Duration(opts.TimeoutPerCandidate) * time.Millisecond
	probeCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	resultCh := make(chan *scantypes.ScanResult, 1)
	go func() {
		resultCh <- c.runPipeline(probeCtx, cand, opts, fingerprint)
	}()

	select {
	case res := <-resultCh:
		return res
	case <-probeCtx.Done():
		c.Log.Debug().Str("fqdn", cand.FQDN).Msg("probe timed out, dropping")
		return nil
	}
}

func (c *Coordinator) runPipeline(ctx context.Context, cand scantypes.Candidate, opts scantypes.ScanOptions, fingerprint *scantypes.ContentFingerprint) *scantypes.ScanResult {
	// Stage 1: validate resolution. Any failure here gates the whole probe.
	resolution, err := c.DNS.Resolve(ctx, cand.FQDN, cand.TLD)
	if err != nil {
		return nil
	}

	res := scantypes.NewScanResult(cand)
	res.Resolvable = true
	res.IPAddresses = resolution.IPs

	cls := ipclass.Classify(resolution.IPs)
	res.PublicIPs = cls.Public
	res.InternalIPs = cls.Internal
	res.IPFlags = cls.Flags

	// Stage 2: auxiliary DNS, each independently best-effort.
	if mx, err := c.DNS.LookupMX(ctx, cand.FQDN); err == nil {
		res.MXRecords = convertMX(mx)
	}
	if txt, err := c.DNS.LookupTXT(ctx, cand.FQDN); err == nil {
		res.TXTRecords = txt
	}
	if ns, err := c.DNS.LookupNS(ctx, cand.FQDN); err == nil {
		res.Nameservers = ns
	}
	dmarc := c.DNS.LookupDMARC(ctx, cand.FQDN)
	res.DMARC = scantypes.DMARCReport{Tags: dmarc.Tags, Error: dmarc.Error}
	res.Wildcard = c.DNS.DetectWildcard(ctx, cand.FQDN)

	// Stage 3: SPF parse over the TXT records already fetched.
	res.SPFRecords = spf.Parse(res.TXTRecords)

	// Stage 4: HTTP fingerprint, only with a public IP to dial.
	if len(res.PublicIPs) > 0 {
		fp := httpprobe.Probe(ctx, cand.FQDN)
		res.ServerResponse = scantypes.HTTPFingerprint{
			StatusCode: fp.StatusCode,
			Server:     fp.Server,
			Headers:    fp.Headers,
			Status:     fp.Status,
			Reason:     fp.Reason,
		}
	} else {
		res.ServerResponse = scantypes.HTTPFingerprint{Status: "skipped", Reason: "no public IPs"}
	}

	// Stage 5: WHOIS/RDAP, only if requested.
	if opts.WHOIS && c.Resolver != nil {
		if rec, err := c.Resolver.Lookup(ctx, cand.FQDN); err == nil {
			res.WHOIS = rec
		}
	}

	// Stage 6: content similarity, only with a target fingerprint and a
	// public IP to fetch from.
	if fingerprint != nil && len(res.PublicIPs) > 0 {
		score := content.Compare(ctx, cand.FQDN, fingerprint)
		res.ContentHash = &score
	}

	// Stage 7: fuzzy scores, deterministic, no I/O.
	res.Fuzzy = fuzzy.Score(target, cand.FQDN)

	return res
}

func convertMX(records []dnsprobe.MXRecord) []scantypes.MXRecord {
	out := make([]scantypes.MXRecord, 0, len(records))
	for _, r := range records {
		out = append(out, scantypes.MXRecord{Priority: r.Priority, Server: r.Server})
	}
	return out
}
