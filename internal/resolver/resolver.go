// Package resolver composes the RDAP and WHOIS clients into the single
// RDAP-first/WHOIS-fallback lookup(domain) collaborator described in
// spec §4.7 and §6: attempt RDAP; on any RDAP error, attempt WHOIS; iff
// both fail, surface the WHOIS error.
package resolver

import (
	"context"
	"time"

	"github.com/benithors/dnstwistgo/internal/rdap"
	"github.com/benithors/dnstwistgo/internal/scantypes"
	"github.com/benithors/dnstwistgo/internal/whois"
)

type Resolver struct {
	rdapClient  *rdap.Client
	whoisClient *whois.Client
}

func New(rdapOpts rdap.Options, whoisOpts whois.Options) *Resolver {
	return &Resolver{
		rdapClient:  rdap.NewClient(rdapOpts),
		whoisClient: whois.NewClient(whoisOpts),
	}
}

// Lookup implements spec §4.7's Strategy: RDAP first, WHOIS fallback on
// any RDAP error.
func (r *Resolver) Lookup(ctx context.Context, fqdn string) (*scantypes.WhoisRecord, error) {
	rec, rdapErr := r.rdapClient.Lookup(ctx, fqdn)
	if rdapErr == nil {
		return rec, nil
	}

	rec, whoisErr := r.whoisClient.Lookup(ctx, fqdn)
	if whoisErr == nil {
		return rec, nil
	}

	return nil, whoisErr
}

// IsRegistered implements spec §4.7's is_registered? helper against this
// resolver's Lookup outcome.
func (r *Resolver) IsRegistered(ctx context.Context, fqdn string) (bool, error) {
	rec, err := r.Lookup(ctx, fqdn)
	return whois.IsRegistered(rec, err)
}

// defaultTimeout mirrors the per-operation ceilings in spec §4.2's
// suspension-point table; callers constrain the outer context further
// per candidate.
const defaultTimeout = 15 * time.Second
