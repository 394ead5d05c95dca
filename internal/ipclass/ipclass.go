// Package ipclass partitions resolved addresses into public and internal
// sets and tags them with the specific reason they're internal.
package ipclass

import (
	"strings"

	"github.com/benithors/dnstwistgo/internal/scantypes"
)

var bogus = map[string]struct{}{
	"127.0.0.1":       {},
	"0.0.0.0":         {},
	"255.255.255.255": {},
	"::1":             {},
	"localhost":       {},
}

// Classification is the result of partitioning a set of resolved
// addresses. Public and Internal are disjoint and their union is the
// input slice (in original order, duplicates preserved).
type Classification struct {
	Public   []string
	Internal []string
	Flags    []scantypes.IPFlag
}

// Classify partitions ip into public/internal per spec §4.4: bogus exact
// matches, then 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16 by string
// prefix.
func Classify(ips []string) Classification {
	c := Classification{Public: []string{}, Internal: []string{}, Flags: []scantypes.IPFlag{}}
	flagSet := map[scantypes.IPFlag]struct{}{}

	addFlag := func(f scantypes.IPFlag) {
		if _, ok := flagSet[f]; ok {
			return
		}
		flagSet[f] = struct{}{}
		c.Flags = append(c.Flags, f)
	}

	for _, ip := range ips {
		if _, ok := bogus[ip]; ok {
			c.Internal = append(c.Internal, ip)
			switch ip {
			case "127.0.0.1":
				addFlag(scantypes.FlagLocalhost)
			case "0.0.0.0":
				addFlag(scantypes.FlagNullRoute)
			}
			continue
		}

		switch {
		case strings.HasPrefix(ip, "10."):
			c.Internal = append(c.Internal, ip)
			addFlag(scantypes.FlagPrivate10)
		case strings.HasPrefix(ip, "192.168."):
			c.Internal = append(c.Internal, ip)
			addFlag(scantypes.FlagPrivate192)
		case isPrivate172(ip):
			c.Internal = append(c.Internal, ip)
			addFlag(scantypes.FlagPrivate172)
		default:
			c.Public = append(c.Public, ip)
		}
	}

	return c
}

// isPrivate172 matches 172.16.0.0 through 172.31.255.255 by checking the
// second octet is in [16,31], per spec §4.4 ("inclusive of each .XX.
// through the 16-31 range").
func isPrivate172(ip string) bool {
	if !strings.HasPrefix(ip, "172.") {
		return false
	}
	rest := ip[len("172."):]
	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return false
	}
	octet := rest[:dot]
	n := 0
	if len(octet) == 0 || len(octet) > 2 {
		return false
	}
	for i := 0; i < len(octet); i++ {
		if octet[i] < '0' || octet[i] > '9' {
			return false
		}
		n = n*10 + int(octet[i]-'0')
	}
	return n >= 16 && n <= 31
}
