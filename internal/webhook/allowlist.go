package webhook

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"
)

// defaultNetworks are the payment platform's published webhook egress ranges.
var defaultNetworks = []string{
	"159.255.220.240/28",
	"185.30.20.16/29",
	"185.30.21.16/29",
	"185.30.20.0/24",
	"185.30.21.0/24",
	"185.30.23.0/24",
	"35.236.90.90",
	"34.102.38.178",
}

var defaultAllowlist = MustParseAllowlist(defaultNetworks)

// DefaultNetworks returns a copy of the built-in sender allowlist.
func DefaultNetworks() []string {
	return slices.Clone(defaultNetworks)
}

// Allowlist is an immutable set of CIDR blocks and exact host addresses.
type Allowlist struct {
	prefixes []netip.Prefix
	networks []string
}

// ParseAllowlist parses each entry either as a CIDR block or, when it has no
// prefix length, as a single host (/32 for IPv4, /128 for IPv6).
func ParseAllowlist(networks []string) (*Allowlist, error) {
	a := &Allowlist{
		prefixes: make([]netip.Prefix, 0, len(networks)),
		networks: slices.Clone(networks),
	}

	for _, n := range networks {
		prefix, err := parseNetwork(n)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed network %q: %w", n, err)
		}
		a.prefixes = append(a.prefixes, prefix)
	}

	return a, nil
}

// MustParseAllowlist is like ParseAllowlist but panics on a malformed entry.
func MustParseAllowlist(networks []string) *Allowlist {
	a, err := ParseAllowlist(networks)
	if err != nil {
		panic(err)
	}
	return a
}

func parseNetwork(network string) (netip.Prefix, error) {
	if strings.Contains(network, "/") {
		prefix, err := netip.ParsePrefix(network)
		if err != nil {
			return netip.Prefix{}, err
		}
		return prefix.Masked(), nil
	}

	addr, err := netip.ParseAddr(network)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// Contains reports whether ip falls inside any entry. Unparsable input is
// never a member.
func (a *Allowlist) Contains(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range a.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// Networks returns the entries as they were given.
func (a *Allowlist) Networks() []string {
	return slices.Clone(a.networks)
}

// Len returns the number of entries.
func (a *Allowlist) Len() int {
	return len(a.prefixes)
}
