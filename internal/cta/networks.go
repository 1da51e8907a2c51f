package cta

import (
	"strings"

	"github.com/samber/lo"
)

// networkPercentages is the share of top sites on which each major network
// has been observed.
var networkPercentages = map[string]string{
	"Google":   "90%",
	"Facebook": "40%",
}

// mainTrackerDomains are the lowercase identifiers whose own domains count as
// part of the network itself.
var mainTrackerDomains = []string{"facebook", "google"}

// GetNetworkPercentage returns the display percentage for a network's
// canonical name. Matching is case-sensitive; unknown names yield
// ErrNetworkNotFound.
func GetNetworkPercentage(name string) (string, error) {
	pct, ok := networkPercentages[name]
	if !ok {
		return "", ErrNetworkNotFound
	}
	return pct, nil
}

// IsFromSameNetworkDomain reports whether domain belongs to one of the main
// tracker networks, ignoring case.
func IsFromSameNetworkDomain(domain string) bool {
	d := strings.ToLower(domain)
	return lo.ContainsBy(mainTrackerDomains, func(network string) bool {
		return strings.Contains(d, network)
	})
}
