// Package resources supplies the display strings used by onboarding CTAs.
package resources

import "fmt"

// Keys for the strings the CTA helper asks for.
const (
	KeyTrackersBlockedZero     = "daxTrackersBlockedCtaZeroText"
	KeyTrackersBlockedMultiple = "daxTrackersBlockedCtaText"
	KeyMainNetwork             = "daxMainNetworkCtaText"
	KeyMainNetworkOwned        = "daxMainNetworkOwnedCtaText"
)

// Provider resolves display strings by key. Quantity selects the plural form
// for n before formatting.
type Provider interface {
	String(key string, args ...any) string
	Quantity(key string, n int, args ...any) string
}

// plural holds the singular and plural forms of a quantity string.
type plural struct {
	one   string
	other string
}

// Catalog is a fixed in-memory Provider. Unknown keys resolve to the key
// itself so a missing string is visible rather than blank.
type Catalog struct {
	strings map[string]string
	plurals map[string]plural
}

// English returns the default catalog.
func English() *Catalog {
	return &Catalog{
		strings: map[string]string{
			KeyTrackersBlockedZero: " trying to track you here. I blocked them!",
			KeyMainNetwork:         "Heads up! %s is a major tracking network. Their trackers lurk on about %s of top sites 😱 but don't worry!",
			KeyMainNetworkOwned:    "Heads up! Since %s owns %s, I can't stop them from seeing your activity here.",
		},
		plurals: map[string]plural{
			KeyTrackersBlockedMultiple: {
				one:   " and <b>%d other</b> were trying to track you here. I blocked them!",
				other: " and <b>%d others</b> were trying to track you here. I blocked them!",
			},
		},
	}
}

func (c *Catalog) String(key string, args ...any) string {
	s, ok := c.strings[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return s
	}
	return fmt.Sprintf(s, args...)
}

func (c *Catalog) Quantity(key string, n int, args ...any) string {
	p, ok := c.plurals[key]
	if !ok {
		return key
	}
	s := p.other
	if n == 1 {
		s = p.one
	}
	if len(args) == 0 {
		return s
	}
	return fmt.Sprintf(s, args...)
}
