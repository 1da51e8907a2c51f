// Package cta decides which onboarding calls-to-action may fire their
// analytics pixels and builds the text shown in the Dax dialogs.
package cta

import (
	"context"
	"strings"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/models"
	"github.com/patrickwarner/onboardingcta/internal/observability"
	"github.com/patrickwarner/onboardingcta/internal/resources"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// maxTrackersShown is how many network names the trackers blocked message
// names explicitly.
const maxTrackersShown = 2

// Helper reads the onboarding journey and install time for one installation.
// It never writes to either store; callers persist what it returns.
type Helper struct {
	onboarding OnboardingStore
	install    InstallStore
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
	now        func() time.Time
}

// NewHelper constructs a Helper. A nil logger or metrics registry is replaced
// with a no-op implementation.
func NewHelper(onboarding OnboardingStore, install InstallStore, logger *zap.Logger, metrics observability.MetricsRegistry) *Helper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Helper{
		onboarding: onboarding,
		install:    install,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}

// SetClock overrides the wall clock used for day index computation.
func (h *Helper) SetClock(now func() time.Time) {
	if now != nil {
		h.now = now
	}
}

// journey returns the stored history string, or "" when it is absent or
// cannot be read.
func (h *Helper) journey(ctx context.Context) string {
	if h.onboarding == nil {
		return ""
	}
	raw, err := h.onboarding.DialogJourney(ctx)
	if err != nil {
		h.logger.Warn("read dialog journey", zap.Error(err))
		h.metrics.IncrementStoreErrors("read_journey")
		return ""
	}
	return raw
}

func (h *Helper) installedAt(ctx context.Context) time.Time {
	now := h.now()
	if h.install == nil {
		return now
	}
	ts, err := h.install.InstallTimestamp(ctx)
	if err != nil {
		h.logger.Warn("read install timestamp", zap.Error(err))
		h.metrics.IncrementStoreErrors("read_install")
		return now
	}
	if ts.IsZero() {
		return now
	}
	return ts
}

// AddCtaToHistory returns the stored journey with an entry for code appended.
// The entry's day is the number of whole days since install, capped at
// MaxDayIndex.
func (h *Helper) AddCtaToHistory(ctx context.Context, code string) string {
	day := DayIndex(h.installedAt(ctx), h.now())
	updated := AppendEntry(h.journey(ctx), Entry{Code: code, Day: day})

	family := "unknown"
	if k, err := ParseKind(code); err == nil {
		family = k.Family().String()
	}
	h.metrics.IncrementHistoryAppends(family)
	h.logger.Debug("cta added to history",
		zap.String("code", code),
		zap.Int("day", day),
		zap.String("history", updated),
	)
	return updated
}

// CanSendPixel reports whether the CTA may fire its shown pixel. Home panel
// CTAs always may, unknown kinds never do, and every other kind fires once
// per journey.
func (h *Helper) CanSendPixel(ctx context.Context, kind Kind) bool {
	family := kind.Family().String()
	if !kind.Valid() {
		h.metrics.IncrementPixelDecisions(family, "unknown")
		return false
	}
	if !kind.TracksHistory() {
		h.metrics.IncrementPixelDecisions(family, "allowed")
		return true
	}

	allowed := !ParseHistory(h.journey(ctx)).Contains(kind.Code())
	outcome := "allowed"
	if !allowed {
		outcome = "duplicate"
	}
	h.metrics.IncrementPixelDecisions(family, outcome)
	return allowed
}

// GetNetworkPercentage returns the display percentage for a major network.
func (h *Helper) GetNetworkPercentage(name string) (string, error) {
	return GetNetworkPercentage(name)
}

// IsFromSameNetworkDomain reports whether domain belongs to a main tracker network.
func (h *Helper) IsFromSameNetworkDomain(domain string) bool {
	return IsFromSameNetworkDomain(domain)
}

// majorNetworkNames returns the display names of the major entities among
// blocked, de-duplicated in first-seen order.
func majorNetworkNames(blocked []models.TrackingEvent) []string {
	names := lo.FilterMap(blocked, func(ev models.TrackingEvent, _ int) (string, bool) {
		if !ev.Entity.IsMajor() {
			return "", false
		}
		if ev.Entity.DisplayName != "" {
			return ev.Entity.DisplayName, true
		}
		return ev.Entity.Name, ev.Entity.Name != ""
	})
	return lo.Uniq(names)
}

// TrackersBlockedText names up to two major networks among the blocked events
// in bold, followed by a phrase for the blocked events not named.
func (h *Helper) TrackersBlockedText(res resources.Provider, events []models.TrackingEvent) string {
	blocked := models.BlockedEvents(events)
	shown := majorNetworkNames(blocked)
	if len(shown) > maxTrackersShown {
		shown = shown[:maxTrackersShown]
	}

	remaining := len(blocked) - len(shown)
	var phrase string
	if remaining == 0 {
		phrase = res.String(resources.KeyTrackersBlockedZero)
		h.metrics.IncrementTrackersTextRenders("zero")
	} else {
		phrase = res.Quantity(resources.KeyTrackersBlockedMultiple, remaining, remaining)
		h.metrics.IncrementTrackersTextRenders("multiple")
	}
	return "<b>" + strings.Join(shown, ", ") + "</b>" + phrase
}

// MainNetworkName returns the first blocked major network that has a
// percentage entry, and false when there is none.
func (h *Helper) MainNetworkName(events []models.TrackingEvent) (string, bool) {
	return lo.Find(majorNetworkNames(models.BlockedEvents(events)), func(name string) bool {
		_, err := GetNetworkPercentage(name)
		return err == nil
	})
}

// MainNetworkText builds the main network dialog text for network as seen on
// host. When host is owned by a main network the ownership variant is used.
func (h *Helper) MainNetworkText(res resources.Provider, network, host string) (string, error) {
	if IsFromSameNetworkDomain(host) {
		return res.String(resources.KeyMainNetworkOwned, network, network), nil
	}
	pct, err := GetNetworkPercentage(network)
	if err != nil {
		return "", err
	}
	return res.String(resources.KeyMainNetwork, network, pct), nil
}
