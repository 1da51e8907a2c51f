package cta

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/models"
	"github.com/patrickwarner/onboardingcta/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type journeyFunc func(ctx context.Context) (string, error)

func (f journeyFunc) DialogJourney(ctx context.Context) (string, error) { return f(ctx) }

type installFunc func(ctx context.Context) (time.Time, error)

func (f installFunc) InstallTimestamp(ctx context.Context) (time.Time, error) { return f(ctx) }

// stubResources mirrors a provider that returns fixed markers for each form.
type stubResources struct{}

func (stubResources) String(key string, args ...any) string          { return "withZero" }
func (stubResources) Quantity(key string, n int, args ...any) string { return "withMultiple" }

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestHelper(journey string, installedAgo time.Duration) (*Helper, *observability.MockMetricsRegistry) {
	metrics := observability.NewMockMetricsRegistry()
	h := NewHelper(
		journeyFunc(func(context.Context) (string, error) { return journey, nil }),
		installFunc(func(context.Context) (time.Time, error) { return testNow.Add(-installedAgo), nil }),
		nil,
		metrics,
	)
	h.SetClock(func() time.Time { return testNow })
	return h, metrics
}

func TestAddCtaToHistory(t *testing.T) {
	day := 24 * time.Hour
	tests := []struct {
		name         string
		journey      string
		installedAgo time.Duration
		want         string
	}{
		{"empty history on install day", "", 0, "test:0"},
		{"day three", "", 3 * day, "test:3"},
		{"day four clamps to three", "", 4 * day, "test:3"},
		{"a year later clamps to three", "", 365 * day, "test:3"},
		{"just under one day", "", day - time.Second, "test:0"},
		{"existing history is concatenated", "s:0-t:1", day, "s:0-t:1-test:1"},
		{"install in the future clamps to zero", "", -2 * day, "test:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHelper(tt.journey, tt.installedAgo)
			assert.Equal(t, tt.want, h.AddCtaToHistory(context.Background(), "test"))
		})
	}
}

func TestAddCtaToHistoryStoreErrors(t *testing.T) {
	metrics := observability.NewMockMetricsRegistry()
	h := NewHelper(
		journeyFunc(func(context.Context) (string, error) { return "", errors.New("boom") }),
		installFunc(func(context.Context) (time.Time, error) { return time.Time{}, errors.New("boom") }),
		nil,
		metrics,
	)
	h.SetClock(func() time.Time { return testNow })

	assert.Equal(t, "e:0", h.AddCtaToHistory(context.Background(), "e"))
	assert.Equal(t, 1, metrics.Count("store_errors:read_journey"))
	assert.Equal(t, 1, metrics.Count("store_errors:read_install"))
	assert.Equal(t, 1, metrics.Count("history_appends:dax_bubble"))
}

func TestAddCtaToHistoryNilStores(t *testing.T) {
	h := NewHelper(nil, nil, nil, nil)
	assert.Equal(t, "x:0", h.AddCtaToHistory(context.Background(), "x"))
}

func TestCanSendPixel(t *testing.T) {
	tests := []struct {
		name    string
		journey string
		kind    Kind
		want    bool
	}{
		{"cta not part of history", "s:0", DaxEnd, true},
		{"cta part of history", "e:0", DaxEnd, false},
		{"cta part of history on a later day", "s:0-e:3", DaxEnd, false},
		{"empty history", "", DaxSerp, true},
		{"malformed history", "garbage", DaxSerp, true},
		{"home panel ignores history", "widget_auto:0", AddWidgetAuto, true},
		{"code prefix is not a match", "ex:0", DaxEnd, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHelper(tt.journey, 0)
			assert.Equal(t, tt.want, h.CanSendPixel(context.Background(), tt.kind))
		})
	}
}

func TestCanSendPixelHomePanelSkipsStore(t *testing.T) {
	h := NewHelper(
		journeyFunc(func(context.Context) (string, error) {
			t.Fatal("home panel CTA must not read the journey")
			return "", nil
		}),
		nil, nil, nil,
	)
	for _, k := range []Kind{Survey, DeviceShortcuts, AddWidgetAuto, AddWidgetInstructions} {
		assert.True(t, h.CanSendPixel(context.Background(), k), k.String())
	}
}

func TestCanSendPixelRecordsOutcome(t *testing.T) {
	h, metrics := newTestHelper("e:0", 0)
	h.CanSendPixel(context.Background(), DaxEnd)
	h.CanSendPixel(context.Background(), DaxSerp)

	assert.Equal(t, 1, metrics.Count("pixel_decisions:dax_bubble:duplicate"))
	assert.Equal(t, 1, metrics.Count("pixel_decisions:dax_dialog:allowed"))
}

func TestGetNetworkPercentage(t *testing.T) {
	h, _ := newTestHelper("", 0)

	pct, err := h.GetNetworkPercentage("Google")
	require.NoError(t, err)
	assert.Equal(t, "90%", pct)

	pct, err = h.GetNetworkPercentage("Facebook")
	require.NoError(t, err)
	assert.Equal(t, "40%", pct)

	_, err = h.GetNetworkPercentage("google")
	assert.ErrorIs(t, err, ErrNetworkNotFound)

	_, err = h.GetNetworkPercentage("Amazon")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestIsFromSameNetworkDomain(t *testing.T) {
	h, _ := newTestHelper("", 0)

	assert.True(t, h.IsFromSameNetworkDomain("facebook"))
	assert.True(t, h.IsFromSameNetworkDomain("google"))
	assert.True(t, h.IsFromSameNetworkDomain("Google"))
	assert.True(t, h.IsFromSameNetworkDomain("www.facebook.com"))
	assert.False(t, h.IsFromSameNetworkDomain("amazon"))
	assert.False(t, h.IsFromSameNetworkDomain(""))
}

func blockedEvent(domain, name string, prevalence float64) models.TrackingEvent {
	return models.TrackingEvent{
		DocumentURL: domain,
		TrackerURL:  domain,
		Blocked:     true,
		Entity:      &models.Entity{Name: name, DisplayName: name, Prevalence: prevalence},
	}
}

func TestTrackersBlockedText(t *testing.T) {
	tests := []struct {
		name   string
		events []models.TrackingEvent
		want   string
	}{
		{
			name: "more than two major trackers returns first two with multiple string",
			events: []models.TrackingEvent{
				blockedEvent("facebook.com", "Facebook", 9.0),
				blockedEvent("other.com", "Other", 9.0),
				blockedEvent("amazon.com", "Amazon", 9.0),
			},
			want: "<b>Facebook, Other</b>withMultiple",
		},
		{
			name: "two major trackers returns them with zero string",
			events: []models.TrackingEvent{
				blockedEvent("facebook.com", "Facebook", 9.0),
				blockedEvent("other.com", "Other", 9.0),
			},
			want: "<b>Facebook, Other</b>withZero",
		},
		{
			name: "one major tracker returns it with multiple string",
			events: []models.TrackingEvent{
				blockedEvent("facebook.com", "Facebook", 9.0),
				blockedEvent("other.com", "Other", 3.0),
			},
			want: "<b>Facebook</b>withMultiple",
		},
		{
			name: "trackers from the same network return only one",
			events: []models.TrackingEvent{
				blockedEvent("facebook.com", "Facebook", 9.0),
				blockedEvent("facebook.com", "Facebook", 9.0),
				blockedEvent("facebook.com", "Facebook", 9.0),
			},
			want: "<b>Facebook</b>withMultiple",
		},
		{
			name:   "no events",
			events: nil,
			want:   "<b></b>withZero",
		},
		{
			name: "non blocked events are ignored",
			events: []models.TrackingEvent{
				blockedEvent("facebook.com", "Facebook", 9.0),
				{TrackerURL: "google.com", Entity: &models.Entity{Name: "Google", DisplayName: "Google", Prevalence: 9.0}},
			},
			want: "<b>Facebook</b>withZero",
		},
		{
			name: "events without entity count as remaining",
			events: []models.TrackingEvent{
				blockedEvent("facebook.com", "Facebook", 9.0),
				{TrackerURL: "unknown.com", Blocked: true},
			},
			want: "<b>Facebook</b>withMultiple",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHelper("", 0)
			assert.Equal(t, tt.want, h.TrackersBlockedText(stubResources{}, tt.events))
		})
	}
}

type recordingResources struct {
	quantities []int
}

func (r *recordingResources) String(key string, args ...any) string { return "" }
func (r *recordingResources) Quantity(key string, n int, args ...any) string {
	r.quantities = append(r.quantities, n)
	return ""
}

func TestTrackersBlockedTextRemainderQuantity(t *testing.T) {
	h, metrics := newTestHelper("", 0)
	res := &recordingResources{}
	h.TrackersBlockedText(res, []models.TrackingEvent{
		blockedEvent("facebook.com", "Facebook", 9.0),
		blockedEvent("facebook.net", "Facebook", 9.0),
		blockedEvent("other.com", "Other", 3.0),
		blockedEvent("amazon.com", "Amazon", 9.0),
		blockedEvent("google.com", "Google", 9.0),
	})
	assert.Equal(t, []int{3}, res.quantities)
	assert.Equal(t, 1, metrics.Count("trackers_text:multiple"))
}

func TestMainNetworkName(t *testing.T) {
	h, _ := newTestHelper("", 0)

	name, ok := h.MainNetworkName([]models.TrackingEvent{
		blockedEvent("amazon.com", "Amazon", 9.0),
		blockedEvent("google.com", "Google", 9.0),
	})
	assert.True(t, ok)
	assert.Equal(t, "Google", name)

	_, ok = h.MainNetworkName([]models.TrackingEvent{blockedEvent("other.com", "Other", 9.0)})
	assert.False(t, ok)
}

type formatResources struct{}

func (formatResources) String(key string, args ...any) string {
	return key + fmtArgs(args)
}
func (formatResources) Quantity(key string, n int, args ...any) string { return key }

func fmtArgs(args []any) string {
	s := ""
	for _, a := range args {
		s += "|" + a.(string)
	}
	return s
}

func TestMainNetworkText(t *testing.T) {
	h, _ := newTestHelper("", 0)

	text, err := h.MainNetworkText(formatResources{}, "Google", "news.example.com")
	require.NoError(t, err)
	assert.Equal(t, "daxMainNetworkCtaText|Google|90%", text)

	text, err = h.MainNetworkText(formatResources{}, "Facebook", "m.facebook.com")
	require.NoError(t, err)
	assert.Equal(t, "daxMainNetworkOwnedCtaText|Facebook|Facebook", text)

	_, err = h.MainNetworkText(formatResources{}, "Amazon", "example.com")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestCanSendPixelUnknownKind(t *testing.T) {
	h, metrics := newTestHelper("", 0)
	assert.False(t, h.CanSendPixel(context.Background(), Kind(99)))
	assert.Equal(t, 1, metrics.Count("pixel_decisions:unknown:unknown"))
}
