package pixel

import (
	"context"
	"testing"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/cta"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	journey string
	install time.Time
}

func (m *memStore) DialogJourney(context.Context) (string, error)       { return m.journey, nil }
func (m *memStore) InstallTimestamp(context.Context) (time.Time, error) { return m.install, nil }

func newTestBuilder(store *memStore) *Builder {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	h := cta.NewHelper(store, store, nil, nil)
	h.SetClock(func() time.Time { return now })
	b := NewBuilder(h, "install-1", Client{Platform: "Linux", DeviceType: "desktop"})
	b.now = func() time.Time { return now }
	return b
}

func TestShownFirstTimeCarriesHistory(t *testing.T) {
	store := &memStore{journey: "i:0", install: time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)}
	b := newTestBuilder(store)

	res := b.Shown(context.Background(), cta.DaxSerp)
	require.True(t, res.Send)
	require.NotNil(t, res.Pixel)
	assert.Equal(t, "i:0-s:2", res.History)
	assert.Equal(t, "m_odc_s", res.Pixel.Name)
	assert.Equal(t, "i:0-s:2", res.Pixel.Params[ParamCta])
	assert.Equal(t, "install-1", res.Pixel.InstallID)
	assert.Equal(t, "desktop", res.Pixel.DeviceType)
	assert.NotEmpty(t, res.Pixel.ID)
}

func TestShownAgainIsSuppressed(t *testing.T) {
	store := &memStore{journey: "i:0-s:2"}
	b := newTestBuilder(store)

	res := b.Shown(context.Background(), cta.DaxSerp)
	assert.False(t, res.Send)
	assert.Nil(t, res.Pixel)
	assert.Empty(t, res.History)
}

func TestShownHomePanelAlwaysFires(t *testing.T) {
	store := &memStore{journey: "widget_auto:0"}
	b := newTestBuilder(store)

	res := b.Shown(context.Background(), cta.AddWidgetAuto)
	require.True(t, res.Send)
	assert.Equal(t, "m_wca_s", res.Pixel.Name)
	assert.Equal(t, "widget_auto", res.Pixel.Params[ParamCta])
	assert.Empty(t, res.History)
}

func TestOkAndCancel(t *testing.T) {
	b := newTestBuilder(&memStore{})

	ok := b.Ok(cta.DaxTrackersBlocked)
	require.NotNil(t, ok)
	assert.Equal(t, "m_odc_ok", ok.Name)
	assert.Equal(t, "t", ok.Params[ParamCta])

	assert.Nil(t, b.Cancel(cta.DaxTrackersBlocked))
	assert.Equal(t, "mus_cd", b.Cancel(cta.Survey).Name)
}

func TestResolveClient(t *testing.T) {
	c := ResolveClient("Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1")
	assert.Equal(t, "mobile", c.DeviceType)
	assert.Equal(t, "iPhone", c.Platform)

	assert.Equal(t, "other", ResolveClient("").DeviceType)
}
