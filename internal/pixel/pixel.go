// Package pixel builds the analytics pixels fired by onboarding CTAs.
package pixel

import (
	"context"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/cta"

	"github.com/avct/uasurfer"
	"github.com/google/uuid"
)

// ParamCta carries the CTA code, or the updated journey for shown pixels of
// history-tracking CTAs.
const ParamCta = "cta"

// Pixel is a single analytics signal.
type Pixel struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	InstallID  string            `json:"install_id"`
	Params     map[string]string `json:"params"`
	Platform   string            `json:"platform"`
	DeviceType string            `json:"device_type"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Client describes the device that reported an interaction.
type Client struct {
	Platform   string
	DeviceType string
}

// ResolveClient derives the platform and device type from a User-Agent.
func ResolveClient(userAgent string) Client {
	u := uasurfer.Parse(userAgent)

	var deviceType string
	switch u.DeviceType {
	case uasurfer.DeviceComputer:
		deviceType = "desktop"
	case uasurfer.DevicePhone:
		deviceType = "mobile"
	case uasurfer.DeviceTablet:
		deviceType = "tablet"
	default:
		deviceType = "other"
	}
	return Client{Platform: u.OS.Platform.StringTrimPrefix(), DeviceType: deviceType}
}

// ShownResult is the outcome of a CTA being shown.
// History is the journey to persist and is only set when Send is true for a
// history-tracking CTA.
type ShownResult struct {
	Pixel   *Pixel
	Send    bool
	History string
}

// Builder creates pixels for one installation.
type Builder struct {
	helper    *cta.Helper
	installID string
	client    Client
	now       func() time.Time
}

// NewBuilder constructs a Builder for installID reporting from client.
func NewBuilder(helper *cta.Helper, installID string, client Client) *Builder {
	return &Builder{helper: helper, installID: installID, client: client, now: time.Now}
}

func (b *Builder) newPixel(name string, params map[string]string) *Pixel {
	return &Pixel{
		ID:         uuid.NewString(),
		Name:       name,
		InstallID:  b.installID,
		Params:     params,
		Platform:   b.client.Platform,
		DeviceType: b.client.DeviceType,
		Timestamp:  b.now().UTC(),
	}
}

// Shown decides whether kind's shown pixel fires. Home panel CTAs always fire;
// other CTAs fire the first time only and carry the updated journey.
func (b *Builder) Shown(ctx context.Context, kind cta.Kind) ShownResult {
	name := kind.ShownPixel()
	if name == "" {
		return ShownResult{}
	}
	if !b.helper.CanSendPixel(ctx, kind) {
		return ShownResult{}
	}
	if !kind.TracksHistory() {
		return ShownResult{Pixel: b.newPixel(name, map[string]string{ParamCta: kind.Code()}), Send: true}
	}
	history := b.helper.AddCtaToHistory(ctx, kind.Code())
	return ShownResult{
		Pixel:   b.newPixel(name, map[string]string{ParamCta: history}),
		Send:    true,
		History: history,
	}
}

// Ok returns kind's ok pixel, or nil when it has none.
func (b *Builder) Ok(kind cta.Kind) *Pixel {
	return b.interaction(kind.OkPixel(), kind)
}

// Cancel returns kind's cancel pixel, or nil when it has none.
func (b *Builder) Cancel(kind cta.Kind) *Pixel {
	return b.interaction(kind.CancelPixel(), kind)
}

func (b *Builder) interaction(name string, kind cta.Kind) *Pixel {
	if name == "" {
		return nil
	}
	return b.newPixel(name, map[string]string{ParamCta: kind.Code()})
}
