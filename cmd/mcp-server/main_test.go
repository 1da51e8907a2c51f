package main

import (
	"context"
	"testing"

	"github.com/patrickwarner/onboardingcta/internal/cta"
	"github.com/patrickwarner/onboardingcta/internal/db"
	"github.com/patrickwarner/onboardingcta/internal/models"
	"github.com/patrickwarner/onboardingcta/internal/resources"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTools(t *testing.T) (*CtaTools, *miniredis.Miniredis) {
	ms, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(ms.Close)
	store := &db.RedisStore{Client: redis.NewClient(&redis.Options{Addr: ms.Addr()})}
	return &CtaTools{store: store, resources: resources.English(), logger: zap.NewNop()}, ms
}

func TestTrackersTextTool(t *testing.T) {
	tools, _ := newTestTools(t)
	_, out, err := tools.TrackersText(context.Background(), nil, TrackersTextInput{Events: []models.TrackingEvent{
		{TrackerURL: "facebook.com", Blocked: true, Entity: &models.Entity{Name: "Facebook", DisplayName: "Facebook", Prevalence: 9.0}},
		{TrackerURL: "other.com", Blocked: true, Entity: &models.Entity{Name: "Other", DisplayName: "Other", Prevalence: 9.0}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "<b>Facebook, Other</b> trying to track you here. I blocked them!", out.Text)
}

func TestNetworkTools(t *testing.T) {
	tools, _ := newTestTools(t)

	_, out, err := tools.NetworkPercentage(context.Background(), nil, NetworkInput{Name: "Facebook"})
	require.NoError(t, err)
	assert.True(t, out.Known)
	assert.Equal(t, "40%", out.Percentage)

	_, out, err = tools.NetworkPercentage(context.Background(), nil, NetworkInput{Name: "Amazon"})
	require.NoError(t, err)
	assert.False(t, out.Known)

	_, same, err := tools.SameNetwork(context.Background(), nil, SameNetworkInput{Domain: "google"})
	require.NoError(t, err)
	assert.True(t, same.SameNetwork)
}

func TestEligibilityTool(t *testing.T) {
	tools, ms := newTestTools(t)
	require.NoError(t, ms.Set("onboarding:journey:abc", "s:0-t:1-s:2"))

	_, out, err := tools.Eligibility(context.Background(), nil, EligibilityInput{InstallID: "abc", Code: "s"})
	require.NoError(t, err)
	assert.False(t, out.Eligible)
	assert.Equal(t, "s:0-t:1-s:2", out.Journey)
	assert.Equal(t, []string{"s", "t"}, out.Shown)

	_, out, err = tools.Eligibility(context.Background(), nil, EligibilityInput{InstallID: "abc", Code: "e"})
	require.NoError(t, err)
	assert.True(t, out.Eligible)

	_, _, err = tools.Eligibility(context.Background(), nil, EligibilityInput{InstallID: "abc", Code: "zzz"})
	assert.ErrorIs(t, err, cta.ErrUnknownCta)
}

func TestNewMCPServerRegistersTools(t *testing.T) {
	tools, _ := newTestTools(t)
	assert.NotNil(t, newMCPServer(tools))
}
