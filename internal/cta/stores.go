package cta

import (
	"context"
	"time"
)

// OnboardingStore supplies the persisted onboarding dialog journey.
// An empty string means no CTA has been recorded yet.
type OnboardingStore interface {
	DialogJourney(ctx context.Context) (string, error)
}

// InstallStore supplies the time the application was installed.
type InstallStore interface {
	InstallTimestamp(ctx context.Context) (time.Time, error)
}
