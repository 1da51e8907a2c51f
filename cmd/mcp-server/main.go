package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/patrickwarner/onboardingcta/internal/config"
	"github.com/patrickwarner/onboardingcta/internal/cta"
	"github.com/patrickwarner/onboardingcta/internal/db"
	"github.com/patrickwarner/onboardingcta/internal/models"
	"github.com/patrickwarner/onboardingcta/internal/observability"
	"github.com/patrickwarner/onboardingcta/internal/resources"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type TrackersTextInput struct {
	Events []models.TrackingEvent `json:"events" jsonschema:"tracker requests observed on the page"`
}

type TrackersTextOutput struct {
	Text string `json:"text"`
}

type NetworkInput struct {
	Name string `json:"name" jsonschema:"canonical network name, e.g. Google"`
}

type NetworkOutput struct {
	Name       string `json:"name"`
	Percentage string `json:"percentage,omitempty"`
	Known      bool   `json:"known"`
}

type SameNetworkInput struct {
	Domain string `json:"domain" jsonschema:"domain or network identifier"`
}

type SameNetworkOutput struct {
	SameNetwork bool `json:"same_network"`
}

type EligibilityInput struct {
	InstallID string `json:"install_id" jsonschema:"installation identifier"`
	Code      string `json:"code" jsonschema:"CTA short code, e.g. s or widget_auto"`
}

type EligibilityOutput struct {
	Eligible bool     `json:"eligible"`
	Journey  string   `json:"journey"`
	Shown    []string `json:"shown" jsonschema:"distinct CTA codes already in the journey, in first-seen order"`
}

// CtaTools exposes the CTA helper as MCP tools.
type CtaTools struct {
	store     *db.RedisStore
	resources resources.Provider
	logger    *zap.Logger
}

func (s *CtaTools) TrackersText(ctx context.Context, req *mcp.CallToolRequest, input TrackersTextInput) (*mcp.CallToolResult, TrackersTextOutput, error) {
	h := cta.NewHelper(nil, nil, s.logger, nil)
	return nil, TrackersTextOutput{Text: h.TrackersBlockedText(s.resources, input.Events)}, nil
}

func (s *CtaTools) NetworkPercentage(ctx context.Context, req *mcp.CallToolRequest, input NetworkInput) (*mcp.CallToolResult, NetworkOutput, error) {
	pct, err := cta.GetNetworkPercentage(input.Name)
	if err != nil {
		return nil, NetworkOutput{Name: input.Name}, nil
	}
	return nil, NetworkOutput{Name: input.Name, Percentage: pct, Known: true}, nil
}

func (s *CtaTools) SameNetwork(ctx context.Context, req *mcp.CallToolRequest, input SameNetworkInput) (*mcp.CallToolResult, SameNetworkOutput, error) {
	return nil, SameNetworkOutput{SameNetwork: cta.IsFromSameNetworkDomain(input.Domain)}, nil
}

// Eligibility reports whether a CTA's shown pixel would still fire for an
// installation, without recording anything.
func (s *CtaTools) Eligibility(ctx context.Context, req *mcp.CallToolRequest, input EligibilityInput) (*mcp.CallToolResult, EligibilityOutput, error) {
	if s.store == nil {
		return nil, EligibilityOutput{}, db.ErrNilRedisStore
	}
	kind, err := cta.ParseKind(input.Code)
	if err != nil {
		return nil, EligibilityOutput{}, fmt.Errorf("%w: %q", err, input.Code)
	}
	scope := s.store.Install(input.InstallID)
	journey, err := scope.DialogJourney(ctx)
	if err != nil {
		return nil, EligibilityOutput{}, err
	}
	h := cta.NewHelper(scope, scope, s.logger, nil)
	return nil, EligibilityOutput{
		Eligible: h.CanSendPixel(ctx, kind),
		Journey:  journey,
		Shown:    cta.ParseHistory(journey).Codes(),
	}, nil
}

func newMCPServer(tools *CtaTools) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "onboarding-cta",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "trackers_blocked_text",
		Description: "Render the trackers blocked onboarding message for a list of tracker events",
	}, tools.TrackersText)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "network_percentage",
		Description: "Share of top sites on which a major tracker network is present",
	}, tools.NetworkPercentage)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "same_network_domain",
		Description: "Whether a domain belongs to a main tracker network",
	}, tools.SameNetwork)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "cta_pixel_eligibility",
		Description: "Whether a CTA's shown pixel would still fire for an installation",
	}, tools.Eligibility)
	return server
}

func main() {
	logger, err := observability.InitLoggerWithService("onboarding-cta-mcp")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	err = run(context.Background(), logger, config.Load())
	if err != nil {
		logger.Error("Server error", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *zap.Logger, cfg config.Config) error {
	tools := &CtaTools{resources: resources.English(), logger: logger}
	store, err := db.InitRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, eligibility tool disabled", zap.Error(err))
	} else {
		defer store.Close()
		tools.store = store
	}

	var logBuffer bytes.Buffer
	transport := &mcp.LoggingTransport{
		Transport: &mcp.StdioTransport{},
		Writer:    &logBuffer,
	}

	logger.Info("MCP Server running via stdio")
	if err := newMCPServer(tools).Run(ctx, transport); err != nil {
		return fmt.Errorf("%w (mcp logs: %s)", err, logBuffer.String())
	}
	return nil
}
