package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/analytics"
	"github.com/patrickwarner/onboardingcta/internal/config"
	"github.com/patrickwarner/onboardingcta/internal/observability"
	"github.com/patrickwarner/onboardingcta/internal/pixel"

	"github.com/samber/lo"
)

// pixelSummary aggregates the pixels of one name.
type pixelSummary struct {
	Name  string    `json:"name"`
	Count int       `json:"count"`
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
	// CTAs lists the distinct cta parameter values seen, in first-seen order.
	CTAs []string `json:"ctas"`
}

// summarize groups pixels by name, ordered by name.
func summarize(pixels []pixel.Pixel) []pixelSummary {
	groups := lo.GroupBy(pixels, func(p pixel.Pixel) string { return p.Name })
	out := make([]pixelSummary, 0, len(groups))
	for name, ps := range groups {
		sort.Slice(ps, func(i, j int) bool { return ps[i].Timestamp.Before(ps[j].Timestamp) })
		out = append(out, pixelSummary{
			Name:  name,
			Count: len(ps),
			First: ps[0].Timestamp,
			Last:  ps[len(ps)-1].Timestamp,
			CTAs: lo.Uniq(lo.FilterMap(ps, func(p pixel.Pixel, _ int) (string, bool) {
				v, ok := p.Params[pixel.ParamCta]
				return v, ok && v != ""
			})),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// parseNames splits a comma separated -name value, dropping blanks.
func parseNames(raw string) []string {
	return lo.Uniq(lo.FilterMap(strings.Split(raw, ","), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	}))
}

func writeResult(w io.Writer, pixels []pixel.Pixel, summary bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if summary {
		return enc.Encode(summarize(pixels))
	}
	return enc.Encode(pixels)
}

func main() {
	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	var (
		id      string
		dsn     string
		names   string
		summary bool
	)
	flag.StringVar(&id, "install", "", "installation ID")
	flag.StringVar(&dsn, "dsn", "", "ClickHouse DSN")
	flag.StringVar(&names, "name", "", "comma separated pixel names to include, e.g. m_odc_s,m_odc_ok")
	flag.BoolVar(&summary, "summary", false, "print per pixel name counts instead of raw pixels")
	flag.Parse()

	if id == "" {
		fmt.Fprintln(os.Stderr, "install required")
		os.Exit(1)
	}
	if dsn == "" {
		dsn = config.Load().ClickHouseDSN
	}

	if err := run(context.Background(), dsn, id, parseNames(names), summary); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, dsn, id string, names []string, summary bool) error {
	ch, err := analytics.InitClickHouse(ctx, dsn, 2, observability.NewNoOpRegistry())
	if err != nil {
		return fmt.Errorf("connect clickhouse: %w", err)
	}
	defer func() { _ = ch.Close() }()

	pixels, err := ch.PixelsByInstall(ctx, id, names...)
	if err != nil {
		return fmt.Errorf("query pixels: %w", err)
	}
	if err := writeResult(os.Stdout, pixels, summary); err != nil {
		return fmt.Errorf("encode pixels: %w", err)
	}
	return nil
}
