package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/patrickwarner/onboardingcta/internal/observability"
	"github.com/patrickwarner/onboardingcta/internal/pixel"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/XSAM/otelsql"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = errors.New("analytics unavailable")

// PixelRecorder persists fired pixels. Implementations return ErrUnavailable
// when their storage is not configured.
type PixelRecorder interface {
	Record(ctx context.Context, p *pixel.Pixel) error
}

// ClickHouse records pixels into the pixels table.
type ClickHouse struct {
	DB      *sql.DB
	Metrics observability.MetricsRegistry
}

const createPixelsTable = `CREATE TABLE IF NOT EXISTS pixels (
       id           String,
       timestamp    DateTime,
       name         String,
       install_id   String,
       platform     String,
       device_type  String,
       params       Map(String, String)
   ) ENGINE=MergeTree() ORDER BY (name, timestamp)`

const insertPixel = `INSERT INTO pixels (id, timestamp, name, install_id, platform, device_type, params) VALUES (?, ?, ?, ?, ?, ?, ?)`

const selectPixelsByInstall = `SELECT id, timestamp, name, install_id, platform, device_type, params FROM pixels WHERE install_id = ?`

// InitClickHouse connects to ClickHouse and ensures the pixels table exists.
func InitClickHouse(ctx context.Context, dsn string, maxOpenConns int, metrics observability.MetricsRegistry) (*ClickHouse, error) {
	driverName, err := otelsql.Register("clickhouse",
		otelsql.WithAttributes(attribute.String("db.system", "clickhouse")),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	return openClickHouse(ctx, db, metrics)
}

// openClickHouse verifies db and bootstraps the pixels table. db is closed
// when either step fails.
func openClickHouse(ctx context.Context, db *sql.DB, metrics observability.MetricsRegistry) (*ClickHouse, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, createPixelsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse")
	return &ClickHouse{DB: db, Metrics: metrics}, nil
}

// Record inserts a single pixel row.
func (c *ClickHouse) Record(ctx context.Context, p *pixel.Pixel) error {
	if c == nil || c.DB == nil {
		return ErrUnavailable
	}
	if p == nil {
		return nil
	}
	params := p.Params
	if params == nil {
		params = map[string]string{}
	}
	_, err := c.DB.ExecContext(ctx, insertPixel,
		p.ID, p.Timestamp, p.Name, p.InstallID, p.Platform, p.DeviceType, params)
	if err != nil {
		c.metrics().IncrementPixels(p.Name, "error")
		return fmt.Errorf("insert pixel: %w", err)
	}
	c.metrics().IncrementPixels(p.Name, "ok")
	return nil
}

// pixelsQuery narrows selectPixelsByInstall to the given pixel names.
func pixelsQuery(installID string, names []string) (string, []any) {
	query := selectPixelsByInstall
	args := []any{installID}
	if len(names) > 0 {
		query += " AND name IN (?" + strings.Repeat(", ?", len(names)-1) + ")"
		args = append(args, lo.ToAnySlice(names)...)
	}
	return query + " ORDER BY timestamp", args
}

// PixelsByInstall returns the pixels recorded for installID, oldest first.
// When names are given only pixels with one of those names are returned.
func (c *ClickHouse) PixelsByInstall(ctx context.Context, installID string, names ...string) ([]pixel.Pixel, error) {
	if c == nil || c.DB == nil {
		return nil, ErrUnavailable
	}
	query, args := pixelsQuery(installID, names)
	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pixels: %w", err)
	}
	defer rows.Close()

	var pixels []pixel.Pixel
	for rows.Next() {
		var p pixel.Pixel
		if err := rows.Scan(&p.ID, &p.Timestamp, &p.Name, &p.InstallID, &p.Platform, &p.DeviceType, &p.Params); err != nil {
			return nil, fmt.Errorf("scan pixel: %w", err)
		}
		pixels = append(pixels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pixels: %w", err)
	}
	return pixels, nil
}

func (c *ClickHouse) metrics() observability.MetricsRegistry {
	if c.Metrics == nil {
		return observability.NewNoOpRegistry()
	}
	return c.Metrics
}

// Close closes the underlying connection pool.
func (c *ClickHouse) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
