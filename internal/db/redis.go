package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickwarner/onboardingcta/internal/cta"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNilRedisStore is returned when a RedisStore pointer is nil or uninitialized.
var ErrNilRedisStore = errors.New("redis store is nil")

// RedisStore wraps a redis client holding onboarding state per installation.
type RedisStore struct {
	Client *redis.Client
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(ctx context.Context, addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
	}

	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

func journeyKey(installID string) string {
	return fmt.Sprintf("onboarding:journey:%s", installID)
}

func installKey(installID string) string {
	return fmt.Sprintf("install:ts:%s", installID)
}

func (r *RedisStore) ready() error {
	if r == nil || r.Client == nil {
		return ErrNilRedisStore
	}
	return nil
}

// DialogJourney returns the stored journey for installID, or "" when none
// has been saved.
func (r *RedisStore) DialogJourney(ctx context.Context, installID string) (string, error) {
	if err := r.ready(); err != nil {
		return "", err
	}
	val, err := r.Client.Get(ctx, journeyKey(installID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get journey: %w", err)
	}
	return val, nil
}

// maxJourneyAttempts bounds UpdateJourney retries under contention.
const maxJourneyAttempts = 5

// ErrJourneyContention is returned when UpdateJourney keeps losing the race
// against concurrent writers.
var ErrJourneyContention = errors.New("journey updated concurrently")

// watchedJourney reads the journey through a WATCHed transaction.
type watchedJourney struct {
	tx  *redis.Tx
	key string
}

func (w watchedJourney) DialogJourney(ctx context.Context) (string, error) {
	val, err := w.tx.Get(ctx, w.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get journey: %w", err)
	}
	return val, nil
}

// UpdateJourney reads the journey of installID under WATCH, passes it to fn
// and stores the value fn returns. Nothing is written when fn returns "".
// fn runs again whenever another writer changes the journey before the
// write commits, so it must not have side effects beyond its return value.
func (r *RedisStore) UpdateJourney(ctx context.Context, installID string, fn func(cta.OnboardingStore) (string, error)) error {
	if err := r.ready(); err != nil {
		return err
	}
	key := journeyKey(installID)
	txf := func(tx *redis.Tx) error {
		next, err := fn(watchedJourney{tx: tx, key: key})
		if err != nil || next == "" {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxJourneyAttempts; i++ {
		err := r.Client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("update journey: %w", err)
		}
		return nil
	}
	return ErrJourneyContention
}

// RegisterInstall records at as the install time of installID unless one is
// already stored. It reports whether the timestamp was newly written.
func (r *RedisStore) RegisterInstall(ctx context.Context, installID string, at time.Time) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	created, err := r.Client.SetNX(ctx, installKey(installID), at.UnixMilli(), 0).Result()
	if err != nil {
		return false, fmt.Errorf("register install: %w", err)
	}
	return created, nil
}

// InstallTimestamp returns the install time of installID. The zero time is
// returned when the installation was never registered.
func (r *RedisStore) InstallTimestamp(ctx context.Context, installID string) (time.Time, error) {
	if err := r.ready(); err != nil {
		return time.Time{}, err
	}
	val, err := r.Client.Get(ctx, installKey(installID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get install timestamp: %w", err)
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse install timestamp %q: %w", val, err)
	}
	return time.UnixMilli(ms), nil
}

// Install scopes the store to one installation so it satisfies the
// single-installation store interfaces used by the CTA helper.
func (r *RedisStore) Install(installID string) InstallScope {
	return InstallScope{store: r, id: installID}
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}

// InstallScope is a RedisStore bound to a single installation.
type InstallScope struct {
	store *RedisStore
	id    string
}

func (s InstallScope) ID() string { return s.id }

func (s InstallScope) DialogJourney(ctx context.Context) (string, error) {
	return s.store.DialogJourney(ctx, s.id)
}

func (s InstallScope) InstallTimestamp(ctx context.Context) (time.Time, error) {
	return s.store.InstallTimestamp(ctx, s.id)
}

func (s InstallScope) UpdateJourney(ctx context.Context, fn func(cta.OnboardingStore) (string, error)) error {
	return s.store.UpdateJourney(ctx, s.id, fn)
}

var (
	_ cta.OnboardingStore = InstallScope{}
	_ cta.InstallStore    = InstallScope{}
	_ cta.OnboardingStore = watchedJourney{}
)
