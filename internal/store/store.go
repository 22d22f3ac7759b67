// Package store persists the signed-in user's profile as a single record.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/raphaelgruber/globotrack/internal/config"
	"github.com/raphaelgruber/globotrack/internal/metrics"
	"github.com/raphaelgruber/globotrack/internal/models"
)

// ProfileKey is the fixed identifier of the profile record in every backend.
const ProfileKey = "globo_user"

// ErrUnknownBackend is returned by Open for an unrecognised store name.
var ErrUnknownBackend = errors.New("unknown store backend")

// ProfileStore reads and writes the one persisted profile.
//
// Load returns (nil, nil) when the record is absent or cannot be decoded.
// Save replaces the whole record in a single write.
type ProfileStore interface {
	Load(ctx context.Context) (*models.UserProfile, error)
	Save(ctx context.Context, profile models.UserProfile) error
	Clear(ctx context.Context) error
}

// Open creates the backend selected by cfg.Store, wrapped with timing
// metrics. The returned close function releases backend connections.
func Open(ctx context.Context, cfg config.Config, mc *metrics.Collector, logger *slog.Logger) (ProfileStore, func(context.Context) error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	noop := func(context.Context) error { return nil }

	switch cfg.Store {
	case config.StoreFile, "":
		return Instrument(NewFileStore(cfg.DataDir, logger), mc), noop, nil

	case config.StoreSurreal:
		s, err := NewSurrealStore(ctx, SurrealConfig{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open surrealdb store: %w", err)
		}
		return Instrument(s, mc), s.Close, nil

	case config.StoreRedis:
		s, err := NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis store: %w", err)
		}
		return Instrument(s, mc), func(context.Context) error { return s.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Store)
	}
}

// encodeProfile serializes the complete profile as given, so a nil route
// list loads back as nil and an empty one as empty.
func encodeProfile(p models.UserProfile) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return data, nil
}

// decodeProfile treats empty or undecodable data as an absent profile.
func decodeProfile(data []byte, logger *slog.Logger) *models.UserProfile {
	if len(data) == 0 {
		return nil
	}
	var p *models.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Warn("discarding corrupt stored profile", "error", err, "bytes", len(data))
		return nil
	}
	return p
}

// instrumented records store timings into a metrics collector.
type instrumented struct {
	next ProfileStore
	mc   *metrics.Collector
}

// Instrument wraps s so every operation is timed. A nil collector returns s.
func Instrument(s ProfileStore, mc *metrics.Collector) ProfileStore {
	if mc == nil {
		return s
	}
	return &instrumented{next: s, mc: mc}
}

func (i *instrumented) Load(ctx context.Context) (*models.UserProfile, error) {
	defer i.track(metrics.OpStoreLoad, time.Now())
	return i.next.Load(ctx)
}

func (i *instrumented) Save(ctx context.Context, profile models.UserProfile) error {
	defer i.track(metrics.OpStoreSave, time.Now())
	return i.next.Save(ctx, profile)
}

func (i *instrumented) Clear(ctx context.Context) error {
	defer i.track(metrics.OpStoreClear, time.Now())
	return i.next.Clear(ctx)
}

func (i *instrumented) track(op string, start time.Time) {
	i.mc.RecordTiming(op, time.Since(start))
}
