// Package database holds the persistence backends behind the guild config store.
// Every backend keeps one opaque snapshot object: the store marshals the whole
// guild map and hands the bytes over on every mutation.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/config"
)

// Backend persists the snapshot object.
type Backend interface {
	// Load returns the stored snapshot, or nil with no error when nothing was stored yet.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored snapshot.
	Save(ctx context.Context, data []byte) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
	Name() string
}

// FromConfig opens the backend selected by cfg.StoreBackend.
func FromConfig(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendFile, "":
		return NewFileBackend(cfg.DataPath), nil
	case config.BackendBolt:
		return OpenBolt(cfg.BoltPath)
	case config.BackendRedis:
		return OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		})
	case config.BackendMongo:
		return ConnectMongo(ctx, cfg.MongoDBURL, cfg.DBName)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Status pings b and returns the label shown in status views.
func Status(ctx context.Context, b Backend) (string, time.Duration, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := b.Ping(ctx); err != nil {
		return "🔴 | Desconectado", 0, false
	}
	return "🟢 | En linea", time.Since(start), true
}
