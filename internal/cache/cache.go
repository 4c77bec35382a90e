// Package cache persists the reminder list between sessions.
package cache

import (
	"context"
	"fmt"

	"github.com/notexe/ledger-reminders/internal/config"
	"github.com/notexe/ledger-reminders/internal/reminder"
)

// Cache is a reminder.Cache that owns a connection.
type Cache interface {
	reminder.Cache
	Close() error
}

// Open returns the cache selected by cfg.Driver. The "none" driver
// returns a nil Cache, which the store treats as no persistence.
func Open(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	switch cfg.Driver {
	case config.CacheSQLite, "":
		c, err := OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.CacheRedis:
		c, err := OpenRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.CacheNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
