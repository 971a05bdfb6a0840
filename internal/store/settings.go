package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const settingsCacheTTL = 5 * time.Minute

// TenantSettings are the presentation preferences applied during result
// shaping. Timezone is deployment-wide for now; currency comes from the
// users row.
type TenantSettings struct {
	Currency string
	Timezone string
}

type settingsEntry struct {
	settings  TenantSettings
	expiresAt time.Time
}

// RowQuerier is satisfied by *pgxpool.Pool.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SettingsCache resolves per-tenant settings with a TTL cache. Concurrent
// misses for the same tenant share one fetch via singleflight.
type SettingsCache struct {
	db       RowQuerier
	defaults TenantSettings

	mu      sync.RWMutex
	entries map[int64]settingsEntry
	sf      singleflight.Group
}

func NewSettingsCache(db RowQuerier, defaults TenantSettings) *SettingsCache {
	return &SettingsCache{
		db:       db,
		defaults: defaults,
		entries:  make(map[int64]settingsEntry),
	}
}

// Lookup returns the tenant's settings, falling back to deployment defaults
// when the row is missing or the store is unreachable. A shaping fallback is
// preferable to failing the whole question over display preferences.
func (c *SettingsCache) Lookup(ctx context.Context, tenantID int64) TenantSettings {
	c.mu.RLock()
	e, ok := c.entries[tenantID]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		return e.settings
	}

	v, _, _ := c.sf.Do(strconv.FormatInt(tenantID, 10), func() (interface{}, error) {
		c.mu.RLock()
		e, ok := c.entries[tenantID]
		c.mu.RUnlock()
		if ok && time.Now().Before(e.expiresAt) {
			return e.settings, nil
		}

		settings := c.defaults
		var currency string
		err := c.db.QueryRow(ctx,
			"SELECT default_currency FROM users WHERE telegram_id = $1", tenantID,
		).Scan(&currency)
		switch {
		case err == nil && currency != "":
			settings.Currency = currency
		case err != nil:
			log.Warn().Err(err).Int64("tenant_id", tenantID).Msg("settings lookup failed, using defaults")
		}

		c.mu.Lock()
		c.entries[tenantID] = settingsEntry{settings: settings, expiresAt: time.Now().Add(settingsCacheTTL)}
		c.mu.Unlock()
		return settings, nil
	})

	if s, ok := v.(TenantSettings); ok {
		return s
	}
	return c.defaults
}
