package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"

	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/store"
)

type fakeRow struct {
	currency string
	err      error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if p, ok := dest[0].(*string); ok {
		*p = r.currency
	}
	return nil
}

type fakeQuerier struct {
	row   fakeRow
	calls int
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.calls++
	return q.row
}

var defaults = store.TenantSettings{Currency: "COP", Timezone: "America/Bogota"}

func TestSettingsLookup(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{currency: "USD"}}
	cache := store.NewSettingsCache(q, defaults)

	s := cache.Lookup(context.Background(), 42)
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, "America/Bogota", s.Timezone, "timezone is deployment-wide")
}

func TestSettingsLookupCached(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{currency: "USD"}}
	cache := store.NewSettingsCache(q, defaults)

	cache.Lookup(context.Background(), 42)
	cache.Lookup(context.Background(), 42)
	assert.Equal(t, 1, q.calls, "second lookup within the TTL hits the cache")
}

func TestSettingsLookupFallsBackOnError(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: errors.New("connection refused")}}
	cache := store.NewSettingsCache(q, defaults)

	s := cache.Lookup(context.Background(), 42)
	assert.Equal(t, defaults, s, "store trouble must not fail the question over display preferences")
}

func TestSettingsLookupEmptyCurrencyUsesDefault(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{currency: ""}}
	cache := store.NewSettingsCache(q, defaults)

	s := cache.Lookup(context.Background(), 42)
	assert.Equal(t, "COP", s.Currency)
}
