package store_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/schema"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/security"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/store"
)

// validQuery mints an execution capability the honest way: through the
// validator. There is no other constructor.
func validQuery(t *testing.T, tenantID int64) security.NormalizedQuery {
	t.Helper()
	v := security.NewValidator(schema.Default(), false)
	verdict := v.Validate("SELECT amount FROM transactions WHERE user_id = 7", tenantID)
	nq, ok := verdict.Normalized()
	require.True(t, ok)
	return nq
}

type fakeRows struct {
	pgx.Rows
	cols    []string
	data    [][]any
	pos     int
	iterErr error
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.cols))
	for i, c := range r.cols {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos-1], nil }
func (r *fakeRows) Close()                 {}
func (r *fakeRows) Err() error             { return r.iterErr }

type fakeTx struct {
	pgx.Tx
	rows       *fakeRows
	queryErr   error
	gotSQL     string
	rolledBack bool
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	tx.gotSQL = sql
	if tx.queryErr != nil {
		return nil, tx.queryErr
	}
	return tx.rows, nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	tx.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
	gotOpts  pgx.TxOptions
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.gotOpts = opts
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func TestExecuteReadOnlyTransaction(t *testing.T) {
	db := &fakeBeginner{tx: &fakeTx{rows: &fakeRows{cols: []string{"amount"}}}}
	exec := store.NewExecutor(db)

	_, err := exec.Execute(context.Background(), validQuery(t, 7), 10, time.Second)
	require.NoError(t, err)

	assert.Equal(t, pgx.ReadOnly, db.gotOpts.AccessMode)
	assert.Equal(t, pgx.RepeatableRead, db.gotOpts.IsoLevel)
}

func TestExecuteWrapsWithOwnedLimit(t *testing.T) {
	tx := &fakeTx{rows: &fakeRows{cols: []string{"amount"}}}
	exec := store.NewExecutor(&fakeBeginner{tx: tx})

	_, err := exec.Execute(context.Background(), validQuery(t, 7), 25, time.Second)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(tx.gotSQL, "SELECT * FROM ("), "statement must be wrapped, got: %s", tx.gotSQL)
	assert.Contains(t, tx.gotSQL, ") AS guarded_query LIMIT 26", "cap plus one so truncation is detectable")
}

func TestExecuteRowCapTruncates(t *testing.T) {
	rows := &fakeRows{
		cols: []string{"amount"},
		data: [][]any{{100.0}, {200.0}, {300.0}},
	}
	exec := store.NewExecutor(&fakeBeginner{tx: &fakeTx{rows: rows}})

	result, err := exec.Execute(context.Background(), validQuery(t, 7), 2, time.Second)
	require.NoError(t, err)

	assert.Len(t, result.Rows, 2)
	assert.True(t, result.Truncated)
	assert.Equal(t, 100.0, result.Rows[0]["amount"])
}

func TestExecuteUnderCapNotTruncated(t *testing.T) {
	rows := &fakeRows{
		cols: []string{"amount"},
		data: [][]any{{100.0}},
	}
	exec := store.NewExecutor(&fakeBeginner{tx: &fakeTx{rows: rows}})

	result, err := exec.Execute(context.Background(), validQuery(t, 7), 2, time.Second)
	require.NoError(t, err)

	assert.Len(t, result.Rows, 1)
	assert.False(t, result.Truncated)
	assert.Equal(t, []string{"amount"}, result.Columns)
}

func TestExecuteTimeoutMapped(t *testing.T) {
	tx := &fakeTx{queryErr: context.DeadlineExceeded}
	exec := store.NewExecutor(&fakeBeginner{tx: tx})

	_, err := exec.Execute(context.Background(), validQuery(t, 7), 10, time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrTimeout)
}

func TestExecuteReleasesConnection(t *testing.T) {
	tx := &fakeTx{rows: &fakeRows{cols: []string{"amount"}}}
	exec := store.NewExecutor(&fakeBeginner{tx: tx})

	_, err := exec.Execute(context.Background(), validQuery(t, 7), 10, time.Second)
	require.NoError(t, err)
	assert.True(t, tx.rolledBack, "read-only tx must be rolled back to release the connection")
}

func TestExecuteReleasesConnectionOnError(t *testing.T) {
	tx := &fakeTx{queryErr: context.DeadlineExceeded}
	exec := store.NewExecutor(&fakeBeginner{tx: tx})

	_, err := exec.Execute(context.Background(), validQuery(t, 7), 10, time.Second)
	require.Error(t, err)
	assert.True(t, tx.rolledBack)
}

func TestExecuteRejectsUnvalidatedStatement(t *testing.T) {
	exec := store.NewExecutor(&fakeBeginner{})

	var zero security.NormalizedQuery
	_, err := exec.Execute(context.Background(), zero, 10, time.Second)
	assert.Error(t, err)
}

func TestExecuteRejectsInvalidRowCap(t *testing.T) {
	exec := store.NewExecutor(&fakeBeginner{})
	_, err := exec.Execute(context.Background(), validQuery(t, 7), 0, time.Second)
	assert.Error(t, err)
}
