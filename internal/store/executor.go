package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"

	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/security"
)

// ErrTimeout is returned when the statement exceeded its wall-clock budget.
// The executor never retries; a timed-out query is surfaced, not rerun.
var ErrTimeout = errors.New("query execution timed out")

// ExecutionResult is the bounded, materialized result of one statement.
type ExecutionResult struct {
	Columns   []string
	Rows      []map[string]any
	Truncated bool // rows beyond the cap were dropped
	Elapsed   time.Duration
}

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Executor runs validated statements inside read-only, repeatable-read
// transactions. It only accepts security.NormalizedQuery, so an unvalidated
// statement cannot reach it by construction.
type Executor struct {
	db TxBeginner
}

func NewExecutor(db TxBeginner) *Executor {
	return &Executor{db: db}
}

// Execute runs the statement with a hard row cap and wall-clock timeout.
// The cap is applied by wrapping the statement in an executor-owned LIMIT —
// any LIMIT inside the generated text is never trusted. One row beyond the
// cap is requested so truncation can be reported instead of silent.
func (e *Executor) Execute(ctx context.Context, nq security.NormalizedQuery, rowCap int, timeout time.Duration) (*ExecutionResult, error) {
	if nq.Zero() {
		return nil, errors.New("execute: statement was never validated")
	}
	if rowCap <= 0 {
		return nil, fmt.Errorf("execute: invalid row cap %d", rowCap)
	}

	qCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := e.db.BeginTx(qCtx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, mapExecErr(fmt.Errorf("begin read-only tx: %w", err))
	}
	// Rollback under a fresh context so an abandoned run still releases its
	// connection back to the pool even after the caller's context died.
	defer func() {
		rbCtx, rbCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer rbCancel()
		if rbErr := tx.Rollback(rbCtx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Warn().Err(rbErr).Msg("rollback after scoped query")
		}
	}()

	wrapped := fmt.Sprintf("SELECT * FROM (%s) AS guarded_query LIMIT %d", nq.SQL(), rowCap+1)

	start := time.Now()
	rows, err := tx.Query(qCtx, wrapped)
	if err != nil {
		return nil, mapExecErr(fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	var columns []string
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}

	result := &ExecutionResult{Columns: columns}
	for rows.Next() {
		if len(result.Rows) == rowCap {
			result.Truncated = true
			break
		}
		vals, err := rows.Values()
		if err != nil {
			return nil, mapExecErr(fmt.Errorf("read row: %w", err))
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if i < len(vals) {
				row[col] = normalizeValue(vals[i])
			}
		}
		result.Rows = append(result.Rows, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapExecErr(fmt.Errorf("iterate rows: %w", err))
	}

	result.Elapsed = time.Since(start)
	log.Debug().
		Int64("tenant_id", nq.TenantID()).
		Int("rows", len(result.Rows)).
		Bool("truncated", result.Truncated).
		Dur("elapsed", result.Elapsed).
		Msg("scoped query executed")
	return result, nil
}

func mapExecErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// normalizeValue converts driver types into plain Go values the shaping
// layer understands. Numerics come back from pgx as pgtype.Numeric.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}
