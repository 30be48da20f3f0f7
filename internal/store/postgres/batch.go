package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ringzero787/f1-fantasy-backend/internal/domain"
)

// MaxChunkOps is the per-transaction mutation ceiling. Kept one below a
// round 500 so a chunk plus its transaction bookkeeping never reaches the
// limit the writes were sized against.
const MaxChunkOps = 499

// BatchWriter implements domain.BatchWriter. Each chunk of mutations is
// compiled to SQL, queued on a single pgx.Batch, and committed inside one
// transaction; chunks commit strictly in order, each awaited before the
// next is sent. A mid-sequence failure leaves earlier chunks applied.
type BatchWriter struct {
	pool  *pgxpool.Pool
	limit int
}

// NewBatchWriter creates a BatchWriter with the default chunk ceiling.
func NewBatchWriter(pool *pgxpool.Pool) *BatchWriter {
	return &BatchWriter{pool: pool, limit: MaxChunkOps}
}

// Apply commits the mutations. A nil or empty list is a no-op.
func (w *BatchWriter) Apply(ctx context.Context, muts []domain.Mutation) error {
	for i, chunk := range domain.Chunk(muts, w.limit) {
		if err := w.applyChunk(ctx, chunk); err != nil {
			return fmt.Errorf("postgres: batch chunk %d: %w: %w", i, domain.ErrBatchFailed, err)
		}
	}
	return nil
}

func (w *BatchWriter) applyChunk(ctx context.Context, chunk []domain.Mutation) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, m := range chunk {
		sql, args, err := compile(m)
		if err != nil {
			return err
		}
		batch.Queue(sql, args...)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range chunk {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("mutation %d (%s): %w", i, chunk[i].Table, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// compile renders one mutation to a SQL statement. Column order is the
// sorted map-key order so identical mutations always produce identical SQL,
// which lets pgx reuse prepared statements across the batch.
func compile(m domain.Mutation) (string, []any, error) {
	if m.Insert {
		return compileInsert(m)
	}
	return compileUpdate(m)
}

func compileInsert(m domain.Mutation) (string, []any, error) {
	if len(m.Set) == 0 {
		return "", nil, fmt.Errorf("insert into %s with no fields", m.Table)
	}
	cols := sortedKeys(m.Set)

	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		v, err := encodeArg(m.Set[col])
		if err != nil {
			return "", nil, fmt.Errorf("insert %s.%s: %w", m.Table, col, err)
		}
		args[i] = v
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		m.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return sql, args, nil
}

func compileUpdate(m domain.Mutation) (string, []any, error) {
	if len(m.Key) == 0 {
		return "", nil, fmt.Errorf("update %s with no key", m.Table)
	}
	if len(m.Set) == 0 && len(m.Inc) == 0 {
		return "", nil, fmt.Errorf("update %s with no assignments", m.Table)
	}

	var (
		assigns []string
		args    []any
	)
	next := func() int { return len(args) + 1 }

	for _, col := range sortedKeys(m.Set) {
		v, err := encodeArg(m.Set[col])
		if err != nil {
			return "", nil, fmt.Errorf("update %s.%s: %w", m.Table, col, err)
		}
		assigns = append(assigns, fmt.Sprintf("%s = $%d", col, next()))
		args = append(args, v)
	}
	for _, col := range sortedKeys(m.Inc) {
		assigns = append(assigns, fmt.Sprintf("%s = %s + $%d", col, col, next()))
		args = append(args, m.Inc[col])
	}

	var conds []string
	for _, col := range sortedKeys(m.Key) {
		conds = append(conds, fmt.Sprintf("%s = $%d", col, next()))
		args = append(args, m.Key[col])
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		m.Table, strings.Join(assigns, ", "), strings.Join(conds, " AND "))
	return sql, args, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// encodeArg marshals document-valued fields (rosters, lock status, result
// blobs) to JSON for their JSONB columns. Scalars and timestamps pass
// through to pgx untouched.
func encodeArg(v any) (any, error) {
	switch v.(type) {
	case nil, time.Time, *time.Time, []byte, json.RawMessage:
		return v, nil
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map, reflect.Ptr:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return json.RawMessage(data), nil
	default:
		return v, nil
	}
}
