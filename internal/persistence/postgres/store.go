package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/journal/internal/domain"
	"example.com/journal/internal/observability"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same store
// code serves direct requests and the batch-sync transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// kindSpec describes one record kind to the shared store: its table, the time
// field listings order by, the kind-specific columns, and how a record binds
// to and scans from those columns. The six kinds differ only in this
// descriptor; the upsert, list, and delete machinery is written once.
type kindSpec[T any] struct {
	table   string
	timeCol string
	cols    []string
	bind    func(rec *T) ([]any, error)
	scan    func(row rowScanner) (*T, error)

	// afterWrite runs in the same transaction as the row write. Meals use it
	// to replace the food-item sub-collection wholesale.
	afterWrite func(ctx context.Context, db querier, rec *T) error
	// afterRead hydrates sub-collections onto freshly scanned records.
	afterRead func(ctx context.Context, db querier, recs []T) error
}

// store implements domain.RecordStore for one kind.
type store[T any, P domain.RecordPtr[T]] struct {
	pool      *pgxpool.Pool
	spec      kindSpec[T]
	selectSQL string
	upsertSQL string
}

func newStore[T any, P domain.RecordPtr[T]](pool *pgxpool.Pool, spec kindSpec[T]) *store[T, P] {
	all := append([]string{"id", "user_id"}, spec.cols...)
	all = append(all, "created_at", "updated_at")

	placeholders := make([]string, 0, len(spec.cols)+2)
	for i := 0; i < len(spec.cols)+2; i++ {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
	}

	sets := make([]string, 0, len(spec.cols)+1)
	for _, col := range spec.cols {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	// created_at survives every update; updated_at is the sync cursor and is
	// refreshed on every write, create or replace alike.
	sets = append(sets, "updated_at = now()")

	return &store[T, P]{
		pool: pool,
		spec: spec,
		selectSQL: fmt.Sprintf("SELECT %s FROM %s", strings.Join(all, ", "), spec.table),
		upsertSQL: fmt.Sprintf(
			"INSERT INTO %s (id, user_id, %s, created_at, updated_at) VALUES (%s, now(), now()) ON CONFLICT (id) DO UPDATE SET %s",
			spec.table, strings.Join(spec.cols, ", "), strings.Join(placeholders, ", "), strings.Join(sets, ", "),
		),
	}
}

// Get fetches one record by id regardless of owner; callers decide between
// the not-found and forbidden outcomes.
func (s *store[T, P]) Get(ctx context.Context, id string) (*T, error) {
	row := s.pool.QueryRow(ctx, s.selectSQL+" WHERE id = $1", id)
	rec, err := s.spec.scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if s.spec.afterRead != nil {
		recs := []T{*rec}
		if err := s.spec.afterRead(ctx, s.pool, recs); err != nil {
			return nil, err
		}
		rec = &recs[0]
	}
	return rec, nil
}

// ListByOwner returns the owner's records newest-first by the kind's time
// field. Date bounds are inclusive on both ends.
func (s *store[T, P]) ListByOwner(ctx context.Context, ownerID string, filter domain.ListFilter) ([]T, error) {
	query := s.selectSQL + " WHERE user_id = $1"
	args := []any{ownerID}

	if filter.StartDate != "" {
		args = append(args, filter.StartDate)
		query += fmt.Sprintf(" AND %s >= $%d", s.spec.timeCol, len(args))
	}
	if filter.EndDate != "" {
		args = append(args, filter.EndDate)
		query += fmt.Sprintf(" AND %s <= $%d", s.spec.timeCol, len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d", s.spec.timeCol, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := make([]T, 0, filter.Limit)
	for rows.Next() {
		rec, err := s.spec.scan(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if s.spec.afterRead != nil {
		if err := s.spec.afterRead(ctx, s.pool, recs); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// Upsert applies replace-by-id semantics inside a transaction so the meal
// item swap stays atomic with its parent row.
func (s *store[T, P]) Upsert(ctx context.Context, rec *T) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.upsertTx(ctx, tx, rec); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordPersisted(time.Now().UTC())
	return nil
}

// upsertTx writes the record on the supplied handle. The stored owner is
// immutable: a colliding id held by another owner fails the write instead of
// silently re-homing the record.
func (s *store[T, P]) upsertTx(ctx context.Context, db querier, rec *T) error {
	meta := P(rec).Meta()

	var owner string
	err := db.QueryRow(ctx, fmt.Sprintf("SELECT user_id FROM %s WHERE id = $1", s.spec.table), meta.ID).Scan(&owner)
	switch {
	case err == nil:
		if owner != meta.OwnerID {
			return domain.ErrForbidden
		}
	case errors.Is(err, pgx.ErrNoRows):
		// fresh insert
	default:
		return err
	}

	vals, err := s.spec.bind(rec)
	if err != nil {
		return err
	}
	args := append([]any{meta.ID, meta.OwnerID}, vals...)
	if _, err := db.Exec(ctx, s.upsertSQL, args...); err != nil {
		return translateErr(err)
	}

	if s.spec.afterWrite != nil {
		if err := s.spec.afterWrite(ctx, db, rec); err != nil {
			return translateErr(err)
		}
	}
	return nil
}

// Delete removes the owner's record. Zero rows affected is not an error here;
// the caller turns it into a not-found outcome.
func (s *store[T, P]) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND user_id = $2", s.spec.table), id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "23503":
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Message)
		}
	}
	return err
}
