package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/asidocente/school-records/internal/domain/shared"
)

// auditColumns are selected first by every entity query.
const auditColumns = "id, created_at, updated_at, is_deleted, created_by, updated_by"

func auditDest(a *shared.Audit) []any {
	return []any{&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.IsDeleted, &a.CreatedBy, &a.UpdatedBy}
}

// utcAudit normalizes timestamps scanned in the session time zone.
func utcAudit(a *shared.Audit) {
	a.CreatedAt = a.CreatedAt.UTC()
	if a.UpdatedAt != nil {
		t := a.UpdatedAt.UTC()
		a.UpdatedAt = &t
	}
}

func utc(t time.Time) time.Time { return t.UTC() }

// getOne runs a single-row query; no row yields notFound.
func getOne[T any](ctx context.Context, d db, op string, notFound error, scan func(pgx.Row) (*T, error), sql string, args ...any) (*T, error) {
	v, err := scan(d.q.QueryRow(ctx, sql, args...))
	if IsNoRows(err) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// getList collects every row of a query.
func getList[T any](ctx context.Context, d db, op string, scan func(pgx.Row) (*T, error), sql string, args ...any) ([]*T, error) {
	rows, err := d.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// getMany loads the rows whose id is in ids, keyed by id.
func getMany[T any](ctx context.Context, d db, op, table, columns string, ids []int64, scan func(pgx.Row) (*T, error), id func(*T) int64) (map[int64]*T, error) {
	out := make(map[int64]*T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE id = ANY($1) AND NOT is_deleted", columns, table)
	list, err := getList(ctx, d, op, scan, sql, ids)
	if err != nil {
		return nil, err
	}
	for _, v := range list {
		out[id(v)] = v
	}
	return out, nil
}

func exists(ctx context.Context, d db, op, sql string, args ...any) (bool, error) {
	var ok bool
	if err := d.q.QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}
