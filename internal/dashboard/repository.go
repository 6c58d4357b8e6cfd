package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/branchpulse/branchpulse/internal/metrics"
)

// Repository loads raw performance records. Rows land in the store through
// the external spreadsheet import pipeline; the engine only ever reads them
// as an immutable snapshot.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repo over the shared pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRecords returns records of one kind, optionally pre-narrowed to a date
// window at the query level. The in-memory filter applies the same bounds
// again, so a caller passing nil bounds simply gets the full snapshot.
func (r *Repository) ListRecords(ctx context.Context, kind metrics.RecordKind, from, to *time.Time) ([]metrics.Record, error) {
	const q = `
		SELECT record_date, COALESCE(staff_code, ''), COALESCE(branch, ''), metric, value, due_date
		FROM performance_records
		WHERE kind = $1
		  AND ($2::date IS NULL OR record_date >= $2)
		  AND ($3::date IS NULL OR record_date <= $3)
		ORDER BY record_date, staff_code, metric`

	rows, err := r.pool.Query(ctx, q, string(kind), dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("dashboard: list %s records: %w", kind, err)
	}
	defer rows.Close()

	var out []metrics.Record
	for rows.Next() {
		rec := metrics.Record{Kind: kind}
		if err := rows.Scan(&rec.Date, &rec.StaffCode, &rec.Branch, &rec.Metric, &rec.Value, &rec.DueDate); err != nil {
			return nil, fmt.Errorf("dashboard: scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return metrics.Day(*t)
}
