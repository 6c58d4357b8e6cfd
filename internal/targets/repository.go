package targets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/branchpulse/branchpulse/internal/metrics"
)

const fkViolation = "23503"

// Repository persists target records. Each metric is written individually;
// there is no batch transaction, so a failed write leaves the rest of the
// batch intact and the service reports it per record.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repo over the shared pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertTarget inserts or replaces the target for the record's owner, metric
// and month.
func (r *Repository) UpsertTarget(ctx context.Context, rec metrics.Record) error {
	const q = `
		INSERT INTO performance_records (kind, record_date, staff_code, branch, metric, value, due_date)
		VALUES ('target', $1, $2, $3, $4, $5, $6)
		ON CONFLICT (kind, record_date, staff_code, branch, metric)
		DO UPDATE SET value = EXCLUDED.value, due_date = EXCLUDED.due_date`

	_, err := r.pool.Exec(ctx, q, metrics.Day(rec.Date), rec.StaffCode, rec.Branch, rec.Metric, rec.Value, rec.DueDate)
	if err != nil {
		return mapUpsertError(err, rec.Metric)
	}
	return nil
}

// mapUpsertError translates a foreign-key violation on the metric column
// into ErrUnknownMetric so the handler can answer 422 instead of 500.
func mapUpsertError(err error, metric string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
		return fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}
	return fmt.Errorf("targets: upsert %s: %w", metric, err)
}

// DeleteTarget removes the stored target for an owner, metric and month.
// The boolean reports whether a row existed.
func (r *Repository) DeleteTarget(ctx context.Context, staffCode, branch, metric string, month time.Time) (bool, error) {
	const q = `
		DELETE FROM performance_records
		WHERE kind = 'target' AND record_date = $1 AND staff_code = $2 AND branch = $3 AND metric = $4`

	tag, err := r.pool.Exec(ctx, q, metrics.Day(month), staffCode, branch, metric)
	if err != nil {
		return false, fmt.Errorf("targets: delete %s: %w", metric, err)
	}
	return tag.RowsAffected() > 0, nil
}
