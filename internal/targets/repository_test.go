package targets

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapUpsertErrorUnknownMetric(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "performance_records_metric_fkey"}

	err := mapUpsertError(fmt.Errorf("exec: %w", pgErr), "BOGUS AMT")

	require.ErrorIs(t, err, ErrUnknownMetric)
	assert.Contains(t, err.Error(), "BOGUS AMT")
}

func TestMapUpsertErrorPassesThroughOtherCodes(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505"}

	err := mapUpsertError(pgErr, "DDS AMT")

	assert.False(t, errors.Is(err, ErrUnknownMetric))
	assert.Contains(t, err.Error(), "upsert DDS AMT")
}

func TestMapUpsertErrorPlainError(t *testing.T) {
	err := mapUpsertError(errors.New("connection reset"), "FD AMT")

	assert.False(t, errors.Is(err, ErrUnknownMetric))
	assert.Contains(t, err.Error(), "connection reset")
}
