package postgresql

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (pgxmock.PgxPoolIface, *database.DB) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, database.NewFromPool(mock)
}

func TestTxManager_JoinsOuterTransaction(t *testing.T) {
	mock, db := newMockDB(t)
	tx := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := tx.WithinTransaction(context.Background(), func(outer context.Context) error {
		return tx.WithinTransaction(outer, func(inner context.Context) error {
			calls++
			return nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
