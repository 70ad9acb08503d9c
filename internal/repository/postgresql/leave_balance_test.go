package postgresql

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveBalance_Debit(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewLeaveBalanceRepository(db)

	mock.ExpectQuery(`UPDATE leave_balances`).
		WithArgs("user-1", leave.LeaveTypeAnnual, 3.0).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(12.0))

	after, err := repo.Debit(context.Background(), "user-1", leave.LeaveTypeAnnual, 3)

	require.NoError(t, err)
	assert.Equal(t, 12.0, after)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveBalance_DebitInsufficient(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewLeaveBalanceRepository(db)

	// the balance guard matches no row
	mock.ExpectQuery(`UPDATE leave_balances`).
		WithArgs("user-1", leave.LeaveTypeSick, 1.0).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}))

	_, err := repo.Debit(context.Background(), "user-1", leave.LeaveTypeSick, 1)

	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveBalance_DebitNegative(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewLeaveBalanceRepository(db)

	_, err := repo.Debit(context.Background(), "user-1", leave.LeaveTypeSick, -1)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveBalance_Init(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewLeaveBalanceRepository(db)

	balance := leave.DefaultBalances().Balance()
	for _, lt := range leave.AllLeaveTypes() {
		mock.ExpectExec(`INSERT INTO leave_balances`).
			WithArgs("user-1", lt, balance[lt]).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	require.NoError(t, repo.Init(context.Background(), "user-1", balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaveBalance_DebitRollsBackWithTransaction(t *testing.T) {
	mock, db := newMockDB(t)
	repo := NewLeaveBalanceRepository(db)
	tx := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE leave_balances`).
		WithArgs("user-1", leave.LeaveTypeAnnual, 3.0).
		WillReturnRows(pgxmock.NewRows([]string{"balance"}))
	mock.ExpectRollback()

	err := tx.WithinTransaction(context.Background(), func(txCtx context.Context) error {
		_, err := repo.Debit(txCtx, "user-1", leave.LeaveTypeAnnual, 3)
		return err
	})

	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}
