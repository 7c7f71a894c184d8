package balance_test

import (
	"context"
	"testing"

	"flexileave/internal/balance"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{SkipDefaultTransaction: true})
	assert.NoError(t, err)
	return gdb, mock
}

func TestBalanceRepository_Decrement(t *testing.T) {
	t.Run("enough days remaining", func(t *testing.T) {
		gdb, mock := newGormMock(t)
		repo := balance.NewRepository(gdb)

		mock.ExpectExec(`UPDATE "user_balances" SET .*remaining - .* WHERE .*remaining >= `).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Decrement(context.Background(), "user-1", "AnnualLeave", 5)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guard rejects the debit", func(t *testing.T) {
		gdb, mock := newGormMock(t)
		repo := balance.NewRepository(gdb)

		mock.ExpectExec(`UPDATE "user_balances"`).WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Decrement(context.Background(), "user-1", "AnnualLeave", 50)

		assert.NoError(t, err)
		assert.False(t, ok)
	})
}
