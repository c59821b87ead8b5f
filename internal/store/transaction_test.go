package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTxTest(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

func TestRunInTransaction(t *testing.T) {
	t.Run("commits when the function succeeds", func(t *testing.T) {
		db, mock := newTxTest(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		var gotTx *sql.Tx
		err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			gotTx = tx
			return nil
		})

		require.NoError(t, err)
		assert.NotNil(t, gotTx)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and returns the function error", func(t *testing.T) {
		db, mock := newTxTest(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("insert failed")
		err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure is wrapped", func(t *testing.T) {
		db, mock := newTxTest(t)
		mock.ExpectBegin().WillReturnError(errors.New("connection lost"))

		err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			t.Fatal("function must not run when begin fails")
			return nil
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
	})

	t.Run("commit failure is wrapped", func(t *testing.T) {
		db, mock := newTxTest(t)
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("deadlock detected"))

		err := RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return nil
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
	})

	t.Run("panic rolls back before propagating", func(t *testing.T) {
		db, mock := newTxTest(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
				panic("unexpected state")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
