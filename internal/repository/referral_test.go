package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Repository{db: sqlx.NewDb(db, "sqlmock")}, mock
}

func TestCreateReferral_CommitsLockCheckInsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	referrer := uuid.New()
	referred := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT id FROM users WHERE id = \$1 FOR UPDATE$`).
		WithArgs(referred).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(referred.String()))
	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM referrals WHERE referred_id = \$1$`).
		WithArgs(referred).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`^INSERT INTO referrals`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ref, err := repo.CreateReferral(context.Background(), referrer, referred)

	require.NoError(t, err)
	assert.Equal(t, referrer, ref.ReferrerID)
	assert.Equal(t, referred, ref.ReferredID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReferral_ExistingEdgeRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	referred := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT id FROM users WHERE id = \$1 FOR UPDATE$`).
		WithArgs(referred).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(referred.String()))
	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM referrals WHERE referred_id = \$1$`).
		WithArgs(referred).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.CreateReferral(context.Background(), uuid.New(), referred)

	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReferral_UniqueViolationRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)
	referred := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`^SELECT id FROM users WHERE id = \$1 FOR UPDATE$`).
		WithArgs(referred).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(referred.String()))
	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM referrals WHERE referred_id = \$1$`).
		WithArgs(referred).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`^INSERT INTO referrals`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "referrals_referred_id_key"})
	mock.ExpectRollback()

	_, err := repo.CreateReferral(context.Background(), uuid.New(), referred)

	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(`^UPDATE users`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Transaction(context.Background(), func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(context.Background(), "UPDATE users SET network_strength = 0")
			return err
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := repo.Transaction(context.Background(), func(tx *sqlx.Tx) error {
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
