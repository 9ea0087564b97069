package sqlstore_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acordex/internal/domain"
	"acordex/internal/repository/sqlstore"
)

var ruleCols = []string{"id", "certificate_type", "product_name", "is_active", "created_at", "updated_at"}

func setupMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "pgx")
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

const (
	pairLookup = `WHERE LOWER(TRIM(certificate_type)) = LOWER(TRIM($1))`
	insertRule = `INSERT INTO validation_rules`
	idLookup   = `SELECT id FROM validation_rules WHERE id IN ($1, $2, $3)`
)

func TestPostgres_CreateBatch_RollsBackOnInsertFailure(t *testing.T) {
	db, mock := setupMock(t)
	repo := sqlstore.NewValidationRuleRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(pairLookup)).
		WithArgs("A", "1", int64(0)).
		WillReturnRows(sqlmock.NewRows(ruleCols))
	mock.ExpectQuery(regexp.QuoteMeta(insertRule)).
		WithArgs("A", "1", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery(regexp.QuoteMeta(pairLookup)).
		WithArgs("A", "2", int64(0)).
		WillReturnRows(sqlmock.NewRows(ruleCols))
	mock.ExpectQuery(regexp.QuoteMeta(insertRule)).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "idx_validation_rules_pair"`))
	mock.ExpectRollback()

	batch := []*domain.ValidationRule{
		{CertificateType: "A", ProductName: "1", IsActive: true},
		{CertificateType: "A", ProductName: "2", IsActive: true},
	}
	err := repo.CreateBatch(context.Background(), batch)

	var dupErr *domain.DuplicateRuleError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, 1, dupErr.Index)
	assert.Zero(t, batch[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateBatch_ExistingPairRollsBack(t *testing.T) {
	db, mock := setupMock(t)
	repo := sqlstore.NewValidationRuleRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(pairLookup)).
		WillReturnRows(sqlmock.NewRows(ruleCols).AddRow(4, "A", "1", false, now, now))
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), []*domain.ValidationRule{{CertificateType: "a", ProductName: "1"}})
	var dupErr *domain.DuplicateRuleError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, int64(4), dupErr.ExistingID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteBatch_MissingIDsRollBack(t *testing.T) {
	db, mock := setupMock(t)
	repo := sqlstore.NewValidationRuleRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(idLookup)).
		WithArgs(int64(1), int64(2), int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectRollback()

	_, err := repo.DeleteBatch(context.Background(), []int64{1, 2, 999})
	var nf *domain.RuleNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []int64{999}, nf.IDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_DeleteBatch_Commits(t *testing.T) {
	db, mock := setupMock(t)
	repo := sqlstore.NewValidationRuleRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM validation_rules WHERE id IN ($1, $2)`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM validation_rules WHERE id IN ($1, $2)`)).
		WillReturnRows(sqlmock.NewRows(ruleCols).
			AddRow(1, "A", "1", true, now, now).
			AddRow(2, "A", "2", true, now, now))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM validation_rules WHERE id IN ($1, $2)`)).
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	deleted, err := repo.DeleteBatch(context.Background(), []int64{2, 1})
	require.NoError(t, err)
	require.Len(t, deleted, 2)
	assert.Equal(t, int64(2), deleted[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_BeginFailure(t *testing.T) {
	db, mock := setupMock(t)
	repo := sqlstore.NewValidationRuleRepo(db)

	mock.ExpectBegin().WillReturnError(errors.New("connection reset"))

	_, err := repo.DeleteBatch(context.Background(), []int64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin tx")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FindActiveMatch_UsesPositionalArgs(t *testing.T) {
	db, mock := setupMock(t)
	repo := sqlstore.NewValidationRuleRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE certificate_type = $1 AND product_name = $2 AND is_active = $3`)).
		WithArgs("ACORD-25", "Umbrella", true).
		WillReturnRows(sqlmock.NewRows(ruleCols))

	got, err := repo.FindActiveMatch(context.Background(), "ACORD-25", "Umbrella")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
