package sqlstore_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acordex/internal/config"
	"acordex/internal/domain"
	"acordex/internal/port"
	"acordex/internal/repository/sqlstore"
)

func setupSQLite(t *testing.T) (port.ValidationRuleRepository, *sqlx.DB) {
	t.Helper()
	cfg := &config.DBConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "rules.db"),
		MaxOpen:    4,
		MaxIdle:    2,
	}
	require.NoError(t, sqlstore.Migrate(cfg))

	db, err := sqlstore.NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlstore.NewValidationRuleRepo(db), db
}

func rule(certType, product string, active bool) *domain.ValidationRule {
	return &domain.ValidationRule{CertificateType: certType, ProductName: product, IsActive: active}
}

func seed(t *testing.T, repo port.ValidationRuleRepository, rules ...*domain.ValidationRule) {
	t.Helper()
	require.NoError(t, repo.CreateBatch(context.Background(), rules))
}

func TestCreateBatch_AssignsMonotonicIDs(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()

	batch := []*domain.ValidationRule{
		rule("ACORD-25", "Commercial General Liability", true),
		rule("ACORD-25", "Workers Compensation", false),
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))
	assert.Equal(t, int64(1), batch[0].ID)
	assert.Equal(t, int64(2), batch[1].ID)
	assert.False(t, batch[0].CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Workers Compensation", got.ProductName)
	assert.False(t, got.IsActive)
}

func TestCreateBatch_AtomicOnExistingDuplicate(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()
	seed(t, repo, rule("ACORD-25", "Commercial General Liability", true))

	before, err := repo.List(ctx)
	require.NoError(t, err)

	batch := []*domain.ValidationRule{
		rule("ACORD-25", "Umbrella", true),
		rule("acord-25 ", " commercial general liability", true),
		rule("ACORD-25", "Auto", true),
	}
	err = repo.CreateBatch(ctx, batch)

	var dupErr *domain.DuplicateRuleError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, 1, dupErr.Index)
	assert.Equal(t, int64(1), dupErr.ExistingID)
	for _, r := range batch {
		assert.Zero(t, r.ID)
	}

	after, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCreateBatch_ReportsEveryExistingDuplicate(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()
	seed(t, repo, rule("ACORD-25", "Auto", true), rule("ACORD-25", "Umbrella", true))

	err := repo.CreateBatch(ctx, []*domain.ValidationRule{
		rule("ACORD-25", "auto", true),
		rule("ACORD-25", "Property", true),
		rule("acord-25", "UMBRELLA", true),
	})

	var dupErr *domain.DuplicateRuleError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, []domain.RuleConflict{
		{Index: 0, ExistingID: 1, CertificateType: "ACORD-25", ProductName: "auto"},
		{Index: 2, ExistingID: 2, CertificateType: "acord-25", ProductName: "UMBRELLA"},
	}, dupErr.Conflicts)
	assert.Equal(t, 0, dupErr.Index)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateBatch_ConcurrentDisjointBatchesAllSucceed(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()

	const workers = 40
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			errs[w] = repo.CreateBatch(ctx, []*domain.ValidationRule{
				rule("ACORD-25", fmt.Sprintf("Product %d-a", w), true),
				rule("ACORD-25", fmt.Sprintf("Product %d-b", w), true),
			})
		}(w)
	}
	wg.Wait()

	for w, err := range errs {
		assert.NoError(t, err, "worker %d", w)
	}
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2*workers)
}

func TestCreateBatch_InactiveRuleStillBlocksDuplicate(t *testing.T) {
	repo, _ := setupSQLite(t)
	seed(t, repo, rule("ACORD-25", "Auto", false))

	err := repo.CreateBatch(context.Background(), []*domain.ValidationRule{rule("ACORD-25", "Auto", true)})
	assert.ErrorIs(t, err, domain.ErrDuplicateRule)
}

func TestIDsAreNeverReused(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()
	seed(t, repo, rule("A", "1", true), rule("A", "2", true))

	_, err := repo.DeleteBatch(ctx, []int64{2})
	require.NoError(t, err)

	next := rule("A", "3", true)
	seed(t, repo, next)
	assert.Equal(t, int64(3), next.ID)
}

func TestList_NewestFirst(t *testing.T) {
	repo, _ := setupSQLite(t)
	seed(t, repo, rule("A", "1", true))
	seed(t, repo, rule("A", "2", true))

	rules, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "2", rules[0].ProductName)
	assert.Equal(t, "1", rules[1].ProductName)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, _ := setupSQLite(t)
	rules, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rules)
	assert.Empty(t, rules)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _ := setupSQLite(t)
	_, err := repo.GetByID(context.Background(), 42)

	var nf *domain.RuleNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []int64{42}, nf.IDs)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteBatch_AtomicWhenAnyIDMissing(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()
	seed(t, repo, rule("A", "1", true), rule("A", "2", true))

	_, err := repo.DeleteBatch(ctx, []int64{1, 2, 999, 1000})
	var nf *domain.RuleNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []int64{999, 1000}, nf.IDs)

	for _, id := range []int64{1, 2} {
		_, err := repo.GetByID(ctx, id)
		assert.NoError(t, err, "rule %d must survive", id)
	}
}

func TestDeleteBatch_ReturnsRulesInRequestOrder(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()
	seed(t, repo, rule("A", "1", true), rule("A", "2", true), rule("A", "3", true))

	deleted, err := repo.DeleteBatch(ctx, []int64{3, 1})
	require.NoError(t, err)
	require.Len(t, deleted, 2)
	assert.Equal(t, int64(3), deleted[0].ID)
	assert.Equal(t, int64(1), deleted[1].ID)

	rules, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, int64(2), rules[0].ID)
}

func TestUpdateBatch(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()
	seed(t, repo, rule("A", "1", true), rule("A", "2", true))

	upd := &domain.ValidationRule{ID: 1, CertificateType: "B", ProductName: "1", IsActive: false}
	require.NoError(t, repo.UpdateBatch(ctx, []*domain.ValidationRule{upd}))
	assert.False(t, upd.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "B", got.CertificateType)
	assert.False(t, got.IsActive)
}

func TestUpdateBatch_KeepingOwnPairIsAllowed(t *testing.T) {
	repo, _ := setupSQLite(t)
	seed(t, repo, rule("A", "1", true))

	upd := &domain.ValidationRule{ID: 1, CertificateType: "A", ProductName: "1", IsActive: false}
	assert.NoError(t, repo.UpdateBatch(context.Background(), []*domain.ValidationRule{upd}))
}

func TestUpdateBatch_CollisionWithOtherRuleRollsBack(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()
	seed(t, repo, rule("A", "1", true), rule("A", "2", true), rule("A", "3", true))

	err := repo.UpdateBatch(ctx, []*domain.ValidationRule{
		{ID: 1, CertificateType: "Z", ProductName: "9", IsActive: true},
		{ID: 3, CertificateType: "a", ProductName: "2", IsActive: true},
	})
	var dupErr *domain.DuplicateRuleError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, 1, dupErr.Index)
	assert.Equal(t, int64(2), dupErr.ExistingID)

	got, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", got.CertificateType, "first update must be rolled back")
}

func TestUpdateBatch_ReportsEveryCollision(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()
	seed(t, repo, rule("A", "1", true), rule("A", "2", true), rule("A", "3", true))

	err := repo.UpdateBatch(ctx, []*domain.ValidationRule{
		{ID: 1, CertificateType: "A", ProductName: "2", IsActive: true},
		{ID: 2, CertificateType: "A", ProductName: "3", IsActive: true},
	})

	var dupErr *domain.DuplicateRuleError
	require.True(t, errors.As(err, &dupErr))
	require.Len(t, dupErr.Conflicts, 2)
	assert.Equal(t, int64(2), dupErr.Conflicts[0].ExistingID)
	assert.Equal(t, 1, dupErr.Conflicts[1].Index)
	assert.Equal(t, int64(3), dupErr.Conflicts[1].ExistingID)
}

func TestUpdateBatch_MissingIDs(t *testing.T) {
	repo, _ := setupSQLite(t)
	seed(t, repo, rule("A", "1", true))

	err := repo.UpdateBatch(context.Background(), []*domain.ValidationRule{
		{ID: 1, CertificateType: "A", ProductName: "1"},
		{ID: 7, CertificateType: "A", ProductName: "7"},
	})
	var nf *domain.RuleNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, []int64{7}, nf.IDs)
}

func TestFindActiveMatch(t *testing.T) {
	repo, _ := setupSQLite(t)
	ctx := context.Background()
	seed(t, repo,
		rule("ACORD-25", "Commercial General Liability", false),
		rule("ACORD-25", "Umbrella", true),
	)

	got, err := repo.FindActiveMatch(ctx, "ACORD-25", "Commercial General Liability")
	require.NoError(t, err)
	assert.Nil(t, got, "inactive rules never match")

	got, err = repo.FindActiveMatch(ctx, "ACORD-25", "Umbrella")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)

	got, err = repo.FindActiveMatch(ctx, "acord-25", "Umbrella")
	require.NoError(t, err)
	assert.Nil(t, got, "matching is case-sensitive")
}

func TestPing(t *testing.T) {
	repo, _ := setupSQLite(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
