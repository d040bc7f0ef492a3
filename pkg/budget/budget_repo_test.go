package budget

import (
	"context"
	"testing"
	"time"

	"github.com/samkassa/samkassa/internal/test_utils"
	"github.com/stretchr/testify/assert"
)

func repoSetup(t *testing.T) (*RepoImpl, int) {
	db := test_utils.SetupTestDB(t)
	categoryId := test_utils.SeedCategory(t, db, "Groceries")
	return NewBudgetRepo(db), categoryId
}

func TestRepoImpl_Upsert_InsertsThenOverwrites(t *testing.T) {
	repo, categoryId := repoSetup(t)
	ctx := context.Background()

	created, err := repo.Upsert(ctx, Budget{CategoryId: categoryId, Month: time.June, Year: 2025, Amount: 400})
	assert.NoError(t, err)
	assert.NotZero(t, created.Id)

	overwritten, err := repo.Upsert(ctx, Budget{CategoryId: categoryId, Month: time.June, Year: 2025, Amount: 550})
	assert.NoError(t, err)
	assert.Equal(t, created.Id, overwritten.Id)

	budgets, err := repo.FindByMonth(ctx, 2025, time.June)
	assert.NoError(t, err)
	assert.Len(t, budgets, 1)
	assert.Equal(t, 550.0, budgets[0].Amount)
}

func TestRepoImpl_FindByMonth_ScopedToMonth(t *testing.T) {
	repo, categoryId := repoSetup(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, Budget{CategoryId: categoryId, Month: time.June, Year: 2025, Amount: 400})
	assert.NoError(t, err)
	_, err = repo.Upsert(ctx, Budget{CategoryId: categoryId, Month: time.July, Year: 2025, Amount: 500})
	assert.NoError(t, err)

	budgets, err := repo.FindByMonth(ctx, 2025, time.June)
	assert.NoError(t, err)
	assert.Len(t, budgets, 1)
	assert.Equal(t, time.June, budgets[0].Month)
}

func TestRepoImpl_FindByRange_SpansYearBoundary(t *testing.T) {
	repo, categoryId := repoSetup(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, Budget{CategoryId: categoryId, Month: time.December, Year: 2024, Amount: 300})
	assert.NoError(t, err)
	_, err = repo.Upsert(ctx, Budget{CategoryId: categoryId, Month: time.January, Year: 2025, Amount: 350})
	assert.NoError(t, err)
	_, err = repo.Upsert(ctx, Budget{CategoryId: categoryId, Month: time.June, Year: 2025, Amount: 400})
	assert.NoError(t, err)

	budgets, err := repo.FindByRange(ctx,
		time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
	)

	assert.NoError(t, err)
	assert.Len(t, budgets, 2)
	assert.Equal(t, 2024, budgets[0].Year)
	assert.Equal(t, 2025, budgets[1].Year)
}

func TestRepoImpl_Delete(t *testing.T) {
	repo, categoryId := repoSetup(t)
	ctx := context.Background()

	created, err := repo.Upsert(ctx, Budget{CategoryId: categoryId, Month: time.June, Year: 2025, Amount: 400})
	assert.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.Id)
	assert.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, created.Id)
	assert.NoError(t, err)
	assert.False(t, deleted)
}
