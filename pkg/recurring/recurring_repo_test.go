package recurring

import (
	"context"
	"testing"
	"time"

	"github.com/samkassa/samkassa/internal/test_utils"
	"github.com/samkassa/samkassa/pkg/expense"
	"github.com/stretchr/testify/assert"
)

func repoSetup(t *testing.T) (*RepoImpl, Template) {
	db := test_utils.SetupTestDB(t)
	alice, _ := test_utils.SeedCouple(t, db)
	categoryId := test_utils.SeedCategory(t, db, "Housing")

	template := Template{
		Description:   "Rent",
		DefaultAmount: 100,
		CategoryId:    categoryId,
		PaidByUserId:  alice.Id,
		SplitType:     expense.SplitEqual,
		IsActive:      true,
		UpdatedAt:     time.Date(2025, time.May, 15, 10, 0, 0, 0, time.UTC),
	}
	return NewRecurringRepo(db), template
}

func TestRepoImpl_StoreAndGet(t *testing.T) {
	repo, template := repoSetup(t)
	ctx := context.Background()

	id, err := repo.Store(ctx, template)
	assert.NoError(t, err)

	stored, err := repo.Get(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, template.Description, stored.Description)
	assert.Equal(t, template.DefaultAmount, stored.DefaultAmount)
	assert.True(t, stored.IsActive)
	assert.True(t, stored.UpdatedAt.Equal(template.UpdatedAt))
}

func TestRepoImpl_Get_NotFound(t *testing.T) {
	repo, _ := repoSetup(t)

	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestRepoImpl_GetAll_FiltersInactive(t *testing.T) {
	repo, template := repoSetup(t)
	ctx := context.Background()

	activeId, err := repo.Store(ctx, template)
	assert.NoError(t, err)
	inactive := template
	inactive.Description = "Old gym membership"
	inactive.IsActive = false
	_, err = repo.Store(ctx, inactive)
	assert.NoError(t, err)

	active, err := repo.GetAll(ctx, false)
	assert.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, activeId, active[0].Id)

	all, err := repo.GetAll(ctx, true)
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepoImpl_Update(t *testing.T) {
	repo, template := repoSetup(t)
	ctx := context.Background()

	id, err := repo.Store(ctx, template)
	assert.NoError(t, err)

	template.Id = id
	template.DefaultAmount = 150
	template.UpdatedAt = template.UpdatedAt.Add(time.Hour)
	updated, err := repo.Update(ctx, template)
	assert.NoError(t, err)
	assert.True(t, updated)

	stored, err := repo.Get(ctx, id)
	assert.NoError(t, err)
	assert.Equal(t, 150.0, stored.DefaultAmount)
	assert.True(t, stored.UpdatedAt.Equal(template.UpdatedAt))
}

func TestRepoImpl_Deactivate(t *testing.T) {
	repo, template := repoSetup(t)
	ctx := context.Background()

	id, err := repo.Store(ctx, template)
	assert.NoError(t, err)

	deactivated, err := repo.Deactivate(ctx, id)
	assert.NoError(t, err)
	assert.True(t, deactivated)

	stored, err := repo.Get(ctx, id)
	assert.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestRepoImpl_InsertGenerated_UniqueIndexDeduplicates(t *testing.T) {
	repo, template := repoSetup(t)
	ctx := context.Background()

	id, err := repo.Store(ctx, template)
	assert.NoError(t, err)
	template.Id = id
	e := template.Materialize(2025, time.June)

	inserted, err := repo.InsertGenerated(ctx, e)
	assert.NoError(t, err)
	assert.True(t, inserted)

	// second insert hits the unique (recurring_expense_id, date) index
	inserted, err = repo.InsertGenerated(ctx, e)
	assert.NoError(t, err)
	assert.False(t, inserted)

	found, err := repo.FindGenerated(ctx, id, e.Date)
	assert.NoError(t, err)
	assert.NotNil(t, found)
	assert.Equal(t, 100.0, found.Amount)
	assert.True(t, found.RecurringTemplateUpdatedAt.Equal(template.UpdatedAt))
}

func TestRepoImpl_FindGenerated_NoneReturnsNil(t *testing.T) {
	repo, template := repoSetup(t)
	ctx := context.Background()

	id, err := repo.Store(ctx, template)
	assert.NoError(t, err)

	found, err := repo.FindGenerated(ctx, id, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepoImpl_ReplaceGenerated(t *testing.T) {
	repo, template := repoSetup(t)
	ctx := context.Background()

	id, err := repo.Store(ctx, template)
	assert.NoError(t, err)
	template.Id = id
	stale := template.Materialize(2025, time.June)

	_, err = repo.InsertGenerated(ctx, stale)
	assert.NoError(t, err)
	found, err := repo.FindGenerated(ctx, id, stale.Date)
	assert.NoError(t, err)

	template.DefaultAmount = 150
	template.UpdatedAt = template.UpdatedAt.Add(time.Hour)
	fresh := template.Materialize(2025, time.June)
	assert.NoError(t, repo.ReplaceGenerated(ctx, found.Id, fresh))

	replaced, err := repo.FindGenerated(ctx, id, fresh.Date)
	assert.NoError(t, err)
	assert.NotNil(t, replaced)
	assert.Equal(t, 150.0, replaced.Amount)
	assert.True(t, replaced.RecurringTemplateUpdatedAt.Equal(template.UpdatedAt))
}
