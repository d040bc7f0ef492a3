package insights

import (
	"context"
	"testing"
	"time"

	"github.com/samkassa/samkassa/internal/utils"
	"github.com/samkassa/samkassa/pkg/budget"
	"github.com/samkassa/samkassa/pkg/expense"
	"github.com/samkassa/samkassa/pkg/savings"
	"github.com/samkassa/samkassa/pkg/user"
	"github.com/stretchr/testify/assert"
)

func insightsSetup() (*ServiceImpl, *expense.StubExpenseRepo, *budget.StubBudgetRepo, context.Context) {
	expenseRepo := expense.NewStubExpenseRepo()
	budgetRepo := budget.NewStubBudgetRepo()
	savingsRepo := savings.NewStubSavingsRepo()
	clock := &utils.MockClock{FixedNow: time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)}
	service := NewInsightsService(expenseRepo, budgetRepo, savingsRepo, clock)

	partnerId := 2
	viewer := user.User{Id: 1, Name: "Alice", PartnerId: &partnerId}
	ctx := user.WithUser(context.Background(), viewer)
	return service, expenseRepo, budgetRepo, ctx
}

func TestServiceImpl_GetInsights(t *testing.T) {
	service, expenseRepo, budgetRepo, ctx := insightsSetup()
	_, err := expenseRepo.Store(ctx, expense.Expense{
		Date:         time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
		Amount:       130,
		CategoryId:   1,
		PaidByUserId: 1,
		SplitType:    expense.SplitEqual,
	})
	assert.NoError(t, err)
	_, err = budgetRepo.Upsert(ctx, budget.Budget{CategoryId: 1, Month: time.May, Year: 2025, Amount: 100})
	assert.NoError(t, err)

	analysis, err := service.GetInsights(ctx, Query{Scope: "ours"})

	assert.NoError(t, err)
	assert.Len(t, analysis.BudgetVariances, 1)
	assert.InDelta(t, 0.3, analysis.BudgetVariances[0].Variance, 1e-9)
	assert.Len(t, analysis.Recommendations, 1)
	assert.Equal(t, RecommendationReduction, analysis.Recommendations[0].Type)
}

func TestServiceImpl_GetInsights_DefaultWindowExcludesOldExpenses(t *testing.T) {
	service, expenseRepo, _, ctx := insightsSetup()
	_, err := expenseRepo.Store(ctx, expense.Expense{
		Date:         time.Date(2020, time.January, 10, 0, 0, 0, 0, time.UTC),
		Amount:       1000,
		CategoryId:   1,
		PaidByUserId: 1,
		SplitType:    expense.SplitEqual,
	})
	assert.NoError(t, err)

	analysis, err := service.GetInsights(ctx, Query{})

	assert.NoError(t, err)
	assert.Empty(t, analysis.Patterns)
}

func TestServiceImpl_GetInsights_RejectsMalformedDate(t *testing.T) {
	service, _, _, ctx := insightsSetup()

	_, err := service.GetInsights(ctx, Query{StartDate: "June 2025"})
	assert.ErrorIs(t, err, expense.ErrInvalidDate)
}

func TestServiceImpl_GetInsights_MineScopeIgnoresPartnerExpenses(t *testing.T) {
	service, expenseRepo, _, ctx := insightsSetup()
	_, err := expenseRepo.Store(ctx, expense.Expense{
		Date:         time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC),
		Amount:       100,
		CategoryId:   1,
		PaidByUserId: 2,
		SplitType:    expense.SplitEqual,
	})
	assert.NoError(t, err)

	analysis, err := service.GetInsights(ctx, Query{Scope: "mine"})

	assert.NoError(t, err)
	assert.Empty(t, analysis.Patterns)
}
