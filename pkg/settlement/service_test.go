package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/samkassa/samkassa/pkg/expense"
	"github.com/samkassa/samkassa/pkg/user"
	"github.com/stretchr/testify/assert"
)

func serviceSetup(t *testing.T) (*ServiceImpl, *expense.StubExpenseRepo, context.Context, context.Context) {
	userRepo := user.NewStubUserRepo()
	userService := user.NewUserService(userRepo)
	expenseRepo := expense.NewStubExpenseRepo()
	service := NewSettlementService(expenseRepo, userService)

	ctx := context.Background()
	a, err := userService.CreateUser(ctx, user.User{Name: "Alice", Email: "alice@example.com"})
	assert.NoError(t, err)
	b, err := userService.CreateUser(ctx, user.User{Name: "Bob", Email: "bob@example.com"})
	assert.NoError(t, err)
	assert.NoError(t, userRepo.AcceptInvite(ctx, "test-code", a.Id, b.Id))

	linkedAlice, err := userRepo.GetUser(ctx, a.Id)
	assert.NoError(t, err)
	single, err := userService.CreateUser(ctx, user.User{Name: "Carol", Email: "carol@example.com"})
	assert.NoError(t, err)

	aliceCtx := user.WithUser(ctx, linkedAlice)
	singleCtx := user.WithUser(ctx, single)
	return service, expenseRepo, aliceCtx, singleCtx
}

func seedExpense(t *testing.T, repo *expense.StubExpenseRepo, payerId int, amount float64, splitType expense.SplitType, day int) {
	t.Helper()
	_, err := repo.Store(context.Background(), expense.Expense{
		Date:         time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC),
		Amount:       amount,
		PaidByUserId: payerId,
		SplitType:    splitType,
	})
	assert.NoError(t, err)
}

func TestServiceImpl_GetSettlement(t *testing.T) {
	service, repo, aliceCtx, _ := serviceSetup(t)
	seedExpense(t, repo, 1, 100, expense.SplitEqual, 1)

	payload, err := service.GetSettlement(aliceCtx, Query{Scope: "ours"})

	assert.NoError(t, err)
	assert.Equal(t, "50.00", payload.Amount)
	assert.Equal(t, "Alice", *payload.Creditor)
	assert.Equal(t, "Bob", *payload.Debtor)
}

func TestServiceImpl_GetSettlement_NoPartnerShortCircuits(t *testing.T) {
	service, repo, _, singleCtx := serviceSetup(t)
	seedExpense(t, repo, 3, 100, expense.SplitEqual, 1)

	payload, err := service.GetSettlement(singleCtx, Query{Scope: "partner"})

	assert.NoError(t, err)
	assert.Equal(t, "0.00", payload.Amount)
	assert.Nil(t, payload.Creditor)
	assert.Nil(t, payload.Debtor)
	assert.Equal(t, "Link a partner to calculate settlements.", payload.Message)
}

func TestServiceImpl_GetSettlement_DateRangeRestricted(t *testing.T) {
	service, repo, aliceCtx, _ := serviceSetup(t)
	seedExpense(t, repo, 1, 100, expense.SplitEqual, 1)
	seedExpense(t, repo, 1, 300, expense.SplitEqual, 20)

	payload, err := service.GetSettlement(aliceCtx, Query{
		Scope:     "ours",
		StartDate: "2025-06-01",
		EndDate:   "2025-06-10",
	})

	assert.NoError(t, err)
	assert.Equal(t, "50.00", payload.Amount)
}

func TestServiceImpl_GetSettlement_RejectsMalformedDate(t *testing.T) {
	service, _, aliceCtx, _ := serviceSetup(t)

	_, err := service.GetSettlement(aliceCtx, Query{StartDate: "01-06-2025"})
	assert.ErrorIs(t, err, expense.ErrInvalidDate)
}

func TestServiceImpl_GetSettlement_PersonalExcluded(t *testing.T) {
	service, repo, aliceCtx, _ := serviceSetup(t)
	seedExpense(t, repo, 1, 100, expense.SplitEqual, 1)
	seedExpense(t, repo, 1, 5000, expense.SplitPersonal, 2)
	seedExpense(t, repo, 2, 4000, expense.SplitPersonal, 3)

	payload, err := service.GetSettlement(aliceCtx, Query{Scope: "ours"})

	assert.NoError(t, err)
	assert.Equal(t, "50.00", payload.Amount)
}
