package expense

import (
	"context"
	"testing"
	"time"

	"github.com/samkassa/samkassa/pkg/scope"
	"github.com/samkassa/samkassa/pkg/user"
	"github.com/stretchr/testify/assert"
)

func serviceSetup() (*ServiceImpl, *StubExpenseRepo, context.Context) {
	repo := NewStubExpenseRepo()
	service := NewExpenseService(repo)
	partnerId := 2
	ctx := user.WithUser(context.Background(), user.User{Id: 1, Name: "Alice", PartnerId: &partnerId})
	return service, repo, ctx
}

func TestServiceImpl_List_RejectsMalformedDates(t *testing.T) {
	service, _, ctx := serviceSetup()

	tests := []struct {
		name  string
		query ListQuery
	}{
		{name: "start date wrong separator", query: ListQuery{StartDate: "2025/06/01"}},
		{name: "start date too short", query: ListQuery{StartDate: "2025-6-1"}},
		{name: "end date free text", query: ListQuery{EndDate: "tomorrow"}},
		{name: "end date impossible month", query: ListQuery{EndDate: "2025-13-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := service.List(ctx, tt.query)
			assert.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}

func TestServiceImpl_List_ResolvesScope(t *testing.T) {
	service, repo, ctx := serviceSetup()
	repo.Store(ctx, Expense{Date: time.Now(), Amount: 100, PaidByUserId: 1, SplitType: SplitEqual})
	repo.Store(ctx, Expense{Date: time.Now(), Amount: 50, PaidByUserId: 1, SplitType: SplitPersonal})
	repo.Store(ctx, Expense{Date: time.Now(), Amount: 200, PaidByUserId: 2, SplitType: SplitEqual})

	expenses, resolved, err := service.List(ctx, ListQuery{Scope: "ours"})
	assert.NoError(t, err)
	assert.Equal(t, scope.Ours, resolved.Name)
	assert.Len(t, expenses, 2)

	expenses, resolved, err = service.List(ctx, ListQuery{Scope: "mine"})
	assert.NoError(t, err)
	assert.Equal(t, scope.Mine, resolved.Name)
	assert.Len(t, expenses, 2)
}

func TestServiceImpl_List_NoUserInContext(t *testing.T) {
	service, _, _ := serviceSetup()

	_, _, err := service.List(context.Background(), ListQuery{})
	assert.ErrorIs(t, err, user.ErrNoUser)
}

func TestServiceImpl_Create_Validation(t *testing.T) {
	service, _, ctx := serviceSetup()

	tests := []struct {
		name    string
		expense Expense
		wantErr error
	}{
		{
			name:    "non-positive amount rejected",
			expense: Expense{Date: time.Now(), Amount: 0, PaidByUserId: 1, SplitType: SplitEqual},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount rejected",
			expense: Expense{Date: time.Now(), Amount: -10, PaidByUserId: 1, SplitType: SplitEqual},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "custom ratios not summing to 100 rejected",
			expense: Expense{
				Date: time.Now(), Amount: 100, PaidByUserId: 1,
				SplitType: SplitCustom, SplitRatioUser1: ratio(70), SplitRatioUser2: ratio(40),
			},
			wantErr: ErrInvalidSplitRatio,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, tt.expense)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestServiceImpl_Create_PartialCustomRatioAllowed(t *testing.T) {
	// Only one ratio supplied stays permissive; the settlement engine derives
	// the complement at computation time.
	service, _, ctx := serviceSetup()

	created, err := service.Create(ctx, Expense{
		Date: time.Now(), Amount: 100, PaidByUserId: 1,
		SplitType: SplitCustom, SplitRatioUser1: ratio(70),
	})
	assert.NoError(t, err)
	assert.NotZero(t, created.Id)
}

func TestServiceImpl_Update_NotFound(t *testing.T) {
	service, _, ctx := serviceSetup()

	_, err := service.Update(ctx, Expense{Id: 999, Date: time.Now(), Amount: 10, SplitType: SplitEqual})
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestParseSplitType(t *testing.T) {
	assert.Equal(t, SplitEqual, ParseSplitType("50/50"))
	assert.Equal(t, SplitEqual, ParseSplitType("equal"))
	assert.Equal(t, SplitEqual, ParseSplitType("whatever"))
	assert.Equal(t, SplitCustom, ParseSplitType("Custom"))
	assert.Equal(t, SplitPersonal, ParseSplitType("personal"))
	assert.Equal(t, SplitBill, ParseSplitType(" bill "))
}
