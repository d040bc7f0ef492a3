package budget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServiceImpl_Set_RejectsBadInput(t *testing.T) {
	service := NewBudgetService(NewStubBudgetRepo())
	ctx := context.Background()

	_, err := service.Set(ctx, Budget{CategoryId: 1, Month: time.June, Year: 2025, Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.Set(ctx, Budget{CategoryId: 1, Month: time.June, Year: 2025, Amount: -100})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.Set(ctx, Budget{CategoryId: 1, Month: 13, Year: 2025, Amount: 100})
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestServiceImpl_Set_UpsertsPerCategoryMonth(t *testing.T) {
	service := NewBudgetService(NewStubBudgetRepo())
	ctx := context.Background()

	first, err := service.Set(ctx, Budget{CategoryId: 1, Month: time.June, Year: 2025, Amount: 400})
	assert.NoError(t, err)
	second, err := service.Set(ctx, Budget{CategoryId: 1, Month: time.June, Year: 2025, Amount: 600})
	assert.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)

	budgets, err := service.ListMonth(ctx, 2025, time.June)
	assert.NoError(t, err)
	assert.Len(t, budgets, 1)
	assert.Equal(t, 600.0, budgets[0].Amount)
}

func TestServiceImpl_Delete_NotFound(t *testing.T) {
	service := NewBudgetService(NewStubBudgetRepo())

	err := service.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrBudgetNotFound)
}
