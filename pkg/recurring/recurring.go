package recurring

import (
	"time"

	"github.com/samkassa/samkassa/pkg/expense"
)

// Template describes a bill that materializes into one expense per month.
// Templates are deactivated rather than deleted so expenses generated from
// them stay valid.
type Template struct {
	Id              int
	Description     string
	DefaultAmount   float64
	CategoryId      int
	PaidByUserId    int
	SplitType       expense.SplitType
	SplitRatioUser1 *float64
	SplitRatioUser2 *float64
	IsActive        bool
	// UpdatedAt is the template version. Generated expenses carry the value
	// they were stamped with; a mismatch means the template was edited after
	// generation and the expense must be regenerated.
	UpdatedAt time.Time
}

// Materialize builds the expense row for this template in the given month.
// The first of the month is both the expense date and half of the
// generator's idempotency key.
func (t Template) Materialize(year int, month time.Month) expense.Expense {
	templateId := t.Id
	stamp := t.UpdatedAt
	return expense.Expense{
		Date:                       time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
		Amount:                     t.DefaultAmount,
		Description:                t.Description,
		CategoryId:                 t.CategoryId,
		PaidByUserId:               t.PaidByUserId,
		SplitType:                  t.SplitType,
		SplitRatioUser1:            t.SplitRatioUser1,
		SplitRatioUser2:            t.SplitRatioUser2,
		RecurringExpenseId:         &templateId,
		RecurringTemplateUpdatedAt: &stamp,
	}
}
