package expense

import (
	"strings"
	"time"
)

type SplitType string

const (
	SplitEqual    SplitType = "equal"
	SplitCustom   SplitType = "custom"
	SplitPersonal SplitType = "personal"
	SplitBill     SplitType = "bill"
)

// ParseSplitType normalizes free-text split types. The legacy client sends
// "50/50" for equal splits; anything unrecognized is treated as equal.
func ParseSplitType(s string) SplitType {
	switch SplitType(strings.ToLower(strings.TrimSpace(s))) {
	case SplitCustom:
		return SplitCustom
	case SplitPersonal:
		return SplitPersonal
	case SplitBill:
		return SplitBill
	default:
		return SplitEqual
	}
}

type Expense struct {
	Id           int
	Date         time.Time
	Amount       float64
	Description  string
	CategoryId   int
	PaidByUserId int
	SplitType    SplitType
	// SplitRatioUser1/2 are percentages (0-100) for custom and bill splits.
	// Nil means not supplied; the settlement engine derives a fallback.
	SplitRatioUser1 *float64
	SplitRatioUser2 *float64
	// RecurringExpenseId tags rows materialized from a recurring template.
	RecurringExpenseId *int
	// RecurringTemplateUpdatedAt records the template version the row was
	// generated from, so edits to the template trigger regeneration.
	RecurringTemplateUpdatedAt *time.Time
}

// Generated reports whether this expense was materialized from a recurring template.
func (e Expense) Generated() bool {
	return e.RecurringExpenseId != nil
}
