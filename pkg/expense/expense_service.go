package expense

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/samkassa/samkassa/pkg/scope"
	"github.com/samkassa/samkassa/pkg/user"
)

var (
	ErrInvalidDate       = errors.New("date must match YYYY-MM-DD")
	ErrInvalidAmount     = errors.New("amount must be a positive number")
	ErrInvalidSplitRatio = errors.New("custom split ratios must sum to 100")
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate hard-validates user-supplied YYYY-MM-DD input. This is the one
// place request input is strictly rejected rather than coerced.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, ErrInvalidDate
	}
	date, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

// ListQuery is the raw request input for listing expenses.
type ListQuery struct {
	Scope      string
	StartDate  string
	EndDate    string
	CategoryId *int
}

type Service interface {
	List(ctx context.Context, query ListQuery) ([]Expense, scope.Scope, error)
	Create(ctx context.Context, expense Expense) (Expense, error)
	Update(ctx context.Context, expense Expense) (Expense, error)
	Delete(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo Repo
}

func NewExpenseService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) List(ctx context.Context, query ListQuery) ([]Expense, scope.Scope, error) {
	viewer, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, scope.Scope{}, fmt.Errorf("failed to get current user: %w", err)
	}
	resolved := scope.Resolve(viewer, query.Scope)

	filter := Filter{Scope: resolved, CategoryId: query.CategoryId}
	if query.StartDate != "" {
		start, err := ParseDate(query.StartDate)
		if err != nil {
			return nil, scope.Scope{}, err
		}
		filter.StartDate = &start
	}
	if query.EndDate != "" {
		end, err := ParseDate(query.EndDate)
		if err != nil {
			return nil, scope.Scope{}, err
		}
		filter.EndDate = &end
	}

	expenses, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, scope.Scope{}, err
	}
	return expenses, resolved, nil
}

func (s *ServiceImpl) Create(ctx context.Context, expense Expense) (Expense, error) {
	if err := validate(expense); err != nil {
		return Expense{}, err
	}
	id, err := s.repo.Store(ctx, expense)
	if err != nil {
		return Expense{}, err
	}
	expense.Id = id
	return expense, nil
}

func (s *ServiceImpl) Update(ctx context.Context, expense Expense) (Expense, error) {
	if err := validate(expense); err != nil {
		return Expense{}, err
	}
	updated, err := s.repo.Update(ctx, expense)
	if err != nil {
		return Expense{}, err
	}
	if !updated {
		return Expense{}, ErrExpenseNotFound
	}
	return s.repo.Get(ctx, expense.Id)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrExpenseNotFound
	}
	return nil
}

// validate enforces the invariants the store cannot express. Ratios for a
// custom split must sum to 100 when both are supplied; partial or absent
// ratios are left for the settlement engine's soft fallback.
func validate(expense Expense) error {
	if expense.Amount <= 0 || math.IsNaN(expense.Amount) || math.IsInf(expense.Amount, 0) {
		return ErrInvalidAmount
	}
	if expense.SplitType == SplitCustom && expense.SplitRatioUser1 != nil && expense.SplitRatioUser2 != nil {
		if math.Abs(*expense.SplitRatioUser1+*expense.SplitRatioUser2-100) > 0.01 {
			return ErrInvalidSplitRatio
		}
	}
	return nil
}
