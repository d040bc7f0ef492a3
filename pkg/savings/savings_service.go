package savings

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/samkassa/samkassa/internal/utils"
	"github.com/samkassa/samkassa/pkg/user"
)

var (
	ErrInvalidTarget = errors.New("target amount must be a positive number")
	ErrInvalidAmount = errors.New("contribution amount must be a finite non-zero number")
)

type Service interface {
	CreateGoal(ctx context.Context, goal Goal) (Goal, error)
	GetGoal(ctx context.Context, id int) (Goal, error)
	ListGoals(ctx context.Context) ([]Goal, error)
	UpdateGoal(ctx context.Context, goal Goal) (Goal, error)
	DeleteGoal(ctx context.Context, id int) error
	Contribute(ctx context.Context, goalId int, amount float64, note string) (ContributionResult, error)
	ListContributions(ctx context.Context, goalId int) ([]Contribution, error)
	DeleteContribution(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo  Repo
	clock utils.Clock
}

func NewSavingsService(repo Repo, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) CreateGoal(ctx context.Context, goal Goal) (Goal, error) {
	if err := validateTarget(goal.TargetAmount); err != nil {
		return Goal{}, err
	}
	goal.CurrentAmount = 0
	id, err := s.repo.StoreGoal(ctx, goal)
	if err != nil {
		return Goal{}, err
	}
	goal.Id = id
	return goal, nil
}

func (s *ServiceImpl) GetGoal(ctx context.Context, id int) (Goal, error) {
	return s.repo.GetGoal(ctx, id)
}

func (s *ServiceImpl) ListGoals(ctx context.Context) ([]Goal, error) {
	return s.repo.GetAllGoals(ctx)
}

func (s *ServiceImpl) UpdateGoal(ctx context.Context, goal Goal) (Goal, error) {
	if err := validateTarget(goal.TargetAmount); err != nil {
		return Goal{}, err
	}
	existing, err := s.repo.GetGoal(ctx, goal.Id)
	if err != nil {
		return Goal{}, err
	}
	// the current amount only moves through contributions
	goal.CurrentAmount = existing.CurrentAmount
	updated, err := s.repo.UpdateGoal(ctx, goal)
	if err != nil {
		return Goal{}, err
	}
	if !updated {
		return Goal{}, ErrGoalNotFound
	}
	return goal, nil
}

func (s *ServiceImpl) DeleteGoal(ctx context.Context, id int) error {
	deleted, err := s.repo.DeleteGoal(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrGoalNotFound
	}
	return nil
}

// Contribute records a contribution by the current user. Positive amounts are
// clamped to the goal's remaining capacity, negative amounts (withdrawals)
// are clamped so the saved total never drops below zero.
func (s *ServiceImpl) Contribute(ctx context.Context, goalId int, amount float64, note string) (ContributionResult, error) {
	if amount == 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ContributionResult{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ContributionResult{}, err
	}

	goal, err := s.repo.GetGoal(ctx, goalId)
	if err != nil {
		return ContributionResult{}, err
	}

	remainingBefore := goal.Remaining()
	clamped := amount
	capped := false
	if amount > 0 && amount > remainingBefore {
		clamped = remainingBefore
		capped = true
	} else if amount < 0 && -amount > goal.CurrentAmount {
		clamped = -goal.CurrentAmount
		capped = true
	}

	contribution := Contribution{
		GoalId:    goalId,
		UserId:    userId,
		Amount:    clamped,
		Note:      note,
		CreatedAt: s.clock.Now().UTC(),
	}
	if clamped != 0 {
		contribution, err = s.repo.AddContribution(ctx, contribution)
		if err != nil {
			return ContributionResult{}, err
		}
	}
	return ContributionResult{
		Contribution:    contribution,
		Capped:          capped,
		RemainingBefore: remainingBefore,
	}, nil
}

func (s *ServiceImpl) ListContributions(ctx context.Context, goalId int) ([]Contribution, error) {
	if _, err := s.repo.GetGoal(ctx, goalId); err != nil {
		return nil, err
	}
	return s.repo.FindContributions(ctx, goalId)
}

func (s *ServiceImpl) DeleteContribution(ctx context.Context, id int) error {
	contribution, err := s.repo.GetContribution(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.DeleteContribution(ctx, contribution)
}

func validateTarget(amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, amount)
	}
	return nil
}
