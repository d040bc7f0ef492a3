package savings

import (
	"context"
	"sort"
)

type StubSavingsRepo struct {
	nextGoalId         int
	nextContributionId int
	goals              map[int]Goal
	contributions      map[int]Contribution
}

func NewStubSavingsRepo() *StubSavingsRepo {
	return &StubSavingsRepo{
		goals:         map[int]Goal{},
		contributions: map[int]Contribution{},
	}
}

func (s *StubSavingsRepo) StoreGoal(ctx context.Context, goal Goal) (int, error) {
	s.nextGoalId++
	goal.Id = s.nextGoalId
	s.goals[goal.Id] = goal
	return goal.Id, nil
}

func (s *StubSavingsRepo) GetGoal(ctx context.Context, id int) (Goal, error) {
	goal, ok := s.goals[id]
	if !ok {
		return Goal{}, ErrGoalNotFound
	}
	return goal, nil
}

func (s *StubSavingsRepo) GetAllGoals(ctx context.Context) ([]Goal, error) {
	goals := make([]Goal, 0, len(s.goals))
	for _, goal := range s.goals {
		goals = append(goals, goal)
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].Id < goals[j].Id })
	return goals, nil
}

func (s *StubSavingsRepo) UpdateGoal(ctx context.Context, goal Goal) (bool, error) {
	if _, ok := s.goals[goal.Id]; !ok {
		return false, nil
	}
	s.goals[goal.Id] = goal
	return true, nil
}

func (s *StubSavingsRepo) DeleteGoal(ctx context.Context, id int) (bool, error) {
	if _, ok := s.goals[id]; !ok {
		return false, nil
	}
	delete(s.goals, id)
	for contributionId, contribution := range s.contributions {
		if contribution.GoalId == id {
			delete(s.contributions, contributionId)
		}
	}
	return true, nil
}

func (s *StubSavingsRepo) AddContribution(ctx context.Context, contribution Contribution) (Contribution, error) {
	s.nextContributionId++
	contribution.Id = s.nextContributionId
	s.contributions[contribution.Id] = contribution

	goal := s.goals[contribution.GoalId]
	goal.CurrentAmount += contribution.Amount
	s.goals[contribution.GoalId] = goal
	return contribution, nil
}

func (s *StubSavingsRepo) GetContribution(ctx context.Context, id int) (Contribution, error) {
	contribution, ok := s.contributions[id]
	if !ok {
		return Contribution{}, ErrContributionNotFound
	}
	return contribution, nil
}

func (s *StubSavingsRepo) FindContributions(ctx context.Context, goalId int) ([]Contribution, error) {
	contributions := make([]Contribution, 0)
	for _, contribution := range s.contributions {
		if contribution.GoalId == goalId {
			contributions = append(contributions, contribution)
		}
	}
	sort.Slice(contributions, func(i, j int) bool { return contributions[i].Id > contributions[j].Id })
	return contributions, nil
}

func (s *StubSavingsRepo) DeleteContribution(ctx context.Context, contribution Contribution) error {
	delete(s.contributions, contribution.Id)
	goal := s.goals[contribution.GoalId]
	goal.CurrentAmount -= contribution.Amount
	s.goals[contribution.GoalId] = goal
	return nil
}

func (s *StubSavingsRepo) Cleanup() {
	s.goals = map[int]Goal{}
	s.contributions = map[int]Contribution{}
	s.nextGoalId = 0
	s.nextContributionId = 0
}
