package recurring

import (
	"context"
	"sort"
	"time"

	"github.com/samkassa/samkassa/pkg/expense"
)

type StubRecurringRepo struct {
	nextTemplateId int
	nextExpenseId  int
	templates      map[int]Template
	generated      map[int]expense.Expense
}

func NewStubRecurringRepo() *StubRecurringRepo {
	return &StubRecurringRepo{
		templates: map[int]Template{},
		generated: map[int]expense.Expense{},
	}
}

func (s *StubRecurringRepo) Store(ctx context.Context, template Template) (int, error) {
	s.nextTemplateId++
	template.Id = s.nextTemplateId
	s.templates[template.Id] = template
	return template.Id, nil
}

func (s *StubRecurringRepo) Get(ctx context.Context, id int) (Template, error) {
	template, ok := s.templates[id]
	if !ok {
		return Template{}, ErrTemplateNotFound
	}
	return template, nil
}

func (s *StubRecurringRepo) GetAll(ctx context.Context, includeInactive bool) ([]Template, error) {
	templates := make([]Template, 0, len(s.templates))
	for _, template := range s.templates {
		if !includeInactive && !template.IsActive {
			continue
		}
		templates = append(templates, template)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Id < templates[j].Id })
	return templates, nil
}

func (s *StubRecurringRepo) Update(ctx context.Context, template Template) (bool, error) {
	if _, ok := s.templates[template.Id]; !ok {
		return false, nil
	}
	s.templates[template.Id] = template
	return true, nil
}

func (s *StubRecurringRepo) Deactivate(ctx context.Context, id int) (bool, error) {
	template, ok := s.templates[id]
	if !ok {
		return false, nil
	}
	template.IsActive = false
	s.templates[id] = template
	return true, nil
}

func (s *StubRecurringRepo) FindGenerated(ctx context.Context, templateId int, date time.Time) (*expense.Expense, error) {
	for _, e := range s.generated {
		if e.RecurringExpenseId != nil && *e.RecurringExpenseId == templateId && e.Date.Equal(date) {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubRecurringRepo) InsertGenerated(ctx context.Context, e expense.Expense) (bool, error) {
	existing, _ := s.FindGenerated(ctx, *e.RecurringExpenseId, e.Date)
	if existing != nil {
		return false, nil
	}
	s.nextExpenseId++
	e.Id = s.nextExpenseId
	s.generated[e.Id] = e
	return true, nil
}

func (s *StubRecurringRepo) ReplaceGenerated(ctx context.Context, staleExpenseId int, e expense.Expense) error {
	delete(s.generated, staleExpenseId)
	_, err := s.InsertGenerated(ctx, e)
	return err
}

// GeneratedExpenses exposes the generated rows for assertions.
func (s *StubRecurringRepo) GeneratedExpenses() []expense.Expense {
	expenses := make([]expense.Expense, 0, len(s.generated))
	for _, e := range s.generated {
		expenses = append(expenses, e)
	}
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].Id < expenses[j].Id })
	return expenses
}

func (s *StubRecurringRepo) Cleanup() {
	s.templates = map[int]Template{}
	s.generated = map[int]expense.Expense{}
	s.nextTemplateId = 0
	s.nextExpenseId = 0
}
