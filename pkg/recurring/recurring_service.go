package recurring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samkassa/samkassa/internal/utils"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidAmount = errors.New("default amount must be a positive number")
	ErrInvalidMonth  = errors.New("month must be between 1 and 12")
)

// GenerationResult summarizes one generator run for a month.
type GenerationResult struct {
	Generated   int
	Regenerated int
	Skipped     int
}

type Service interface {
	CreateTemplate(ctx context.Context, template Template) (Template, error)
	GetTemplate(ctx context.Context, id int) (Template, error)
	ListTemplates(ctx context.Context, includeInactive bool) ([]Template, error)
	UpdateTemplate(ctx context.Context, template Template) (Template, error)
	DeactivateTemplate(ctx context.Context, id int) error
	Generate(ctx context.Context, year int, month time.Month) (GenerationResult, error)
}

type ServiceImpl struct {
	repo  Repo
	clock utils.Clock
}

func NewRecurringService(repo Repo, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) CreateTemplate(ctx context.Context, template Template) (Template, error) {
	if err := validateTemplate(template); err != nil {
		return Template{}, err
	}
	template.IsActive = true
	template.UpdatedAt = s.clock.Now().UTC().Truncate(time.Second)
	id, err := s.repo.Store(ctx, template)
	if err != nil {
		return Template{}, err
	}
	template.Id = id
	return template, nil
}

func (s *ServiceImpl) GetTemplate(ctx context.Context, id int) (Template, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) ListTemplates(ctx context.Context, includeInactive bool) ([]Template, error) {
	return s.repo.GetAll(ctx, includeInactive)
}

// UpdateTemplate bumps the template version so the next generator run
// regenerates any expense created from the old version.
func (s *ServiceImpl) UpdateTemplate(ctx context.Context, template Template) (Template, error) {
	if err := validateTemplate(template); err != nil {
		return Template{}, err
	}
	if _, err := s.repo.Get(ctx, template.Id); err != nil {
		return Template{}, err
	}
	template.UpdatedAt = s.clock.Now().UTC().Truncate(time.Second)
	updated, err := s.repo.Update(ctx, template)
	if err != nil {
		return Template{}, err
	}
	if !updated {
		return Template{}, ErrTemplateNotFound
	}
	return template, nil
}

// DeactivateTemplate stops future generation without touching already
// generated expenses.
func (s *ServiceImpl) DeactivateTemplate(ctx context.Context, id int) error {
	deactivated, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if !deactivated {
		return ErrTemplateNotFound
	}
	return nil
}

// Generate materializes every active template into the given month. The run
// is idempotent: an expense already generated from the current template
// version is left alone, one generated from a stale version is replaced, and
// a missing one is inserted. Zero values for year and month default to the
// current month.
func (s *ServiceImpl) Generate(ctx context.Context, year int, month time.Month) (GenerationResult, error) {
	if year == 0 && month == 0 {
		now := s.clock.Now()
		year, month = now.Year(), now.Month()
	}
	if month < time.January || month > time.December {
		return GenerationResult{}, ErrInvalidMonth
	}

	templates, err := s.repo.GetAll(ctx, false)
	if err != nil {
		return GenerationResult{}, err
	}

	var result GenerationResult
	for _, template := range templates {
		e := template.Materialize(year, month)

		existing, err := s.repo.FindGenerated(ctx, template.Id, e.Date)
		if err != nil {
			return result, err
		}
		switch {
		case existing == nil:
			inserted, err := s.repo.InsertGenerated(ctx, e)
			if err != nil {
				return result, err
			}
			// a lost insert race means someone else generated it first
			if inserted {
				result.Generated++
			} else {
				result.Skipped++
			}
		case stale(existing.RecurringTemplateUpdatedAt, template.UpdatedAt):
			if err := s.repo.ReplaceGenerated(ctx, existing.Id, e); err != nil {
				return result, err
			}
			result.Regenerated++
		default:
			result.Skipped++
		}
	}
	log.Infof("recurring generation for %d-%02d: %d generated, %d regenerated, %d skipped",
		year, month, result.Generated, result.Regenerated, result.Skipped)
	return result, nil
}

func stale(stamp *time.Time, current time.Time) bool {
	if stamp == nil {
		return true
	}
	return !stamp.Equal(current)
}

func validateTemplate(template Template) error {
	if template.DefaultAmount <= 0 || math.IsNaN(template.DefaultAmount) || math.IsInf(template.DefaultAmount, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, template.DefaultAmount)
	}
	return nil
}
