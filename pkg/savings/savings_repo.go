package savings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	ErrGoalNotFound         = errors.New("savings goal not found")
	ErrContributionNotFound = errors.New("savings contribution not found")
)

const dateLayout = "2006-01-02"
const timestampLayout = "2006-01-02 15:04:05"

type Repo interface {
	StoreGoal(ctx context.Context, goal Goal) (int, error)
	GetGoal(ctx context.Context, id int) (Goal, error)
	GetAllGoals(ctx context.Context) ([]Goal, error)
	UpdateGoal(ctx context.Context, goal Goal) (bool, error)
	DeleteGoal(ctx context.Context, id int) (bool, error)

	// AddContribution inserts the contribution row and moves the goal's
	// current amount in the same transaction.
	AddContribution(ctx context.Context, contribution Contribution) (Contribution, error)
	GetContribution(ctx context.Context, id int) (Contribution, error)
	FindContributions(ctx context.Context, goalId int) ([]Contribution, error)
	// DeleteContribution removes the row and reverses its effect on the
	// goal's current amount in the same transaction.
	DeleteContribution(ctx context.Context, contribution Contribution) error
}

type RepoImpl struct {
	db *sql.DB
}

func NewSavingsRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) StoreGoal(ctx context.Context, goal Goal) (int, error) {
	query := `INSERT INTO savings_goals (name, target_amount, current_amount, target_date)
              VALUES (?, ?, ?, ?)`
	var targetDate any
	if goal.TargetDate != nil {
		targetDate = goal.TargetDate.Format(dateLayout)
	}
	result, err := r.db.ExecContext(ctx, query, goal.Name, goal.TargetAmount, goal.CurrentAmount, targetDate)
	if err != nil {
		err := fmt.Errorf("could not insert savings goal: %w", err)
		log.Error(err)
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(id), nil
}

func (r *RepoImpl) GetGoal(ctx context.Context, id int) (Goal, error) {
	query := `SELECT id, name, target_amount, current_amount, target_date
              FROM savings_goals WHERE id = ?`
	goal, err := scanGoal(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Goal{}, ErrGoalNotFound
	} else if err != nil {
		err := fmt.Errorf("could not query savings goal: %w", err)
		log.Error(err)
		return Goal{}, err
	}
	return goal, nil
}

func (r *RepoImpl) GetAllGoals(ctx context.Context) ([]Goal, error) {
	query := `SELECT id, name, target_amount, current_amount, target_date
              FROM savings_goals ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query savings goals: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	goals := make([]Goal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			err := fmt.Errorf("could not scan savings goal: %w", err)
			log.Error(err)
			return nil, err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return goals, nil
}

func (r *RepoImpl) UpdateGoal(ctx context.Context, goal Goal) (bool, error) {
	query := `UPDATE savings_goals SET name = ?, target_amount = ?, target_date = ? WHERE id = ?`
	var targetDate any
	if goal.TargetDate != nil {
		targetDate = goal.TargetDate.Format(dateLayout)
	}
	result, err := r.db.ExecContext(ctx, query, goal.Name, goal.TargetAmount, targetDate, goal.Id)
	if err != nil {
		err := fmt.Errorf("could not update savings goal: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) DeleteGoal(ctx context.Context, id int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM savings_contributions WHERE goal_id = ?", id); err != nil {
		err := fmt.Errorf("could not delete goal contributions: %w", err)
		log.Error(err)
		return false, err
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM savings_goals WHERE id = ?", id)
	if err != nil {
		err := fmt.Errorf("could not delete savings goal: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) AddContribution(ctx context.Context, contribution Contribution) (Contribution, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return Contribution{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO savings_contributions (goal_id, user_id, amount, note, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		contribution.GoalId,
		contribution.UserId,
		contribution.Amount,
		contribution.Note,
		contribution.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		err := fmt.Errorf("could not insert contribution: %w", err)
		log.Error(err)
		return Contribution{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return Contribution{}, err
	}
	contribution.Id = int(id)

	if _, err := tx.ExecContext(ctx,
		"UPDATE savings_goals SET current_amount = current_amount + ? WHERE id = ?",
		contribution.Amount, contribution.GoalId,
	); err != nil {
		err := fmt.Errorf("could not update goal amount: %w", err)
		log.Error(err)
		return Contribution{}, err
	}
	if err := tx.Commit(); err != nil {
		return Contribution{}, err
	}
	return contribution, nil
}

func (r *RepoImpl) GetContribution(ctx context.Context, id int) (Contribution, error) {
	query := `SELECT id, goal_id, user_id, amount, note, created_at
              FROM savings_contributions WHERE id = ?`
	var contribution Contribution
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&contribution.Id,
		&contribution.GoalId,
		&contribution.UserId,
		&contribution.Amount,
		&contribution.Note,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Contribution{}, ErrContributionNotFound
	} else if err != nil {
		err := fmt.Errorf("could not query contribution: %w", err)
		log.Error(err)
		return Contribution{}, err
	}
	contribution.CreatedAt, err = time.Parse(timestampLayout, createdAt)
	if err != nil {
		err := fmt.Errorf("could not parse contribution timestamp: %w", err)
		log.Error(err)
		return Contribution{}, err
	}
	return contribution, nil
}

func (r *RepoImpl) FindContributions(ctx context.Context, goalId int) ([]Contribution, error) {
	query := `SELECT id, goal_id, user_id, amount, note, created_at
              FROM savings_contributions WHERE goal_id = ?
              ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, goalId)
	if err != nil {
		err := fmt.Errorf("could not query contributions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	contributions := make([]Contribution, 0)
	for rows.Next() {
		var contribution Contribution
		var createdAt string
		if err := rows.Scan(
			&contribution.Id,
			&contribution.GoalId,
			&contribution.UserId,
			&contribution.Amount,
			&contribution.Note,
			&createdAt,
		); err != nil {
			err := fmt.Errorf("could not scan contribution: %w", err)
			log.Error(err)
			return nil, err
		}
		contribution.CreatedAt, err = time.Parse(timestampLayout, createdAt)
		if err != nil {
			err := fmt.Errorf("could not parse contribution timestamp: %w", err)
			log.Error(err)
			return nil, err
		}
		contributions = append(contributions, contribution)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return contributions, nil
}

func (r *RepoImpl) DeleteContribution(ctx context.Context, contribution Contribution) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM savings_contributions WHERE id = ?", contribution.Id); err != nil {
		err := fmt.Errorf("could not delete contribution: %w", err)
		log.Error(err)
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE savings_goals SET current_amount = current_amount - ? WHERE id = ?",
		contribution.Amount, contribution.GoalId,
	); err != nil {
		err := fmt.Errorf("could not reverse goal amount: %w", err)
		log.Error(err)
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (Goal, error) {
	var goal Goal
	var targetDate sql.NullString
	if err := row.Scan(&goal.Id, &goal.Name, &goal.TargetAmount, &goal.CurrentAmount, &targetDate); err != nil {
		return Goal{}, err
	}
	if targetDate.Valid {
		parsed, err := time.Parse(dateLayout, targetDate.String)
		if err != nil {
			return Goal{}, fmt.Errorf("could not parse target date: %w", err)
		}
		goal.TargetDate = &parsed
	}
	return goal, nil
}
