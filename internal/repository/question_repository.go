package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examdesk/examdesk-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, team, content, choices, correct_index, points, active, created_at, updated_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Team, &q.Content, &q.Choices, &q.CorrectIndex, &q.Points, &q.Active, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByIDs retrieves the questions matching ids. Deleted ids are silently
// absent from the result; callers degrade by exclusion.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, team, content, choices, correct_index, points, active, created_at, updated_at
		 FROM questions WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// ListActiveByTeam retrieves all active questions for a team.
func (r *QuestionRepository) ListActiveByTeam(ctx context.Context, team string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, team, content, choices, correct_index, points, active, created_at, updated_at
		 FROM questions WHERE team = $1 AND active = TRUE
		 ORDER BY created_at`, team,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanQuestions(rows)
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (team, content, choices, correct_index, points, active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		q.Team, q.Content, q.Choices, q.CorrectIndex, q.Points, q.Active,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update modifies an existing question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET content = $1, choices = $2, correct_index = $3, points = $4, active = $5, updated_at = NOW()
		 WHERE id = $6`,
		q.Content, q.Choices, q.CorrectIndex, q.Points, q.Active, q.ID)
	return err
}

// Delete removes a question permanently.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// ClearByTeam removes all questions of a team. Returns the number deleted.
func (r *QuestionRepository) ClearByTeam(ctx context.Context, team string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE team = $1`, team)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListPaginated retrieves questions for a team with pagination and an
// optional active-flag filter.
func (r *QuestionRepository) ListPaginated(ctx context.Context, team string, active *bool, limit, offset int) ([]model.Question, int, error) {
	baseQuery := ` FROM questions WHERE team = $1`
	args := []any{team}

	if active != nil {
		args = append(args, *active)
		baseQuery += fmt.Sprintf(` AND active = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, team, content, choices, correct_index, points, active, created_at, updated_at` +
		baseQuery + ` ORDER BY created_at`
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	questions, err := scanQuestions(rows)
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func scanQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Team, &q.Content, &q.Choices, &q.CorrectIndex, &q.Points, &q.Active, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
