package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examdesk/examdesk-backend/internal/model"
)

// AttemptRepository handles attempt and answer data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a new IN_PROGRESS attempt with its frozen question id list.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO attempts (account_id, team, question_ids, status, total_points)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, started_at`,
		a.AccountID, a.Team, a.QuestionIDs, model.AttemptStatusInProgress, a.TotalPoints,
	).Scan(&a.ID, &a.StartedAt)
}

// GetByID retrieves an attempt by ID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, account_id, team, question_ids, started_at, submitted_at, status, score, total_points
		 FROM attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.AccountID, &a.Team, &a.QuestionIDs, &a.StartedAt, &a.SubmittedAt, &a.Status, &a.Score, &a.TotalPoints)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Finalize writes the grading outcome and the answer batch in one
// transaction. The status guard makes the whole operation a compare-and-swap:
// when two submissions race, exactly one sees rows affected and persists its
// score and answers; the other gets finalized=false and must read back the
// already-persisted result.
func (r *AttemptRepository) Finalize(ctx context.Context, attemptID uuid.UUID, score, totalPoints int, submittedAt time.Time, answers []model.Answer) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE attempts
		 SET status = $1, score = $2, total_points = $3, submitted_at = $4
		 WHERE id = $5 AND status = $6`,
		model.AttemptStatusSubmitted, score, totalPoints, submittedAt,
		attemptID, model.AttemptStatusInProgress)
	if err != nil {
		return false, fmt.Errorf("finalize attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Lost the race or already submitted.
		return false, nil
	}

	batch := &pgx.Batch{}
	for _, ans := range answers {
		batch.Queue(
			`INSERT INTO attempt_answers (attempt_id, question_id, selected_index)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (attempt_id, question_id) DO NOTHING`,
			ans.AttemptID, ans.QuestionID, ans.SelectedIndex)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return false, fmt.Errorf("insert answers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

// ListAnswers retrieves the persisted answers of an attempt.
func (r *AttemptRepository) ListAnswers(ctx context.Context, attemptID uuid.UUID) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT attempt_id, question_id, selected_index
		 FROM attempt_answers WHERE attempt_id = $1`, attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var ans model.Answer
		if err := rows.Scan(&ans.AttemptID, &ans.QuestionID, &ans.SelectedIndex); err != nil {
			return nil, err
		}
		answers = append(answers, ans)
	}
	return answers, rows.Err()
}

// ListPaginated retrieves attempts with pagination, newest first, optionally
// filtered by account and/or team.
func (r *AttemptRepository) ListPaginated(ctx context.Context, accountID *int, team *string, limit, offset int) ([]model.Attempt, int, error) {
	baseQuery := ` FROM attempts WHERE 1=1`
	args := []any{}

	if accountID != nil {
		args = append(args, *accountID)
		baseQuery += fmt.Sprintf(` AND account_id = $%d`, len(args))
	}
	if team != nil && *team != "" {
		args = append(args, *team)
		baseQuery += fmt.Sprintf(` AND team = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, account_id, team, question_ids, started_at, submitted_at, status, score, total_points` +
		baseQuery + ` ORDER BY started_at DESC`
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Team, &a.QuestionIDs, &a.StartedAt, &a.SubmittedAt, &a.Status, &a.Score, &a.TotalPoints); err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}

// WrongAnswersByAccount retrieves all wrong or unanswered rows across an
// account's submitted attempts, newest attempt first.
func (r *AttemptRepository) WrongAnswersByAccount(ctx context.Context, accountID int) ([]model.WrongAnswerRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ac.employee_id, at.id, at.submitted_at,
		        q.id, q.content, aa.selected_index, q.correct_index, q.points
		 FROM attempt_answers aa
		 JOIN attempts at ON aa.attempt_id = at.id
		 JOIN accounts ac ON at.account_id = ac.id
		 JOIN questions q ON aa.question_id = q.id
		 WHERE at.account_id = $1
		   AND at.status = $2
		   AND (aa.selected_index IS NULL OR aa.selected_index <> q.correct_index)
		 ORDER BY at.submitted_at DESC, q.created_at`,
		accountID, model.AttemptStatusSubmitted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWrongAnswerRows(rows)
}

// WrongAnswersByAttempt retrieves the wrong or unanswered rows of one attempt.
func (r *AttemptRepository) WrongAnswersByAttempt(ctx context.Context, attemptID uuid.UUID) ([]model.WrongAnswerRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT ac.employee_id, at.id, at.submitted_at,
		        q.id, q.content, aa.selected_index, q.correct_index, q.points
		 FROM attempt_answers aa
		 JOIN attempts at ON aa.attempt_id = at.id
		 JOIN accounts ac ON at.account_id = ac.id
		 JOIN questions q ON aa.question_id = q.id
		 WHERE at.id = $1
		   AND (aa.selected_index IS NULL OR aa.selected_index <> q.correct_index)
		 ORDER BY q.created_at`,
		attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWrongAnswerRows(rows)
}

// MostMissed ranks a team's questions by how often they were answered wrong
// or left unanswered across all submitted attempts, capped at limit.
func (r *AttemptRepository) MostMissed(ctx context.Context, team string, limit int) ([]model.MissedQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.content, COUNT(*) AS miss_count
		 FROM attempt_answers aa
		 JOIN attempts at ON aa.attempt_id = at.id
		 JOIN questions q ON aa.question_id = q.id
		 WHERE at.team = $1
		   AND at.status = $2
		   AND (aa.selected_index IS NULL OR aa.selected_index <> q.correct_index)
		 GROUP BY q.id, q.content
		 ORDER BY miss_count DESC, q.id
		 LIMIT $3`,
		team, model.AttemptStatusSubmitted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missed []model.MissedQuestion
	for rows.Next() {
		var m model.MissedQuestion
		if err := rows.Scan(&m.QuestionID, &m.Content, &m.MissCount); err != nil {
			return nil, err
		}
		missed = append(missed, m)
	}
	return missed, rows.Err()
}

func scanWrongAnswerRows(rows pgx.Rows) ([]model.WrongAnswerRow, error) {
	var result []model.WrongAnswerRow
	for rows.Next() {
		var w model.WrongAnswerRow
		if err := rows.Scan(&w.EmployeeID, &w.AttemptID, &w.SubmittedAt,
			&w.QuestionID, &w.Content, &w.SelectedIndex, &w.CorrectIndex, &w.Points); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
