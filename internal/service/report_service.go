package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/examdesk/examdesk-backend/internal/model"
	"github.com/examdesk/examdesk-backend/internal/repository"
	"github.com/examdesk/examdesk-backend/internal/response"
)

// ErrResultForbidden is returned when the caller may not view an attempt.
var ErrResultForbidden = errors.New("not allowed to view this attempt")

// ErrAttemptNotFinalized is returned when a graded view is requested for an
// attempt that is still IN_PROGRESS.
var ErrAttemptNotFinalized = errors.New("attempt has not been submitted")

// utf8BOM prefixes every CSV export so spreadsheet tools decode non-ASCII
// content correctly. Several consumers depend on this; do not remove it.
const utf8BOM = "\xEF\xBB\xBF"

// mostMissedLimit caps the most-frequently-missed ranking.
const mostMissedLimit = 10

// ReportService reconstructs graded views of finalized attempts and
// produces the wrong-answer exports.
type ReportService struct {
	attemptRepo  *repository.AttemptRepository
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(
	attemptRepo *repository.AttemptRepository,
	questionRepo *repository.QuestionRepository,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		attemptRepo:  attemptRepo,
		questionRepo: questionRepo,
		log:          log.With().Str("component", "report_service").Logger(),
	}
}

// ListTeamAttempts retrieves a team's attempts with pagination, optionally
// narrowed to a single account.
func (s *ReportService) ListTeamAttempts(ctx context.Context, team string, accountID *int, page, perPage int) ([]model.Attempt, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	attempts, total, err := s.attemptRepo.ListPaginated(ctx, accountID, &team, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if attempts == nil {
		attempts = []model.Attempt{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return attempts, pagination, nil
}

// GetAttemptResult reconstructs the graded view of an attempt. Examinees may
// only fetch their own attempts. Admins are scoped to their team, with one
// documented exception: an attempt with no team recorded is visible to any
// admin. Questions deleted since the attempt started are excluded from the
// per-question list without failing the request.
func (s *ReportService) GetAttemptResult(ctx context.Context, claims *Claims, attemptID uuid.UUID) (*model.AttemptResult, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	if err := s.authorizeResultAccess(claims, attempt); err != nil {
		return nil, err
	}

	answers, err := s.attemptRepo.ListAnswers(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	selectedByQuestion := make(map[uuid.UUID]*int, len(answers))
	for _, ans := range answers {
		selectedByQuestion[ans.QuestionID] = ans.SelectedIndex
	}

	questions, err := s.questionRepo.GetByIDs(ctx, attempt.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[uuid.UUID]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	graded := make([]model.GradedQuestion, 0, len(attempt.QuestionIDs))
	for _, qid := range attempt.QuestionIDs {
		q, ok := byID[qid]
		if !ok {
			continue
		}
		selected := selectedByQuestion[qid]
		graded = append(graded, model.GradedQuestion{
			QuestionID:    qid,
			Content:       q.Content,
			Choices:       q.Choices,
			SelectedIndex: selected,
			CorrectIndex:  q.CorrectIndex,
			Correct:       selected != nil && *selected == q.CorrectIndex,
			Points:        q.Points,
		})
	}

	return &model.AttemptResult{Attempt: *attempt, Graded: graded}, nil
}

// AttemptWrongAnswers fetches the wrong-answer export rows of one attempt
// after checking result visibility. The handler streams them as CSV once
// this returns, so no access failure can occur mid-stream.
func (s *ReportService) AttemptWrongAnswers(ctx context.Context, claims *Claims, attemptID uuid.UUID) ([]model.WrongAnswerRow, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if err := s.authorizeResultAccess(claims, attempt); err != nil {
		return nil, err
	}

	rows, err := s.attemptRepo.WrongAnswersByAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("wrong answers: %w", err)
	}
	return rows, nil
}

// AccountWrongAnswers fetches the cumulative wrong-answer rows across all
// of one account's submitted attempts. Admin only, enforced by routing.
func (s *ReportService) AccountWrongAnswers(ctx context.Context, accountID int) ([]model.WrongAnswerRow, error) {
	rows, err := s.attemptRepo.WrongAnswersByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("wrong answers: %w", err)
	}
	return rows, nil
}

// MostMissed ranks a team's questions by miss frequency, capped at ten.
func (s *ReportService) MostMissed(ctx context.Context, team string) ([]model.MissedQuestion, error) {
	missed, err := s.attemptRepo.MostMissed(ctx, team, mostMissedLimit)
	if err != nil {
		return nil, err
	}
	if missed == nil {
		missed = []model.MissedQuestion{}
	}
	return missed, nil
}

// WriteMostMissedCSV writes the most-missed ranking with a UTF-8 BOM prefix.
func WriteMostMissedCSV(w io.Writer, missed []model.MissedQuestion) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"question_id", "question_text", "miss_count"}); err != nil {
		return err
	}
	for _, m := range missed {
		if err := cw.Write([]string{m.QuestionID.String(), m.Content, strconv.Itoa(m.MissCount)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// authorizeResultAccess applies the result visibility rules: owners always,
// admins within their team, any admin when the attempt carries no team.
// Graded views exist only for finalized attempts; an IN_PROGRESS attempt is
// never readable here, even by its owner, because the reconstruction carries
// the correct indices of the frozen question set.
func (s *ReportService) authorizeResultAccess(claims *Claims, attempt *model.Attempt) error {
	if claims.Role == model.RoleAdmin {
		if attempt.Team != "" && attempt.Team != claims.Team {
			return ErrResultForbidden
		}
	} else if attempt.AccountID != claims.AccountID {
		return ErrResultForbidden
	}
	if attempt.Status != model.AttemptStatusSubmitted {
		return ErrAttemptNotFinalized
	}
	return nil
}

// WriteWrongAnswerCSV writes the export rows with a UTF-8 BOM prefix.
// Choice columns are 1-based for human readers; an absent selection renders
// as "unanswered". An empty row set still produces the header line.
func WriteWrongAnswerCSV(w io.Writer, rows []model.WrongAnswerRow) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"account_id", "attempt_id", "submitted_at", "question_id", "question_text", "submitted_choice", "correct_choice", "points"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		submitted := "unanswered"
		if row.SelectedIndex != nil {
			submitted = strconv.Itoa(*row.SelectedIndex + 1)
		}
		submittedAt := ""
		if row.SubmittedAt != nil {
			submittedAt = row.SubmittedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			row.EmployeeID,
			row.AttemptID.String(),
			submittedAt,
			row.QuestionID.String(),
			row.Content,
			submitted,
			strconv.Itoa(row.CorrectIndex + 1),
			strconv.Itoa(row.Points),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
