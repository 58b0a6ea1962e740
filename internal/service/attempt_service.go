package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examdesk/examdesk-backend/internal/config"
	"github.com/examdesk/examdesk-backend/internal/model"
	"github.com/examdesk/examdesk-backend/internal/repository"
)

// Domain errors for the attempt lifecycle.
var (
	ErrNoQuestionsAvailable = errors.New("no active questions available for this team")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrNotAttemptOwner      = errors.New("attempt belongs to another account")
	ErrInvalidAnswerIndex   = errors.New("answer index must not be negative")
)

// SubmissionEvent is published to the team's Redis channel when an attempt
// is finalized; the admin monitor streams it to connected dashboards.
type SubmissionEvent struct {
	AttemptID   uuid.UUID `json:"attempt_id"`
	AccountID   int       `json:"account_id"`
	EmployeeID  string    `json:"employee_id"`
	Team        string    `json:"team"`
	Score       int       `json:"score"`
	TotalPoints int       `json:"total_points"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// AttemptService owns the attempt lifecycle: sampling, submission, grading.
type AttemptService struct {
	attemptRepo  *repository.AttemptRepository
	questionRepo *repository.QuestionRepository
	sampleSize   int
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	questionRepo *repository.QuestionRepository,
	cfg *config.Config,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attemptRepo:  attemptRepo,
		questionRepo: questionRepo,
		sampleSize:   cfg.SampleSize,
		rdb:          rdb,
		log:          log.With().Str("component", "attempt_service").Logger(),
	}
}

// StartAttempt samples the caller's team bank and creates a new IN_PROGRESS
// attempt. The sampled order is frozen for the attempt's lifetime. The
// returned paper never contains correct indices. Each call creates a fresh
// attempt; retakes are not restricted here.
func (s *AttemptService) StartAttempt(ctx context.Context, accountID int, team string) (*model.AttemptPaper, error) {
	available, err := s.questionRepo.ListActiveByTeam(ctx, team)
	if err != nil {
		return nil, fmt.Errorf("list active questions: %w", err)
	}

	// Questions violating the bank invariants never enter an attempt.
	eligible := make([]model.Question, 0, len(available))
	for _, q := range available {
		if q.Valid() {
			eligible = append(eligible, q)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	sampled := sampleQuestions(eligible, s.sampleSize)

	attempt := &model.Attempt{
		AccountID:   accountID,
		Team:        team,
		QuestionIDs: make([]uuid.UUID, len(sampled)),
	}
	paper := make([]model.QuestionForExaminee, len(sampled))
	for i, q := range sampled {
		attempt.QuestionIDs[i] = q.ID
		attempt.TotalPoints += q.Points
		paper[i] = model.QuestionForExaminee{
			ID:      q.ID,
			Content: q.Content,
			Choices: q.Choices,
			Points:  q.Points,
		}
	}

	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attempt.ID.String()).
		Int("account_id", accountID).
		Str("team", team).
		Int("questions", len(sampled)).
		Msg("Attempt started")

	return &model.AttemptPaper{
		AttemptID:   attempt.ID,
		StartedAt:   attempt.StartedAt,
		TotalPoints: attempt.TotalPoints,
		Questions:   paper,
	}, nil
}

// SubmitAttempt grades and finalizes an attempt. The operation is
// idempotent: once an attempt is SUBMITTED, later calls (including the loser
// of a concurrent double-submit) return the already-persisted result and
// ignore their answer map. Questions deleted from the bank after the attempt
// started are excluded from score and total rather than failing the whole
// submission.
func (s *AttemptService) SubmitAttempt(ctx context.Context, accountID int, employeeID string, attemptID uuid.UUID, answers map[uuid.UUID]int) (*model.GradeReport, error) {
	for _, idx := range answers {
		if idx < 0 {
			return nil, ErrInvalidAnswerIndex
		}
	}

	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.AccountID != accountID {
		return nil, ErrNotAttemptOwner
	}
	if attempt.Status == model.AttemptStatusSubmitted {
		return s.persistedReport(ctx, attempt)
	}

	questions, err := s.questionRepo.GetByIDs(ctx, attempt.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[uuid.UUID]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	outcome := gradeAttempt(attemptID, attempt.QuestionIDs, byID, answers)
	submittedAt := time.Now()

	finalized, err := s.attemptRepo.Finalize(ctx, attemptID, outcome.Score, outcome.TotalPoints, submittedAt, outcome.Answers)
	if err != nil {
		return nil, fmt.Errorf("finalize attempt: %w", err)
	}
	if !finalized {
		// A concurrent submit won the conditional update; return its result.
		persisted, err := s.attemptRepo.GetByID(ctx, attemptID)
		if err != nil {
			return nil, fmt.Errorf("reload attempt: %w", err)
		}
		return s.persistedReport(ctx, persisted)
	}

	s.publishSubmission(ctx, SubmissionEvent{
		AttemptID:   attemptID,
		AccountID:   accountID,
		EmployeeID:  employeeID,
		Team:        attempt.Team,
		Score:       outcome.Score,
		TotalPoints: outcome.TotalPoints,
		SubmittedAt: submittedAt,
	})

	s.log.Info().
		Str("attempt_id", attemptID.String()).
		Int("account_id", accountID).
		Int("score", outcome.Score).
		Int("total_points", outcome.TotalPoints).
		Msg("Attempt submitted")

	return &model.GradeReport{
		AttemptID:    attemptID,
		Score:        outcome.Score,
		TotalPoints:  outcome.TotalPoints,
		CorrectCount: outcome.CorrectCount,
		Wrong:        outcome.Wrong,
	}, nil
}

// GetAttempt retrieves an attempt owned by the caller.
func (s *AttemptService) GetAttempt(ctx context.Context, accountID int, attemptID uuid.UUID) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.AccountID != accountID {
		return nil, ErrNotAttemptOwner
	}
	return attempt, nil
}

// ListByAccount retrieves an account's attempts, newest first.
func (s *AttemptService) ListByAccount(ctx context.Context, accountID int, page, perPage int) ([]model.Attempt, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return s.attemptRepo.ListPaginated(ctx, &accountID, nil, perPage, (page-1)*perPage)
}

// persistedReport rebuilds the grade report of an already-submitted attempt
// from its stored answers, ignoring any newly supplied answer map.
func (s *AttemptService) persistedReport(ctx context.Context, attempt *model.Attempt) (*model.GradeReport, error) {
	stored, err := s.attemptRepo.ListAnswers(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	questions, err := s.questionRepo.GetByIDs(ctx, attempt.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[uuid.UUID]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	report := &model.GradeReport{
		AttemptID:   attempt.ID,
		Score:       attempt.Score,
		TotalPoints: attempt.TotalPoints,
		Wrong:       []model.WrongAnswer{},
	}
	for _, ans := range stored {
		q, ok := byID[ans.QuestionID]
		if !ok {
			continue
		}
		if ans.SelectedIndex != nil && *ans.SelectedIndex == q.CorrectIndex {
			report.CorrectCount++
			continue
		}
		report.Wrong = append(report.Wrong, model.WrongAnswer{
			QuestionID:    ans.QuestionID,
			Content:       q.Content,
			SelectedIndex: ans.SelectedIndex,
			CorrectIndex:  q.CorrectIndex,
			Points:        q.Points,
		})
	}
	return report, nil
}

// publishSubmission pushes a submission event to the team channel. Monitor
// delivery is best-effort; failures never affect the submission itself.
func (s *AttemptService) publishSubmission(ctx context.Context, event SubmissionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	channel := config.CacheKey.TeamSubmissionChannel(event.Team)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Failed to publish submission event")
	}
}
