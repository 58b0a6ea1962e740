package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/examdesk/examdesk-backend/internal/model"
	"github.com/examdesk/examdesk-backend/internal/repository"
	"github.com/examdesk/examdesk-backend/internal/response"
)

// ErrInvalidQuestion is returned when a question violates the bank
// invariants (choice count, correct index range, point value).
var ErrInvalidQuestion = errors.New("question violates bank invariants")

// QuestionService handles question bank business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// GetByID retrieves a question by ID.
func (s *QuestionService) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// ListQuestions retrieves a team's questions with pagination and an
// optional active filter.
func (s *QuestionService) ListQuestions(ctx context.Context, team string, active *bool, page, perPage int) ([]model.Question, *response.Pagination, error) {
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

	questions, total, err := s.questionRepo.ListPaginated(ctx, team, active, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if questions == nil {
		questions = []model.Question{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return questions, pagination, nil
}

// Create inserts a new question after checking the bank invariants.
func (s *QuestionService) Create(ctx context.Context, q *model.Question) error {
	if !q.Valid() {
		return ErrInvalidQuestion
	}
	return s.questionRepo.Create(ctx, q)
}

// Update modifies an existing question after checking the bank invariants.
func (s *QuestionService) Update(ctx context.Context, q *model.Question) error {
	if !q.Valid() {
		return ErrInvalidQuestion
	}
	return s.questionRepo.Update(ctx, q)
}

// Delete removes a question permanently. Historical attempts referencing it
// degrade by exclusion in grading and reporting.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.questionRepo.Delete(ctx, id)
}

// ClearTeam removes every question of a team. Destructive admin action.
func (s *QuestionService) ClearTeam(ctx context.Context, team string) (int64, error) {
	deleted, err := s.questionRepo.ClearByTeam(ctx, team)
	if err != nil {
		return 0, err
	}
	s.log.Info().Str("team", team).Int64("deleted", deleted).Msg("Question bank cleared")
	return deleted, nil
}
