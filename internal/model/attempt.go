package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusSubmitted  AttemptStatus = "SUBMITTED"
)

// Attempt represents one examinee's run through an exam. QuestionIDs is the
// frozen ordered sample drawn at creation time; it never changes afterwards.
// Score and SubmittedAt are written exactly once, at submission.
type Attempt struct {
	ID          uuid.UUID     `json:"id"`
	AccountID   int           `json:"account_id"`
	Team        string        `json:"team"`
	QuestionIDs []uuid.UUID   `json:"question_ids"`
	StartedAt   time.Time     `json:"started_at"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	Status      AttemptStatus `json:"status"`
	Score       int           `json:"score"`
	TotalPoints int           `json:"total_points"`
}

// Answer records the choice an examinee selected for one question of an
// attempt. SelectedIndex is nil when the question was left unanswered.
// Answers are written in a single batch when the attempt is finalized.
type Answer struct {
	AttemptID     uuid.UUID `json:"attempt_id"`
	QuestionID    uuid.UUID `json:"question_id"`
	SelectedIndex *int      `json:"selected_index"`
}

// SubmitAttemptRequest is the payload for submitting an attempt.
// Answers maps question id to the selected 0-based choice index; ids outside
// the attempt's frozen set are ignored, missing ids count as unanswered.
type SubmitAttemptRequest struct {
	Answers map[uuid.UUID]int `json:"answers" binding:"required"`
}

// AttemptPaper is what an examinee receives when starting an attempt:
// the sampled questions in display order, without correct indices.
type AttemptPaper struct {
	AttemptID   uuid.UUID             `json:"attempt_id"`
	StartedAt   time.Time             `json:"started_at"`
	TotalPoints int                   `json:"total_points"`
	Questions   []QuestionForExaminee `json:"questions"`
}

// WrongAnswer describes one wrong or unanswered question in a grading result.
type WrongAnswer struct {
	QuestionID    uuid.UUID `json:"question_id"`
	Content       string    `json:"content"`
	SelectedIndex *int      `json:"selected_index"`
	CorrectIndex  int       `json:"correct_index"`
	Points        int       `json:"points"`
}

// GradeReport is the outcome of submitting an attempt.
type GradeReport struct {
	AttemptID    uuid.UUID     `json:"attempt_id"`
	Score        int           `json:"score"`
	TotalPoints  int           `json:"total_points"`
	CorrectCount int           `json:"correct_count"`
	Wrong        []WrongAnswer `json:"wrong"`
}

// GradedQuestion is the per-question reconstruction in an attempt result.
type GradedQuestion struct {
	QuestionID    uuid.UUID `json:"question_id"`
	Content       string    `json:"content"`
	Choices       []string  `json:"choices"`
	SelectedIndex *int      `json:"selected_index"`
	CorrectIndex  int       `json:"correct_index"`
	Correct       bool      `json:"correct"`
	Points        int       `json:"points"`
}

// AttemptResult combines attempt metadata with its graded questions.
type AttemptResult struct {
	Attempt Attempt          `json:"attempt"`
	Graded  []GradedQuestion `json:"graded"`
}

// WrongAnswerRow is one row of the wrong-answer CSV export.
type WrongAnswerRow struct {
	EmployeeID    string
	AttemptID     uuid.UUID
	SubmittedAt   *time.Time
	QuestionID    uuid.UUID
	Content       string
	SelectedIndex *int
	CorrectIndex  int
	Points        int
}

// MissedQuestion is one entry of the most-frequently-missed ranking.
type MissedQuestion struct {
	QuestionID uuid.UUID `json:"question_id"`
	Content    string    `json:"content"`
	MissCount  int       `json:"miss_count"`
}
