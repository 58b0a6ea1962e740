package model

import (
	"time"

	"github.com/google/uuid"
)

// Question represents a multiple-choice question in a team's bank.
// CorrectIndex is 0-based into Choices; Points is the value awarded for a
// correct answer. Inactive questions are excluded from new attempts but stay
// resolvable for historical results.
type Question struct {
	ID           uuid.UUID `json:"id"`
	Team         string    `json:"team"`
	Content      string    `json:"content"`
	Choices      []string  `json:"choices"`
	CorrectIndex int       `json:"correct_index"`
	Points       int       `json:"points"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Valid reports whether the question satisfies the bank invariants:
// at least two choices, a correct index inside the choice list, and a
// positive point value. Questions failing this are never sampled.
func (q *Question) Valid() bool {
	return len(q.Choices) >= 2 &&
		q.CorrectIndex >= 0 &&
		q.CorrectIndex < len(q.Choices) &&
		q.Points > 0
}

// QuestionForExaminee is a question as shown to an examinee taking an
// attempt. It never carries the correct choice index.
type QuestionForExaminee struct {
	ID      uuid.UUID `json:"id"`
	Content string    `json:"content"`
	Choices []string  `json:"choices"`
	Points  int       `json:"points"`
}

// CreateQuestionRequest is the payload for adding a question to the bank.
type CreateQuestionRequest struct {
	Content      string   `json:"content" binding:"required,min=1,max=2000"`
	Choices      []string `json:"choices" binding:"required,min=2,max=10,dive,required,max=500"`
	CorrectIndex *int     `json:"correct_index" binding:"required,min=0"`
	Points       int      `json:"points" binding:"required,min=1,max=100"`
}

// UpdateQuestionRequest is the payload for editing an existing question.
type UpdateQuestionRequest struct {
	Content      string   `json:"content" binding:"required,min=1,max=2000"`
	Choices      []string `json:"choices" binding:"required,min=2,max=10,dive,required,max=500"`
	CorrectIndex *int     `json:"correct_index" binding:"required,min=0"`
	Points       int      `json:"points" binding:"required,min=1,max=100"`
	Active       *bool    `json:"active" binding:"required"`
}
