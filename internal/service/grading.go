package service

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/examdesk/examdesk-backend/internal/model"
)

// gradeOutcome is the in-memory result of grading one attempt.
type gradeOutcome struct {
	Score        int
	TotalPoints  int
	CorrectCount int
	Wrong        []model.WrongAnswer
	Answers      []model.Answer
}

// gradeAttempt grades an attempt against its frozen question order.
// questions maps id to the current bank content; ids missing from the map
// (deleted after the attempt started) are excluded from both the score and
// the total. A question absent from answers counts as unanswered, which is
// always wrong; a submitted index past the choice list is kept as the
// recorded selection but can never match the correct index.
func gradeAttempt(attemptID uuid.UUID, order []uuid.UUID, questions map[uuid.UUID]model.Question, answers map[uuid.UUID]int) gradeOutcome {
	out := gradeOutcome{
		Wrong:   []model.WrongAnswer{},
		Answers: make([]model.Answer, 0, len(order)),
	}

	for _, qid := range order {
		q, ok := questions[qid]
		if !ok {
			continue
		}

		var selected *int
		if idx, answered := answers[qid]; answered && idx >= 0 {
			v := idx
			selected = &v
		}

		out.TotalPoints += q.Points
		out.Answers = append(out.Answers, model.Answer{
			AttemptID:     attemptID,
			QuestionID:    qid,
			SelectedIndex: selected,
		})

		if selected != nil && *selected == q.CorrectIndex {
			out.Score += q.Points
			out.CorrectCount++
			continue
		}

		out.Wrong = append(out.Wrong, model.WrongAnswer{
			QuestionID:    qid,
			Content:       q.Content,
			SelectedIndex: selected,
			CorrectIndex:  q.CorrectIndex,
			Points:        q.Points,
		})
	}

	return out
}

// sampleQuestions draws up to max questions uniformly at random without
// replacement. The input slice is not modified; the returned order is the
// attempt's frozen display order.
func sampleQuestions(questions []model.Question, max int) []model.Question {
	shuffled := make([]model.Question, len(questions))
	copy(shuffled, questions)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(shuffled) > max {
		shuffled = shuffled[:max]
	}
	return shuffled
}
