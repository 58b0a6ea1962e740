package service

import (
	"testing"

	"github.com/google/uuid"

	"github.com/examdesk/examdesk-backend/internal/model"
)

func intPtr(v int) *int { return &v }

func bankQuestion(id uuid.UUID, points, correct int) model.Question {
	return model.Question{
		ID:           id,
		Content:      "q-" + id.String()[:8],
		Choices:      []string{"A", "B", "C", "D"},
		CorrectIndex: correct,
		Points:       points,
		Active:       true,
	}
}

func TestGradeAttempt_MixedOutcome(t *testing.T) {
	attemptID := uuid.New()
	q1, q2, q3 := uuid.New(), uuid.New(), uuid.New()
	order := []uuid.UUID{q1, q2, q3}
	bank := map[uuid.UUID]model.Question{
		q1: bankQuestion(q1, 1, 0),
		q2: bankQuestion(q2, 2, 1),
		q3: bankQuestion(q3, 3, 0),
	}

	// q1 answered correctly, q2 answered wrong, q3 left unanswered.
	out := gradeAttempt(attemptID, order, bank, map[uuid.UUID]int{
		q1: 0,
		q2: 3,
	})

	if out.Score != 1 {
		t.Errorf("score = %d, want 1", out.Score)
	}
	if out.TotalPoints != 6 {
		t.Errorf("total points = %d, want 6", out.TotalPoints)
	}
	if out.CorrectCount != 1 {
		t.Errorf("correct count = %d, want 1", out.CorrectCount)
	}
	if len(out.Wrong) != 2 {
		t.Fatalf("wrong list length = %d, want 2", len(out.Wrong))
	}
	if out.Wrong[0].QuestionID != q2 || out.Wrong[1].QuestionID != q3 {
		t.Errorf("wrong list = [%s %s], want [%s %s]",
			out.Wrong[0].QuestionID, out.Wrong[1].QuestionID, q2, q3)
	}
	if out.Wrong[1].SelectedIndex != nil {
		t.Errorf("unanswered question recorded selection %v, want nil", *out.Wrong[1].SelectedIndex)
	}
	if len(out.Answers) != 3 {
		t.Errorf("answer batch length = %d, want 3", len(out.Answers))
	}
}

func TestGradeAttempt_UnansweredNeverCorrect(t *testing.T) {
	attemptID := uuid.New()
	qid := uuid.New()
	bank := map[uuid.UUID]model.Question{qid: bankQuestion(qid, 5, 2)}

	out := gradeAttempt(attemptID, []uuid.UUID{qid}, bank, map[uuid.UUID]int{})

	if out.Score != 0 || out.CorrectCount != 0 {
		t.Errorf("score=%d correct=%d, want 0/0 for unanswered", out.Score, out.CorrectCount)
	}
	if len(out.Wrong) != 1 {
		t.Fatalf("wrong list length = %d, want 1", len(out.Wrong))
	}
	if out.Wrong[0].SelectedIndex != nil {
		t.Error("unanswered question should have nil selection")
	}
}

func TestGradeAttempt_DeletedQuestionExcluded(t *testing.T) {
	attemptID := uuid.New()
	kept, deleted := uuid.New(), uuid.New()
	bank := map[uuid.UUID]model.Question{kept: bankQuestion(kept, 4, 1)}

	out := gradeAttempt(attemptID, []uuid.UUID{kept, deleted}, bank, map[uuid.UUID]int{
		kept:    1,
		deleted: 0,
	})

	if out.Score != 4 || out.TotalPoints != 4 {
		t.Errorf("score/total = %d/%d, want 4/4 with deleted question excluded", out.Score, out.TotalPoints)
	}
	if len(out.Answers) != 1 {
		t.Errorf("answer batch length = %d, want 1 (deleted question not persisted)", len(out.Answers))
	}
	if len(out.Wrong) != 0 {
		t.Errorf("wrong list length = %d, want 0", len(out.Wrong))
	}
}

func TestGradeAttempt_AnswersOutsideFrozenSetIgnored(t *testing.T) {
	attemptID := uuid.New()
	qid := uuid.New()
	bank := map[uuid.UUID]model.Question{qid: bankQuestion(qid, 2, 0)}

	out := gradeAttempt(attemptID, []uuid.UUID{qid}, bank, map[uuid.UUID]int{
		qid:        0,
		uuid.New(): 0, // not part of the attempt
	})

	if out.Score != 2 || len(out.Answers) != 1 {
		t.Errorf("score=%d answers=%d, want 2/1 with foreign ids ignored", out.Score, len(out.Answers))
	}
}

func TestGradeAttempt_IndexPastChoicesIsWrong(t *testing.T) {
	attemptID := uuid.New()
	qid := uuid.New()
	bank := map[uuid.UUID]model.Question{qid: bankQuestion(qid, 3, 1)}

	out := gradeAttempt(attemptID, []uuid.UUID{qid}, bank, map[uuid.UUID]int{qid: 9})

	if out.Score != 0 {
		t.Errorf("score = %d, want 0 for out-of-range selection", out.Score)
	}
	if len(out.Wrong) != 1 || out.Wrong[0].SelectedIndex == nil || *out.Wrong[0].SelectedIndex != 9 {
		t.Error("out-of-range selection should be recorded as the submitted index")
	}
}

func TestGradeAttempt_ScoreWithinBounds(t *testing.T) {
	attemptID := uuid.New()
	order := make([]uuid.UUID, 0, 10)
	bank := make(map[uuid.UUID]model.Question, 10)
	answers := make(map[uuid.UUID]int, 10)
	for i := 0; i < 10; i++ {
		id := uuid.New()
		order = append(order, id)
		bank[id] = bankQuestion(id, i+1, i%4)
		answers[id] = (i + 1) % 4
	}

	out := gradeAttempt(attemptID, order, bank, answers)

	if out.Score < 0 || out.Score > out.TotalPoints {
		t.Errorf("score %d outside [0, %d]", out.Score, out.TotalPoints)
	}
	if out.CorrectCount+len(out.Wrong) != len(order) {
		t.Errorf("correct+wrong = %d, want %d", out.CorrectCount+len(out.Wrong), len(order))
	}
}

func TestSampleQuestions_CapsAtMax(t *testing.T) {
	questions := make([]model.Question, 50)
	for i := range questions {
		questions[i] = bankQuestion(uuid.New(), 1, 0)
	}

	sampled := sampleQuestions(questions, 20)
	if len(sampled) != 20 {
		t.Fatalf("sample size = %d, want 20", len(sampled))
	}

	seen := make(map[uuid.UUID]bool, len(sampled))
	for _, q := range sampled {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s in sample", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSampleQuestions_TakesAllWhenFewerThanMax(t *testing.T) {
	questions := []model.Question{
		bankQuestion(uuid.New(), 1, 0),
		bankQuestion(uuid.New(), 2, 1),
		bankQuestion(uuid.New(), 3, 0),
	}

	sampled := sampleQuestions(questions, 20)
	if len(sampled) != 3 {
		t.Fatalf("sample size = %d, want 3", len(sampled))
	}

	seen := make(map[uuid.UUID]bool)
	for _, q := range sampled {
		seen[q.ID] = true
	}
	for _, q := range questions {
		if !seen[q.ID] {
			t.Errorf("question %s missing from full sample", q.ID)
		}
	}
}

func TestSampleQuestions_DoesNotModifyInput(t *testing.T) {
	questions := []model.Question{
		bankQuestion(uuid.New(), 1, 0),
		bankQuestion(uuid.New(), 2, 1),
	}
	first, second := questions[0].ID, questions[1].ID

	_ = sampleQuestions(questions, 1)

	if questions[0].ID != first || questions[1].ID != second {
		t.Error("input slice order was modified")
	}
}

func TestQuestionValid(t *testing.T) {
	tests := []struct {
		name    string
		choices []string
		correct int
		points  int
		want    bool
	}{
		{name: "valid four choices", choices: []string{"a", "b", "c", "d"}, correct: 2, points: 1, want: true},
		{name: "valid two choices", choices: []string{"a", "b"}, correct: 1, points: 3, want: true},
		{name: "single choice", choices: []string{"a"}, correct: 0, points: 1, want: false},
		{name: "correct index past choices", choices: []string{"a", "b"}, correct: 2, points: 1, want: false},
		{name: "negative correct index", choices: []string{"a", "b"}, correct: -1, points: 1, want: false},
		{name: "zero points", choices: []string{"a", "b"}, correct: 0, points: 0, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := model.Question{Choices: tc.choices, CorrectIndex: tc.correct, Points: tc.points}
			if got := q.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}
