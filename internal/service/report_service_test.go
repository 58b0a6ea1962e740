package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/examdesk/examdesk-backend/internal/model"
)

func TestWriteWrongAnswerCSV_EmptyStillHasBOMAndHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWrongAnswerCSV(&buf, nil); err != nil {
		t.Fatalf("WriteWrongAnswerCSV: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, utf8BOM) {
		t.Fatal("output missing UTF-8 BOM prefix")
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("record count = %d, want header only", len(records))
	}
	if records[0][0] != "account_id" || records[0][4] != "question_text" {
		t.Errorf("unexpected header: %v", records[0])
	}
}

func TestWriteWrongAnswerCSV_Rows(t *testing.T) {
	submittedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	attemptID := uuid.New()
	answered := uuid.New()
	unanswered := uuid.New()

	rows := []model.WrongAnswerRow{
		{
			EmployeeID:    "E-1001",
			AttemptID:     attemptID,
			SubmittedAt:   &submittedAt,
			QuestionID:    answered,
			Content:       "¿Cuál es la capital de España?",
			SelectedIndex: intPtr(2),
			CorrectIndex:  0,
			Points:        3,
		},
		{
			EmployeeID:   "E-1001",
			AttemptID:    attemptID,
			SubmittedAt:  &submittedAt,
			QuestionID:   unanswered,
			Content:      "skipped question",
			CorrectIndex: 1,
			Points:       2,
		},
	}

	var buf bytes.Buffer
	if err := WriteWrongAnswerCSV(&buf, rows); err != nil {
		t.Fatalf("WriteWrongAnswerCSV: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, utf8BOM) {
		t.Fatal("output missing UTF-8 BOM prefix")
	}

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("record count = %d, want header + 2 rows", len(records))
	}

	first := records[1]
	if first[5] != "3" {
		t.Errorf("submitted choice = %q, want 1-based %q", first[5], "3")
	}
	if first[6] != "1" {
		t.Errorf("correct choice = %q, want 1-based %q", first[6], "1")
	}
	if first[2] != "2026-03-14T09:30:00Z" {
		t.Errorf("submitted_at = %q, want RFC3339 UTC", first[2])
	}
	if !strings.Contains(first[4], "España") {
		t.Errorf("non-ASCII content mangled: %q", first[4])
	}

	second := records[2]
	if second[5] != "unanswered" {
		t.Errorf("unanswered rendered as %q", second[5])
	}
}

func TestAuthorizeResultAccess(t *testing.T) {
	svc := &ReportService{}

	tests := []struct {
		name    string
		role    model.Role
		caller  int
		team    string
		attempt model.Attempt
		wantErr bool
	}{
		{name: "owner examinee", role: model.RoleExaminee, caller: 7, team: "alpha",
			attempt: model.Attempt{AccountID: 7, Team: "alpha", Status: model.AttemptStatusSubmitted}},
		{name: "foreign examinee", role: model.RoleExaminee, caller: 7, team: "alpha",
			attempt: model.Attempt{AccountID: 8, Team: "alpha", Status: model.AttemptStatusSubmitted}, wantErr: true},
		{name: "admin same team", role: model.RoleAdmin, caller: 1, team: "alpha",
			attempt: model.Attempt{AccountID: 8, Team: "alpha", Status: model.AttemptStatusSubmitted}},
		{name: "admin other team", role: model.RoleAdmin, caller: 1, team: "alpha",
			attempt: model.Attempt{AccountID: 8, Team: "beta", Status: model.AttemptStatusSubmitted}, wantErr: true},
		// Documented leniency: a teamless attempt is visible to any admin.
		{name: "admin blank attempt team", role: model.RoleAdmin, caller: 1, team: "alpha",
			attempt: model.Attempt{AccountID: 8, Team: "", Status: model.AttemptStatusSubmitted}},
		// An unfinished attempt is never readable, owner or admin. The graded
		// view carries the answer key of the frozen set, so handing it out
		// pre-submit would let the owner read every correct index.
		{name: "owner before submit", role: model.RoleExaminee, caller: 7, team: "alpha",
			attempt: model.Attempt{AccountID: 7, Team: "alpha", Status: model.AttemptStatusInProgress}, wantErr: true},
		{name: "admin before submit", role: model.RoleAdmin, caller: 1, team: "alpha",
			attempt: model.Attempt{AccountID: 8, Team: "alpha", Status: model.AttemptStatusInProgress}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims := &Claims{Role: tc.role, AccountID: tc.caller, Team: tc.team}
			err := svc.authorizeResultAccess(claims, &tc.attempt)
			if (err != nil) != tc.wantErr {
				t.Errorf("authorizeResultAccess() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestAuthorizeResultAccess_InProgressReturnsNotFinalized(t *testing.T) {
	svc := &ReportService{}
	claims := &Claims{Role: model.RoleExaminee, AccountID: 7, Team: "alpha"}
	attempt := &model.Attempt{AccountID: 7, Team: "alpha", Status: model.AttemptStatusInProgress}

	err := svc.authorizeResultAccess(claims, attempt)
	if !errors.Is(err, ErrAttemptNotFinalized) {
		t.Fatalf("err = %v, want ErrAttemptNotFinalized", err)
	}
}
