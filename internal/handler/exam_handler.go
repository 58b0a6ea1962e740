package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/examdesk/examdesk-backend/internal/middleware"
	"github.com/examdesk/examdesk-backend/internal/model"
	"github.com/examdesk/examdesk-backend/internal/response"
	"github.com/examdesk/examdesk-backend/internal/service"
	"github.com/examdesk/examdesk-backend/internal/validator"
)

// ExamHandler handles examinee-facing attempt endpoints.
type ExamHandler struct {
	attemptService *service.AttemptService
	reportService  *service.ReportService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(
	attemptService *service.AttemptService,
	reportService *service.ReportService,
) *ExamHandler {
	return &ExamHandler{
		attemptService: attemptService,
		reportService:  reportService,
	}
}

// StartAttempt godoc
// POST /api/v1/exam/attempts
// Samples the caller's team bank into a fresh attempt and returns the paper.
// The route is examinee-only; an admin reaching it gets 403 so clients can
// route admin accounts to the admin home instead of an exam error.
func (h *ExamHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	paper, err := h.attemptService.StartAttempt(c.Request.Context(), claims.AccountID, claims.Team)
	if err != nil {
		if errors.Is(err, service.ErrNoQuestionsAvailable) {
			response.Fail(c, http.StatusBadRequest, response.ErrNoQuestionsAvailable)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, paper)
}

// SubmitAttempt godoc
// POST /api/v1/exam/attempts/:attempt_id/submit
// Grades and finalizes the attempt. Idempotent: resubmitting an already
// finalized attempt returns the persisted result, ignoring the new answers.
func (h *ExamHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	report, err := h.attemptService.SubmitAttempt(c.Request.Context(), claims.AccountID, claims.EmployeeID, attemptID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotAttemptOwner):
			response.Fail(c, http.StatusForbidden, response.ErrNotAttemptOwner)
		case errors.Is(err, service.ErrInvalidAnswerIndex):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, report)
}

// ListAttempts godoc
// GET /api/v1/exam/attempts
// Lists the caller's attempts, newest first.
func (h *ExamHandler) ListAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	attempts, total, err := h.attemptService.ListByAccount(c.Request.Context(), claims.AccountID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts, "total": total})
}

// GetAttempt godoc
// GET /api/v1/exam/attempts/:attempt_id
// Returns the caller's attempt, including its status and question paper.
func (h *ExamHandler) GetAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.GetAttempt(c.Request.Context(), claims.AccountID, attemptID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotAttemptOwner):
			response.Fail(c, http.StatusForbidden, response.ErrNotAttemptOwner)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetAttemptResult godoc
// GET /api/v1/exam/attempts/:attempt_id/result
// Returns the graded reconstruction of the caller's own attempt.
func (h *ExamHandler) GetAttemptResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.reportService.GetAttemptResult(c.Request.Context(), claims, attemptID)
	if err != nil {
		failResultError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ExportWrongAnswers godoc
// GET /api/v1/exam/attempts/:attempt_id/wrong-answers.csv
// Streams the caller's wrong-answer rows for one attempt as BOM-prefixed CSV.
func (h *ExamHandler) ExportWrongAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rows, err := h.reportService.AttemptWrongAnswers(c.Request.Context(), claims, attemptID)
	if err != nil {
		failResultError(c, err)
		return
	}

	writeCSVAttachment(c, "wrong-answers-"+attemptID.String()+".csv", func() error {
		return service.WriteWrongAnswerCSV(c.Writer, rows)
	})
}

// writeCSVAttachment sets download headers and runs the CSV writer.
func writeCSVAttachment(c *gin.Context, filename string, write func() error) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)
	if err := write(); err != nil {
		_ = c.Error(err)
	}
}

// failResultError maps report service errors to HTTP responses.
func failResultError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrResultForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrAttemptNotFinalized):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotFinalized)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
