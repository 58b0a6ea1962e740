package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/examdesk/examdesk-backend/internal/middleware"
	"github.com/examdesk/examdesk-backend/internal/response"
	"github.com/examdesk/examdesk-backend/internal/service"
)

// ReportHandler handles admin-facing result inspection and the
// wrong-answer analytics exports.
type ReportHandler struct {
	reportService  *service.ReportService
	accountService *service.AccountService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	reportService *service.ReportService,
	accountService *service.AccountService,
) *ReportHandler {
	return &ReportHandler{
		reportService:  reportService,
		accountService: accountService,
	}
}

// ListAttempts godoc
// GET /api/v1/admin/attempts
// Lists the admin team's attempts, optionally narrowed to one account.
func (h *ReportHandler) ListAttempts(c *gin.Context) {
	claims := middleware.GetClaims(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	var accountID *int
	if a := c.Query("account_id"); a != "" {
		parsed, err := strconv.Atoi(a)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		accountID = &parsed
	}

	attempts, pagination, err := h.reportService.ListTeamAttempts(c.Request.Context(), claims.Team, accountID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts}, pagination)
}

// GetAttemptResult godoc
// GET /api/v1/admin/attempts/:id/result
// Returns the graded report of a finalized attempt in the admin's team.
func (h *ReportHandler) GetAttemptResult(c *gin.Context) {
	claims := middleware.GetClaims(c)

	attemptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.reportService.GetAttemptResult(c.Request.Context(), claims, attemptID)
	if err != nil {
		failResultError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ExportAttemptWrongAnswers godoc
// GET /api/v1/admin/attempts/:id/wrong-answers.csv
// Streams the wrong-answer rows of one attempt as a CSV attachment.
func (h *ReportHandler) ExportAttemptWrongAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)

	attemptID, err := uuid.Parse(c.Param("id"))
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

// ExportAccountWrongAnswers godoc
// GET /api/v1/admin/accounts/:id/wrong-answers.csv
// Streams every wrong answer an examinee has recorded, across all of
// their submitted attempts.
func (h *ReportHandler) ExportAccountWrongAnswers(c *gin.Context) {
	claims := middleware.GetClaims(c)

	accountID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), accountID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	if account.Team != "" && account.Team != claims.Team {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	rows, err := h.reportService.AccountWrongAnswers(c.Request.Context(), accountID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	writeCSVAttachment(c, "wrong-answers-"+account.EmployeeID+".csv", func() error {
		return service.WriteWrongAnswerCSV(c.Writer, rows)
	})
}

// GetMostMissed godoc
// GET /api/v1/admin/reports/most-missed
// Returns the team's most frequently missed questions.
func (h *ReportHandler) GetMostMissed(c *gin.Context) {
	claims := middleware.GetClaims(c)

	missed, err := h.reportService.MostMissed(c.Request.Context(), claims.Team)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"most_missed": missed})
}

// ExportMostMissed godoc
// GET /api/v1/admin/reports/most-missed.csv
func (h *ReportHandler) ExportMostMissed(c *gin.Context) {
	claims := middleware.GetClaims(c)

	missed, err := h.reportService.MostMissed(c.Request.Context(), claims.Team)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	writeCSVAttachment(c, "most-missed.csv", func() error {
		return service.WriteMostMissedCSV(c.Writer, missed)
	})
}
