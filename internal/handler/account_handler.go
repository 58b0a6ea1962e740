package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examdesk/examdesk-backend/internal/model"
	"github.com/examdesk/examdesk-backend/internal/repository"
	"github.com/examdesk/examdesk-backend/internal/response"
	"github.com/examdesk/examdesk-backend/internal/service"
	"github.com/examdesk/examdesk-backend/internal/validator"
)

// AccountHandler handles admin-facing account management.
type AccountHandler struct {
	accountService *service.AccountService
	authService    *service.AuthService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	accountService *service.AccountService,
	authService *service.AuthService,
) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		authService:    authService,
	}
}

// ListAccounts godoc
// GET /api/v1/admin/accounts
// Lists accounts with pagination, optionally filtered by team.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	var team *string
	if t := c.Query("team"); t != "" {
		team = &t
	}

	accounts, pagination, err := h.accountService.ListAccounts(c.Request.Context(), team, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"accounts": accounts}, pagination)
}

// CreateAccount godoc
// POST /api/v1/admin/accounts
// Creates a new examinee or admin account.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req model.CreateAccountRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	account := &model.Account{
		EmployeeID:   req.EmployeeID,
		Name:         req.Name,
		Role:         req.Role,
		Team:         req.Team,
		Active:       true,
		PasswordHash: req.Password, // hashed inside the service
	}

	if err := h.accountService.Create(c.Request.Context(), account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmployeeID) {
			response.Fail(c, http.StatusConflict, response.ErrConflict)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"account": account})
}

// UpdateAccount godoc
// PUT /api/v1/admin/accounts/:id
// Updates name, team and active flag; resets the password if provided.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateAccountRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	account.Name = req.Name
	account.Team = req.Team
	account.Active = *req.Active
	account.PasswordHash = req.Password

	if err := h.accountService.Update(c.Request.Context(), account, req.Password != ""); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// Deactivation must cut off any live session immediately.
	if !account.Active {
		if err := h.authService.ResetSession(c.Request.Context(), id); err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
	}

	response.Success(c, http.StatusOK, gin.H{"account": account})
}

// DeleteAccount godoc
// DELETE /api/v1/admin/accounts/:id
// Permanently removes an account and (by cascade) its attempts.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.accountService.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "account deleted"})
}

// ResetSession godoc
// POST /api/v1/admin/accounts/:id/reset-session
// Clears an account's active Redis session, allowing a fresh login.
func (h *AccountHandler) ResetSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetSession(c.Request.Context(), id); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "session reset successfully"})
}
