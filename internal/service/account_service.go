package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/examdesk/examdesk-backend/internal/config"
	"github.com/examdesk/examdesk-backend/internal/model"
	"github.com/examdesk/examdesk-backend/internal/repository"
	"github.com/examdesk/examdesk-backend/internal/response"
)

// AccountService handles account business logic.
type AccountService struct {
	accountRepo *repository.AccountRepository
	bcryptCost  int
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo *repository.AccountRepository, cfg *config.Config) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		bcryptCost:  cfg.BcryptCost,
	}
}

// GetByEmployeeID retrieves an account by its employee ID.
func (s *AccountService) GetByEmployeeID(ctx context.Context, employeeID string) (*model.Account, error) {
	return s.accountRepo.GetByEmployeeID(ctx, employeeID)
}

// GetByID retrieves an account by ID.
func (s *AccountService) GetByID(ctx context.Context, id int) (*model.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// ListAccounts retrieves accounts with pagination and optional team filter.
func (s *AccountService) ListAccounts(ctx context.Context, team *string, page, perPage int) ([]model.Account, *response.Pagination, error) {
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

	accounts, total, err := s.accountRepo.ListPaginated(ctx, team, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	if accounts == nil {
		accounts = []model.Account{}
	}

	totalPages := (total + perPage - 1) / perPage

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}

	return accounts, pagination, nil
}

// Create inserts a new account with a hashed password.
func (s *AccountService) Create(ctx context.Context, account *model.Account) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(account.PasswordHash), s.bcryptCost)
	if err != nil {
		return err
	}
	account.PasswordHash = string(hashed)
	return s.accountRepo.Create(ctx, account)
}

// Update modifies an account's details. Resets the password if provided.
func (s *AccountService) Update(ctx context.Context, account *model.Account, updatePassword bool) error {
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	if updatePassword && account.PasswordHash != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(account.PasswordHash), s.bcryptCost)
		if err != nil {
			return err
		}
		return s.accountRepo.UpdatePassword(ctx, account.ID, string(hashed))
	}

	return nil
}

// Delete removes an account by ID. Destructive: cascades to its attempts.
func (s *AccountService) Delete(ctx context.Context, id int) error {
	return s.accountRepo.Delete(ctx, id)
}
