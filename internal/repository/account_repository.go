package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examdesk/examdesk-backend/internal/model"
)

var ErrDuplicateEmployeeID = errors.New("account with this employee ID already exists")

// AccountRepository handles account data access.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id int) (*model.Account, error) {
	a := &model.Account{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, employee_id, name, role, team, active, password_hash, created_at, updated_at
		 FROM accounts WHERE id = $1`, id,
	).Scan(&a.ID, &a.EmployeeID, &a.Name, &a.Role, &a.Team, &a.Active, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByEmployeeID retrieves an account by its unique employee ID.
func (r *AccountRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*model.Account, error) {
	a := &model.Account{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, employee_id, name, role, team, active, password_hash, created_at, updated_at
		 FROM accounts WHERE employee_id = $1`, employeeID,
	).Scan(&a.ID, &a.EmployeeID, &a.Name, &a.Role, &a.Team, &a.Active, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new account.
func (r *AccountRepository) Create(ctx context.Context, a *model.Account) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO accounts (employee_id, name, role, team, active, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		a.EmployeeID, a.Name, a.Role, a.Team, a.Active, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmployeeID
		}
		return err
	}
	return nil
}

// Update modifies an account's mutable fields (name, team, active flag).
func (r *AccountRepository) Update(ctx context.Context, a *model.Account) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts
		 SET name = $1, team = $2, active = $3, updated_at = NOW()
		 WHERE id = $4`,
		a.Name, a.Team, a.Active, a.ID)
	return err
}

// UpdatePassword replaces an account's password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, id)
	return err
}

// Delete removes an account permanently.
func (r *AccountRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

// ListPaginated retrieves accounts with pagination, optionally filtered by team.
func (r *AccountRepository) ListPaginated(ctx context.Context, team *string, limit, offset int) ([]model.Account, int, error) {
	baseQuery := ` FROM accounts WHERE 1=1`
	args := []any{}

	if team != nil && *team != "" {
		args = append(args, *team)
		baseQuery += ` AND team = $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, employee_id, name, role, team, active, password_hash, created_at, updated_at` +
		baseQuery + ` ORDER BY employee_id ASC`
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Name, &a.Role, &a.Team, &a.Active, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}
