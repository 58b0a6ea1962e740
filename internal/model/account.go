package model

import "time"

// Role distinguishes examinee and administrator accounts.
type Role string

const (
	RoleExaminee Role = "examinee"
	RoleAdmin    Role = "admin"
)

// Account represents an examinee or administrator account.
// EmployeeID is the external identifier people log in with; Team partitions
// which question bank and which other accounts an account can see.
type Account struct {
	ID           int       `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Team         string    `json:"team"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,min=2,max=64"`
	Password   string `json:"password" binding:"required,min=4,max=128"`
}

// CreateAccountRequest is the payload for creating a new account.
type CreateAccountRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,min=2,max=64"`
	Name       string `json:"name" binding:"omitempty,max=100"`
	Role       Role   `json:"role" binding:"required,oneof=examinee admin"`
	Team       string `json:"team" binding:"required,min=1,max=64"`
	Password   string `json:"password" binding:"required,min=6,max=128"`
}

// UpdateAccountRequest is the payload for updating an existing account.
// Password is optional; when present the credential is reset.
type UpdateAccountRequest struct {
	Name     string `json:"name" binding:"omitempty,max=100"`
	Team     string `json:"team" binding:"required,min=1,max=64"`
	Active   *bool  `json:"active" binding:"required"`
	Password string `json:"password" binding:"omitempty,min=6,max=128"`
}
