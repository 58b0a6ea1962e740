package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/examdesk/examdesk-backend/internal/config"
	"github.com/examdesk/examdesk-backend/internal/model"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountInactive      = errors.New("account is inactive")
	ErrSessionAlreadyActive = errors.New("another session is already active, please contact admin to reset")
)

// Claims extends JWT standard claims with app-specific fields. Every core
// operation consumes this resolved identity; none re-derive it.
type Claims struct {
	jwt.RegisteredClaims
	Role       model.Role `json:"role"`
	AccountID  int        `json:"account_id"`
	EmployeeID string     `json:"employee_id"`
	Team       string     `json:"team"`
}

// accountGetter supplies the current account row during session
// re-validation.
type accountGetter interface {
	GetByID(ctx context.Context, id int) (*model.Account, error)
}

// AuthService handles authentication, JWT, and session management.
type AuthService struct {
	cfg      *config.Config
	rdb      *redis.Client
	accounts accountGetter
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, accounts accountGetter) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, accounts: accounts}
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateToken creates a JWT for an account. Examinee tokens additionally
// register a single-device session in Redis; a second login while a session
// is active is rejected until an admin resets it.
func (s *AuthService) GenerateToken(ctx context.Context, account *model.Account) (string, error) {
	if !account.Active {
		return "", ErrAccountInactive
	}

	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(account.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Role:       account.Role,
		AccountID:  account.ID,
		EmployeeID: account.EmployeeID,
		Team:       account.Team,
	}

	if account.Role == model.RoleExaminee {
		sessionKey := config.CacheKey.AccountSessionKey(account.ID)

		existing, err := s.rdb.Get(ctx, sessionKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("check session: %w", err)
		}
		if existing != "" {
			return "", ErrSessionAlreadyActive
		}

		if err := s.rdb.Set(ctx, sessionKey, jti, s.cfg.JWTExpiry).Err(); err != nil {
			return "", fmt.Errorf("store session: %w", err)
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateExamineeSession checks that the token's JTI matches the active
// session in Redis.
func (s *AuthService) ValidateExamineeSession(ctx context.Context, accountID int, jti string) error {
	sessionKey := config.CacheKey.AccountSessionKey(accountID)
	stored, err := s.rdb.Get(ctx, sessionKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return errors.New("no active session")
		}
		return fmt.Errorf("check session: %w", err)
	}
	if stored != jti {
		return errors.New("session invalidated")
	}
	return nil
}

// ValidateAccountActive re-checks the account row behind a token. A JWT
// outlives deactivation, so protected routes verify the active flag
// against the database instead of trusting the token alone.
func (s *AuthService) ValidateAccountActive(ctx context.Context, accountID int) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if !account.Active {
		return ErrAccountInactive
	}
	return nil
}

// ResetSession removes an account's session from Redis, allowing a new login.
func (s *AuthService) ResetSession(ctx context.Context, accountID int) error {
	sessionKey := config.CacheKey.AccountSessionKey(accountID)
	return s.rdb.Del(ctx, sessionKey).Err()
}
