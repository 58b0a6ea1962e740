package service

import (
	"context"
	"errors"
	"testing"

	"github.com/examdesk/examdesk-backend/internal/model"
)

type fakeAccountGetter struct {
	account *model.Account
	err     error
}

func (f *fakeAccountGetter) GetByID(_ context.Context, _ int) (*model.Account, error) {
	return f.account, f.err
}

func TestValidateAccountActive(t *testing.T) {
	tests := []struct {
		name    string
		account *model.Account
		getErr  error
		wantErr error
	}{
		{
			name:    "active account",
			account: &model.Account{ID: 1, Active: true},
		},
		{
			name:    "deactivated account",
			account: &model.Account{ID: 1, Active: false},
			wantErr: ErrAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &AuthService{accounts: &fakeAccountGetter{account: tt.account, err: tt.getErr}}

			err := svc.ValidateAccountActive(context.Background(), 1)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateAccountActive() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateAccountActive() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAccountActiveLookupError(t *testing.T) {
	lookupErr := errors.New("connection refused")
	svc := &AuthService{accounts: &fakeAccountGetter{err: lookupErr}}

	err := svc.ValidateAccountActive(context.Background(), 1)
	if !errors.Is(err, lookupErr) {
		t.Fatalf("ValidateAccountActive() = %v, want wrapped %v", err, lookupErr)
	}
}
