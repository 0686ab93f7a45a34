package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/slate-notes/api/internal/core/domain"
)

type AuthRepository interface {
	StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) error
	// RotateRefreshToken revokes the old token and persists the new one in a
	// single transaction.
	RotateRefreshToken(ctx context.Context, oldToken string, newToken *domain.RefreshToken) error
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
}

type AuthResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	// VerifyAccessToken validates a bearer token and returns its subject.
	VerifyAccessToken(token string) (uuid.UUID, error)
}
