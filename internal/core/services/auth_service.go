package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/slate-notes/api/internal/core/domain"
	"github.com/slate-notes/api/internal/core/ports"
)

const bcryptCost = 12

type AuthConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type authService struct {
	userRepo ports.UserRepository
	authRepo ports.AuthRepository
	cfg      AuthConfig
	logger   zerolog.Logger
}

func NewAuthService(userRepo ports.UserRepository, authRepo ports.AuthRepository, cfg AuthConfig, logger zerolog.Logger) ports.AuthService {
	return &authService{
		userRepo: userRepo,
		authRepo: authRepo,
		cfg:      cfg,
		logger:   logger,
	}
}

func (s *authService) Signup(ctx context.Context, input ports.SignupInput) (*ports.AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hash),
	}
	// The unique constraint on email is the source of truth; the repository
	// translates a violation into ErrEmailTaken.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &ports.AuthResult{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	// Unknown email and bad password return the same error so the endpoint
	// cannot be used to enumerate accounts.
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &ports.AuthResult{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	userID, err := s.verifyToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}

	stored, err := s.authRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	// Signature-level expiry passed above; the stored expiry is checked as
	// well so a revoked or out-of-band-expired record can never be replayed.
	if stored == nil || stored.Revoked || stored.ExpiresAt.Before(time.Now()) {
		return nil, domain.ErrTokenInvalid
	}

	accessToken, err := s.signToken(userID, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	newRefresh, err := s.signToken(userID, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Rotation on use: the presented token becomes unusable the moment the
	// new one exists.
	err = s.authRepo.RotateRefreshToken(ctx, refreshToken, &domain.RefreshToken{
		Token:     newRefresh,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.cfg.RefreshTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return &ports.TokenPair{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	stored, err := s.authRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to get refresh token: %w", err)
	}
	// Logout succeeds whether or not the token exists; it is not an
	// existence oracle.
	if stored == nil {
		return nil
	}
	return s.authRepo.RevokeRefreshToken(ctx, refreshToken)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	resetToken := hex.EncodeToString(b)
	resetHash := sha256.Sum256([]byte(resetToken))

	// No mailer is wired up; log the token instead of sending it. The stored
	// comparison value would be the hash, never the token itself.
	s.logger.Info().
		Str("email", email).
		Str("reset_token", resetToken).
		Str("reset_token_hash", hex.EncodeToString(resetHash[:])).
		Msg("password reset requested")

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	// Placeholder: a real implementation must validate a single-use,
	// time-bound token before accepting the new password.
	return domain.ErrNotImplemented
}

func (s *authService) VerifyAccessToken(token string) (uuid.UUID, error) {
	return s.verifyToken(token, s.cfg.AccessSecret)
}

func (s *authService) issueTokens(ctx context.Context, userID uuid.UUID) (*ports.TokenPair, error) {
	accessToken, err := s.signToken(userID, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.signToken(userID, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	err = s.authRepo.StoreRefreshToken(ctx, &domain.RefreshToken{
		Token:     refreshToken,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.cfg.RefreshTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &ports.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *authService) signToken(userID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	// The jti keeps tokens unique even when two are minted inside the same
	// second; the refresh token table is keyed by the token string.
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
		"jti": uuid.NewString(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *authService) verifyToken(tokenStr string, secret []byte) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, domain.ErrTokenExpired
		}
		return uuid.Nil, domain.ErrTokenInvalid
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrTokenInvalid
	}
	return userID, nil
}
