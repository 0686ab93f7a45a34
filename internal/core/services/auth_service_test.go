package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slate-notes/api/internal/core/domain"
	"github.com/slate-notes/api/internal/core/ports"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.users[id], nil
}

type fakeAuthRepo struct {
	tokens map[string]*domain.RefreshToken
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{tokens: make(map[string]*domain.RefreshToken)}
}

func (r *fakeAuthRepo) StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeAuthRepo) GetRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	return r.tokens[token], nil
}

func (r *fakeAuthRepo) RevokeRefreshToken(ctx context.Context, token string) error {
	if stored, ok := r.tokens[token]; ok {
		stored.Revoked = true
	}
	return nil
}

func (r *fakeAuthRepo) RotateRefreshToken(ctx context.Context, oldToken string, newToken *domain.RefreshToken) error {
	if stored, ok := r.tokens[oldToken]; ok {
		stored.Revoked = true
	}
	r.tokens[newToken.Token] = newToken
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func newTestAuthService() (ports.AuthService, *fakeUserRepo, *fakeAuthRepo) {
	userRepo := newFakeUserRepo()
	authRepo := newFakeAuthRepo()
	svc := NewAuthService(userRepo, authRepo, testAuthConfig(), zerolog.Nop())
	return svc, userRepo, authRepo
}

func TestSignupAndLogin(t *testing.T) {
	svc, _, authRepo := newTestAuthService()
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, ports.SignupInput{
		Email:    "ada@example.com",
		Password: "correct horse",
		Name:     "Ada",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, signedUp.AccessToken)
	assert.NotEmpty(t, signedUp.RefreshToken)
	assert.NotEqual(t, "correct horse", signedUp.User.PasswordHash)
	assert.Contains(t, authRepo.tokens, signedUp.RefreshToken)

	loggedIn, err := svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, loggedIn.User.ID)

	userID, err := svc.VerifyAccessToken(loggedIn.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, userID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, ports.SignupInput{Email: "ada@example.com", Password: "password1", Name: "Ada"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, ports.SignupInput{Email: "ada@example.com", Password: "password2", Name: "Also Ada"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLoginRejectionsAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, ports.SignupInput{Email: "ada@example.com", Password: "correct horse", Name: "Ada"})
	require.NoError(t, err)

	_, badPassword := svc.Login(ctx, "ada@example.com", "wrong")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "whatever")

	assert.ErrorIs(t, badPassword, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, domain.ErrInvalidCredentials)
}

func TestRefreshRotates(t *testing.T) {
	svc, _, authRepo := newTestAuthService()
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, ports.SignupInput{Email: "ada@example.com", Password: "correct horse", Name: "Ada"})
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, signedUp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, signedUp.RefreshToken, pair.RefreshToken)

	// The presented token is revoked the moment the new one exists.
	assert.True(t, authRepo.tokens[signedUp.RefreshToken].Revoked)
	assert.False(t, authRepo.tokens[pair.RefreshToken].Revoked)

	// Replaying the rotated-out token fails.
	_, err = svc.Refresh(ctx, signedUp.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	// The new token still works.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _, authRepo := newTestAuthService()
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, ports.SignupInput{Email: "ada@example.com", Password: "correct horse", Name: "Ada"})
	require.NoError(t, err)

	// A well-signed token with no stored record is rejected.
	delete(authRepo.tokens, signedUp.RefreshToken)
	_, err = svc.Refresh(ctx, signedUp.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = svc.Refresh(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, ports.SignupInput{Email: "ada@example.com", Password: "correct horse", Name: "Ada"})
	require.NoError(t, err)

	// Access tokens are signed with a different secret and must not refresh.
	_, err = svc.Refresh(ctx, signedUp.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.AccessTTL = -time.Minute
	svc := NewAuthService(newFakeUserRepo(), newFakeAuthRepo(), cfg, zerolog.Nop())

	signedUp, err := svc.Signup(context.Background(), ports.SignupInput{
		Email:    "ada@example.com",
		Password: "correct horse",
		Name:     "Ada",
	})
	require.NoError(t, err)

	_, err = svc.VerifyAccessToken(signedUp.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestLogoutIdempotent(t *testing.T) {
	svc, _, authRepo := newTestAuthService()
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, ports.SignupInput{Email: "ada@example.com", Password: "correct horse", Name: "Ada"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, signedUp.RefreshToken))
	assert.True(t, authRepo.tokens[signedUp.RefreshToken].Revoked)

	require.NoError(t, svc.Logout(ctx, signedUp.RefreshToken))
	require.NoError(t, svc.Logout(ctx, "never-issued"))
}

func TestResetPasswordNotImplemented(t *testing.T) {
	svc, _, _ := newTestAuthService()

	err := svc.ResetPassword(context.Background(), "token", "new-password")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}
