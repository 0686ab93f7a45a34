package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/slate-notes/api/internal/core/domain"
	"github.com/slate-notes/api/internal/core/ports"
)

type AuthRepository struct {
	db *sql.DB
}

func NewAuthRepository(db *sql.DB) ports.AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) StoreRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at, revoked)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query, token.Token, token.UserID, token.ExpiresAt, token.Revoked).Scan(&token.CreatedAt)
}

func (r *AuthRepository) GetRefreshToken(ctx context.Context, tokenStr string) (*domain.RefreshToken, error) {
	query := `
		SELECT token, user_id, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE token = $1
	`
	token := &domain.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, tokenStr).Scan(
		&token.Token,
		&token.UserID,
		&token.ExpiresAt,
		&token.Revoked,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return token, nil
}

func (r *AuthRepository) RevokeRefreshToken(ctx context.Context, tokenStr string) error {
	query := `UPDATE refresh_tokens SET revoked = true WHERE token = $1`
	_, err := r.db.ExecContext(ctx, query, tokenStr)
	return err
}

// RotateRefreshToken revokes the presented token and stores its replacement
// in one transaction, so a crash cannot leave both tokens usable.
func (r *AuthRepository) RotateRefreshToken(ctx context.Context, oldToken string, newToken *domain.RefreshToken) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = true WHERE token = $1`, oldToken)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at, revoked)
		VALUES ($1, $2, $3, false)
		RETURNING created_at
	`
	err = tx.QueryRowContext(ctx, query, newToken.Token, newToken.UserID, newToken.ExpiresAt).Scan(&newToken.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
