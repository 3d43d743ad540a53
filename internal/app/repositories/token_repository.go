package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mertk/coursehub/internal/app/models"
	"github.com/mertk/coursehub/internal/pkg/apperrors"
	"github.com/mertk/coursehub/internal/pkg/logger"
)

// ITokenRepository defines the interface for refresh token storage
type ITokenRepository interface {
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

// TokenRepository handles database operations for refresh tokens.
type TokenRepository struct {
	db *pgxpool.Pool
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create stores a refresh token for a user.
func (r *TokenRepository) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	sqlStr, args, err := squirrel.Insert("refresh_tokens").
		Columns("user_id", "token", "expires_at").
		Values(userID, token, expiresAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, sqlStr, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error storing refresh token")
		return err
	}

	return nil
}

// GetByToken retrieves a refresh token record.
func (r *TokenRepository) GetByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	sqlStr, args, err := squirrel.Select("id", "user_id", "token", "expires_at", "revoked", "created_at").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rt models.RefreshToken
	err = r.db.QueryRow(ctx, sqlStr, args...).
		Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.Revoked, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error getting refresh token")
		return nil, err
	}

	return &rt, nil
}

// Revoke marks a refresh token as revoked.
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	if err != nil {
		logger.Error().Err(err).Msg("Error revoking refresh token")
		return err
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}

	return nil
}

// RevokeAllForUser marks every refresh token of a user as revoked.
func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1`, userID); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error revoking user refresh tokens")
		return err
	}
	return nil
}
