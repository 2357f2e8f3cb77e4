package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coastal-mart/internal/domain"
)

var (
	ErrResetTokenNotFound = errors.New("password reset token not found")
	ErrResetTokenUsed     = errors.New("password reset token has already been used")
)

// ResetTokenRepository defines the interface for password-reset token
// data access
type ResetTokenRepository interface {
	Create(ctx context.Context, token *domain.PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	MarkUsed(ctx context.Context, token string) error
}

type resetTokenRepository struct {
	db *sql.DB
}

// NewResetTokenRepository creates a new instance of ResetTokenRepository
func NewResetTokenRepository(db *sql.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Create inserts a new reset token
func (r *resetTokenRepository) Create(ctx context.Context, token *domain.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.Used,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	return nil
}

// FindByToken retrieves an unused reset token by its value
func (r *resetTokenRepository) FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, used, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`

	resetToken := &domain.PasswordResetToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&resetToken.ID,
		&resetToken.UserID,
		&resetToken.Token,
		&resetToken.ExpiresAt,
		&resetToken.Used,
		&resetToken.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("failed to find reset token: %w", err)
	}

	if resetToken.Used {
		return nil, ErrResetTokenUsed
	}

	return resetToken, nil
}

// MarkUsed invalidates a reset token after a successful password change
func (r *resetTokenRepository) MarkUsed(ctx context.Context, token string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = TRUE WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrResetTokenNotFound
	}

	return nil
}
