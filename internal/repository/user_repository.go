package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"postforlife/internal/models"
)

const userColumns = `user_id, firstname, lastname, email, mobile, password_hash, role, avatar_url, is_blocked,
	refresh_token, password_changed_at, password_reset_token, password_reset_expires, created_at, updated_at`

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashedPassword, err := hashPassword(password)
	if err != nil {
		return err
	}

	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.PasswordHash = hashedPassword

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (user_id, firstname, lastname, email, mobile, password_hash, role, created_at, updated_at)
		VALUES (:user_id, :firstname, :lastname, :email, :mobile, :password_hash, :role, :created_at, :updated_at)
	`

	if _, err = r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("failed to create user: %w", uniqueUserError(err))
	}

	return nil
}

func (r *userRepository) getOne(ctx context.Context, what string, query string, args ...any) (*models.User, error) {
	var user models.User

	err := r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, what)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return r.getOne(ctx, userID, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, email, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) FindByEmailOrMobile(ctx context.Context, email, mobile string) (*models.User, error) {
	return r.getOne(ctx, email, `SELECT `+userColumns+` FROM users WHERE email = $1 OR mobile = $2 LIMIT 1`, email, mobile)
}

func (r *userRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User

	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

func (r *userRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: wrong password", ErrNotFound)
	}

	return user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET firstname = :firstname, lastname = :lastname, email = :email, mobile = :mobile,
			role = :role, is_blocked = :is_blocked, updated_at = :updated_at
		WHERE user_id = :user_id
	`

	user.UpdatedAt = time.Now()

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", uniqueUserError(err))
	}

	return expectAffected(result, "user "+user.UserID)
}

// UpdatePassword rehashes the password and clears any pending reset token.
func (r *userRepository) UpdatePassword(ctx context.Context, userID, password string) error {
	hashedPassword, err := hashPassword(password)
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET password_hash = $1, password_changed_at = $2, password_reset_token = '',
			password_reset_expires = NULL, updated_at = $2
		WHERE user_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, hashedPassword, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return expectAffected(result, "user "+userID)
}

func (r *userRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET avatar_url = $1, updated_at = $2 WHERE user_id = $3`,
		avatarURL, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}

	return expectAffected(result, "user "+userID)
}

func (r *userRepository) DeleteUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User

	err := r.db.GetContext(ctx, &user, `DELETE FROM users WHERE user_id = $1 RETURNING `+userColumns, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = $1 WHERE user_id = $2`,
		refreshToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}

	return expectAffected(result, "user "+userID)
}

func (r *userRepository) ClearRefreshToken(ctx context.Context, refreshToken string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = '' WHERE refresh_token = $1`,
		refreshToken)
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return nil
}

func (r *userRepository) SetPasswordResetToken(ctx context.Context, userID, tokenHash string, expires time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_reset_token = $1, password_reset_expires = $2 WHERE user_id = $3`,
		tokenHash, expires, userID)
	if err != nil {
		return fmt.Errorf("failed to store password reset token: %w", err)
	}

	return expectAffected(result, "user "+userID)
}

func (r *userRepository) GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error) {
	return r.getOne(ctx, "with this reset token",
		`SELECT `+userColumns+` FROM users
		WHERE password_reset_token = $1 AND password_reset_token <> '' AND password_reset_expires > $2`,
		tokenHash, time.Now())
}

func (r *userRepository) GetReactions(ctx context.Context, userID string) ([]models.UserReaction, error) {
	reactions := []models.UserReaction{}

	err := r.db.SelectContext(ctx, &reactions,
		`SELECT post_id, type FROM post_reactions WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reactions: %w", err)
	}

	return reactions, nil
}

func expectAffected(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}

	return nil
}
