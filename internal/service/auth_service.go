package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"postforlife/internal/config"
	"postforlife/internal/mail"
	"postforlife/internal/models"
	"postforlife/internal/repository"
)

type RegisterInput struct {
	Firstname string
	Lastname  string
	Email     string
	Mobile    string
	Password  string
}

type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type authService struct {
	userRepo repository.UserRepository
	tokens   Tokens
	mailer   mail.Mailer
	cfg      *config.Config
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens Tokens, mailer mail.Mailer, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Firstname == "" || in.Lastname == "" || in.Email == "" || in.Mobile == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}

	existing, err := s.userRepo.FindByEmailOrMobile(ctx, in.Email, in.Mobile)
	switch {
	case err == nil && existing.Email == in.Email:
		return nil, ErrEmailUsed
	case err == nil:
		return nil, ErrMobileUsed
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	user := &models.User{
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Email:     in.Email,
		Mobile:    in.Mobile,
		Role:      models.RoleUser,
	}

	if err = s.userRepo.CreateUser(ctx, user, in.Password); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the credentials, issues an access and a refresh token and
// stores the refresh token on the user so it can be matched on refresh.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}

	user, err := s.userRepo.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.IsBlocked {
		return nil, ErrBlocked
	}

	accessToken, err := s.tokens.IssueAccess(user.UserID, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefresh(user.UserID)
	if err != nil {
		return nil, err
	}

	if err = s.userRepo.UpdateRefreshToken(ctx, user.UserID, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}
	user.RefreshToken = refreshToken

	return &LoginResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshAccessToken mints a new access token. The refresh token must verify
// and must still be the one stored for its user; it is not rotated.
func (s *authService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", fmt.Errorf("%w: no refresh token in cookie", ErrInvalidToken)
	}

	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%w: refresh token not matched", ErrInvalidToken)
		}
		return "", err
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return "", fmt.Errorf("%w: refresh token not matched", ErrInvalidToken)
	}

	if user.IsBlocked {
		return "", ErrBlocked
	}

	return s.tokens.IssueAccess(user.UserID, user.Role)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return fmt.Errorf("%w: no refresh token in cookie", ErrInvalidToken)
	}

	return s.userRepo.ClearRefreshToken(ctx, refreshToken)
}

// ForgotPassword stores the hash of a random reset token and mails the raw
// token to the user as a link.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: missing email", ErrInvalidInput)
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}

	expires := s.now().Add(s.cfg.PasswordResetDuration)
	if err = s.userRepo.SetPasswordResetToken(ctx, user.UserID, hashResetToken(token), expires); err != nil {
		return err
	}

	link := strings.TrimSuffix(s.cfg.URLServer, "/") + "/api/user/reset-password/" + token

	return s.mailer.SendPasswordReset(ctx, user.Email, link, s.cfg.PasswordResetDuration)
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return fmt.Errorf("%w: missing password or token", ErrInvalidInput)
	}

	user, err := s.userRepo.GetUserByResetToken(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: invalid reset token", ErrInvalidToken)
		}
		return err
	}

	return s.userRepo.UpdatePassword(ctx, user.UserID, password)
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
