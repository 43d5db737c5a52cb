package service

import (
	"context"
	"fmt"
	"log/slog"

	"postforlife/internal/models"
	"postforlife/internal/repository"
	"postforlife/internal/storage"
)

// UpdateUserInput carries the fields a user may change on their own profile.
// Nil fields are left as they are.
type UpdateUserInput struct {
	Firstname *string
	Lastname  *string
	Email     *string
	Mobile    *string
	Password  *string
}

func (in UpdateUserInput) empty() bool {
	return in.Firstname == nil && in.Lastname == nil && in.Email == nil && in.Mobile == nil && in.Password == nil
}

// AdminUpdateUserInput adds the fields only an admin may change.
type AdminUpdateUserInput struct {
	UpdateUserInput
	Role      *string
	IsBlocked *bool
}

type UserService interface {
	GetCurrent(ctx context.Context, userID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, userID string) (*models.User, error)
	UpdateCurrent(ctx context.Context, userID string, in UpdateUserInput) (*models.User, error)
	UpdateByAdmin(ctx context.Context, userID string, in AdminUpdateUserInput) (*models.User, error)
	UploadAvatar(ctx context.Context, userID string, file File) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	storage  storage.Storage
}

func NewUserService(userRepo repository.UserRepository, storage storage.Storage) UserService {
	return &userService{
		userRepo: userRepo,
		storage:  storage,
	}
}

// GetCurrent returns the user with the reactions they have left on posts.
func (s *userService) GetCurrent(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	reactions, err := s.userRepo.GetReactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Reactions = reactions

	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}

	return s.userRepo.DeleteUser(ctx, userID)
}

func (s *userService) UpdateCurrent(ctx context.Context, userID string, in UpdateUserInput) (*models.User, error) {
	if in.empty() {
		return nil, fmt.Errorf("%w: missing inputs", ErrInvalidInput)
	}

	return s.update(ctx, userID, in, func(*models.User) {})
}

func (s *userService) UpdateByAdmin(ctx context.Context, userID string, in AdminUpdateUserInput) (*models.User, error) {
	if in.empty() && in.Role == nil && in.IsBlocked == nil {
		return nil, fmt.Errorf("%w: missing inputs", ErrInvalidInput)
	}

	if in.Role != nil && *in.Role != models.RoleUser && *in.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *in.Role)
	}

	return s.update(ctx, userID, in.UpdateUserInput, func(user *models.User) {
		if in.Role != nil {
			user.Role = *in.Role
		}
		if in.IsBlocked != nil {
			user.IsBlocked = *in.IsBlocked
		}
	})
}

func (s *userService) update(ctx context.Context, userID string, in UpdateUserInput, extra func(*models.User)) (*models.User, error) {
	if in.Password != nil && *in.Password == "" {
		return nil, fmt.Errorf("%w: empty password", ErrInvalidInput)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	setIfPresent(&user.Firstname, in.Firstname)
	setIfPresent(&user.Lastname, in.Lastname)
	setIfPresent(&user.Email, in.Email)
	setIfPresent(&user.Mobile, in.Mobile)
	extra(user)

	if err = s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	if in.Password != nil {
		if err = s.userRepo.UpdatePassword(ctx, userID, *in.Password); err != nil {
			return nil, err
		}
	}

	return s.GetCurrent(ctx, userID)
}

// UploadAvatar stores the image and points the user's avatar at it. The
// object is removed again if the user row cannot be updated.
func (s *userService) UploadAvatar(ctx context.Context, userID string, file File) (*models.User, error) {
	objectName, url, err := s.storage.UploadImage(ctx, "avatars/"+userID, file.Name, file.Reader, file.Size)
	if err != nil {
		return nil, err
	}

	if err = s.userRepo.UpdateAvatar(ctx, userID, url); err != nil {
		if delErr := s.storage.DeleteImage(ctx, objectName); delErr != nil {
			slog.WarnContext(ctx, "failed to remove orphaned avatar", "object", objectName, "error", delErr)
		}
		return nil, err
	}

	return s.GetCurrent(ctx, userID)
}

func setIfPresent(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}
