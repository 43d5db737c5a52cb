package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"postforlife/internal/models"
	"postforlife/internal/reaction"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailOrMobile(ctx context.Context, email, mobile string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID, password string) error
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
	DeleteUser(ctx context.Context, userID string) (*models.User, error)
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error
	ClearRefreshToken(ctx context.Context, refreshToken string) error
	SetPasswordResetToken(ctx context.Context, userID, tokenHash string, expires time.Time) error
	GetUserByResetToken(ctx context.Context, tokenHash string) (*models.User, error)
	GetReactions(ctx context.Context, userID string) ([]models.UserReaction, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	GetPublishedByID(ctx context.Context, postID string) (*models.Post, error)
	GetByAuthorID(ctx context.Context, authorID string) ([]models.Post, error)
	List(ctx context.Context, query PostQuery) ([]models.Post, int, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, postID, authorID string) ([]models.Image, error)
	React(ctx context.Context, postID, userID string, t reaction.Type) (reaction.Result, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, commentID string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	UpdateContent(ctx context.Context, commentID, authorID, content string) (*models.Comment, error)
	Delete(ctx context.Context, commentID, authorID string) (int64, error)
	React(ctx context.Context, commentID, userID string, t reaction.Type) (reaction.Result, error)
}

type ImageRepository interface {
	Create(ctx context.Context, images ...*models.Image) error
	GetByPostID(ctx context.Context, postID string) ([]models.Image, error)
}

type Repository struct {
	User    UserRepository
	Post    PostRepository
	Comment CommentRepository
	Image   ImageRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:    NewUserRepository(db),
		Post:    NewPostRepository(db),
		Comment: NewCommentRepository(db),
		Image:   NewImageRepository(db),
	}
}
